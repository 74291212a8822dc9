// Package domain содержит основные сущности pipeline: выполнение
// pipeline целиком (PipelineRun), выполнение одного шага (StepRun),
// их статусы и ссылки на артефакты tracking-платформы.
//
// Пакет не зависит от транспорта и хранилищ — только типы и переходы
// их жизненного цикла.
package domain
