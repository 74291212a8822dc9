// Package tracking содержит HTTP-клиент tracking-платформы —
// внешней системы, которая выполняет runs компонентов, версионирует
// артефакты и группирует эксперименты.
//
// Сама платформа вне этого репозитория: клиент умеет только
// отправить run (submit), прочитать его состояние и дождаться
// терминального статуса с exponential backoff.
package tracking
