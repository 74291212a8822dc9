// Package registry резолвит источники компонентов pipeline.
//
// Компонент — переиспользуемый шаг, живущий вне этого репозитория:
// либо в components repository (удалённый реестр, адресуемый по URL),
// либо в локальной директории src/ проекта.
//
// Для локальных компонентов пакет читает манифест component.yaml
// и валидирует словарь параметров до отправки run платформе.
// Удалённые компоненты передаются платформе по ссылке как есть.
package registry
