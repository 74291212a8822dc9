package config

import "errors"

// Ошибки загрузки и валидации конфигурации.
var (
	// ErrMissingField — обязательное поле конфигурации не заполнено.
	ErrMissingField = errors.New("required config field is missing")

	// ErrBadOverride — override имеет неверный синтаксис (нет '=').
	ErrBadOverride = errors.New("override must have form path=value")

	// ErrUnknownPath — override ссылается на несуществующий путь.
	ErrUnknownPath = errors.New("override path does not exist in config")

	// ErrNotScalar — override пытается заменить не-скалярное значение скаляром.
	ErrNotScalar = errors.New("override target is not a scalar value")
)

// OverrideError — ошибка применения одного override с контекстом.
type OverrideError struct {
	Expr    string // исходное выражение, например "etl.min_price=50"
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *OverrideError) Error() string {
	return "override " + e.Expr + ": " + e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *OverrideError) Unwrap() error {
	return e.Err
}
