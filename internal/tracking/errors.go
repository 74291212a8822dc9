package tracking

import (
	"errors"
	"fmt"
)

// Ошибки клиента tracking-платформы.
var (
	// ErrSubmit — не удалось отправить run платформе.
	ErrSubmit = errors.New("submit run failed")

	// ErrNotFound — run с таким ID не найден на платформе.
	ErrNotFound = errors.New("run not found")

	// ErrUnexpectedStatus — платформа вернула неизвестный статус.
	ErrUnexpectedStatus = errors.New("unexpected run status")
)

// APIError — ошибка, возвращённая платформой.
type APIError struct {
	StatusCode int    // HTTP-статус ответа
	Code       string // машиночитаемый код ошибки
	Message    string // описание
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tracking API %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("tracking API %d: %s", e.StatusCode, e.Message)
}

// IsPermanent возвращает true, если повторять запрос бессмысленно.
func (e *APIError) IsPermanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
