package pipeline

import "errors"

// Ошибки построения плана и выполнения pipeline.
var (
	// ErrNoSteps — после разбора selection не осталось ни одного шага.
	ErrNoSteps = errors.New("no steps selected")

	// ErrUnknownStep — selection ссылается на шаг вне каталога.
	ErrUnknownStep = errors.New("unknown step")

	// ErrStepFailed — dispatched run шага завершился не SUCCEEDED.
	ErrStepFailed = errors.New("step run failed")
)

// StepError — ошибка выполнения конкретного шага.
type StepError struct {
	Step    string // имя шага
	Message string // описание
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *StepError) Error() string {
	return "step " + e.Step + ": " + e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *StepError) Unwrap() error {
	return e.Err
}
