package registry

import "errors"

// Ошибки резолва компонентов и валидации манифестов.
var (
	// ErrComponentNotFound — директория локального компонента не существует.
	ErrComponentNotFound = errors.New("component directory not found")

	// ErrManifestNotFound — у локального компонента нет component.yaml.
	ErrManifestNotFound = errors.New("component manifest not found")

	// ErrNoEntryPoint — манифест не содержит запрошенный entry point.
	ErrNoEntryPoint = errors.New("entry point not declared in manifest")

	// ErrMissingParam — обязательный параметр entry point не передан.
	ErrMissingParam = errors.New("required parameter is missing")

	// ErrUnknownParam — передан параметр, не объявленный в манифесте.
	ErrUnknownParam = errors.New("parameter not declared in manifest")
)

// ParamError — ошибка валидации параметров с контекстом.
type ParamError struct {
	Component  string // имя компонента
	EntryPoint string // entry point
	Param      string // имя параметра
	Err        error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ParamError) Error() string {
	return e.Component + "/" + e.EntryPoint + ": parameter " + e.Param + ": " + e.Err.Error()
}

// Unwrap возвращает базовую ошибку.
func (e *ParamError) Unwrap() error {
	return e.Err
}
