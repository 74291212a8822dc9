package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// manifestFile — имя файла манифеста в директории компонента.
const manifestFile = "component.yaml"

// Manifest — манифест локального компонента.
//
// Описывает entry points компонента и их параметры. Используется
// для валидации словаря параметров до отправки run платформе:
// ошибка конфигурации обнаруживается за секунды, а не после
// нескольких минут скачивания артефактов внутри шага.
type Manifest struct {
	// Name — имя компонента.
	Name string `yaml:"name"`

	// Description — назначение компонента.
	Description string `yaml:"description,omitempty"`

	// EntryPoints — точки входа компонента (обычно только "main").
	EntryPoints map[string]EntryPoint `yaml:"entry_points"`
}

// EntryPoint — точка входа компонента.
type EntryPoint struct {
	// Parameters — объявленные параметры.
	Parameters map[string]Parameter `yaml:"parameters,omitempty"`

	// Command — команда запуска (выполняется платформой, не драйвером).
	Command string `yaml:"command,omitempty"`
}

// Parameter — объявление параметра entry point.
type Parameter struct {
	// Type — тип параметра: "str", "float", "int", "path", "uri".
	Type string `yaml:"type,omitempty"`

	// Description — описание параметра.
	Description string `yaml:"description,omitempty"`

	// Default — значение по умолчанию. Параметр без default — обязательный.
	Default *string `yaml:"default,omitempty"`
}

// Required возвращает true, если параметр обязателен.
func (p Parameter) Required() bool {
	return p.Default == nil
}

// LoadManifest читает component.yaml из директории компонента.
func LoadManifest(componentDir string) (*Manifest, error) {
	path := filepath.Join(componentDir, manifestFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if len(m.EntryPoints) == 0 {
		return nil, fmt.Errorf("manifest %s declares no entry points", path)
	}

	return &m, nil
}

// ValidateParams проверяет словарь параметров против entry point манифеста.
//
// Ошибки: entry point не объявлен, обязательный параметр не передан,
// передан необъявленный параметр. Параметры проверяются в
// детерминированном порядке, чтобы сообщение об ошибке было стабильным.
func (m *Manifest) ValidateParams(entryPoint string, params map[string]string) error {
	ep, ok := m.EntryPoints[entryPoint]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNoEntryPoint, m.Name, entryPoint)
	}

	declared := make([]string, 0, len(ep.Parameters))
	for name := range ep.Parameters {
		declared = append(declared, name)
	}
	sort.Strings(declared)

	for _, name := range declared {
		if ep.Parameters[name].Required() {
			if _, ok := params[name]; !ok {
				return &ParamError{
					Component:  m.Name,
					EntryPoint: entryPoint,
					Param:      name,
					Err:        ErrMissingParam,
				}
			}
		}
	}

	passed := make([]string, 0, len(params))
	for name := range params {
		passed = append(passed, name)
	}
	sort.Strings(passed)

	for _, name := range passed {
		if _, ok := ep.Parameters[name]; !ok {
			return &ParamError{
				Component:  m.Name,
				EntryPoint: entryPoint,
				Param:      name,
				Err:        ErrUnknownParam,
			}
		}
	}

	return nil
}
