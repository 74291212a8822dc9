package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/shaiso/mlpipe/internal/config"
)

// rfConfigFile — имя файла с конфигурацией random forest в scratch-директории.
const rfConfigFile = "rf_config.json"

// RenderContext — контекст рендеринга параметров шага.
//
// Шаблоны каталога обращаются к данным так:
//   - {{ .Cfg.ETL.Sample }}
//   - {{ num .Cfg.Modeling.TestSize }}
//   - {{ .RFConfig }}
type RenderContext struct {
	// Cfg — конфигурация pipeline.
	Cfg *config.Config

	// RFConfig — путь к сериализованному rf_config.json.
	// Заполняется драйвером перед шагом train_random_forest.
	RFConfig string
}

// paramFuncs — функции, доступные в шаблонах параметров.
var paramFuncs = template.FuncMap{
	// num — форматирует число без экспоненциальной записи,
	// чтобы платформа получила "12500000", а не "1.25e+07".
	"num": func(v any) (string, error) {
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		default:
			return "", fmt.Errorf("num: unsupported type %T", v)
		}
	},

	// lower — приводит к нижнему регистру.
	"lower": strings.ToLower,

	// trim — удаляет пробелы по краям.
	"trim": strings.TrimSpace,
}

// RenderParams строит словарь параметров шага из его определения.
//
// Каждое значение рендерится как Go template против RenderContext.
// Значения без шаблонных выражений возвращаются как есть.
func RenderParams(def StepDef, ctx *RenderContext) (map[string]string, error) {
	params := make(map[string]string, len(def.Params))

	for name, tmpl := range def.Params {
		rendered, err := renderValue(tmpl, ctx)
		if err != nil {
			return nil, &StepError{
				Step:    def.Name,
				Message: "render parameter " + name + ": " + err.Error(),
				Err:     err,
			}
		}
		params[name] = rendered
	}

	return params, nil
}

// renderValue рендерит одно значение параметра.
func renderValue(tmpl string, ctx *RenderContext) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Funcs(paramFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	return buf.String(), nil
}

// WriteRFConfig сериализует блок modeling.random_forest в JSON-файл
// внутри scratch-директории и возвращает путь к нему.
//
// Содержимое файла — блок конфигурации без изменений: шаг обучения
// читает его сам, драйвер в состав ключей не вмешивается.
func WriteRFConfig(scratchDir string, rf map[string]any) (string, error) {
	data, err := json.Marshal(rf)
	if err != nil {
		return "", fmt.Errorf("marshal random forest config: %w", err)
	}

	path := filepath.Join(scratchDir, rfConfigFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rfConfigFile, err)
	}

	return path, nil
}
