package config

import (
	"strconv"
	"strings"
)

// applyOverride применяет один override вида "path.to.field=value"
// к generic-представлению конфигурации.
//
// Путь должен существовать в конфигурации: overrides меняют значения,
// но не создают новые поля. Целевое значение должно быть скаляром.
func applyOverride(raw map[string]any, expr string) error {
	path, value, found := strings.Cut(expr, "=")
	if !found || path == "" {
		return &OverrideError{Expr: expr, Message: "missing '='", Err: ErrBadOverride}
	}

	keys := strings.Split(path, ".")

	// Спускаемся до родителя целевого поля.
	node := raw
	for _, key := range keys[:len(keys)-1] {
		child, ok := node[key]
		if !ok {
			return &OverrideError{Expr: expr, Message: "unknown section: " + key, Err: ErrUnknownPath}
		}

		childMap, ok := child.(map[string]any)
		if !ok {
			return &OverrideError{Expr: expr, Message: key + " is not a section", Err: ErrUnknownPath}
		}
		node = childMap
	}

	leaf := keys[len(keys)-1]
	current, ok := node[leaf]
	if !ok {
		return &OverrideError{Expr: expr, Message: "unknown field: " + leaf, Err: ErrUnknownPath}
	}

	switch current.(type) {
	case map[string]any, []any:
		return &OverrideError{Expr: expr, Message: leaf + " is not a scalar", Err: ErrNotScalar}
	}

	node[leaf] = coerceScalar(value)
	return nil
}

// coerceScalar приводит строковое значение override к bool, int,
// float или оставляет строкой.
func coerceScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}
