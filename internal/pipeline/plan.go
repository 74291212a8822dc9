package pipeline

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
)

// Plan строит упорядоченный список шагов для выполнения.
//
// selection — "all" или имена шагов через запятую. "all" раскрывается
// во все шаги каталога кроме explicit-only. Дубликаты схлопываются,
// неизвестные имена — ошибка.
//
// Независимо от порядка в selection шаги выполняются в каноническом
// порядке зависимостей: топологическая сортировка полного каталога,
// отфильтрованная по выбранным шагам.
func Plan(selection string) ([]StepDef, error) {
	selected, err := parseSelection(selection)
	if err != nil {
		return nil, err
	}

	order, err := catalogOrder()
	if err != nil {
		return nil, err
	}

	plan := make([]StepDef, 0, len(selected))
	for _, name := range order {
		if !selected[name] {
			continue
		}
		def, ok := FindStep(name)
		if !ok {
			// Каталог и граф строятся из одного списка, расходиться не могут.
			return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
		}
		plan = append(plan, def)
	}

	if len(plan) == 0 {
		return nil, ErrNoSteps
	}

	return plan, nil
}

// parseSelection разбирает selection в множество имён шагов.
func parseSelection(selection string) (map[string]bool, error) {
	selected := make(map[string]bool)

	if strings.TrimSpace(selection) == SelectionAll {
		for _, name := range DefaultStepNames() {
			selected[name] = true
		}
		return selected, nil
	}

	for _, raw := range strings.Split(selection, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := FindStep(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
		selected[name] = true
	}

	if len(selected) == 0 {
		return nil, ErrNoSteps
	}

	return selected, nil
}

// catalogOrder возвращает имена всех шагов каталога в топологическом
// порядке зависимостей.
//
// Каталог — прямая цепочка, но граф всё равно отвергает циклы и
// зависимости на несуществующие шаги при изменении каталога.
func catalogOrder() ([]string, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())

	for _, def := range catalog {
		if err := g.AddVertex(def.Name); err != nil {
			return nil, fmt.Errorf("add step %s: %w", def.Name, err)
		}
	}

	for _, def := range catalog {
		for _, dep := range def.DependsOn {
			if err := g.AddEdge(dep, def.Name); err != nil {
				return nil, fmt.Errorf("add dependency %s -> %s: %w", dep, def.Name, err)
			}
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("sort steps: %w", err)
	}

	return order, nil
}
