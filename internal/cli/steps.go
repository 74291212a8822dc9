package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/mlpipe/internal/pipeline"
)

// NewStepsCmd создаёт группу команд для каталога шагов.
func NewStepsCmd(outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Inspect the step catalog",
	}

	cmd.AddCommand(newStepsListCmd(outputFn))

	return cmd
}

func newStepsListCmd(outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipeline steps in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			catalog := pipeline.Catalog()

			headers := []string{"STEP", "SOURCE", "COMPONENT", "DEPENDS_ON", "IN_ALL", "PARAMS"}
			rows := make([][]string, len(catalog))
			for i, def := range catalog {
				inAll := "yes"
				if def.ExplicitOnly {
					inAll = "no"
				}
				rows[i] = []string{
					def.Name,
					string(def.Source.Kind),
					def.Source.Name,
					strings.Join(def.DependsOn, ","),
					inAll,
					strings.Join(paramNames(def), ","),
				}
			}

			out.Print(headers, rows, catalog)
			return nil
		},
	}
}

// paramNames возвращает имена параметров шага в алфавитном порядке.
func paramNames(def pipeline.StepDef) []string {
	names := make([]string, 0, len(def.Params))
	for name := range def.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
