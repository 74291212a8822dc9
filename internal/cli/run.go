package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/mlpipe/internal/config"
	"github.com/shaiso/mlpipe/internal/domain"
	"github.com/shaiso/mlpipe/internal/pipeline"
)

// ConfigFn загружает конфигурацию с overrides.
type ConfigFn func(overrides []string) (*config.Config, error)

// DriverFn строит Driver для конфигурации.
// Возвращаемый cleanup закрывает соединения (БД, MQ) и обязателен к вызову.
type DriverFn func(cfg *config.Config) (*pipeline.Driver, func(), error)

// OutputFn создаёт Output в выбранном режиме.
type OutputFn func() *Output

// NewRunCmd создаёт команду запуска pipeline.
func NewRunCmd(configFn ConfigFn, driverFn DriverFn, outputFn OutputFn) *cobra.Command {
	var steps string
	var overrides []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the training pipeline",
		Long: `Run the training pipeline by dispatching each selected step as a
tracked run on the tracking platform.

Steps: download, basic_cleaning, data_check, data_split,
train_random_forest, test_regression_model.

"all" selects every step except test_regression_model, which must be
named explicitly after a model export is promoted to prod.`,
		Example: `  mlpipe run
  mlpipe run --steps download,basic_cleaning
  mlpipe run --set etl.min_price=50 --set modeling.random_forest.n_estimators=10
  mlpipe run --steps test_regression_model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			cfg, err := configFn(overrides)
			if err != nil {
				return err
			}

			driver, cleanup, err := driverFn(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := driver.Run(cmd.Context(), steps)
			if run != nil {
				printRun(out, run)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&steps, "steps", "", `Steps to run: "all" or a comma-separated list (default: main.steps from config)`)
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Config override, e.g. etl.min_price=50 (repeatable)")

	return cmd
}

// printRun выводит итог выполнения pipeline.
func printRun(out *Output, run *domain.PipelineRun) {
	headers := []string{"ID", "PROJECT", "GROUP", "STEPS", "STATUS", "DURATION"}
	rows := [][]string{{
		run.ID.String(),
		run.Project,
		run.Group,
		strings.Join(run.Steps, ","),
		string(run.Status),
		formatDuration(run.Duration()),
	}}
	out.Print(headers, rows, run)

	if run.Error != "" {
		out.Error(run.Error)
	}
}

// formatDuration форматирует длительность для таблицы.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
