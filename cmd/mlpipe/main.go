// mlpipe — драйвер ML training pipeline.
//
// Последовательно диспетчеризует шаги pipeline (download, basic_cleaning,
// data_check, data_split, train_random_forest, test_regression_model)
// как tracked runs на внешней tracking-платформе.
//
// Использование:
//
//	mlpipe [--config config.yaml] [--json] <command> [flags]
//
// Команды:
//
//	run      Запуск pipeline
//	steps    Каталог шагов
//	config   Работа с конфигурацией
//	history  История выполнений (требует DB_URL)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shaiso/mlpipe/internal/cli"
	"github.com/shaiso/mlpipe/internal/config"
	"github.com/shaiso/mlpipe/internal/events"
	"github.com/shaiso/mlpipe/internal/journal"
	"github.com/shaiso/mlpipe/internal/pipeline"
	"github.com/shaiso/mlpipe/internal/registry"
	"github.com/shaiso/mlpipe/internal/telemetry"
	"github.com/shaiso/mlpipe/internal/tracking"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var envFile string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "mlpipe",
		Short:         "mlpipe — ML training pipeline driver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				// .env рядом с проектом, если есть
				_ = godotenv.Load()
			}
			telemetry.SetupLogger()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to pipeline configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	configFn := func(overrides []string) (*config.Config, error) {
		return config.Load(configPath, overrides)
	}
	outputFn := func() *cli.Output {
		return cli.NewOutput(jsonOutput)
	}
	driverFn := func(cfg *config.Config) (*pipeline.Driver, func(), error) {
		return buildDriver(cfg, filepath.Dir(configPath))
	}

	rootCmd.AddCommand(
		cli.NewRunCmd(configFn, driverFn, outputFn),
		cli.NewStepsCmd(outputFn),
		cli.NewConfigCmd(configFn, outputFn),
		cli.NewHistoryCmd(openJournal, outputFn),
	)

	// graceful shutdown: Ctrl+C отменяет контекст команд
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDriver собирает Driver со всеми подключёнными зависимостями.
//
// Журнал (DB_URL) и события (RABBITMQ_URL) опциональны: их отсутствие
// понижает функциональность, но не мешает запуску pipeline.
// Возвращаемый cleanup закрывает соединения и пушит метрики.
func buildDriver(cfg *config.Config, projectDir string) (*pipeline.Driver, func(), error) {
	logger := slog.Default()
	metrics := telemetry.NewMetrics()

	var opts []tracking.Option
	if key := os.Getenv("TRACKING_API_KEY"); key != "" {
		opts = append(opts, tracking.WithAPIKey(key))
	}
	tracker := tracking.NewClient(cfg.Main.TrackingURL, opts...)

	driverCfg := pipeline.DriverConfig{
		Cfg:      cfg,
		Tracker:  tracker,
		Resolver: registry.NewResolver(cfg.Main.ComponentsRepository, projectDir),
		Metrics:  metrics,
		Logger:   logger,
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	ctx := context.Background()

	if dsn := os.Getenv("DB_URL"); dsn != "" {
		pool, err := journal.NewPool(ctx, dsn)
		if err != nil {
			logger.Warn("database not available, running without journal", "error", err)
		} else {
			cleanups = append(cleanups, pool.Close)
			driverCfg.Journal = journal.New(pool)
			logger.Info("journal connected")
		}
	}

	if mqURL := os.Getenv("RABBITMQ_URL"); mqURL != "" {
		conn, err := events.NewConnection(mqURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running without lifecycle events", "error", err)
		} else {
			cleanups = append(cleanups, func() { conn.Close() })
			if err := events.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			driverCfg.Events = events.NewPublisher(conn, logger)
			logger.Info("RabbitMQ connected")
		}
	}

	// Одноразовый процесс не доживает до scrape — метрики уходят в Pushgateway.
	if gw := os.Getenv("PUSHGATEWAY_URL"); gw != "" {
		cleanups = append(cleanups, func() {
			if err := metrics.Push(gw, "mlpipe"); err != nil {
				logger.Warn("metrics push failed", "error", err)
			}
		})
	}

	return pipeline.NewDriver(driverCfg), cleanup, nil
}

// openJournal открывает журнал для команд history.
func openJournal() (*journal.Journal, func(), error) {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		return nil, nil, fmt.Errorf("history requires DB_URL to be set")
	}

	pool, err := journal.NewPool(context.Background(), dsn)
	if err != nil {
		return nil, nil, err
	}

	return journal.New(pool), pool.Close, nil
}
