// mlpipe-scheduler — запускает pipeline по расписанию.
//
// Долгоживущий процесс для регулярного переобучения: по cron-выражению
// (CRON_EXPR) или интервалу (INTERVAL_SEC) выполняет pipeline с
// заданным selection шагов (STEPS, по умолчанию "all").
//
// Отдаёт /healthz и Prometheus /metrics на SCHED_PORT (по умолчанию 8084).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shaiso/mlpipe/internal/config"
	"github.com/shaiso/mlpipe/internal/events"
	"github.com/shaiso/mlpipe/internal/journal"
	"github.com/shaiso/mlpipe/internal/pipeline"
	"github.com/shaiso/mlpipe/internal/registry"
	"github.com/shaiso/mlpipe/internal/scheduler"
	"github.com/shaiso/mlpipe/internal/telemetry"
	"github.com/shaiso/mlpipe/internal/tracking"
)

func main() {
	_ = godotenv.Load()

	logger := telemetry.SetupLogger()
	logger.Info("starting mlpipe-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath, nil)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics()

	var opts []tracking.Option
	if key := os.Getenv("TRACKING_API_KEY"); key != "" {
		opts = append(opts, tracking.WithAPIKey(key))
	}

	driverCfg := pipeline.DriverConfig{
		Cfg:      cfg,
		Tracker:  tracking.NewClient(cfg.Main.TrackingURL, opts...),
		Resolver: registry.NewResolver(cfg.Main.ComponentsRepository, filepath.Dir(configPath)),
		Metrics:  metrics,
		Logger:   logger,
	}

	if dsn := os.Getenv("DB_URL"); dsn != "" {
		pool, err := journal.NewPool(ctx, dsn)
		if err != nil {
			logger.Warn("database not available, running without journal", "error", err)
		} else {
			defer pool.Close()
			driverCfg.Journal = journal.New(pool)
			logger.Info("journal connected")
		}
	}

	if mqURL := os.Getenv("RABBITMQ_URL"); mqURL != "" {
		conn, err := events.NewConnection(mqURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running without lifecycle events", "error", err)
		} else {
			defer conn.Close()
			if err := events.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			driverCfg.Events = events.NewPublisher(conn, logger)
			logger.Info("RabbitMQ connected")
		}
	}

	driver := pipeline.NewDriver(driverCfg)

	intervalSec := 0
	if v := os.Getenv("INTERVAL_SEC"); v != "" {
		intervalSec, err = strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid INTERVAL_SEC", "error", err)
			os.Exit(1)
		}
	}

	sched, err := scheduler.New(scheduler.Config{
		Runner: driver,
		Schedule: &scheduler.Schedule{
			CronExpr:    os.Getenv("CRON_EXPR"),
			IntervalSec: intervalSec,
			Timezone:    os.Getenv("SCHED_TIMEZONE"),
		},
		Selection: os.Getenv("STEPS"),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())

	port := ":8084"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "mlpipe-scheduler stopped")
}
