package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/mlpipe/internal/domain"
)

// Runner запускает pipeline. Реализуется pipeline.Driver.
type Runner interface {
	Run(ctx context.Context, selection string) (*domain.PipelineRun, error)
}

// Scheduler запускает pipeline по расписанию.
//
// Запуски не накладываются: если предыдущий pipeline ещё выполняется,
// очередной тик пропускается с предупреждением в логе.
type Scheduler struct {
	runner    Runner
	schedule  *Schedule
	selection string
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// Config — конфигурация Scheduler.
type Config struct {
	Runner    Runner
	Schedule  *Schedule
	Selection string // selection шагов для каждого запуска ("all" по умолчанию)
	Logger    *slog.Logger
}

// New создаёт Scheduler. Расписание валидируется сразу.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}

	selection := cfg.Selection
	if selection == "" {
		selection = "all"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:    cfg.Runner,
		schedule:  cfg.Schedule,
		selection: selection,
		logger:    logger,
	}, nil
}

// Run выполняет цикл планировщика до отмены контекста.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next, err := s.schedule.NextDue(time.Now())
		if err != nil {
			return err
		}

		s.logger.Info("next pipeline run scheduled", "next_due_at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.Tick(ctx)
	}
}

// Tick запускает pipeline, если предыдущий запуск завершён.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous pipeline run still in progress, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	run, err := s.runner.Run(ctx, s.selection)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("scheduled pipeline run failed", "error", err)
		return
	}

	s.logger.Info("scheduled pipeline run finished",
		"pipeline_run_id", run.ID,
		"status", run.Status,
	)
}
