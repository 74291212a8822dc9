package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shaiso/mlpipe/internal/config"
	"github.com/shaiso/mlpipe/internal/domain"
	"github.com/shaiso/mlpipe/internal/registry"
	"github.com/shaiso/mlpipe/internal/telemetry"
	"github.com/shaiso/mlpipe/internal/tracking"
)

// Dispatcher отправляет runs tracking-платформе и ждёт их завершения.
// Реализуется tracking.Client.
type Dispatcher interface {
	SubmitRun(ctx context.Context, req *tracking.SubmitRequest) (*tracking.RunInfo, error)
	WaitRun(ctx context.Context, runID string) (*tracking.RunInfo, error)
}

// Recorder записывает ход выполнения в журнал (journal.Journal).
// Ошибки журнала логируются, но не прерывают pipeline.
type Recorder interface {
	RecordPipeline(ctx context.Context, run *domain.PipelineRun) error
	UpdatePipeline(ctx context.Context, run *domain.PipelineRun) error
	RecordStep(ctx context.Context, step *domain.StepRun) error
	UpdateStep(ctx context.Context, step *domain.StepRun) error
}

// Notifier публикует события жизненного цикла (events.Publisher).
// Ошибки публикации логируются, но не прерывают pipeline.
type Notifier interface {
	PipelineStarted(ctx context.Context, run *domain.PipelineRun) error
	StepFinished(ctx context.Context, step *domain.StepRun) error
	PipelineFinished(ctx context.Context, run *domain.PipelineRun) error
}

// Driver последовательно выполняет план шагов, диспетчеризуя каждый
// как tracked run на внешней платформе.
//
// Fail-fast: первый шаг, чей run завершился не SUCCEEDED (или не
// отправился вовсе), останавливает pipeline.
type Driver struct {
	cfg      *config.Config
	tracker  Dispatcher
	resolver *registry.Resolver

	journal Recorder           // опционально
	events  Notifier           // опционально
	metrics *telemetry.Metrics // опционально

	logger *slog.Logger
}

// DriverConfig — конфигурация Driver.
type DriverConfig struct {
	Cfg      *config.Config
	Tracker  Dispatcher
	Resolver *registry.Resolver

	Journal Recorder           // nil — без журнала
	Events  Notifier           // nil — без событий
	Metrics *telemetry.Metrics // nil — без метрик

	Logger *slog.Logger
}

// NewDriver создаёт Driver.
func NewDriver(cfg DriverConfig) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{
		cfg:      cfg.Cfg,
		tracker:  cfg.Tracker,
		resolver: cfg.Resolver,
		journal:  cfg.Journal,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Run выполняет pipeline для заданного selection.
//
// selection — "all" или имена шагов через запятую; пустая строка
// означает selection из конфигурации (main.steps).
//
// Возвращает PipelineRun с итоговым статусом. Ошибка не-nil, если
// pipeline не дошёл до конца; сам PipelineRun при этом тоже
// возвращается — с заполненными Status и Error.
func (d *Driver) Run(ctx context.Context, selection string) (*domain.PipelineRun, error) {
	if selection == "" {
		selection = d.cfg.Main.Steps
	}

	plan, err := Plan(selection)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(plan))
	for i, def := range plan {
		names[i] = def.Name
	}

	run := domain.NewPipelineRun(d.cfg.Main.ProjectName, d.cfg.Main.ExperimentName, names)
	logger := telemetry.WithPipelineRunID(d.logger, run.ID.String())

	logger.Info("starting pipeline",
		"project", run.Project,
		"group", run.Group,
		"steps", names,
	)

	d.record(ctx, logger, func(rctx context.Context) error {
		return d.journal.RecordPipeline(rctx, run)
	})
	d.notify(ctx, logger, func(nctx context.Context) error {
		return d.events.PipelineStarted(nctx, run)
	})

	// Scratch-директория для файлов, генерируемых драйвером (rf_config.json).
	scratch, err := os.MkdirTemp("", "mlpipe-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	renderCtx := &RenderContext{Cfg: d.cfg}
	if needsRFConfig(plan) {
		rfPath, err := WriteRFConfig(scratch, d.cfg.Modeling.RandomForest)
		if err != nil {
			return nil, err
		}
		renderCtx.RFConfig = rfPath
	}

	run.MarkRunning()
	d.record(ctx, logger, func(rctx context.Context) error {
		return d.journal.UpdatePipeline(rctx, run)
	})

	for _, def := range plan {
		if err := d.runStep(ctx, logger, run, def, renderCtx); err != nil {
			if ctx.Err() != nil {
				run.MarkCancelled()
			} else {
				run.MarkFailed(err.Error())
			}
			d.finalize(ctx, logger, run)
			return run, err
		}
	}

	run.MarkSucceeded()
	d.finalize(ctx, logger, run)

	logger.Info("pipeline finished",
		"status", run.Status,
		"duration", run.Duration(),
	)
	return run, nil
}

// runStep выполняет один шаг: рендерит параметры, резолвит источник,
// отправляет run и ждёт терминального статуса.
func (d *Driver) runStep(ctx context.Context, logger *slog.Logger, run *domain.PipelineRun, def StepDef, renderCtx *RenderContext) error {
	stepLogger := telemetry.WithStep(logger, def.Name)

	params, err := RenderParams(def, renderCtx)
	if err != nil {
		return err
	}

	source, err := d.resolver.Resolve(def.Source)
	if err != nil {
		return &StepError{Step: def.Name, Message: "resolve source: " + err.Error(), Err: err}
	}

	// Локальные компоненты валидируются против манифеста до submit.
	if def.Source.Kind == registry.SourceLocal {
		manifest, err := registry.LoadManifest(source)
		if err != nil {
			return &StepError{Step: def.Name, Message: "load manifest: " + err.Error(), Err: err}
		}
		if err := manifest.ValidateParams(def.EntryPoint, params); err != nil {
			return &StepError{Step: def.Name, Message: "validate params: " + err.Error(), Err: err}
		}
	}

	stepRun := domain.NewStepRun(run.ID, def.Name, source, params)
	d.record(ctx, stepLogger, func(rctx context.Context) error {
		return d.journal.RecordStep(rctx, stepRun)
	})

	stepLogger.Info("dispatching step", "source", source, "entry_point", def.EntryPoint)

	info, err := d.tracker.SubmitRun(ctx, &tracking.SubmitRequest{
		Source:     source,
		EntryPoint: def.EntryPoint,
		Parameters: params,
		Project:    run.Project,
		Group:      run.Group,
		JobType:    def.Name,
	})
	if err != nil {
		d.finishStep(ctx, stepLogger, stepRun, domain.RunStatusFailed, err.Error())
		return &StepError{Step: def.Name, Message: "submit: " + err.Error(), Err: err}
	}

	stepRun.MarkSubmitted(info.ID)
	d.record(ctx, stepLogger, func(rctx context.Context) error {
		return d.journal.UpdateStep(rctx, stepRun)
	})

	stepLogger.Info("step submitted", "remote_run_id", info.ID)

	final, err := d.tracker.WaitRun(ctx, info.ID)
	if err != nil {
		d.finishStep(ctx, stepLogger, stepRun, domain.RunStatusFailed, err.Error())
		return &StepError{Step: def.Name, Message: "wait: " + err.Error(), Err: err}
	}

	d.finishStep(ctx, stepLogger, stepRun, final.Status, final.Error)

	if final.Status != domain.RunStatusSucceeded {
		return &StepError{
			Step:    def.Name,
			Message: fmt.Sprintf("remote run %s finished %s: %s", info.ID, final.Status, final.Error),
			Err:     ErrStepFailed,
		}
	}

	stepLogger.Info("step finished",
		"remote_run_id", stepRun.RemoteRunID,
		"duration", stepRun.Duration(),
	)
	return nil
}

// finishStep фиксирует терминальный статус шага в журнале, метриках и событиях.
func (d *Driver) finishStep(ctx context.Context, logger *slog.Logger, stepRun *domain.StepRun, status domain.RunStatus, errMsg string) {
	stepRun.MarkFinished(status, errMsg)

	d.record(ctx, logger, func(rctx context.Context) error {
		return d.journal.UpdateStep(rctx, stepRun)
	})
	d.notify(ctx, logger, func(nctx context.Context) error {
		return d.events.StepFinished(nctx, stepRun)
	})

	if d.metrics != nil {
		d.metrics.ObserveStep(stepRun.Step, string(status), stepRun.Duration())
	}
}

// finalize фиксирует терминальный статус pipeline.
func (d *Driver) finalize(ctx context.Context, logger *slog.Logger, run *domain.PipelineRun) {
	d.record(ctx, logger, func(rctx context.Context) error {
		return d.journal.UpdatePipeline(rctx, run)
	})
	d.notify(ctx, logger, func(nctx context.Context) error {
		return d.events.PipelineFinished(nctx, run)
	})

	if d.metrics != nil {
		d.metrics.ObservePipeline(string(run.Status))
	}
}

// record выполняет операцию журнала, если журнал подключён.
// Отмена контекста не мешает финальной записи.
func (d *Driver) record(ctx context.Context, logger *slog.Logger, op func(context.Context) error) {
	if d.journal == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := op(ctx); err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}

// notify публикует событие, если публикация подключена.
func (d *Driver) notify(ctx context.Context, logger *slog.Logger, op func(context.Context) error) {
	if d.events == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := op(ctx); err != nil {
		logger.Warn("event publish failed", "error", err)
	}
}

// needsRFConfig возвращает true, если план содержит шаг обучения.
func needsRFConfig(plan []StepDef) bool {
	for _, def := range plan {
		if def.Name == StepTrain {
			return true
		}
	}
	return false
}
