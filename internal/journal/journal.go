package journal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/mlpipe/internal/domain"
)

// Journal — фасад над репозиториями журнала.
//
// Реализует pipeline.Recorder и используется CLI-командами history.
type Journal struct {
	pipelines *PipelineRepo
	steps     *StepRepo
}

// New создаёт Journal поверх пула соединений.
func New(pool *pgxpool.Pool) *Journal {
	return &Journal{
		pipelines: NewPipelineRepo(pool),
		steps:     NewStepRepo(pool),
	}
}

// Pipelines возвращает репозиторий pipeline_runs.
func (j *Journal) Pipelines() *PipelineRepo {
	return j.pipelines
}

// Steps возвращает репозиторий step_runs.
func (j *Journal) Steps() *StepRepo {
	return j.steps
}

// RecordPipeline записывает новый pipeline run.
func (j *Journal) RecordPipeline(ctx context.Context, run *domain.PipelineRun) error {
	return j.pipelines.Create(ctx, run)
}

// UpdatePipeline обновляет pipeline run.
func (j *Journal) UpdatePipeline(ctx context.Context, run *domain.PipelineRun) error {
	return j.pipelines.Update(ctx, run)
}

// RecordStep записывает новый step run.
func (j *Journal) RecordStep(ctx context.Context, step *domain.StepRun) error {
	return j.steps.Create(ctx, step)
}

// UpdateStep обновляет step run.
func (j *Journal) UpdateStep(ctx context.Context, step *domain.StepRun) error {
	return j.steps.Update(ctx, step)
}
