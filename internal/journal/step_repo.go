package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/mlpipe/internal/domain"
)

// StepRepo — репозиторий для step_runs.
type StepRepo struct {
	pool *pgxpool.Pool
}

// NewStepRepo создаёт новый StepRepo.
func NewStepRepo(pool *pgxpool.Pool) *StepRepo {
	return &StepRepo{pool: pool}
}

// Create записывает новый step run.
func (r *StepRepo) Create(ctx context.Context, step *domain.StepRun) error {
	paramsJSON, err := json.Marshal(step.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `
		INSERT INTO step_runs (id, pipeline_run_id, step, source, params, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		step.ID,
		step.PipelineRunID,
		step.Step,
		step.Source,
		paramsJSON,
		step.Status,
		step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert step run: %w", err)
	}
	return nil
}

// Update обновляет статус, времена и remote_run_id шага.
func (r *StepRepo) Update(ctx context.Context, step *domain.StepRun) error {
	query := `
		UPDATE step_runs
		SET status = $2, remote_run_id = $3, started_at = $4, finished_at = $5, error = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		step.ID,
		step.Status,
		nullString(step.RemoteRunID),
		step.StartedAt,
		step.FinishedAt,
		nullString(step.Error),
	)
	if err != nil {
		return fmt.Errorf("update step run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPipelineRun возвращает шаги pipeline run в порядке создания.
func (r *StepRepo) ListByPipelineRun(ctx context.Context, pipelineRunID uuid.UUID) ([]domain.StepRun, error) {
	query := `
		SELECT id, pipeline_run_id, step, source, remote_run_id, params,
		       status, started_at, finished_at, error, created_at
		FROM step_runs
		WHERE pipeline_run_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, pipelineRunID)
	if err != nil {
		return nil, fmt.Errorf("list step runs: %w", err)
	}
	defer rows.Close()

	var steps []domain.StepRun
	for rows.Next() {
		step, err := scanStepRun(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *step)
	}
	return steps, rows.Err()
}

// scanStepRun сканирует строку в StepRun.
func scanStepRun(row pgx.Row) (*domain.StepRun, error) {
	var step domain.StepRun
	var remoteRunID, stepError *string
	var paramsJSON []byte

	err := row.Scan(
		&step.ID,
		&step.PipelineRunID,
		&step.Step,
		&step.Source,
		&remoteRunID,
		&paramsJSON,
		&step.Status,
		&step.StartedAt,
		&step.FinishedAt,
		&stepError,
		&step.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan step run: %w", err)
	}

	if paramsJSON != nil {
		if err := json.Unmarshal(paramsJSON, &step.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
	}
	if remoteRunID != nil {
		step.RemoteRunID = *remoteRunID
	}
	if stepError != nil {
		step.Error = *stepError
	}

	return &step, nil
}
