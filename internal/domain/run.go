package domain

import (
	"time"

	"github.com/google/uuid"
)

// PipelineRun — одно выполнение pipeline целиком.
//
// PipelineRun создаётся когда:
// - Пользователь запускает pipeline через CLI
// - Scheduler запускает pipeline по расписанию
//
// Каждый PipelineRun состоит из последовательности StepRun —
// по одному на каждый выбранный шаг.
type PipelineRun struct {
	// ID — уникальный идентификатор выполнения.
	ID uuid.UUID `json:"id"`

	// Project — имя проекта на tracking-платформе.
	Project string `json:"project"`

	// Group — имя группы экспериментов (все runs шагов группируются под ним).
	Group string `json:"group"`

	// Steps — шаги, выбранные для выполнения, в каноническом порядке.
	Steps []string `json:"steps"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (успешного или с ошибкой).
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если выполнение завершилось с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewPipelineRun создаёт PipelineRun в статусе PENDING.
func NewPipelineRun(project, group string, steps []string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		Project:   project,
		Group:     group,
		Steps:     steps,
		Status:    RunStatusPending,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *PipelineRun) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *PipelineRun) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *PipelineRun) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *PipelineRun) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *PipelineRun) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}

// MarkCancelled переводит run в статус CANCELLED.
func (r *PipelineRun) MarkCancelled() {
	now := time.Now()
	r.Status = RunStatusCancelled
	r.FinishedAt = &now
}
