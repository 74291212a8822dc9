package domain

import (
	"time"

	"github.com/google/uuid"
)

// StepRun — выполнение одного шага pipeline как run на tracking-платформе.
type StepRun struct {
	// ID — уникальный идентификатор step run.
	ID uuid.UUID `json:"id"`

	// PipelineRunID — ссылка на родительский PipelineRun.
	PipelineRunID uuid.UUID `json:"pipeline_run_id"`

	// Step — имя шага из каталога (например, "basic_cleaning").
	Step string `json:"step"`

	// Source — источник компонента, переданный платформе
	// (URL в components repository или локальный путь).
	Source string `json:"source"`

	// RemoteRunID — идентификатор run, присвоенный платформой.
	// Пустой, если submit не удался.
	RemoteRunID string `json:"remote_run_id,omitempty"`

	// Params — словарь параметров, переданный в entry point шага.
	Params map[string]string `json:"params,omitempty"`

	// Status — статус выполнения.
	Status RunStatus `json:"status"`

	// StartedAt — время отправки run платформе.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время достижения терминального статуса.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если шаг упал.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewStepRun создаёт StepRun в статусе PENDING.
func NewStepRun(pipelineRunID uuid.UUID, step, source string, params map[string]string) *StepRun {
	return &StepRun{
		ID:            uuid.New(),
		PipelineRunID: pipelineRunID,
		Step:          step,
		Source:        source,
		Params:        params,
		Status:        RunStatusPending,
		CreatedAt:     time.Now(),
	}
}

// Duration возвращает продолжительность выполнения шага.
func (s *StepRun) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// MarkSubmitted фиксирует успешную отправку run платформе.
func (s *StepRun) MarkSubmitted(remoteRunID string) {
	now := time.Now()
	s.RemoteRunID = remoteRunID
	s.Status = RunStatusRunning
	s.StartedAt = &now
}

// MarkFinished фиксирует терминальный статус, полученный от платформы.
func (s *StepRun) MarkFinished(status RunStatus, errMsg string) {
	now := time.Now()
	s.Status = status
	s.FinishedAt = &now
	s.Error = errMsg
}
