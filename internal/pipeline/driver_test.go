package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/mlpipe/internal/domain"
	"github.com/shaiso/mlpipe/internal/registry"
	"github.com/shaiso/mlpipe/internal/tracking"
)

// fakeTracker — Dispatcher, завершающий runs по заранее заданным статусам.
type fakeTracker struct {
	mu        sync.Mutex
	submitted []*tracking.SubmitRequest
	idToJob   map[string]string

	// failSteps — имена шагов, чьи runs завершаются FAILED.
	failSteps map[string]bool

	// onSubmit — вызывается на каждый submit (для проверок внутри шага).
	onSubmit func(req *tracking.SubmitRequest)
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{idToJob: make(map[string]string)}
}

func (f *fakeTracker) SubmitRun(_ context.Context, req *tracking.SubmitRequest) (*tracking.RunInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.onSubmit != nil {
		f.onSubmit(req)
	}

	id := fmt.Sprintf("run-%d", len(f.submitted)+1)
	f.submitted = append(f.submitted, req)
	f.idToJob[id] = req.JobType

	return &tracking.RunInfo{ID: id, Status: domain.RunStatusRunning}, nil
}

func (f *fakeTracker) WaitRun(_ context.Context, runID string) (*tracking.RunInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	job := f.idToJob[runID]
	if f.failSteps[job] {
		return &tracking.RunInfo{ID: runID, Status: domain.RunStatusFailed, Error: "step exited with code 1"}, nil
	}
	return &tracking.RunInfo{ID: runID, Status: domain.RunStatusSucceeded}, nil
}

func (f *fakeTracker) submittedSteps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	steps := make([]string, len(f.submitted))
	for i, req := range f.submitted {
		steps[i] = req.JobType
	}
	return steps
}

// fakeRecorder — Recorder, считающий вызовы.
type fakeRecorder struct {
	mu              sync.Mutex
	pipelineCreates int
	pipelineUpdates int
	stepCreates     int
	stepUpdates     int
}

func (f *fakeRecorder) RecordPipeline(context.Context, *domain.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pipelineCreates++
	return nil
}

func (f *fakeRecorder) UpdatePipeline(context.Context, *domain.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pipelineUpdates++
	return nil
}

func (f *fakeRecorder) RecordStep(context.Context, *domain.StepRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stepCreates++
	return nil
}

func (f *fakeRecorder) UpdateStep(context.Context, *domain.StepRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stepUpdates++
	return nil
}

// fakeNotifier — Notifier, запоминающий опубликованные события.
type fakeNotifier struct {
	mu       sync.Mutex
	started  int
	steps    []string
	finished []domain.RunStatus
}

func (f *fakeNotifier) PipelineStarted(context.Context, *domain.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return nil
}

func (f *fakeNotifier) StepFinished(_ context.Context, step *domain.StepRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, step.Step)
	return nil
}

func (f *fakeNotifier) PipelineFinished(_ context.Context, run *domain.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, run.Status)
	return nil
}

// writeComponent создаёт локальный компонент с манифестом,
// объявляющим перечисленные параметры обязательными.
func writeComponent(t *testing.T, projectDir, name string, params ...string) {
	t.Helper()

	dir := filepath.Join(projectDir, "src", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\nentry_points:\n  main:\n    parameters:\n", name)
	for _, p := range params {
		fmt.Fprintf(&b, "      %s:\n        type: str\n", p)
	}
	b.WriteString("    command: python run.py\n")

	if err := os.WriteFile(filepath.Join(dir, "component.yaml"), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeAllComponents создаёт манифесты всех локальных шагов каталога.
func writeAllComponents(t *testing.T, projectDir string) {
	t.Helper()

	writeComponent(t, projectDir, StepCleaning,
		"input_artifact", "output_artifact", "output_type", "output_description", "min_price", "max_price")
	writeComponent(t, projectDir, StepDataCheck,
		"csv", "ref", "kl_threshold", "min_price", "max_price")
	writeComponent(t, projectDir, StepTrain,
		"trainval_artifact", "val_size", "random_seed", "stratify_by", "rf_config", "max_tfidf_features", "output_artifact")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDriver(t *testing.T, tracker Dispatcher, journal Recorder, events Notifier) *Driver {
	t.Helper()

	projectDir := t.TempDir()
	writeAllComponents(t, projectDir)

	cfg := testConfig()
	return NewDriver(DriverConfig{
		Cfg:      cfg,
		Tracker:  tracker,
		Resolver: registry.NewResolver(cfg.Main.ComponentsRepository, projectDir),
		Journal:  journal,
		Events:   events,
		Logger:   testLogger(),
	})
}

func TestDriverRunAll(t *testing.T) {
	tracker := newFakeTracker()
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	driver := newTestDriver(t, tracker, recorder, notifier)

	run, err := driver.Run(context.Background(), "all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if run.Status != domain.RunStatusSucceeded {
		t.Errorf("status = %s, want SUCCEEDED", run.Status)
	}

	wantSteps := []string{StepDownload, StepCleaning, StepDataCheck, StepDataSplit, StepTrain}
	if diff := cmp.Diff(wantSteps, tracker.submittedSteps()); diff != "" {
		t.Errorf("submitted steps mismatch (-want +got):\n%s", diff)
	}

	// Каждый submit несёт project и group из конфигурации.
	for _, req := range tracker.submitted {
		if req.Project != "nyc_airbnb" || req.Group != "development" {
			t.Errorf("submit %s: project=%q group=%q", req.JobType, req.Project, req.Group)
		}
		if req.EntryPoint != "main" {
			t.Errorf("submit %s: entry_point=%q", req.JobType, req.EntryPoint)
		}
	}

	if recorder.pipelineCreates != 1 {
		t.Errorf("pipeline creates = %d, want 1", recorder.pipelineCreates)
	}
	if recorder.stepCreates != len(wantSteps) {
		t.Errorf("step creates = %d, want %d", recorder.stepCreates, len(wantSteps))
	}
	if notifier.started != 1 {
		t.Errorf("PipelineStarted events = %d, want 1", notifier.started)
	}
	if diff := cmp.Diff(wantSteps, notifier.steps); diff != "" {
		t.Errorf("StepFinished events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.RunStatus{domain.RunStatusSucceeded}, notifier.finished); diff != "" {
		t.Errorf("PipelineFinished events mismatch (-want +got):\n%s", diff)
	}
}

func TestDriverRunRendersParams(t *testing.T) {
	tracker := newFakeTracker()
	driver := newTestDriver(t, tracker, nil, nil)

	if _, err := driver.Run(context.Background(), "download"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(tracker.submitted) != 1 {
		t.Fatalf("submits = %d, want 1", len(tracker.submitted))
	}

	req := tracker.submitted[0]
	if req.Parameters["sample"] != "sample1.csv" {
		t.Errorf("sample = %q", req.Parameters["sample"])
	}
	if !strings.Contains(req.Source, "#components/get_data") {
		t.Errorf("source = %q, want components repository url", req.Source)
	}
}

func TestDriverRunFailFast(t *testing.T) {
	tracker := newFakeTracker()
	tracker.failSteps = map[string]bool{StepCleaning: true}
	notifier := &fakeNotifier{}
	driver := newTestDriver(t, tracker, nil, notifier)

	run, err := driver.Run(context.Background(), "all")
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("Run() error = %v, want ErrStepFailed", err)
	}

	if run.Status != domain.RunStatusFailed {
		t.Errorf("status = %s, want FAILED", run.Status)
	}
	if run.Error == "" {
		t.Error("run error must be recorded")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepCleaning {
		t.Errorf("error = %v, want StepError for %s", err, StepCleaning)
	}

	// Шаги после упавшего не отправляются.
	want := []string{StepDownload, StepCleaning}
	if diff := cmp.Diff(want, tracker.submittedSteps()); diff != "" {
		t.Errorf("submitted steps mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]domain.RunStatus{domain.RunStatusFailed}, notifier.finished); diff != "" {
		t.Errorf("PipelineFinished events mismatch (-want +got):\n%s", diff)
	}
}

// cancellingTracker отменяет контекст во время ожидания первого run.
type cancellingTracker struct {
	*fakeTracker
	cancel context.CancelFunc
}

func (c *cancellingTracker) WaitRun(ctx context.Context, runID string) (*tracking.RunInfo, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestDriverRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := &cancellingTracker{fakeTracker: newFakeTracker(), cancel: cancel}
	driver := newTestDriver(t, tracker, nil, nil)

	run, err := driver.Run(ctx, "download,data_split")
	if err == nil {
		t.Fatal("Run() expected error after cancellation")
	}

	if run.Status != domain.RunStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", run.Status)
	}
	if len(tracker.submittedSteps()) != 1 {
		t.Errorf("submits = %d, want 1", len(tracker.submitted))
	}
}

func TestDriverRunWritesRFConfig(t *testing.T) {
	tracker := newFakeTracker()

	var rfPath, rfContent string
	tracker.onSubmit = func(req *tracking.SubmitRequest) {
		if req.JobType != StepTrain {
			return
		}
		rfPath = req.Parameters["rf_config"]
		if data, err := os.ReadFile(rfPath); err == nil {
			rfContent = string(data)
		}
	}

	driver := newTestDriver(t, tracker, nil, nil)

	if _, err := driver.Run(context.Background(), StepTrain); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if filepath.Base(rfPath) != "rf_config.json" {
		t.Fatalf("rf_config param = %q, want path to rf_config.json", rfPath)
	}
	if !strings.Contains(rfContent, `"n_estimators":200`) {
		t.Errorf("rf_config.json content = %q", rfContent)
	}

	// Scratch-директория удаляется после завершения pipeline.
	if _, err := os.Stat(rfPath); !os.IsNotExist(err) {
		t.Errorf("rf_config.json must be cleaned up, stat err = %v", err)
	}
}

func TestDriverRunDefaultsToConfigSelection(t *testing.T) {
	tracker := newFakeTracker()
	driver := newTestDriver(t, tracker, nil, nil)
	driver.cfg.Main.Steps = "download"

	if _, err := driver.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{StepDownload}, tracker.submittedSteps()); diff != "" {
		t.Errorf("submitted steps mismatch (-want +got):\n%s", diff)
	}
}

func TestDriverRunUnknownSelection(t *testing.T) {
	tracker := newFakeTracker()
	driver := newTestDriver(t, tracker, nil, nil)

	if _, err := driver.Run(context.Background(), "no_such_step"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("Run() error = %v, want ErrUnknownStep", err)
	}
	if len(tracker.submitted) != 0 {
		t.Errorf("submits = %d, want 0", len(tracker.submitted))
	}
}

func TestDriverRunRejectsUndeclaredParams(t *testing.T) {
	tracker := newFakeTracker()

	projectDir := t.TempDir()
	// Манифест объявляет меньше параметров, чем передаёт каталог.
	writeComponent(t, projectDir, StepCleaning, "input_artifact", "output_artifact")

	cfg := testConfig()
	driver := NewDriver(DriverConfig{
		Cfg:      cfg,
		Tracker:  tracker,
		Resolver: registry.NewResolver(cfg.Main.ComponentsRepository, projectDir),
		Logger:   testLogger(),
	})

	run, err := driver.Run(context.Background(), StepCleaning)
	if !errors.Is(err, registry.ErrUnknownParam) {
		t.Fatalf("Run() error = %v, want ErrUnknownParam", err)
	}
	if run.Status != domain.RunStatusFailed {
		t.Errorf("status = %s, want FAILED", run.Status)
	}
	if len(tracker.submitted) != 0 {
		t.Error("invalid step must not be submitted")
	}
}
