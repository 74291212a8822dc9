package domain

import "testing"

func TestRunStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   bool
	}{
		{RunStatusPending, false},
		{RunStatusRunning, false},
		{RunStatusSucceeded, true},
		{RunStatusFailed, true},
		{RunStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunStatusIsValid(t *testing.T) {
	for _, s := range []RunStatus{RunStatusPending, RunStatusRunning, RunStatusSucceeded, RunStatusFailed, RunStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("IsValid() = false for %q", s)
		}
	}

	for _, s := range []RunStatus{"", "DONE", "succeeded"} {
		if s.IsValid() {
			t.Errorf("IsValid() = true for %q", s)
		}
	}
}

func TestPipelineRunLifecycle(t *testing.T) {
	run := NewPipelineRun("nyc_airbnb", "development", []string{"download", "basic_cleaning"})

	if run.Status != RunStatusPending {
		t.Fatalf("new run status = %s, want PENDING", run.Status)
	}
	if run.IsFinished() {
		t.Fatal("new run must not be finished")
	}
	if run.Duration() != 0 {
		t.Errorf("unfinished run duration = %v, want 0", run.Duration())
	}

	run.MarkRunning()
	if run.Status != RunStatusRunning || run.StartedAt == nil {
		t.Fatalf("after MarkRunning: status=%s started_at=%v", run.Status, run.StartedAt)
	}

	run.MarkSucceeded()
	if run.Status != RunStatusSucceeded || run.FinishedAt == nil {
		t.Fatalf("after MarkSucceeded: status=%s finished_at=%v", run.Status, run.FinishedAt)
	}
	if !run.IsFinished() {
		t.Error("succeeded run must be finished")
	}
	if run.Duration() < 0 {
		t.Errorf("duration = %v, want >= 0", run.Duration())
	}
}

func TestPipelineRunMarkFailed(t *testing.T) {
	run := NewPipelineRun("nyc_airbnb", "development", []string{"download"})
	run.MarkRunning()
	run.MarkFailed("step download: remote run failed")

	if run.Status != RunStatusFailed {
		t.Errorf("status = %s, want FAILED", run.Status)
	}
	if run.Error == "" {
		t.Error("error must be recorded")
	}
	if run.FinishedAt == nil {
		t.Error("finished_at must be set")
	}
}

func TestStepRunLifecycle(t *testing.T) {
	parent := NewPipelineRun("nyc_airbnb", "development", []string{"download"})
	step := NewStepRun(parent.ID, "download", "https://example.com/components/get_data", map[string]string{"sample": "sample1.csv"})

	if step.Status != RunStatusPending {
		t.Fatalf("new step status = %s, want PENDING", step.Status)
	}
	if step.PipelineRunID != parent.ID {
		t.Error("step must reference parent pipeline run")
	}

	step.MarkSubmitted("run-42")
	if step.Status != RunStatusRunning || step.RemoteRunID != "run-42" || step.StartedAt == nil {
		t.Fatalf("after MarkSubmitted: status=%s remote=%q", step.Status, step.RemoteRunID)
	}

	step.MarkFinished(RunStatusSucceeded, "")
	if step.Status != RunStatusSucceeded || step.FinishedAt == nil {
		t.Fatalf("after MarkFinished: status=%s", step.Status)
	}
}
