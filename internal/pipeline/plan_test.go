package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func planNames(t *testing.T, selection string) []string {
	t.Helper()

	plan, err := Plan(selection)
	if err != nil {
		t.Fatalf("Plan(%q) error = %v", selection, err)
	}

	names := make([]string, len(plan))
	for i, def := range plan {
		names[i] = def.Name
	}
	return names
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		want      []string
	}{
		{
			name:      "all excludes explicit-only steps",
			selection: "all",
			want:      []string{StepDownload, StepCleaning, StepDataCheck, StepDataSplit, StepTrain},
		},
		{
			name:      "explicit-only step runs when named",
			selection: StepTestModel,
			want:      []string{StepTestModel},
		},
		{
			name:      "selection is reordered canonically",
			selection: "train_random_forest,download",
			want:      []string{StepDownload, StepTrain},
		},
		{
			name:      "duplicates collapse",
			selection: "download,download,download",
			want:      []string{StepDownload},
		},
		{
			name:      "whitespace around names is ignored",
			selection: " download , basic_cleaning ",
			want:      []string{StepDownload, StepCleaning},
		},
		{
			name:      "all with surrounding whitespace",
			selection: "  all  ",
			want:      []string{StepDownload, StepCleaning, StepDataCheck, StepDataSplit, StepTrain},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planNames(t, tt.selection)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Plan(%q) mismatch (-want +got):\n%s", tt.selection, diff)
			}
		})
	}
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		wantErr   error
	}{
		{"unknown step", "download,no_such_step", ErrUnknownStep},
		{"empty selection", "", ErrNoSteps},
		{"only separators", " , , ", ErrNoSteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.selection)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Plan(%q) error = %v, want %v", tt.selection, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultStepNames(t *testing.T) {
	for _, name := range DefaultStepNames() {
		if name == StepTestModel {
			t.Errorf("%s is explicit-only and must not be in the default selection", StepTestModel)
		}
	}
}

func TestCatalogDependenciesExist(t *testing.T) {
	for _, def := range Catalog() {
		for _, dep := range def.DependsOn {
			if _, ok := FindStep(dep); !ok {
				t.Errorf("step %s depends on unknown step %s", def.Name, dep)
			}
		}
	}
}

func TestFindStep(t *testing.T) {
	def, ok := FindStep(StepTrain)
	if !ok {
		t.Fatalf("FindStep(%s) not found", StepTrain)
	}
	if def.EntryPoint != "main" {
		t.Errorf("entry point = %q, want main", def.EntryPoint)
	}

	if _, ok := FindStep("bogus"); ok {
		t.Error("FindStep(bogus) must report not found")
	}
}
