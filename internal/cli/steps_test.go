package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestStepsListCmd(t *testing.T) {
	var stdout bytes.Buffer
	outputFn := func() *Output {
		return &Output{w: &stdout, errW: &bytes.Buffer{}}
	}

	cmd := NewStepsCmd(outputFn)
	cmd.SetArgs([]string{"list"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("steps list error = %v", err)
	}

	got := stdout.String()
	for _, step := range []string{
		"download",
		"basic_cleaning",
		"data_check",
		"data_split",
		"train_random_forest",
		"test_regression_model",
	} {
		if !strings.Contains(got, step) {
			t.Errorf("steps list missing %q:\n%s", step, got)
		}
	}

	// test_regression_model — explicit-only, в колонке IN_ALL должно быть "no".
	if !strings.Contains(got, "no") {
		t.Errorf("steps list must mark explicit-only steps:\n%s", got)
	}
}
