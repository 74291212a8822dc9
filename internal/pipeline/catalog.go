package pipeline

import (
	"github.com/shaiso/mlpipe/internal/domain"
	"github.com/shaiso/mlpipe/internal/registry"
)

// Имена шагов каталога.
const (
	StepDownload     = "download"
	StepCleaning     = "basic_cleaning"
	StepDataCheck    = "data_check"
	StepDataSplit    = "data_split"
	StepTrain        = "train_random_forest"
	StepTestModel    = "test_regression_model"
	defaultEntryMain = "main"
)

// SelectionAll — selection, раскрывающийся во все шаги кроме explicit-only.
const SelectionAll = "all"

// StepDef — определение шага в каталоге.
type StepDef struct {
	// Name — имя шага (используется в selection и журнале).
	Name string

	// Source — источник компонента (components repository или src/).
	Source registry.Source

	// EntryPoint — entry point компонента.
	EntryPoint string

	// DependsOn — шаги, чьи артефакты потребляет этот шаг.
	DependsOn []string

	// ExplicitOnly — шаг не входит в "all" и запускается только
	// по явному имени (test_regression_model требует модель с
	// алиасом prod, поэтому его нельзя запустить по ошибке).
	ExplicitOnly bool

	// Params — словарь параметров entry point. Значения — Go templates,
	// рендерящиеся против конфигурации (см. params.go).
	Params map[string]string
}

// artifact — краткая форма ссылки на артефакт для каталога.
func artifact(name, alias string) string {
	return domain.ArtifactRef{Name: name, Alias: alias}.String()
}

// catalog — фиксированный список шагов в каноническом порядке.
//
// Параметры каждого шага повторяют contract его компонента: имена
// входных и выходных артефактов — константы pipeline, значения из
// конфигурации подставляются шаблонами.
var catalog = []StepDef{
	{
		Name:       StepDownload,
		Source:     registry.Remote("get_data"),
		EntryPoint: defaultEntryMain,
		Params: map[string]string{
			"sample":               "{{ .Cfg.ETL.Sample }}",
			"artifact_name":        "sample.csv",
			"artifact_type":        "raw_data",
			"artifact_description": "Raw file as downloaded",
		},
	},
	{
		Name:       StepCleaning,
		Source:     registry.Local(StepCleaning),
		EntryPoint: defaultEntryMain,
		DependsOn:  []string{StepDownload},
		Params: map[string]string{
			"input_artifact":     artifact("sample.csv", domain.ArtifactAliasLatest),
			"output_artifact":    "clean_sample.csv",
			"output_type":        "clean_sample",
			"output_description": "Data with outliers and null values removed",
			"min_price":          "{{ num .Cfg.ETL.MinPrice }}",
			"max_price":          "{{ num .Cfg.ETL.MaxPrice }}",
		},
	},
	{
		Name:       StepDataCheck,
		Source:     registry.Local(StepDataCheck),
		EntryPoint: defaultEntryMain,
		DependsOn:  []string{StepCleaning},
		Params: map[string]string{
			"csv":          artifact("clean_sample.csv", domain.ArtifactAliasLatest),
			"ref":          artifact("clean_sample.csv", domain.ArtifactAliasReference),
			"kl_threshold": "{{ num .Cfg.DataCheck.KLThreshold }}",
			"min_price":    "{{ num .Cfg.ETL.MinPrice }}",
			"max_price":    "{{ num .Cfg.ETL.MaxPrice }}",
		},
	},
	{
		Name:       StepDataSplit,
		Source:     registry.Remote("train_val_test_split"),
		EntryPoint: defaultEntryMain,
		DependsOn:  []string{StepDataCheck},
		Params: map[string]string{
			"input":       artifact("clean_sample.csv", domain.ArtifactAliasLatest),
			"test_size":   "{{ num .Cfg.Modeling.TestSize }}",
			"random_seed": "{{ num .Cfg.Modeling.RandomSeed }}",
			"stratify_by": "{{ .Cfg.Modeling.StratifyBy }}",
		},
	},
	{
		Name:       StepTrain,
		Source:     registry.Local(StepTrain),
		EntryPoint: defaultEntryMain,
		DependsOn:  []string{StepDataSplit},
		Params: map[string]string{
			"trainval_artifact":  artifact("trainval_data.csv", domain.ArtifactAliasLatest),
			"val_size":           "{{ num .Cfg.Modeling.ValSize }}",
			"random_seed":        "{{ num .Cfg.Modeling.RandomSeed }}",
			"stratify_by":        "{{ .Cfg.Modeling.StratifyBy }}",
			"rf_config":          "{{ .RFConfig }}",
			"max_tfidf_features": "{{ num .Cfg.Modeling.MaxTFIDFFeatures }}",
			"output_artifact":    "random_forest_export",
		},
	},
	{
		Name:         StepTestModel,
		Source:       registry.Remote(StepTestModel),
		EntryPoint:   defaultEntryMain,
		DependsOn:    []string{StepTrain},
		ExplicitOnly: true,
		Params: map[string]string{
			"mlflow_model": artifact("random_forest_export", domain.ArtifactAliasProd),
			"test_dataset": artifact("test_data.csv", domain.ArtifactAliasLatest),
		},
	},
}

// Catalog возвращает копию каталога шагов в каноническом порядке.
func Catalog() []StepDef {
	out := make([]StepDef, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultStepNames возвращает имена шагов, входящих в "all".
func DefaultStepNames() []string {
	names := make([]string, 0, len(catalog))
	for _, def := range catalog {
		if !def.ExplicitOnly {
			names = append(names, def.Name)
		}
	}
	return names
}

// FindStep возвращает определение шага по имени.
func FindStep(name string) (StepDef, bool) {
	for _, def := range catalog {
		if def.Name == name {
			return def, true
		}
	}
	return StepDef{}, false
}
