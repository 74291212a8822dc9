package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config — конфигурация pipeline.
//
// Структура повторяет config.yaml проекта: секция main описывает
// проект на tracking-платформе и выбор шагов, остальные секции —
// параметры соответствующих шагов.
type Config struct {
	Main      Main      `yaml:"main"`
	ETL       ETL       `yaml:"etl"`
	DataCheck DataCheck `yaml:"data_check"`
	Modeling  Modeling  `yaml:"modeling"`
}

// Main — общие настройки pipeline.
type Main struct {
	// ProjectName — имя проекта на tracking-платформе.
	// Все runs шагов логируются в этот проект.
	ProjectName string `yaml:"project_name"`

	// ExperimentName — имя группы экспериментов.
	ExperimentName string `yaml:"experiment_name"`

	// Steps — шаги для выполнения: "all" или список через запятую.
	Steps string `yaml:"steps"`

	// ComponentsRepository — адрес репозитория переиспользуемых
	// компонентов (remote-шаги резолвятся относительно него).
	ComponentsRepository string `yaml:"components_repository"`

	// TrackingURL — адрес tracking-платформы.
	// Переопределяется переменной окружения TRACKING_URL.
	TrackingURL string `yaml:"tracking_url"`
}

// ETL — параметры шагов download и basic_cleaning.
type ETL struct {
	// Sample — имя исходного файла выборки в components repository.
	Sample string `yaml:"sample"`

	// MinPrice — минимальная цена; строки дешевле отбрасываются как выбросы.
	MinPrice float64 `yaml:"min_price"`

	// MaxPrice — максимальная цена; строки дороже отбрасываются как выбросы.
	MaxPrice float64 `yaml:"max_price"`
}

// DataCheck — параметры шага data_check.
type DataCheck struct {
	// KLThreshold — порог KL-дивергенции между новой и эталонной выборкой.
	KLThreshold float64 `yaml:"kl_threshold"`
}

// Modeling — параметры шагов data_split, train_random_forest
// и test_regression_model.
type Modeling struct {
	// TestSize — доля данных, откладываемая в test-выборку.
	TestSize float64 `yaml:"test_size"`

	// ValSize — доля train-данных, откладываемая в validation-выборку.
	ValSize float64 `yaml:"val_size"`

	// RandomSeed — seed для воспроизводимости разбиения и обучения.
	RandomSeed int `yaml:"random_seed"`

	// StratifyBy — колонка для стратификации при разбиении.
	StratifyBy string `yaml:"stratify_by"`

	// MaxTFIDFFeatures — максимум TF-IDF признаков из текстовых колонок.
	MaxTFIDFFeatures int `yaml:"max_tfidf_features"`

	// RandomForest — конфигурация модели, передаваемая шагу обучения
	// сериализованной в JSON без изменений. Хранится как raw-блок,
	// чтобы набор ключей и значения дошли до шага ровно как в YAML.
	RandomForest map[string]any `yaml:"random_forest"`
}

// Load читает конфигурацию из файла и применяет overrides поверх неё.
//
// Каждый override имеет вид "path.to.field=value" (например,
// "etl.min_price=50"). Значения приводятся к bool, int, float
// или string. Override несуществующего пути — ошибка.
func Load(path string, overrides []string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, overrides)
}

// Parse разбирает YAML-конфигурацию из байтов и применяет overrides.
func Parse(data []byte, overrides []string) (*Config, error) {
	// Сначала — в generic map, чтобы применить overrides по dotted path.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}

	for _, expr := range overrides {
		if err := applyOverride(raw, expr); err != nil {
			return nil, err
		}
	}

	// Затем — в типизированную структуру.
	merged, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("remarshal config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// TRACKING_URL из окружения имеет приоритет над файлом.
	if v := os.Getenv("TRACKING_URL"); v != "" {
		cfg.Main.TrackingURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет, что обязательные поля заполнены.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		empty bool
	}{
		{"main.project_name", c.Main.ProjectName == ""},
		{"main.experiment_name", c.Main.ExperimentName == ""},
		{"main.steps", c.Main.Steps == ""},
		{"main.components_repository", c.Main.ComponentsRepository == ""},
		{"main.tracking_url", c.Main.TrackingURL == ""},
		{"etl.sample", c.ETL.Sample == ""},
	}

	for _, f := range required {
		if f.empty {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	if c.ETL.MinPrice > c.ETL.MaxPrice {
		return fmt.Errorf("etl: min_price %v is greater than max_price %v",
			c.ETL.MinPrice, c.ETL.MaxPrice)
	}

	return nil
}
