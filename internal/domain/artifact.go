package domain

import "strings"

// Алиасы версий артефактов на tracking-платформе.
const (
	// ArtifactAliasLatest — последняя залогированная версия артефакта.
	ArtifactAliasLatest = "latest"

	// ArtifactAliasReference — версия, закреплённая как эталон
	// (используется шагом data_check для сравнения распределений).
	ArtifactAliasReference = "reference"

	// ArtifactAliasProd — версия, продвинутая в production
	// (модель должна иметь этот алиас до запуска test_regression_model).
	ArtifactAliasProd = "prod"
)

// ArtifactRef — ссылка на именованный версионированный артефакт
// на tracking-платформе: "name:alias" (например, "sample.csv:latest").
//
// Артефакты производятся и потребляются шагами; сам драйвер
// их содержимое никогда не читает.
type ArtifactRef struct {
	// Name — имя артефакта (например, "clean_sample.csv").
	Name string

	// Alias — алиас версии: "latest", "reference", "prod" или номер версии.
	Alias string
}

// String возвращает каноническую форму "name:alias".
// Если Alias пустой, возвращается только имя.
func (a ArtifactRef) String() string {
	if a.Alias == "" {
		return a.Name
	}
	return a.Name + ":" + a.Alias
}

// ParseArtifactRef разбирает строку "name:alias" в ArtifactRef.
// Строка без двоеточия трактуется как имя без алиаса.
func ParseArtifactRef(s string) ArtifactRef {
	name, alias, found := strings.Cut(s, ":")
	if !found {
		return ArtifactRef{Name: s}
	}
	return ArtifactRef{Name: name, Alias: alias}
}
