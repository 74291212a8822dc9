package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceKind — вид источника компонента.
type SourceKind string

const (
	// SourceRemote — компонент из components repository.
	SourceRemote SourceKind = "remote"

	// SourceLocal — компонент из локальной директории проекта.
	SourceLocal SourceKind = "local"
)

// Source — источник компонента шага.
type Source struct {
	// Kind — remote или local.
	Kind SourceKind

	// Name — имя компонента: поддиректория в components repository
	// (remote) или в src/ проекта (local).
	Name string
}

// Remote создаёт remote-источник.
func Remote(name string) Source {
	return Source{Kind: SourceRemote, Name: name}
}

// Local создаёт local-источник.
func Local(name string) Source {
	return Source{Kind: SourceLocal, Name: name}
}

// Resolver превращает Source в ссылку, понятную tracking-платформе.
type Resolver struct {
	// componentsRepo — адрес components repository.
	// Может содержать фрагмент-поддиректорию: "https://host/repo#components".
	componentsRepo string

	// projectDir — корень проекта; локальные компоненты лежат в src/.
	projectDir string
}

// NewResolver создаёт Resolver.
func NewResolver(componentsRepo, projectDir string) *Resolver {
	return &Resolver{
		componentsRepo: strings.TrimRight(componentsRepo, "/"),
		projectDir:     projectDir,
	}
}

// Resolve возвращает ссылку на компонент.
//
// Remote: адрес components repository с добавленным именем компонента.
// Фрагмент "#subdir" расширяется до "#subdir/name", чтобы платформа
// нашла компонент внутри репозитория.
//
// Local: абсолютный путь к директории src/<name>; директория обязана
// существовать.
func (r *Resolver) Resolve(src Source) (string, error) {
	switch src.Kind {
	case SourceRemote:
		return r.resolveRemote(src.Name), nil
	case SourceLocal:
		return r.resolveLocal(src.Name)
	default:
		return "", fmt.Errorf("unknown source kind: %q", src.Kind)
	}
}

func (r *Resolver) resolveRemote(name string) string {
	if base, frag, found := strings.Cut(r.componentsRepo, "#"); found {
		return base + "#" + strings.TrimRight(frag, "/") + "/" + name
	}
	return r.componentsRepo + "/" + name
}

func (r *Resolver) resolveLocal(name string) (string, error) {
	dir := filepath.Join(r.projectDir, "src", name)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve component path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrComponentNotFound, abs)
	}

	return abs, nil
}
