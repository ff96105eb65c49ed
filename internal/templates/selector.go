// Package templates serves static hero-section layouts by key. Unlike the
// industry catalog there is no safe default layout, so unknown keys are
// reported as not found.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"sitesmith/internal/domain"
	"sitesmith/internal/lookup"
)

//go:embed hero/*.html
var heroFS embed.FS

// Template is an opaque presentational asset.
type Template struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

type Selector struct {
	table *lookup.Partial[string, Template]
}

// NewHeroSelector loads the built-in hero variants.
func NewHeroSelector() (*Selector, error) {
	sub, err := fs.Sub(heroFS, "hero")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every *.html file in fsys; the key is the file name without
// extension.
func Load(fsys fs.FS) (*Selector, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	tpls := make([]Template, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tpls = append(tpls, Template{Key: strings.TrimSuffix(path.Base(name), ".html"), Content: string(raw)})
	}
	return New(tpls...), nil
}

func New(tpls ...Template) *Selector {
	return &Selector{table: lookup.NewPartial(tpls, func(t Template) string { return t.Key })}
}

// Get returns the template for key or a not_found domain error.
func (s *Selector) Get(key string) (Template, error) {
	t, ok := s.table.Get(key)
	if !ok {
		return Template{}, domain.NotFound(fmt.Sprintf("template not found: %q", key))
	}
	return t, nil
}

// Keys returns the available keys, sorted.
func (s *Selector) Keys() []string {
	keys := s.table.Keys()
	sort.Strings(keys)
	return keys
}
