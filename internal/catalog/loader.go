package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"sitesmith/internal/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// Categories of the built-in partitions, in catalog order. Each has a
// data/<category>.yaml file.
var PartitionCategories = []string{
	"professional",
	"home-services",
	"health-wellness",
	"food-hospitality",
	"retail-lifestyle",
}

const fallbackFile = "fallback.yaml"

// LoadEmbedded builds the catalog from the data files compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub, PartitionCategories)
}

// Load builds a catalog from <category>.yaml files plus fallback.yaml in fsys.
func Load(fsys fs.FS, categories []string) (*Catalog, error) {
	var fallback domain.Industry
	if err := decodeFile(fsys, fallbackFile, &fallback); err != nil {
		return nil, err
	}

	parts := make([]Partition, 0, len(categories))
	for _, cat := range categories {
		var inds []domain.Industry
		if err := decodeFile(fsys, cat+".yaml", &inds); err != nil {
			return nil, err
		}
		parts = append(parts, Partition{Category: cat, Industries: inds})
	}
	return New(fallback, parts...)
}

func decodeFile(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, path.Clean(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
