// Package catalog holds the industry records that parametrize site
// generation. A Catalog is built once at startup and is read-only afterwards,
// so it is safe for concurrent use without locking.
package catalog

import (
	"fmt"

	"sitesmith/internal/domain"
	"sitesmith/internal/lookup"
)

// FallbackID is the id of the record returned for unknown industries.
const FallbackID = "general"

// Partition is one hand-authored list of industries sharing a category.
type Partition struct {
	Category   string
	Industries []domain.Industry
}

type Catalog struct {
	table   *lookup.Total[string, domain.Industry]
	ordered []domain.Industry
}

// New concatenates partitions in order. It rejects duplicate ids, records
// whose category does not match their partition, and records that fail the
// shape check, including the fallback.
func New(fallback domain.Industry, partitions ...Partition) (*Catalog, error) {
	if fallback.ID != FallbackID {
		return nil, fmt.Errorf("fallback industry must have id %q, got %q", FallbackID, fallback.ID)
	}
	fallback.Images.Normalize()
	if err := fallback.Validate(); err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}

	seen := make(map[string]string)
	var all []domain.Industry
	for _, p := range partitions {
		for _, ind := range p.Industries {
			if ind.Category != p.Category {
				return nil, fmt.Errorf("partition %s: industry %q has category %q", p.Category, ind.ID, ind.Category)
			}
			if prev, dup := seen[ind.ID]; dup {
				return nil, fmt.Errorf("duplicate industry id %q in partitions %s and %s", ind.ID, prev, p.Category)
			}
			ind.Images.Normalize()
			if err := ind.Validate(); err != nil {
				return nil, fmt.Errorf("partition %s: %w", p.Category, err)
			}
			seen[ind.ID] = p.Category
			all = append(all, ind)
		}
	}

	return &Catalog{
		table:   lookup.NewTotal(all, func(i domain.Industry) string { return i.ID }, fallback),
		ordered: all,
	}, nil
}

// GetByID returns the industry with exactly this id, or the fallback record.
// It never fails.
func (c *Catalog) GetByID(id string) domain.Industry {
	ind, _ := c.Resolve(id)
	return ind
}

// Resolve is GetByID that also reports whether id named a record. Asking
// for FallbackID by name counts as a match.
func (c *Catalog) Resolve(id string) (domain.Industry, bool) {
	ind, ok := c.table.Get(id)
	return ind.Clone(), ok || id == FallbackID
}

// ListByCategory returns records whose category equals category, in catalog
// order. An empty result is normal.
func (c *Catalog) ListByCategory(category string) []domain.Industry {
	out := []domain.Industry{}
	for _, ind := range c.ordered {
		if ind.Category == category {
			out = append(out, ind.Clone())
		}
	}
	return out
}

func (c *Catalog) ListAllIDs() []string {
	return c.table.Keys()
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, ind := range c.ordered {
		if !seen[ind.Category] {
			seen[ind.Category] = true
			out = append(out, ind.Category)
		}
	}
	return out
}

func (c *Catalog) Fallback() domain.Industry { return c.table.Fallback().Clone() }

func (c *Catalog) Len() int { return len(c.ordered) }
