package ports

import (
	"context"

	"sitesmith/internal/domain"
	"sitesmith/internal/templates"
)

// Extractor is the external design-DNA extraction capability. It returns a
// configuration_error domain error when it lacks credentials; any other
// error is treated as an extraction failure.
type Extractor interface {
	Extract(ctx context.Context, req domain.ExtractRequest) (domain.Extraction, error)
}

// Forensics runs extraction requests and profile lookups.
type Forensics interface {
	Extract(ctx context.Context, req domain.ExtractRequest) (domain.ExtractResult, error)
	Lookup(ctx context.Context, req domain.LookupRequest) (domain.LookupResult, error)
}

// Industries is the read-only industry catalog.
type Industries interface {
	GetByID(id string) domain.Industry
	Resolve(id string) (domain.Industry, bool)
	ListByCategory(category string) []domain.Industry
	ListAllIDs() []string
	Categories() []string
}

// Templates serves static layouts by key.
type Templates interface {
	Get(key string) (templates.Template, error)
	Keys() []string
}
