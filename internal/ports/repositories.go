package ports

import (
	"context"
	"time"

	"sitesmith/internal/domain"
)

// ProfileStore is the durable cache of forensic profiles keyed by king URL.
// Implementations keep at most one row per URL; Upsert replaces it wholesale.
type ProfileStore interface {
	// FindFresh returns the active profile for url extracted no earlier than
	// maxAge before now.
	FindFresh(ctx context.Context, url string, maxAge time.Duration) (domain.Profile, bool, error)
	// FindByURL returns the active profile for url regardless of age.
	FindByURL(ctx context.Context, url string) (domain.Profile, bool, error)
	// FindByNameLike matches king_name case-insensitively by substring,
	// preferring the most recent extraction.
	FindByNameLike(ctx context.Context, substr string) (domain.Profile, bool, error)
	// ListActive returns summaries, most recently extracted first.
	ListActive(ctx context.Context) ([]domain.ProfileSummary, error)
	// Upsert writes p keyed by KingURL, stamping ExtractedAt/UpdatedAt with
	// the write time and marking it active.
	Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error)
	// Deactivate soft-deletes the row for url. Reports whether a row changed.
	Deactivate(ctx context.Context, url string) (bool, error)

	StaleLister
}
