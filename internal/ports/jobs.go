package ports

import (
	"context"
	"time"

	"sitesmith/internal/domain"
)

// StaleLister supports the background refresher: it yields active profiles
// extracted more than olderThan ago, oldest first.
type StaleLister interface {
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Profile, error)
}
