// Package memory is an in-process ProfileStore for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sitesmith/internal/domain"
)

type ProfileStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Profile
	now  func() time.Time
}

type Option func(*ProfileStore)

// WithClock overrides the time source used for stamping and freshness.
func WithClock(now func() time.Time) Option {
	return func(s *ProfileStore) { s.now = now }
}

func NewProfileStore(opts ...Option) *ProfileStore {
	s := &ProfileStore{rows: map[string]domain.Profile{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ProfileStore) FindFresh(ctx context.Context, url string, maxAge time.Duration) (domain.Profile, bool, error) {
	cutoff := s.now().Add(-maxAge)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[url]
	if !ok || !p.IsActive || p.ExtractedAt.Before(cutoff) {
		return domain.Profile{}, false, nil
	}
	return clone(p), true, nil
}

func (s *ProfileStore) FindByURL(ctx context.Context, url string) (domain.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[url]
	if !ok || !p.IsActive {
		return domain.Profile{}, false, nil
	}
	return clone(p), true, nil
}

func (s *ProfileStore) FindByNameLike(ctx context.Context, substr string) (domain.Profile, bool, error) {
	needle := strings.ToLower(substr)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best domain.Profile
	found := false
	for _, p := range s.active() {
		if !strings.Contains(strings.ToLower(p.KingName), needle) {
			continue
		}
		if !found || p.ExtractedAt.After(best.ExtractedAt) {
			best, found = p, true
		}
	}
	if !found {
		return domain.Profile{}, false, nil
	}
	return clone(best), true, nil
}

func (s *ProfileStore) ListActive(ctx context.Context) ([]domain.ProfileSummary, error) {
	s.mu.RLock()
	rows := s.active()
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ExtractedAt.Equal(rows[j].ExtractedAt) {
			return rows[i].KingURL < rows[j].KingURL
		}
		return rows[i].ExtractedAt.After(rows[j].ExtractedAt)
	})
	out := make([]domain.ProfileSummary, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	now := s.now()
	p.ExtractedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	p = clone(p)
	s.mu.Lock()
	s.rows[p.KingURL] = p
	s.mu.Unlock()
	return clone(p), nil
}

func (s *ProfileStore) Deactivate(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[url]
	if !ok || !p.IsActive {
		return false, nil
	}
	p.IsActive = false
	p.UpdatedAt = s.now()
	s.rows[url] = p
	return true, nil
}

func (s *ProfileStore) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Profile, error) {
	cutoff := s.now().Add(-olderThan)
	s.mu.RLock()
	var out []domain.Profile
	for _, p := range s.active() {
		if p.ExtractedAt.Before(cutoff) {
			out = append(out, clone(p))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ExtractedAt.Before(out[j].ExtractedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len counts rows, active or not.
func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// active must be called with the lock held.
func (s *ProfileStore) active() []domain.Profile {
	out := make([]domain.Profile, 0, len(s.rows))
	for _, p := range s.rows {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func clone(p domain.Profile) domain.Profile {
	if p.ProfileData != nil {
		p.ProfileData = append([]byte(nil), p.ProfileData...)
	}
	return p
}
