package refresher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
)

type staticStale struct {
	mu      sync.Mutex
	batches [][]domain.Profile
	gotAge  time.Duration
	gotLim  int
}

func (s *staticStale) ListStale(_ context.Context, olderThan time.Duration, limit int) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotAge, s.gotLim = olderThan, limit
	if len(s.batches) == 0 {
		return nil, nil
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	return next, nil
}

type recordingForensics struct {
	mu   sync.Mutex
	reqs []domain.ExtractRequest
	err  error
}

func (r *recordingForensics) Extract(_ context.Context, req domain.ExtractRequest) (domain.ExtractResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return domain.ExtractResult{Completeness: 90}, r.err
}

func (r *recordingForensics) Lookup(context.Context, domain.LookupRequest) (domain.LookupResult, error) {
	return domain.LookupResult{}, nil
}

func (r *recordingForensics) urls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.reqs))
	for _, req := range r.reqs {
		out = append(out, req.URL)
	}
	sort.Strings(out)
	return out
}

func TestRun_RefreshesStaleProfiles(t *testing.T) {
	stale := &staticStale{batches: [][]domain.Profile{
		{{KingURL: "https://a.example", KingName: "A", Industry: "bakery"}, {KingURL: "https://b.example", KingName: "B"}},
		{{KingURL: "https://c.example", KingName: "C"}},
	}}
	fx := &recordingForensics{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, stale, fx, Config{Workers: 2, Interval: 10 * time.Millisecond, MaxAge: time.Hour}, logger.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return len(fx.urls()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, fx.urls())
	for _, req := range fx.reqs {
		assert.True(t, req.ForceRefresh)
		if req.URL == "https://a.example" {
			assert.Equal(t, "bakery", req.Industry)
			assert.Equal(t, "A", req.Name)
		}
	}
	assert.Equal(t, time.Hour, stale.gotAge)
	assert.Equal(t, defaultBatch, stale.gotLim)
}

func TestRun_DisabledWithoutWorkers(t *testing.T) {
	stale := &staticStale{batches: [][]domain.Profile{{{KingURL: "https://a.example"}}}}
	fx := &recordingForensics{}
	Run(context.Background(), stale, fx, Config{Workers: 0, Interval: time.Millisecond}, logger.NewNop())
	assert.Empty(t, fx.urls())
}

func TestRefresh_FailureIsLoggedOnly(t *testing.T) {
	fx := &recordingForensics{err: errors.New("site unreachable")}
	assert.NotPanics(t, func() {
		Refresh(context.Background(), fx, domain.Profile{KingURL: "https://a.example", KingName: "A"}, logger.NewNop())
	})
	assert.Equal(t, []string{"https://a.example"}, fx.urls())
}
