// Package forensics orchestrates King profile extraction and lookup: serve a
// fresh stored profile when one exists, otherwise extract, score, persist.
package forensics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitesmith/internal/completeness"
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/metrics"
	"sitesmith/internal/ports"
)

const (
	DefaultFreshnessWindow = 30 * 24 * time.Hour
	DefaultWarnBelow       = 60
)

type Options struct {
	FreshnessWindow time.Duration
	// ExtractionTimeout bounds the external call; zero means the caller's
	// context is the only limit.
	ExtractionTimeout time.Duration
	WarnBelow         int
	Schema            completeness.Schema
}

type Service struct {
	store     ports.ProfileStore
	extractor ports.Extractor
	log       logger.Logger
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
	newID     func() string
}

func New(store ports.ProfileStore, extractor ports.Extractor, log logger.Logger, m *metrics.Metrics, opts Options) *Service {
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if opts.WarnBelow <= 0 {
		opts.WarnBelow = DefaultWarnBelow
	}
	if opts.Schema == nil {
		opts.Schema = completeness.DesignDNA
	}
	return &Service{
		store:     store,
		extractor: extractor,
		log:       log,
		metrics:   m,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Extract runs one extraction request.
func (s *Service) Extract(ctx context.Context, req domain.ExtractRequest) (domain.ExtractResult, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Name = strings.TrimSpace(req.Name)
	req.Industry = strings.TrimSpace(req.Industry)
	if req.URL == "" || req.Name == "" {
		s.metrics.Extraction(metrics.ResultInvalid)
		return domain.ExtractResult{}, domain.InvalidRequest("url and name are required")
	}
	if req.Industry == "" {
		req.Industry = domain.DefaultIndustryTag
	}
	log := s.log.With(logger.String("king_url", req.URL))

	if !req.ForceRefresh {
		cached, ok, err := s.store.FindFresh(ctx, req.URL, s.opts.FreshnessWindow)
		switch {
		case err != nil:
			log.Warn("profile cache check failed, extracting", logger.Error(err))
		case ok:
			s.metrics.Extraction(metrics.ResultCached)
			_, missing := completeness.ScoreJSON(s.opts.Schema, cached.ProfileData)
			return domain.ExtractResult{
				Profile:       cached,
				Cached:        true,
				Completeness:  cached.CompletenessScore,
				MissingFields: missing,
			}, nil
		}
	}

	extraction, err := s.runExtraction(ctx, req)
	if err != nil {
		s.metrics.Extraction(metrics.ResultFailed)
		log.Warn("extraction failed", logger.String("kind", string(domain.KindOf(err))), logger.Error(err))
		return domain.ExtractResult{}, err
	}
	s.metrics.ExtractionCost(extraction.Elapsed, extraction.TokensUsed)

	score, missing := completeness.ScoreJSON(s.opts.Schema, extraction.Data)
	res := domain.ExtractResult{
		Completeness:     score,
		MissingFields:    missing,
		TokensUsed:       extraction.TokensUsed,
		ExtractionTimeMs: extraction.Elapsed.Milliseconds(),
	}
	if score < s.opts.WarnBelow {
		s.metrics.LowCompletenessProfile()
		res.Warning = fmt.Sprintf("profile completeness %d%% is below %d%%; missing: %s",
			score, s.opts.WarnBelow, strings.Join(missing, ", "))
	}

	now := s.now()
	profile := domain.Profile{
		KingURL:           req.URL,
		KingName:          req.Name,
		KingDomain:        domain.RegistrableDomain(req.URL),
		Industry:          req.Industry,
		ProfileData:       extraction.Data,
		ExtractedAt:       now,
		UpdatedAt:         now,
		CompletenessScore: score,
		IsActive:          true,
		ExtractionVersion: domain.ExtractionVersion,
		ExtractionID:      s.newID(),
	}
	stored, err := s.store.Upsert(ctx, profile)
	if err != nil {
		s.metrics.PersistFailed()
		log.Warn("failed to persist extracted profile", logger.Error(err))
	} else {
		profile = stored
	}

	s.metrics.Extraction(metrics.ResultExtracted)
	log.Info("profile extracted",
		logger.String("extraction_id", profile.ExtractionID),
		logger.Int("completeness", score),
		logger.Int64("tokens", extraction.TokensUsed),
		logger.Duration("elapsed", extraction.Elapsed),
	)
	res.Profile = profile
	return res, nil
}

// runExtraction calls the capability under the configured timeout and
// normalises its outcome into domain errors.
func (s *Service) runExtraction(ctx context.Context, req domain.ExtractRequest) (domain.Extraction, error) {
	if s.opts.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ExtractionTimeout)
		defer cancel()
	}

	start := s.now()
	ex, err := s.extractor.Extract(ctx, req)
	if err != nil {
		if domain.IsKind(err, domain.KindConfiguration) {
			return domain.Extraction{}, err
		}
		return domain.Extraction{}, domain.ExtractionFailed(err)
	}
	if ex.Elapsed <= 0 {
		ex.Elapsed = s.now().Sub(start)
	}

	data := bytes.TrimSpace(ex.Data)
	if len(data) == 0 || !json.Valid(data) || data[0] != '{' {
		return domain.Extraction{}, domain.ExtractionFailed(errors.New("extraction returned no profile object"))
	}
	ex.Data = data
	return ex, nil
}

// Lookup serves the read path. Selectors are honoured in the order
// ListAll, URL, Name.
func (s *Service) Lookup(ctx context.Context, req domain.LookupRequest) (domain.LookupResult, error) {
	if req.ListAll {
		list, err := s.store.ListActive(ctx)
		if err != nil {
			return domain.LookupResult{}, fmt.Errorf("list profiles: %w", err)
		}
		if list == nil {
			list = []domain.ProfileSummary{}
		}
		return domain.LookupResult{Summaries: list}, nil
	}

	var (
		p     domain.Profile
		found bool
		err   error
		what  string
	)
	switch url, name := strings.TrimSpace(req.URL), strings.TrimSpace(req.Name); {
	case url != "":
		what = fmt.Sprintf("url %q", url)
		p, found, err = s.store.FindByURL(ctx, url)
	case name != "":
		what = fmt.Sprintf("name matching %q", name)
		p, found, err = s.store.FindByNameLike(ctx, name)
	default:
		return domain.LookupResult{}, domain.InvalidRequest("one of url, name or listAll is required")
	}
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("find profile: %w", err)
	}
	if !found {
		return domain.LookupResult{}, domain.NotFound("no profile for " + what)
	}
	return domain.LookupResult{Profile: &p}, nil
}

// Seed stores an externally prepared profile through the same upsert path
// as extraction. Unlike Extract, a failed write is returned to the caller.
func (s *Service) Seed(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.KingURL = strings.TrimSpace(p.KingURL)
	p.KingName = strings.TrimSpace(p.KingName)
	if p.KingURL == "" || p.KingName == "" {
		return domain.Profile{}, domain.InvalidRequest("kingUrl and kingName are required")
	}
	data := bytes.TrimSpace(p.ProfileData)
	if len(data) == 0 || !json.Valid(data) || data[0] != '{' {
		return domain.Profile{}, domain.InvalidRequest(fmt.Sprintf("profileData for %s must be a JSON object", p.KingURL))
	}
	p.ProfileData = data
	if p.Industry == "" {
		p.Industry = domain.DefaultIndustryTag
	}
	if p.ExtractionVersion == "" {
		p.ExtractionVersion = domain.ExtractionVersion
	}
	p.KingDomain = domain.RegistrableDomain(p.KingURL)
	p.CompletenessScore, _ = completeness.ScoreJSON(s.opts.Schema, data)

	stored, err := s.store.Upsert(ctx, p)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("seed %s: %w", p.KingURL, err)
	}
	return stored, nil
}

// Deactivate soft-deletes the stored profile for url. Extraction never
// calls this; a later extraction of the same url reactivates it.
func (s *Service) Deactivate(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.InvalidRequest("url is required")
	}
	changed, err := s.store.Deactivate(ctx, url)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", url, err)
	}
	if !changed {
		return domain.NotFound(fmt.Sprintf("no active profile for url %q", url))
	}
	s.log.Info("profile deactivated", logger.String("king_url", url))
	return nil
}
