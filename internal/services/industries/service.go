package industries

import (
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/metrics"
	"sitesmith/internal/ports"
)

// Service is the catalog as served to callers: lookups are counted and
// fallback substitutions logged.
type Service struct {
	catalog ports.Industries
	log     logger.Logger
	metrics *metrics.Metrics
}

func New(catalog ports.Industries, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{catalog: catalog, log: log, metrics: m}
}

// GetByID never fails; unknown ids resolve to the fallback record.
func (s *Service) GetByID(id string) domain.Industry {
	ind, _ := s.Resolve(id)
	return ind
}

func (s *Service) Resolve(id string) (domain.Industry, bool) {
	ind, hit := s.catalog.Resolve(id)
	s.metrics.IndustryLookup(hit)
	if !hit {
		s.log.Debug("industry not in catalog, using fallback",
			logger.String("requested", id), logger.String("fallback", ind.ID))
	}
	return ind, hit
}

func (s *Service) ListByCategory(category string) []domain.Industry {
	return s.catalog.ListByCategory(category)
}

func (s *Service) ListAllIDs() []string { return s.catalog.ListAllIDs() }

func (s *Service) Categories() []string { return s.catalog.Categories() }
