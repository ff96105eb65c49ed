// Package bootstrap wires configuration, stores, adapters and services into
// a runnable application shared by the server and kingctl.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	anthropicadapter "sitesmith/internal/adapters/anthropic"
	"sitesmith/internal/adapters/pagefetch"
	"sitesmith/internal/catalog"
	"sitesmith/internal/config"
	"sitesmith/internal/logger"
	"sitesmith/internal/metrics"
	"sitesmith/internal/ports"
	"sitesmith/internal/services/forensics"
	"sitesmith/internal/services/industries"
	"sitesmith/internal/templates"
)

type App struct {
	Config     config.Config
	Log        logger.Logger
	Metrics    *metrics.Metrics
	Industries *industries.Service
	Templates  *templates.Selector
	Store      ports.ProfileStore
	Forensics  *forensics.Service

	closeStore func()
}

// Catalog is the read-only half of the application: the industry catalog
// and hero templates. It needs no store.
type Catalog struct {
	Industries *industries.Service
	Templates  *templates.Selector
}

// NewCatalog loads the embedded catalog and templates. m may be nil.
func NewCatalog(log logger.Logger, m *metrics.Metrics) (*Catalog, error) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load industry catalog: %w", err)
	}
	tpls, err := templates.NewHeroSelector()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	log.Info("catalog loaded", logger.Int("industries", cat.Len()), logger.Int("templates", len(tpls.Keys())))
	return &Catalog{Industries: industries.New(cat, log, m), Templates: tpls}, nil
}

// New builds the application. reg may be nil to use the default Prometheus
// registry.
func New(ctx context.Context, cfg config.Config, log logger.Logger, reg *prometheus.Registry) (*App, error) {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg, reg)
	} else {
		m = metrics.NewDefault()
	}

	cat, err := NewCatalog(log, m)
	if err != nil {
		return nil, err
	}
	inds, tpls := cat.Industries, cat.Templates

	store, closeStore, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	extractor := anthropicadapter.New(anthropicadapter.Config{
		APIKey:     cfg.AnthropicAPIKey,
		Model:      cfg.AnthropicModel,
		BaseURL:    cfg.AnthropicBaseURL,
		MaxRetries: 2,
		Layouts:    tpls.Keys(),
	}, pagefetch.New(log, nil), inds, log)
	if cfg.AnthropicAPIKey == "" {
		log.Warn("ANTHROPIC_API_KEY not set; extraction requests will fail with configuration_error")
	}

	svc := forensics.New(store, extractor, log, m, forensics.Options{
		FreshnessWindow:   cfg.FreshnessWindow(),
		ExtractionTimeout: cfg.ExtractionTimeout,
		WarnBelow:         cfg.CompletenessWarnAt,
	})

	return &App{
		Config:     cfg,
		Log:        log,
		Metrics:    m,
		Industries: inds,
		Templates:  tpls,
		Store:      store,
		Forensics:  svc,
		closeStore: closeStore,
	}, nil
}

func (a *App) MetricsHandler() http.Handler { return a.Metrics.Handler() }

func (a *App) Close() {
	if a.closeStore != nil {
		a.closeStore()
	}
}
