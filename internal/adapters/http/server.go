package httpadapter

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"

	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/ports"
)

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen -config oapi-codegen.yaml openapi.yaml

const maxBodyBytes = 1 << 20

//go:embed openapi.yaml
var openAPIDoc []byte

// Server exposes the forensics, catalog and template surfaces over HTTP.
type Server struct {
	forensics  ports.Forensics
	industries ports.Industries
	templates  ports.Templates
	metrics    http.Handler
	log        logger.Logger
}

func New(forensics ports.Forensics, industries ports.Industries, templates ports.Templates, metrics http.Handler, log logger.Logger) *Server {
	return &Server{forensics: forensics, industries: industries, templates: templates, metrics: metrics, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)
	r.Get("/openapi.yaml", getOpenAPI)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/forensics/extract", s.postExtract)
		r.Get("/forensics/profiles", s.getProfiles)
		r.Get("/industries", s.getIndustries)
		r.Get("/industries/{id}", s.getIndustry)
		r.Get("/templates", s.getTemplates)
		r.Get("/templates/{key}", s.getTemplate)
	})
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func getOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPIDoc)
}

// bindQuery decodes an optional form-style query parameter into dest, which
// must be a pointer to a pointer.
func bindQuery(q url.Values, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return domain.InvalidRequest("invalid query parameter " + name + ": " + err.Error())
	}
	return nil
}

type extractResponse struct {
	Success          bool            `json:"success"`
	Profile          json.RawMessage `json:"profile"`
	Cached           bool            `json:"cached"`
	URL              string          `json:"url"`
	Name             string          `json:"name"`
	Industry         string          `json:"industry"`
	ExtractionID     string          `json:"extractionId,omitempty"`
	ExtractedAt      time.Time       `json:"extractedAt"`
	Completeness     int             `json:"completeness"`
	MissingFields    []string        `json:"missingFields"`
	Warning          string          `json:"warning,omitempty"`
	TokensUsed       int64           `json:"tokensUsed,omitempty"`
	ExtractionTimeMs int64           `json:"extractionTimeMs,omitempty"`
}

func (s *Server) postExtract(w http.ResponseWriter, r *http.Request) {
	var req domain.ExtractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, domain.InvalidRequest("request body must be a JSON object: "+err.Error()))
		return
	}
	res, err := s.forensics.Extract(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	missing := res.MissingFields
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, extractResponse{
		Success:          true,
		Profile:          res.Profile.ProfileData,
		Cached:           res.Cached,
		URL:              res.Profile.KingURL,
		Name:             res.Profile.KingName,
		Industry:         res.Profile.Industry,
		ExtractionID:     res.Profile.ExtractionID,
		ExtractedAt:      res.Profile.ExtractedAt,
		Completeness:     res.Completeness,
		MissingFields:    missing,
		Warning:          res.Warning,
		TokensUsed:       res.TokensUsed,
		ExtractionTimeMs: res.ExtractionTimeMs,
	})
}

func (s *Server) getProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		kingURL, name *string
		listAll       *bool
	)
	for _, err := range []error{
		bindQuery(q, "url", &kingURL),
		bindQuery(q, "name", &name),
		bindQuery(q, "listAll", &listAll),
	} {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	res, err := s.forensics.Lookup(r.Context(), domain.LookupRequest{
		URL:     deref(kingURL),
		Name:    deref(name),
		ListAll: deref(listAll),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Profile == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "profiles": res.Summaries})
		return
	}
	p := res.Profile
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"profile":      p.ProfileData,
		"url":          p.KingURL,
		"name":         p.KingName,
		"industry":     p.Industry,
		"extractedAt":  p.ExtractedAt,
		"completeness": p.CompletenessScore,
	})
}

func (s *Server) getIndustries(w http.ResponseWriter, r *http.Request) {
	var category *string
	if err := bindQuery(r.URL.Query(), "category", &category); err != nil {
		s.writeError(w, r, err)
		return
	}
	if c := deref(category); c != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"category":   c,
			"industries": s.industries.ListByCategory(c),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"ids":        s.industries.ListAllIDs(),
		"categories": s.industries.Categories(),
	})
}

// getIndustry always answers 200: unknown ids get the fallback record and
// fallback=true.
func (s *Server) getIndustry(w http.ResponseWriter, r *http.Request) {
	ind, hit := s.industries.Resolve(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "industry": ind, "fallback": !hit})
}

func (s *Server) getTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "keys": s.templates.Keys()})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": tpl.Key, "content": tpl.Content})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConfiguration:
		return http.StatusServiceUnavailable
	case domain.KindExtractionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	var de *domain.Error
	if kind == domain.KindInternal && !errors.As(err, &de) {
		s.log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, statusFor(kind), errorResponse{Error: msg, Kind: string(kind)})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
