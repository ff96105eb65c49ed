package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sitesmith/internal/catalog"
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/templates"
)

type fakeForensics struct {
	gotExtract domain.ExtractRequest
	gotLookup  domain.LookupRequest
	extract    domain.ExtractResult
	lookup     domain.LookupResult
	err        error
}

func (f *fakeForensics) Extract(_ context.Context, req domain.ExtractRequest) (domain.ExtractResult, error) {
	f.gotExtract = req
	return f.extract, f.err
}

func (f *fakeForensics) Lookup(_ context.Context, req domain.LookupRequest) (domain.LookupResult, error) {
	f.gotLookup = req
	return f.lookup, f.err
}

var extractedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, f *fakeForensics) *httptest.Server {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	tpls, err := templates.NewHeroSelector()
	require.NoError(t, err)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) })
	srv := httptest.NewServer(New(f, cat, tpls, metrics, logger.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}

func TestPostExtract_Success(t *testing.T) {
	f := &fakeForensics{extract: domain.ExtractResult{
		Profile: domain.Profile{
			KingURL:     "https://example-competitor.com",
			KingName:    "Acme Co",
			Industry:    "general",
			ProfileData: json.RawMessage(`{"brand":{"name":"Acme"}}`),
			ExtractedAt: extractedAt,
		},
		Cached:       true,
		Completeness: 6,
	}}
	srv := newTestServer(t, f)

	resp, err := http.Post(srv.URL+"/v1/forensics/extract", "application/json",
		strings.NewReader(`{"url":"https://example-competitor.com","name":"Acme Co","forceRefresh":true,"additionalPages":["https://example-competitor.com/about"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, map[string]any{"brand": map[string]any{"name": "Acme"}}, body["profile"])
	assert.Equal(t, "2026-03-01T12:00:00Z", body["extractedAt"])
	assert.Equal(t, []any{}, body["missingFields"])
	assert.NotContains(t, body, "tokensUsed")

	assert.True(t, f.gotExtract.ForceRefresh)
	assert.Equal(t, []string{"https://example-competitor.com/about"}, f.gotExtract.AdditionalPages)
}

func TestPostExtract_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"invalid", domain.InvalidRequest("url and name are required"), http.StatusBadRequest, "invalid_request", "url and name are required"},
		{"configuration", domain.ConfigurationError("ANTHROPIC_API_KEY is not configured"), http.StatusServiceUnavailable, "configuration_error", "ANTHROPIC_API_KEY is not configured"},
		{"extraction", domain.ExtractionFailed(errors.New("site unreachable")), http.StatusBadGateway, "extraction_failed", "site unreachable"},
		{"internal", errors.New("pool closed"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeForensics{err: tt.err})
			resp, err := http.Post(srv.URL+"/v1/forensics/extract", "application/json", strings.NewReader(`{"name":"Acme Co"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantKind, body["kind"])
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestPostExtract_MalformedBody(t *testing.T) {
	f := &fakeForensics{}
	srv := newTestServer(t, f)
	resp, err := http.Post(srv.URL+"/v1/forensics/extract", "application/json", strings.NewReader(`{"url":`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decode(t, resp)["kind"])
	assert.Empty(t, f.gotExtract.Name, "service not called")
}

func TestGetProfiles(t *testing.T) {
	t.Run("list all", func(t *testing.T) {
		f := &fakeForensics{lookup: domain.LookupResult{Summaries: []domain.ProfileSummary{
			{Name: "Acme", URL: "https://acme.example", Industry: "plumbing", ExtractedAt: extractedAt, Completeness: 80},
		}}}
		srv := newTestServer(t, f)
		resp, err := http.Get(srv.URL + "/v1/forensics/profiles?listAll=true")
		require.NoError(t, err)
		body := decode(t, resp)
		assert.True(t, f.gotLookup.ListAll)
		profiles := body["profiles"].([]any)
		require.Len(t, profiles, 1)
		assert.Equal(t, "https://acme.example", profiles[0].(map[string]any)["url"])
	})

	t.Run("by name", func(t *testing.T) {
		f := &fakeForensics{lookup: domain.LookupResult{Profile: &domain.Profile{
			KingURL: "https://acme.example", KingName: "Acme", ProfileData: json.RawMessage(`{}`),
			ExtractedAt: extractedAt, CompletenessScore: 80,
		}}}
		srv := newTestServer(t, f)
		resp, err := http.Get(srv.URL + "/v1/forensics/profiles?name=acme")
		require.NoError(t, err)
		body := decode(t, resp)
		assert.Equal(t, "acme", f.gotLookup.Name)
		assert.Equal(t, float64(80), body["completeness"])
		assert.Equal(t, "2026-03-01T12:00:00Z", body["extractedAt"])
	})

	t.Run("malformed listAll", func(t *testing.T) {
		f := &fakeForensics{}
		srv := newTestServer(t, f)
		resp, err := http.Get(srv.URL + "/v1/forensics/profiles?listAll=notabool")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, "invalid_request", body["kind"])
		assert.Contains(t, body["error"], "listAll")
		assert.Equal(t, domain.LookupRequest{}, f.gotLookup)
	})

	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(t, &fakeForensics{err: domain.NotFound("no profile for url")})
		resp, err := http.Get(srv.URL + "/v1/forensics/profiles?url=https://nobody.example")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", decode(t, resp)["kind"])
	})
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})
	resp, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, path := range []string{"/v1/forensics/extract", "/v1/forensics/profiles", "/v1/industries/{id}", "/v1/templates/{key}"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestIndustries(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})

	resp, err := http.Get(srv.URL + "/v1/industries")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Len(t, body["ids"], 15)
	assert.Contains(t, body["categories"], "home-services")

	resp, err = http.Get(srv.URL + "/v1/industries?category=home-services")
	require.NoError(t, err)
	assert.Len(t, decode(t, resp)["industries"], 3)

	resp, err = http.Get(srv.URL + "/v1/industries?category=aerospace")
	require.NoError(t, err)
	assert.Equal(t, []any{}, decode(t, resp)["industries"])
}

func TestIndustryByID_FallsBack(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})

	resp, err := http.Get(srv.URL + "/v1/industries/dental")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, false, body["fallback"])
	assert.Equal(t, "dental", body["industry"].(map[string]any)["id"])

	resp, err = http.Get(srv.URL + "/v1/industries/general")
	require.NoError(t, err)
	body = decode(t, resp)
	assert.Equal(t, false, body["fallback"], "asking for general by name is not a fallback")
	assert.Equal(t, "general", body["industry"].(map[string]any)["id"])

	resp, err = http.Get(srv.URL + "/v1/industries/totally-unknown-id-xyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, true, body["fallback"])
	assert.Equal(t, "general", body["industry"].(map[string]any)["id"])
}

func TestTemplates(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})

	resp, err := http.Get(srv.URL + "/v1/templates")
	require.NoError(t, err)
	assert.Len(t, decode(t, resp)["keys"], 15)

	resp, err = http.Get(srv.URL + "/v1/templates/split-image")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, "split-image", body["key"])
	assert.NotEmpty(t, body["content"])

	resp, err = http.Get(srv.URL + "/v1/templates/no-such-layout")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode(t, resp)["kind"])
}

func TestMetricsMounted(t *testing.T) {
	srv := newTestServer(t, &fakeForensics{})
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
