package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreJSON(t *testing.T) {
	schema := Schema{"brand.name", "colors.primary", "sections", "hero.cta"}

	tests := []struct {
		name        string
		raw         string
		wantScore   int
		wantMissing []string
	}{
		{
			name:        "all present",
			raw:         `{"brand":{"name":"Acme"},"colors":{"primary":"#000"},"sections":["hero"],"hero":{"cta":"Call"}}`,
			wantScore:   100,
			wantMissing: []string{},
		},
		{
			name:        "empty values count as missing",
			raw:         `{"brand":{"name":"  "},"colors":{"primary":"#000"},"sections":[],"hero":{}}`,
			wantScore:   25,
			wantMissing: []string{"brand.name", "sections", "hero.cta"},
		},
		{
			name:        "wrong shape on the path",
			raw:         `{"brand":"Acme","colors":{"primary":"#000"},"sections":["a"],"hero":{"cta":false}}`,
			wantScore:   75,
			wantMissing: []string{"brand.name"},
		},
		{
			name:        "invalid json",
			raw:         `not json`,
			wantScore:   0,
			wantMissing: []string{"brand.name", "colors.primary", "sections", "hero.cta"},
		},
		{
			name:        "null",
			raw:         `null`,
			wantScore:   0,
			wantMissing: []string{"brand.name", "colors.primary", "sections", "hero.cta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, missing := ScoreJSON(schema, []byte(tt.raw))
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestScore_Rounds(t *testing.T) {
	schema := Schema{"a", "b", "c"}
	score, missing := Score(schema, map[string]any{"a": 1.0, "b": "x"})
	assert.Equal(t, 67, score)
	assert.Equal(t, []string{"c"}, missing)
}

func TestScore_EmptySchema(t *testing.T) {
	score, missing := Score(nil, nil)
	assert.Equal(t, 100, score)
	assert.Empty(t, missing)
}

func TestDesignDNA_FullProfileScores100(t *testing.T) {
	raw := `{
	  "brand": {"name": "Acme", "positioning": "premium local"},
	  "colors": {"primary": "#111", "secondary": "#222", "accent": "#f60", "background": "#fff"},
	  "typography": {"headingFont": "Fraunces", "bodyFont": "Inter"},
	  "hero": {"headline": "Hi", "cta": "Book", "layout": "split-image"},
	  "sections": ["hero", "services"],
	  "copy": {"tone": "warm", "headlines": ["Hi"], "ctas": ["Book"]},
	  "imagery": {"style": "bright"},
	  "trustSignals": ["reviews"],
	  "conversion": {"primaryCta": "Book"}
	}`
	score, missing := ScoreJSON(DesignDNA, []byte(raw))
	assert.Equal(t, 100, score)
	assert.Empty(t, missing)
}
