// Package completeness scores an extracted profile by checking which expected
// fields are present and non-empty.
package completeness

import (
	"encoding/json"
	"math"
	"strings"
)

// Schema is an ordered list of dotted field paths, e.g. "colors.primary".
type Schema []string

// DesignDNA is the set of fields the forensic extractor is asked to produce.
var DesignDNA = Schema{
	"brand.name",
	"brand.positioning",
	"colors.primary",
	"colors.secondary",
	"colors.accent",
	"colors.background",
	"typography.headingFont",
	"typography.bodyFont",
	"hero.headline",
	"hero.cta",
	"hero.layout",
	"sections",
	"copy.tone",
	"copy.headlines",
	"copy.ctas",
	"imagery.style",
	"trustSignals",
	"conversion.primaryCta",
}

// Score returns a 0-100 score and the schema paths that are missing or empty
// in data, in schema order. An empty schema scores 100.
func Score(schema Schema, data any) (int, []string) {
	if len(schema) == 0 {
		return 100, nil
	}
	missing := []string{}
	for _, p := range schema {
		if !present(lookup(data, p)) {
			missing = append(missing, p)
		}
	}
	found := len(schema) - len(missing)
	return int(math.Round(float64(found) * 100 / float64(len(schema)))), missing
}

// ScoreJSON decodes raw and scores it. Undecodable input scores 0.
func ScoreJSON(schema Schema, raw []byte) (int, []string) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		data = nil
	}
	return Score(schema, data)
}

func lookup(data any, path string) any {
	cur := data
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
