package domain

import (
	"encoding/json"
	"time"
)

// DefaultIndustryTag is used when an extraction request names no industry.
const DefaultIndustryTag = "general"

// ExtractionVersion is stamped on every profile this build writes.
const ExtractionVersion = "forensics-v2"

// Profile is the extracted design DNA of a "King" competitor site, keyed by
// its URL. ProfileData is opaque JSON produced by the extraction capability.
type Profile struct {
	KingURL           string          `json:"kingUrl"`
	KingName          string          `json:"kingName"`
	KingDomain        string          `json:"kingDomain"`
	Industry          string          `json:"industry"`
	ProfileData       json.RawMessage `json:"profileData"`
	ExtractedAt       time.Time       `json:"extractedAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	CompletenessScore int             `json:"completenessScore"`
	IsActive          bool            `json:"isActive"`
	ExtractionVersion string          `json:"extractionVersion"`
	ExtractionID      string          `json:"extractionId,omitempty"`
}

// ProfileSummary is the lightweight row used for admin listings.
type ProfileSummary struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Industry     string    `json:"industry"`
	ExtractedAt  time.Time `json:"extractedAt"`
	Completeness int       `json:"completeness"`
}

func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{
		Name:         p.KingName,
		URL:          p.KingURL,
		Industry:     p.Industry,
		ExtractedAt:  p.ExtractedAt,
		Completeness: p.CompletenessScore,
	}
}

// ExtractRequest is the write-path input.
type ExtractRequest struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Industry        string   `json:"industry,omitempty"`
	AdditionalPages []string `json:"additionalPages,omitempty"`
	ForceRefresh    bool     `json:"forceRefresh,omitempty"`
}

// ExtractResult is the write-path success output.
type ExtractResult struct {
	Profile          Profile
	Cached           bool
	Completeness     int
	MissingFields    []string
	Warning          string
	TokensUsed       int64
	ExtractionTimeMs int64
}

// Extraction is what the external capability hands back.
type Extraction struct {
	Data       json.RawMessage
	TokensUsed int64
	Elapsed    time.Duration
}

// LookupRequest is the read-path input; exactly one selector is honoured,
// in the order ListAll, URL, Name.
type LookupRequest struct {
	URL     string
	Name    string
	ListAll bool
}

type LookupResult struct {
	Profile   *Profile
	Summaries []ProfileSummary
}
