package domain

import (
	"errors"
	"fmt"
)

// Industry describes one business vertical. Values are built once when the
// catalog loads and are never mutated afterwards.
type Industry struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Category    string      `json:"category" yaml:"category"`
	Psychology  Psychology  `json:"psychology" yaml:"psychology"`
	Sections    []Section   `json:"sections" yaml:"sections"`
	Design      Design      `json:"design" yaml:"design"`
	Copywriting Copywriting `json:"copywriting" yaml:"copywriting"`
	Images      Images      `json:"images" yaml:"images"`
}

type Psychology struct {
	CustomerNeeds     []string `json:"customerNeeds" yaml:"customer_needs"`
	TrustFactors      []string `json:"trustFactors" yaml:"trust_factors"`
	EmotionalTriggers []string `json:"emotionalTriggers" yaml:"emotional_triggers"`
}

// Section is a page section the generator should emit for an industry.
type Section struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Required    bool     `json:"required" yaml:"required"`
	Purpose     string   `json:"purpose" yaml:"purpose"`
	KeyElements []string `json:"keyElements" yaml:"key_elements"`
}

type Design struct {
	Rationale string  `json:"rationale" yaml:"rationale"`
	Colors    Palette `json:"colors" yaml:"colors"`
	Fonts     Fonts   `json:"fonts" yaml:"fonts"`
	Layout    string  `json:"layout" yaml:"layout"`
	Imagery   string  `json:"imagery" yaml:"imagery"`
	Motion    string  `json:"motion" yaml:"motion"`
}

// Palette holds the four colour tokens handed to the generator verbatim.
type Palette struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
}

func (p Palette) Tokens() []string {
	return []string{p.Primary, p.Secondary, p.Accent, p.Background}
}

type Fonts struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

func (f Fonts) Tokens() []string {
	return []string{f.Heading, f.Body}
}

type Copywriting struct {
	Tone      string   `json:"tone" yaml:"tone"`
	Headlines []string `json:"headlines" yaml:"headlines"`
	CTAs      []string `json:"ctas" yaml:"ctas"`
	Avoid     []string `json:"avoid" yaml:"avoid"`
}

// Images are literal URL references; nothing checks that they resolve.
type Images struct {
	Hero      []string `json:"hero" yaml:"hero"`
	Product   []string `json:"product" yaml:"product"`
	Lifestyle []string `json:"lifestyle" yaml:"lifestyle"`
	About     []string `json:"about" yaml:"about"`
}

// Normalize replaces nil image lists with empty ones so every record exposes
// the same four categories.
func (im *Images) Normalize() {
	for _, l := range []*[]string{&im.Hero, &im.Product, &im.Lifestyle, &im.About} {
		if *l == nil {
			*l = []string{}
		}
	}
}

// Validate checks the structural shape every catalog record must have.
func (ind Industry) Validate() error {
	var errs []error
	if ind.ID == "" {
		errs = append(errs, errors.New("id is empty"))
	}
	if ind.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if ind.Category == "" {
		errs = append(errs, errors.New("category is empty"))
	}
	if len(ind.Sections) == 0 {
		errs = append(errs, errors.New("no sections"))
	}
	for i, s := range ind.Sections {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("section %d has no id", i))
		}
	}
	for i, c := range ind.Design.Colors.Tokens() {
		if c == "" {
			errs = append(errs, fmt.Errorf("colour token %d is empty", i))
		}
	}
	for i, f := range ind.Design.Fonts.Tokens() {
		if f == "" {
			errs = append(errs, fmt.Errorf("font token %d is empty", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("industry %q: %w", ind.ID, err)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (ind Industry) Clone() Industry {
	out := ind
	out.Psychology = Psychology{
		CustomerNeeds:     cloneStrings(ind.Psychology.CustomerNeeds),
		TrustFactors:      cloneStrings(ind.Psychology.TrustFactors),
		EmotionalTriggers: cloneStrings(ind.Psychology.EmotionalTriggers),
	}
	out.Sections = make([]Section, len(ind.Sections))
	for i, s := range ind.Sections {
		s.KeyElements = cloneStrings(s.KeyElements)
		out.Sections[i] = s
	}
	out.Copywriting.Headlines = cloneStrings(ind.Copywriting.Headlines)
	out.Copywriting.CTAs = cloneStrings(ind.Copywriting.CTAs)
	out.Copywriting.Avoid = cloneStrings(ind.Copywriting.Avoid)
	out.Images = Images{
		Hero:      cloneStrings(ind.Images.Hero),
		Product:   cloneStrings(ind.Images.Product),
		Lifestyle: cloneStrings(ind.Images.Lifestyle),
		About:     cloneStrings(ind.Images.About),
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
