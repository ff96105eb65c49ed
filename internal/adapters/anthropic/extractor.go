// Package anthropicadapter implements the design-DNA extraction capability on
// top of the Anthropic Messages API.
package anthropicadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"sitesmith/internal/adapters/pagefetch"
	"sitesmith/internal/completeness"
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/ports"
)

const defaultMaxTokens = 4096

// Snapshotter gathers the page material the model analyses.
type Snapshotter interface {
	Snapshot(ctx context.Context, kingURL string, additional []string) (pagefetch.Snapshot, error)
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int64
	MaxRetries int
	// Layouts are the hero template keys the model may pick from.
	Layouts []string
}

type Extractor struct {
	cfg        Config
	client     anthropic.Client
	pages      Snapshotter
	industries ports.Industries
	log        logger.Logger
	now        func() time.Time
}

// New never fails; a missing API key is reported per request as a
// configuration error so the rest of the service can still start.
func New(cfg Config, pages Snapshotter, industries ports.Industries, log logger.Logger) *Extractor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Extractor{
		cfg:        cfg,
		client:     anthropic.NewClient(opts...),
		pages:      pages,
		industries: industries,
		log:        log,
		now:        time.Now,
	}
}

func (e *Extractor) Extract(ctx context.Context, req domain.ExtractRequest) (domain.Extraction, error) {
	if e.cfg.APIKey == "" {
		return domain.Extraction{}, domain.ConfigurationError("ANTHROPIC_API_KEY is not configured")
	}
	start := e.now()

	snap, err := e.pages.Snapshot(ctx, req.URL, req.AdditionalPages)
	if err != nil {
		return domain.Extraction{}, err
	}
	prompt, err := e.buildPrompt(req, snap)
	if err != nil {
		return domain.Extraction{}, err
	}

	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.cfg.Model),
		MaxTokens: e.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("analysis request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	data, err := parseProfile(text.String())
	if err != nil {
		return domain.Extraction{}, err
	}

	tokens := msg.Usage.InputTokens + msg.Usage.OutputTokens
	elapsed := e.now().Sub(start)
	e.log.Debug("design dna extracted",
		logger.String("king_url", req.URL),
		logger.Int("pages", len(snap.Pages)),
		logger.Int64("tokens", tokens),
		logger.Duration("elapsed", elapsed),
	)
	return domain.Extraction{Data: data, TokensUsed: tokens, Elapsed: elapsed}, nil
}

const systemPrompt = `You are a web design forensics analyst. You study a competitor's live website and describe its design DNA so another site can be built to outperform it. Reply with a single JSON object and nothing else.`

func (e *Extractor) buildPrompt(req domain.ExtractRequest, snap pagefetch.Snapshot) (string, error) {
	pages, err := json.MarshalIndent(snap.Pages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	ind := e.industries.GetByID(req.Industry)

	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\nURL: %s\nIndustry: %s (%s)\n\n", req.Name, req.URL, ind.Name, ind.ID)
	if len(ind.Psychology.CustomerNeeds) > 0 {
		fmt.Fprintf(&b, "Customers in this industry care about: %s\n", strings.Join(ind.Psychology.CustomerNeeds, "; "))
	}
	if len(ind.Psychology.TrustFactors) > 0 {
		fmt.Fprintf(&b, "Trust is earned through: %s\n\n", strings.Join(ind.Psychology.TrustFactors, "; "))
	}
	b.WriteString("Return JSON with these fields (dotted paths show nesting; list fields are arrays of strings):\n")
	for _, p := range completeness.DesignDNA {
		b.WriteString("- " + p + "\n")
	}
	if len(e.cfg.Layouts) > 0 {
		fmt.Fprintf(&b, "\nhero.layout must be one of: %s\n", strings.Join(e.cfg.Layouts, ", "))
	}
	b.WriteString("\nColours are hex codes. Leave a field out rather than guessing.\n\nPage snapshot:\n")
	b.Write(pages)
	return b.String(), nil
}

// parseProfile accepts the model's reply with or without markdown code
// fences and requires a JSON object.
func parseProfile(reply string) (json.RawMessage, error) {
	body := stripFences(reply)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}
	raw := []byte(body)
	if !json.Valid(raw) || !bytes.HasPrefix(raw, []byte("{")) {
		return nil, errors.New("analysis returned no valid JSON profile")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, fmt.Errorf("compact profile: %w", err)
	}
	return compact.Bytes(), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
