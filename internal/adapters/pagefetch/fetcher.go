// Package pagefetch captures a compact snapshot of a live site's pages for
// the design-DNA extractor: titles, headings, calls to action, colour and
// font hints.
package pagefetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 2 << 20
	maxTextRunes    = 4000
	maxListItems    = 20
	userAgent       = "Mozilla/5.0 (compatible; SitesmithForensics/1.0)"
)

type Page struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	CTAs        []string `json:"ctas,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Fonts       []string `json:"fonts,omitempty"`
	Images      []string `json:"images,omitempty"`
	Text        string   `json:"text,omitempty"`
}

type Snapshot struct {
	Pages   []Page   `json:"pages"`
	Skipped []string `json:"skipped,omitempty"`
}

type Fetcher struct {
	client   *http.Client
	log      logger.Logger
	maxBytes int64
}

func New(log logger.Logger, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client, log: log, maxBytes: defaultMaxBytes}
}

// Snapshot fetches kingURL and any additional pages on the same registrable
// domain. The king page must load; additional pages are best-effort.
func (f *Fetcher) Snapshot(ctx context.Context, kingURL string, additional []string) (Snapshot, error) {
	main, err := f.Fetch(ctx, kingURL)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Pages: []Page{main}}

	site := domain.RegistrableDomain(kingURL)
	seen := map[string]bool{kingURL: true}
	for _, u := range additional {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		if domain.RegistrableDomain(u) != site {
			f.log.Warn("skipping cross-site page", logger.String("king_url", kingURL), logger.String("page", u))
			snap.Skipped = append(snap.Skipped, u)
			continue
		}
		p, err := f.Fetch(ctx, u)
		if err != nil {
			f.log.Warn("additional page fetch failed", logger.String("page", u), logger.Error(err))
			snap.Skipped = append(snap.Skipped, u)
			continue
		}
		snap.Pages = append(snap.Pages, p)
	}
	return snap, nil
}

// Fetch loads and summarises one page.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Page{}, fmt.Errorf("invalid URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("site unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("site returned status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return summarise(doc, parsed), nil
}

var (
	hexColor   = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	fontFamily = regexp.MustCompile(`font-family\s*:\s*([^;}]+)`)
	whitespace = regexp.MustCompile(`\s+`)
)

func summarise(doc *goquery.Document, base *url.URL) Page {
	p := Page{URL: base.String()}

	p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && p.Title == "" {
		p.Title = strings.TrimSpace(og)
	}
	if d, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		p.Description = strings.TrimSpace(d)
	} else if d, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		p.Description = strings.TrimSpace(d)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		p.Headings = appendCapped(p.Headings, clean(s.Text()))
	})
	doc.Find("a.btn, a.button, button, a[class*='cta'], a[class*='btn'], input[type='submit']").Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		if text == "" {
			text, _ = s.Attr("value")
		}
		p.CTAs = appendCapped(p.CTAs, text)
	})

	var css strings.Builder
	doc.Find("style").Each(func(_ int, s *goquery.Selection) { css.WriteString(s.Text()) })
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("style")
		css.WriteString(";" + v)
	})
	if c, ok := doc.Find("meta[name='theme-color']").Attr("content"); ok {
		css.WriteString(" " + c)
	}
	p.Colors = topColors(css.String(), 8)

	fonts := map[string]bool{}
	for _, m := range fontFamily.FindAllStringSubmatch(css.String(), -1) {
		fonts[firstFamily(m[1])] = true
	}
	doc.Find("link[href*='fonts.googleapis.com']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		for _, fam := range googleFamilies(href) {
			fonts[fam] = true
		}
	})
	delete(fonts, "")
	for f := range fonts {
		p.Fonts = append(p.Fonts, f)
	}
	sort.Strings(p.Fonts)

	if og, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		p.Images = appendCapped(p.Images, resolve(base, og))
	}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		p.Images = appendCapped(p.Images, resolve(base, src))
	})

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	p.Text = truncateRunes(clean(body.Text()), maxTextRunes)
	return p
}

func clean(s string) string { return strings.TrimSpace(whitespace.ReplaceAllString(s, " ")) }

func appendCapped(list []string, v string) []string {
	if v == "" || len(list) >= maxListItems {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func topColors(css string, n int) []string {
	counts := map[string]int{}
	for _, c := range hexColor.FindAllString(css, -1) {
		counts[strings.ToLower(c)]++
	}
	out := make([]string, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] == counts[out[j]] {
			return out[i] < out[j]
		}
		return counts[out[i]] > counts[out[j]]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func firstFamily(decl string) string {
	first := strings.Split(decl, ",")[0]
	return strings.Trim(strings.TrimSpace(first), `'"`)
}

func googleFamilies(href string) []string {
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	var out []string
	for _, fam := range u.Query()["family"] {
		for _, f := range strings.Split(fam, "|") {
			name := strings.SplitN(f, ":", 2)[0]
			out = append(out, strings.ReplaceAll(name, "+", " "))
		}
	}
	return out
}

func resolve(base *url.URL, ref string) string {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return base.ResolveReference(r).String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
