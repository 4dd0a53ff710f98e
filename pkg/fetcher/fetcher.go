package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrEmptyContent is returned when a page yields less readable text than the
// configured minimum. Wrapped errors carry the detail.
var ErrEmptyContent = errors.New("insufficient readable content")

// Page is the readable form of one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string

	// Raw holds the original response body, kept for optional archiving.
	Raw []byte
}

// Fetcher retrieves a URL and reduces it to readable text plus a title.
// Non-HTML responses and boilerplate-only pages are rejected.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// Fetch retrieves and cleans a single page. The context bounds the whole
// operation, including the rate-limiter wait.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, url)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") {
		return nil, fmt.Errorf("invalid content type %q for %s: only HTML pages are supported", contentType, url)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = url
	}

	text := extractText(doc)
	if len(text) < f.cfg.MinContentLength {
		return nil, fmt.Errorf("%w: got %d characters from %s, need at least %d",
			ErrEmptyContent, len(text), url, f.cfg.MinContentLength)
	}

	return &Page{
		URL:   url,
		Title: title,
		Text:  text,
		Raw:   raw,
	}, nil
}

// extractText strips non-content elements and collapses whitespace.
func extractText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, noscript").Remove()

	var content string
	if body := doc.Find("body"); body.Length() > 0 {
		content = body.Text()
	} else {
		content = doc.Text()
	}

	return strings.Join(strings.Fields(content), " ")
}
