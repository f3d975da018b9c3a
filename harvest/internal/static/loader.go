package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPConfig configures NewHTTP.
type HTTPConfig struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBody caps the document size read per navigation; larger documents
	// fail the navigation. Default: 10MB.
	MaxBody int64
}

func (c *HTTPConfig) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; quizharvest/1.0)"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBody <= 0 {
		c.MaxBody = 10 << 20
	}
}

// NewHTTP creates a Page that fetches documents with a resty client sharing
// the page's cookie jar, so cookies restored from the credential file are
// sent with every request.
func NewHTTP(cfg HTTPConfig, opts ...Option) *Page {
	cfg.defaults()
	p := New(nil, opts...)

	client := resty.New().
		SetCookieJar(p.jar).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	p.load = httpLoader(client, cfg.MaxBody)
	return p
}

// ErrBodyTooLarge is returned when a document exceeds HTTPConfig.MaxBody.
var ErrBodyTooLarge = errors.New("static: document too large")

func httpLoader(client *resty.Client, maxBody int64) Loader {
	return func(ctx context.Context, rawURL string) ([]byte, string, error) {
		res, err := client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("get: %w", err)
		}
		raw := res.RawBody()
		if raw == nil {
			return nil, "", fmt.Errorf("get: no response body")
		}
		defer raw.Close()

		if res.StatusCode() >= 400 {
			return nil, "", fmt.Errorf("get: status %d", res.StatusCode())
		}
		body, err := io.ReadAll(io.LimitReader(raw, maxBody+1))
		if err != nil {
			return nil, "", fmt.Errorf("get: read body: %w", err)
		}
		if int64(len(body)) > maxBody {
			return nil, "", fmt.Errorf("get %s: %w (limit %d bytes)", rawURL, ErrBodyTooLarge, maxBody)
		}
		final := rawURL
		if rr := res.RawResponse; rr != nil && rr.Request != nil && rr.Request.URL != nil {
			final = rr.Request.URL.String()
		}
		return body, final, nil
	}
}

// Site is an in-memory set of documents keyed by absolute URL.
type Site struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

// NewSite returns a Site serving pages.
func NewSite(pages map[string]string) *Site {
	s := &Site{pages: make(map[string]string), hits: make(map[string]int)}
	for u, html := range pages {
		s.pages[u] = html
	}
	return s
}

// Set adds or replaces the document at url.
func (s *Site) Set(url, html string) {
	s.mu.Lock()
	s.pages[url] = html
	s.mu.Unlock()
}

// Hits returns how many times url was loaded.
func (s *Site) Hits(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[url]
}

// Load implements Loader.
func (s *Site) Load(ctx context.Context, rawURL string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	html, ok := s.pages[rawURL]
	if !ok {
		return nil, "", fmt.Errorf("no document at %s", rawURL)
	}
	s.hits[rawURL]++
	return []byte(html), rawURL, nil
}

// NewMemory creates a Page backed by site.
func NewMemory(site *Site, opts ...Option) *Page {
	return New(site.Load, opts...)
}
