// Package discover enumerates question URLs on the listing page.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
)

// Config controls discovery.
type Config struct {
	// ItemPath is the path fragment every question link contains.
	ItemPath string
	// Wait bounds the wait for the first question link.
	Wait time.Duration
	// Settle is a fixed pause after the first link shows up, for the rest
	// of the asynchronously rendered list.
	Settle time.Duration
	Logger *slog.Logger
}

// Identifiers scans the listing page already loaded in p and returns the
// distinct question URLs in first-seen order. An empty result is not an
// error: the caller treats it as nothing to do.
func Identifiers(ctx context.Context, p page.Page, cfg Config) ([]string, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	linkSel := fmt.Sprintf(`a[href*=%q]`, cfg.ItemPath)
	if _, err := p.WaitFor(ctx, linkSel, cfg.Wait); err != nil {
		if !page.IsMiss(err) {
			return nil, fmt.Errorf("discover: wait links: %w", err)
		}
		log.Warn("discover: no question link appeared", "selector", linkSel, "wait", cfg.Wait)
	} else if err := page.Sleep(ctx, cfg.Settle); err != nil {
		return nil, err
	}

	links, err := p.Find(ctx, "a[href]")
	if err != nil {
		return nil, fmt.Errorf("discover: find links: %w", err)
	}

	base, _ := url.Parse(p.URL())
	seen := make(map[string]bool, len(links))
	var out []string
	for _, el := range links {
		href, ok, err := el.Attribute(ctx, "href")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug("discover: unreadable link", "error", err)
			continue
		}
		if !ok || !strings.Contains(href, cfg.ItemPath) {
			continue
		}
		abs := resolve(base, href)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}

	log.Info("discover: found question urls", "count", len(out), "links", len(links))
	return out, nil
}

// resolve makes href absolute against base; unparsable hrefs are kept as-is.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil || base == nil || u.IsAbs() {
		return href
	}
	return base.ResolveReference(u).String()
}
