// CLAUDE:SUMMARY Session bootstrapper: reuses saved cookies when valid, else blocks on a manual login confirmation and saves the page's cookies (0600).
// Package session establishes an authenticated session on the entry page,
// either from a saved cookie file or through a manual login.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/quizharvest/harvest/internal/jsonfile"
	"github.com/hazyhaar/quizharvest/harvest/internal/page"
)

// Confirmer blocks until the operator reports a finished manual login.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) error
}

// Config configures a Bootstrapper.
type Config struct {
	// CookieFile is the credential file path.
	CookieFile string
	// Settle is the pause after reloading the entry page with saved cookies.
	Settle time.Duration
	// Confirmer handles the manual login path.
	Confirmer Confirmer
	Logger    *slog.Logger
}

// Bootstrapper restores or creates a logged-in session.
type Bootstrapper struct {
	cfg Config
}

// New creates a Bootstrapper.
func New(cfg Config) *Bootstrapper {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bootstrapper{cfg: cfg}
}

// Ensure works on a page already showing the entry URL. A failed login is not
// detected here; it shows up as an empty discovery later on.
func (b *Bootstrapper) Ensure(ctx context.Context, p page.Page) error {
	log := b.cfg.Logger

	cookies, err := b.loadCookies()
	if err != nil {
		return err
	}
	if len(cookies) > 0 {
		applied := b.apply(ctx, p, cookies)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Info("session: cookies loaded", "file", b.cfg.CookieFile, "applied", applied, "saved", len(cookies))
		if err := p.Reload(ctx); err != nil {
			return fmt.Errorf("session: reload: %w", err)
		}
		return page.Sleep(ctx, b.cfg.Settle)
	}

	return b.login(ctx, p)
}

// loadCookies returns the usable entries of the credential file. A missing or
// malformed file yields nil so that the caller falls back to manual login.
func (b *Bootstrapper) loadCookies() ([]page.Cookie, error) {
	log := b.cfg.Logger
	data, exists, err := jsonfile.Read(b.cfg.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if !exists {
		log.Info("session: no saved cookies", "file", b.cfg.CookieFile)
		return nil, nil
	}

	var raw []page.Cookie
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("session: unreadable cookie file, logging in again", "file", b.cfg.CookieFile, "error", err)
		return nil, nil
	}
	out := raw[:0]
	for _, c := range raw {
		if c.Name == "" {
			continue
		}
		c.Domain = c.NormalizedDomain()
		out = append(out, c)
	}
	if len(out) == 0 {
		log.Warn("session: cookie file has no usable entries", "file", b.cfg.CookieFile)
		return nil, nil
	}
	return out, nil
}

func (b *Bootstrapper) apply(ctx context.Context, p page.Page, cookies []page.Cookie) int {
	log := b.cfg.Logger
	host := ""
	if u, err := url.Parse(p.URL()); err == nil {
		host = u.Hostname()
	}

	applied := 0
	for _, c := range cookies {
		if ctx.Err() != nil {
			return applied
		}
		if !page.DomainMatches(host, c.Domain) {
			log.Debug("session: skip cookie for other domain", "name", c.Name, "domain", c.Domain, "host", host)
			continue
		}
		if err := p.AddCookie(ctx, c); err != nil {
			log.Debug("session: skip cookie", "name", c.Name, "error", err)
			continue
		}
		applied++
	}
	return applied
}

const loginPrompt = `No usable saved session.
Log in in the browser window (Google sign-in works), make sure the question
list is visible, then press ENTER here.`

func (b *Bootstrapper) login(ctx context.Context, p page.Page) error {
	log := b.cfg.Logger
	if b.cfg.Confirmer == nil {
		return fmt.Errorf("session: manual login required but no confirmer configured")
	}
	log.Info("session: waiting for manual login", "url", p.URL())
	if err := b.cfg.Confirmer.Confirm(ctx, loginPrompt); err != nil {
		return fmt.Errorf("session: confirm login: %w", err)
	}

	cookies, err := p.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("session: read cookies: %w", err)
	}
	if len(cookies) == 0 {
		log.Warn("session: page has no cookies, nothing saved", "file", b.cfg.CookieFile)
		return nil
	}
	if err := jsonfile.Write(b.cfg.CookieFile, cookies, 0o600); err != nil {
		return fmt.Errorf("session: save cookies: %w", err)
	}
	log.Info("session: cookies saved", "file", b.cfg.CookieFile, "count", len(cookies))
	return nil
}
