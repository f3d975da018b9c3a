// CLAUDE:SUMMARY Static browsing context: goquery documents loaded over HTTP (resty + cookie jar) or from an in-memory page map.
// Package static implements the HTTP-only browsing context. No browser, no
// JavaScript: each navigation loads a document once and queries run against
// the parsed tree. It serves server-rendered sites and, loaded from an
// in-memory Site, acts as the deterministic page used by pipeline tests.
package static

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/publicsuffix"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
)

// Loader fetches the document at rawURL. finalURL is the address after
// redirects; empty means rawURL.
type Loader func(ctx context.Context, rawURL string) (body []byte, finalURL string, err error)

// ClickFunc simulates the effect of clicking el, typically by swapping the
// current document with SetDocument.
type ClickFunc func(ctx context.Context, p *Page, el *Element) error

// Page is a static browsing context.
type Page struct {
	load    Loader
	jar     *cookiejar.Jar
	onClick ClickFunc
	logger  *slog.Logger

	url    *url.URL
	doc    *goquery.Document
	closed bool
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Page) { p.logger = l }
}

// WithClickHandler installs the function run by Element.Click.
// Without one, Click returns page.ErrUnsupported.
func WithClickHandler(fn ClickFunc) Option {
	return func(p *Page) { p.onClick = fn }
}

// New creates a Page that loads documents with load.
func New(load Loader, opts ...Option) *Page {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	p := &Page{
		load:   load,
		jar:    jar,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	_ = p.SetDocument([]byte("<html><head></head><body></body></html>"))
	return p
}

// SetDocument replaces the current document with html, keeping the URL.
func (p *Page) SetDocument(html []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return fmt.Errorf("static: parse: %w", err)
	}
	p.doc = doc
	return nil
}

// Navigate loads rawURL. Relative URLs resolve against the current document.
func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	if p.closed {
		return page.ErrClosed
	}
	target, err := p.resolve(rawURL)
	if err != nil {
		return fmt.Errorf("static: navigate %s: %w: %w", rawURL, page.ErrFault, err)
	}

	body, final, err := p.load(ctx, target.String())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("static: navigate %s: %w: %w", target, page.ErrFault, err)
	}
	if final != "" {
		if u, err := url.Parse(final); err == nil {
			target = u
		}
	}
	if err := p.SetDocument(body); err != nil {
		return fmt.Errorf("static: navigate %s: %w: %w", target, page.ErrFault, err)
	}
	p.url = target

	p.logger.Debug("static: loaded", "url", target.String(), "size", len(body))
	return nil
}

// Reload loads the current URL again.
func (p *Page) Reload(ctx context.Context) error {
	if p.url == nil {
		return fmt.Errorf("static: reload: %w: no document", page.ErrFault)
	}
	return p.Navigate(ctx, p.url.String())
}

// URL returns the address of the current document.
func (p *Page) URL() string {
	if p.url == nil {
		return ""
	}
	return p.url.String()
}

// Find returns elements of the current document matching selector.
func (p *Page) Find(ctx context.Context, selector string) ([]page.Element, error) {
	if p.closed {
		return nil, page.ErrClosed
	}
	return p.find(p.doc.Selection, selector)
}

// WaitFor checks selector once. A static document never changes on its own,
// so there is nothing to wait for.
func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) (page.Element, error) {
	els, err := p.Find(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("static: wait %q: %w", selector, page.ErrNotFound)
	}
	return els[0], nil
}

// Cookies returns the jar cookies sent to the current URL. The jar does not
// expose cookie scopes, so Domain is the current host.
func (p *Page) Cookies(ctx context.Context) ([]page.Cookie, error) {
	if p.url == nil {
		return nil, nil
	}
	var out []page.Cookie
	for _, c := range p.jar.Cookies(p.url) {
		out = append(out, page.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: p.url.Hostname(),
			Path:   "/",
		})
	}
	return out, nil
}

// AddCookie stores c in the jar under its domain.
func (p *Page) AddCookie(ctx context.Context, c page.Cookie) error {
	if p.closed {
		return page.ErrClosed
	}
	domain := c.NormalizedDomain()
	if domain == "" && p.url != nil {
		domain = p.url.Hostname()
	}
	if domain == "" {
		return fmt.Errorf("static: add cookie %s: no domain", c.Name)
	}
	scheme := "https"
	if p.url != nil {
		scheme = p.url.Scheme
	}
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if c.Expiry > 0 {
		hc.Expires = time.Unix(c.Expiry, 0)
	}
	p.jar.SetCookies(&url.URL{Scheme: scheme, Host: domain, Path: "/"}, []*http.Cookie{hc})
	return nil
}

// Close marks the page closed.
func (p *Page) Close() error {
	p.closed = true
	return nil
}

func (p *Page) resolve(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if p.url != nil {
		u = p.url.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("relative url %q without base", rawURL)
	}
	return u, nil
}

func (p *Page) find(root *goquery.Selection, selector string) ([]page.Element, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("static: selector %q: %w", selector, err)
	}
	matches := root.FindMatcher(m)
	out := make([]page.Element, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, sel: s})
	})
	return out, nil
}

// Element is a node of a static document.
type Element struct {
	page *Page
	sel  *goquery.Selection
}

// Text returns the text content of the element.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

// OwnText joins the trimmed direct text nodes of the element.
func (e *Element) OwnText(ctx context.Context) (string, error) {
	var parts []string
	e.sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#text" {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " "), nil
}

// Attribute returns the attribute value.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// Find queries descendants.
func (e *Element) Find(ctx context.Context, selector string) ([]page.Element, error) {
	return e.page.find(e.sel, selector)
}

// Click runs the page's click handler.
func (e *Element) Click(ctx context.Context) error {
	if e.page.onClick == nil {
		return fmt.Errorf("static: click: %w", page.ErrUnsupported)
	}
	return e.page.onClick(ctx, e.page, e)
}

// ScrollIntoView is a no-op: static documents have no viewport.
func (e *Element) ScrollIntoView(ctx context.Context) error { return nil }
