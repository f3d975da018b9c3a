// CLAUDE:SUMMARY Browsing-context capability consumed by the harvest pipeline: navigation, CSS queries, clicks, condition waits, cookies.
// Package page defines the browsing-context capability the harvest pipeline
// consumes. Backends (Rod, static goquery documents) implement it; the
// pipeline never depends on a specific rendering engine.
package page

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound means a query or condition wait matched nothing.
	ErrNotFound = errors.New("page: not found")

	// ErrFault means the page is unusable: navigation failed, the target
	// closed or the connection to the browser dropped.
	ErrFault = errors.New("page: fault")

	// ErrUnsupported is returned by backends that cannot perform an action.
	ErrUnsupported = errors.New("page: unsupported")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("page: closed")
)

// Page is one browsing context.
type Page interface {
	// Navigate loads url and waits for the document load event.
	Navigate(ctx context.Context, url string) error
	// Reload reloads the current document.
	Reload(ctx context.Context) error
	// URL returns the address of the current document.
	URL() string
	// Find returns all elements matching a CSS selector, in document order.
	// No match is an empty slice, not an error.
	Find(ctx context.Context, selector string) ([]Element, error)
	// WaitFor blocks until an element matches selector or timeout elapses.
	// A timeout returns ErrNotFound.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	// Cookies returns the cookies visible to the current document.
	Cookies(ctx context.Context) ([]Cookie, error)
	// AddCookie installs c in the browsing context.
	AddCookie(ctx context.Context, c Cookie) error
	// Close releases the browsing context and everything it owns.
	Close() error
}

// Element is a node returned by Find.
type Element interface {
	// Text returns the rendered text of the element and its descendants.
	Text(ctx context.Context) (string, error)
	// OwnText returns the element's direct text nodes, each trimmed, joined
	// by single spaces. Text of child elements is excluded.
	OwnText(ctx context.Context) (string, error)
	// Attribute returns the value of attribute name; ok is false when absent.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	// Find queries descendants of the element.
	Find(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
}

// Cookie mirrors the JSON objects stored in the credential file.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expiry   int64  `json:"expiry,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// NormalizedDomain returns the cookie domain without a leading dot.
func (c Cookie) NormalizedDomain() string {
	return strings.TrimPrefix(c.Domain, ".")
}

// DomainMatches reports whether a cookie scoped to domain applies to host.
// An empty domain is a host-only cookie for the current document.
func DomainMatches(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" {
		return true
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// First returns the first element matching selector, or ErrNotFound.
func First(ctx context.Context, p Page, selector string) (Element, error) {
	els, err := p.Find(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return els[0], nil
}

// FirstText returns the trimmed text of the first element matching selector.
func FirstText(ctx context.Context, p Page, selector string) (string, error) {
	el, err := First(ctx, p, selector)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Sleep waits d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 || ctx.Err() != nil {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsMiss reports whether err is a plain "nothing matched" outcome.
func IsMiss(err error) bool { return errors.Is(err, ErrNotFound) }

// IsFault reports whether err leaves the page unusable.
func IsFault(err error) bool { return errors.Is(err, ErrFault) }
