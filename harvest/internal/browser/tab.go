package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
)

// Tab wraps a Rod page as a page.Page. Closing the tab closes the manager
// that created it: a harvest run owns exactly one tab.
type Tab struct {
	Page    *rod.Page
	manager *Manager
	router  *rod.HijackRouter
}

// Open starts the manager and creates its tab, with stealth and resource
// blocking applied per configuration.
func Open(ctx context.Context, mgr *Manager) (*Tab, error) {
	b, err := mgr.Start(ctx)
	if err != nil {
		return nil, err
	}

	var p *rod.Page
	if mgr.cfg.Stealth {
		p, err = stealth.Page(b)
	} else {
		p, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	t := &Tab{Page: p, manager: mgr}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		t.router = applyResourceBlocking(p, mgr.cfg.ResourceBlocking)
	}
	return t, nil
}

// Navigate loads url with the configured timeout and waits for the load event.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, t.manager.cfg.NavTimeout)
	defer cancel()

	if err := t.Page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, classify(ctx, err))
	}
	if err := t.Page.Context(navCtx).WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.manager.cfg.Logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}
	return nil
}

// Reload reloads the current document.
func (t *Tab) Reload(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, t.manager.cfg.NavTimeout)
	defer cancel()

	if err := t.Page.Context(navCtx).Reload(); err != nil {
		return fmt.Errorf("browser: reload: %w", classify(ctx, err))
	}
	if err := t.Page.Context(navCtx).WaitLoad(); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// URL returns the current document address.
func (t *Tab) URL() string {
	info, err := t.Page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Find returns all elements matching selector.
func (t *Tab) Find(ctx context.Context, selector string) ([]page.Element, error) {
	els, err := t.Page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, classify(ctx, err))
	}
	return wrapElements(els), nil
}

// WaitFor polls until selector matches or timeout elapses.
func (t *Tab) WaitFor(ctx context.Context, selector string, timeout time.Duration) (page.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := t.Page.Context(waitCtx).Element(selector)
	if err != nil {
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return nil, fmt.Errorf("browser: wait %q: %w", selector, page.ErrNotFound)
		}
		return nil, fmt.Errorf("browser: wait %q: %w", selector, classify(ctx, err))
	}
	return &Element{el: el}, nil
}

// Cookies returns the cookies of the current document.
func (t *Tab) Cookies(ctx context.Context) ([]page.Cookie, error) {
	cookies, err := t.Page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("browser: cookies: %w", classify(ctx, err))
	}
	out := make([]page.Cookie, 0, len(cookies))
	for _, c := range cookies {
		pc := page.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		}
		if !c.Session {
			pc.Expiry = int64(c.Expires)
		}
		out = append(out, pc)
	}
	return out, nil
}

// AddCookie installs c for the current document's origin.
func (t *Tab) AddCookie(ctx context.Context, c page.Cookie) error {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.NormalizedDomain(),
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: proto.NetworkCookieSameSite(c.SameSite),
	}
	if param.Domain == "" {
		if u, err := url.Parse(t.URL()); err == nil {
			param.URL = u.Scheme + "://" + u.Host
		}
	}
	if c.Expiry > 0 {
		param.Expires = proto.TimeSinceEpoch(c.Expiry)
	}
	if err := t.Page.Context(ctx).SetCookies([]*proto.NetworkCookieParam{param}); err != nil {
		return fmt.Errorf("browser: add cookie %s: %w", c.Name, classify(ctx, err))
	}
	return nil
}

// Close closes the tab, stops request interception and shuts Chrome down.
func (t *Tab) Close() error {
	if t.router != nil {
		_ = t.router.Stop()
		t.router = nil
	}
	var errs []error
	if t.Page != nil {
		if err := t.Page.Close(); err != nil {
			errs = append(errs, err)
		}
		t.Page = nil
	}
	if err := t.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Element wraps a Rod element.
type Element struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []page.Element {
	out := make([]page.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el}
	}
	return out
}

// textJS reads innerText, falling back to textContent for SVG nodes, which
// have no innerText.
const textJS = `() => {
	const t = this.innerText;
	return (t === undefined || t === null) ? (this.textContent || "") : t;
}`

// Text returns the rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(textJS)
	if err != nil {
		return "", fmt.Errorf("browser: text: %w", classify(ctx, err))
	}
	return res.Value.Str(), nil
}

const ownTextJS = `() => Array.from(this.childNodes)
	.filter(n => n.nodeType === Node.TEXT_NODE)
	.map(n => n.textContent.trim())
	.filter(t => t !== "")
	.join(" ")`

// OwnText returns the element's direct text nodes.
func (e *Element) OwnText(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(ownTextJS)
	if err != nil {
		return "", fmt.Errorf("browser: own text: %w", classify(ctx, err))
	}
	return res.Value.Str(), nil
}

// Attribute returns the attribute value.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("browser: attribute %s: %w", name, classify(ctx, err))
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Find queries descendants.
func (e *Element) Find(ctx context.Context, selector string) ([]page.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, classify(ctx, err))
	}
	return wrapElements(els), nil
}

// Click left-clicks the element once.
func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click: %w", classify(ctx, err))
	}
	return nil
}

// ScrollIntoView scrolls the element into the viewport.
func (e *Element) ScrollIntoView(ctx context.Context) error {
	if err := e.el.Context(ctx).ScrollIntoView(); err != nil {
		return fmt.Errorf("browser: scroll: %w", classify(ctx, err))
	}
	return nil
}

// classify maps Rod errors onto the page sentinels. Errors that mean the
// tab is gone become page.ErrFault. When ctx is done, its error passes
// through unwrapped, so a caller's own deadline is never a fault; only
// deadlines internal to the operation (navigation timeout) are.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		return fmt.Errorf("%w: %w", page.ErrFault, err)
	}
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", page.ErrNotFound, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", page.ErrFault, err)
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"target closed", "no target with given id", "session closed", "websocket", "connection refused"} {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %w", page.ErrFault, err)
		}
	}
	return err
}
