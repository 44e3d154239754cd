package docspdf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Scripts evaluated in the page. Each is a function expression applied to
// JSON encoded arguments and never returns null.
const (
	jsMetaKeywords = `() => {
	const m = document.querySelector('meta[name="keywords"]');
	if (!m) return {found: false, content: ""};
	return {found: true, content: m.getAttribute('content') || ""};
}`

	jsOpenNextDetails = `() => {
	const tried = window.__docspdfDetails || (window.__docspdfDetails = new WeakSet());
	for (const d of document.querySelectorAll('details')) {
		if (d.open || tried.has(d)) continue;
		tried.add(d);
		const summary = d.querySelector(':scope > summary');
		if (!summary) continue;
		summary.click();
		return true;
	}
	return false;
}`

	jsContentHTML = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return {found: false, html: ""};
	el.style.pageBreakAfter = 'always';
	return {found: true, html: el.outerHTML};
}`

	jsLinkHref = `(sel) => {
	const el = document.querySelector(sel);
	if (!el || typeof el.href !== 'string') return "";
	return el.href;
}`

	jsSetBody = `(html) => {
	document.body.innerHTML = html;
	return true;
}`

	jsRemoveAll = `(sel) => {
	const els = document.querySelectorAll(sel);
	els.forEach((el) => el.remove());
	return els.length;
}`

	jsAddStyle = `(css) => {
	const s = document.createElement('style');
	s.textContent = css;
	(document.head || document.documentElement).appendChild(s);
	return true;
}`

	jsBodyHTML = `() => document.body ? document.body.innerHTML : ""`

	jsScrollStep = `() => {
	window.scrollBy(0, window.innerHeight);
	const el = document.scrollingElement || document.documentElement;
	return Math.ceil(window.scrollY + window.innerHeight) >= el.scrollHeight;
}`
)

const (
	scrollDelay    = 100 * time.Millisecond
	maxScrollSteps = 5000
)

// chromeTab implements [Tab] on a chromedp target.
type chromeTab struct {
	ctx     context.Context
	timeout time.Duration
	logger  *log.Logger
	idle    chan cdp.LoaderID

	mu    sync.Mutex
	block func(string) bool
}

var _ Tab = (*chromeTab)(nil)

// newChromeTab opens a target in the browser held by browserCtx. The
// returned cancel func closes it.
func newChromeTab(browserCtx context.Context, timeout time.Duration, logger *log.Logger) (*chromeTab, context.CancelFunc, error) {
	tabCtx, cancel := chromedp.NewContext(browserCtx)
	t := &chromeTab{
		ctx:     tabCtx,
		timeout: timeout,
		logger:  logger,
		idle:    make(chan cdp.LoaderID, 64),
	}
	chromedp.ListenTarget(tabCtx, t.onEvent)

	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("docspdf: opening tab: %w", err)
	}
	return t, cancel, nil
}

func (t *chromeTab) onEvent(ev any) {
	switch ev := ev.(type) {
	case *page.EventLifecycleEvent:
		if ev.Name != "networkIdle" {
			return
		}
		select {
		case t.idle <- ev.LoaderID:
		default:
		}
	case *fetch.EventRequestPaused:
		// Listeners must not block; commands go out from a goroutine.
		go t.resolvePaused(ev)
	}
}

func (t *chromeTab) resolvePaused(ev *fetch.EventRequestPaused) {
	c := chromedp.FromContext(t.ctx)
	if c == nil || c.Target == nil {
		return
	}
	ctx := cdp.WithExecutor(t.ctx, c.Target)

	t.mu.Lock()
	match := t.block
	t.mu.Unlock()

	var err error
	if match != nil && ev.Request != nil && match(ev.Request.URL) {
		t.logger.Warn("Blocked request", "url", ev.Request.URL)
		err = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(ctx)
	} else {
		err = fetch.ContinueRequest(ev.RequestID).Do(ctx)
	}
	if err != nil && t.ctx.Err() == nil {
		t.logger.Debug("Resolving paused request failed", "request", ev.RequestID, "err", err)
	}
}

// run executes actions on the tab, bounded by the configured timeout.
func (t *chromeTab) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := t.ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, t.timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// eval applies the function expression fn to args and decodes the result
// into res.
func (t *chromeTab) eval(ctx context.Context, fn string, res any, args ...any) error {
	encoded := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("docspdf: encoding script argument: %w", err)
		}
		encoded[i] = string(b)
	}
	expr := "(" + fn + ")(" + strings.Join(encoded, ", ") + ")"
	return t.run(ctx, chromedp.Evaluate(expr, res))
}

func (t *chromeTab) Block(ctx context.Context, match func(url string) bool) error {
	t.mu.Lock()
	t.block = match
	t.mu.Unlock()

	err := t.run(ctx, fetch.Enable().WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}))
	if err != nil {
		return fmt.Errorf("docspdf: enabling request interception: %w", err)
	}
	return nil
}

func (t *chromeTab) Navigate(ctx context.Context, rawURL string) error {
	t.drainIdle()

	var loaderID cdp.LoaderID
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, lid, errText, isDownload, err := page.Navigate(rawURL).Do(ctx)
		switch {
		case err != nil:
			return err
		case errText != "":
			return &NavigationError{URL: rawURL, Reason: errText}
		case isDownload:
			return &NavigationError{URL: rawURL, Reason: "navigation started a download"}
		}
		loaderID = lid
		return nil
	}))
	if err != nil {
		var navErr *NavigationError
		if errors.As(err, &navErr) {
			return err
		}
		return &NavigationError{URL: rawURL, Err: err}
	}

	// Same document navigations have no loader and fire no lifecycle events.
	if loaderID == "" {
		return nil
	}
	return t.waitIdle(ctx, rawURL, loaderID)
}

func (t *chromeTab) drainIdle() {
	for {
		select {
		case <-t.idle:
		default:
			return
		}
	}
}

func (t *chromeTab) waitIdle(ctx context.Context, rawURL string, loaderID cdp.LoaderID) error {
	var timeout <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		select {
		case id := <-t.idle:
			if id == loaderID {
				return nil
			}
		case <-timeout:
			return &NavigationError{URL: rawURL, Reason: "timed out waiting for network idle"}
		case <-ctx.Done():
			return &NavigationError{URL: rawURL, Err: ctx.Err()}
		case <-t.ctx.Done():
			return &NavigationError{URL: rawURL, Err: t.ctx.Err()}
		}
	}
}

func (t *chromeTab) MetaKeywords(ctx context.Context) (string, bool, error) {
	var res struct {
		Found   bool   `json:"found"`
		Content string `json:"content"`
	}
	if err := t.eval(ctx, jsMetaKeywords, &res); err != nil {
		return "", false, err
	}
	return res.Content, res.Found, nil
}

func (t *chromeTab) ExpandDetails(ctx context.Context, settle time.Duration) (int, error) {
	opened := 0
	for {
		var more bool
		if err := t.eval(ctx, jsOpenNextDetails, &more); err != nil {
			return opened, err
		}
		if !more {
			return opened, nil
		}
		opened++
		if err := sleepCtx(ctx, settle); err != nil {
			return opened, err
		}
	}
}

func (t *chromeTab) ContentHTML(ctx context.Context, selector string) (string, bool, error) {
	var res struct {
		Found bool   `json:"found"`
		HTML  string `json:"html"`
	}
	if err := t.eval(ctx, jsContentHTML, &res, selector); err != nil {
		return "", false, err
	}
	return res.HTML, res.Found, nil
}

func (t *chromeTab) LinkHref(ctx context.Context, selector string) (string, error) {
	var href string
	if err := t.eval(ctx, jsLinkHref, &href, selector); err != nil {
		return "", err
	}
	return href, nil
}

func (t *chromeTab) SetBody(ctx context.Context, html string) error {
	var ok bool
	return t.eval(ctx, jsSetBody, &ok, html)
}

func (t *chromeTab) RemoveAll(ctx context.Context, selector string) (int, error) {
	var n int
	if err := t.eval(ctx, jsRemoveAll, &n, selector); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *chromeTab) AddStyle(ctx context.Context, css string) error {
	var ok bool
	return t.eval(ctx, jsAddStyle, &ok, css)
}

func (t *chromeTab) BodyHTML(ctx context.Context) (string, error) {
	var html string
	if err := t.eval(ctx, jsBodyHTML, &html); err != nil {
		return "", err
	}
	return html, nil
}

func (t *chromeTab) ScrollToBottom(ctx context.Context) error {
	for range maxScrollSteps {
		var done bool
		if err := t.eval(ctx, jsScrollStep, &done); err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := sleepCtx(ctx, scrollDelay); err != nil {
			return err
		}
	}
	t.logger.Warn("Document still growing, giving up scrolling", "steps", maxScrollSteps)
	return nil
}

// PrintToPDF is not bounded by the operation timeout; large documents take
// a long time to print.
func (t *chromeTab) PrintToPDF(ctx context.Context, pg PageConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved := pg.resolved()
	width, height := resolved.paperDimensions()
	marginTop, marginRight, marginBottom, marginLeft := resolved.marginInches()

	var buf []byte
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.PrintToPDF().
			WithPaperWidth(width).
			WithPaperHeight(height).
			WithMarginTop(marginTop).
			WithMarginRight(marginRight).
			WithMarginBottom(marginBottom).
			WithMarginLeft(marginLeft).
			WithScale(resolved.Scale).
			WithPrintBackground(resolved.PrintBackground).
			WithLandscape(resolved.Orientation == Landscape).
			WithPreferCSSPageSize(resolved.PreferCSSPageSize).
			WithDisplayHeaderFooter(resolved.DisplayHeaderFooter)

		if resolved.HeaderTemplate != "" {
			params = params.WithHeaderTemplate(resolved.HeaderTemplate)
		}
		if resolved.FooterTemplate != "" {
			params = params.WithFooterTemplate(resolved.FooterTemplate)
		}

		var err error
		buf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("docspdf: printing PDF: %w", err)
	}
	return buf, nil
}
