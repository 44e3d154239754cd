package docspdf

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// fakePage is one scripted document served by fakeTab.
type fakePage struct {
	keywords    string
	hasKeywords bool
	content     string // outer HTML of the content element, "" when missing
	next        string
	details     int
	navErr      error
	nextErr     error
}

// fakeTab is an in-memory Tab. It records every call in order.
type fakeTab struct {
	pages   map[string]*fakePage
	current string
	body    string
	calls   []string
	blocked func(string) bool
	pdf     []byte
	removed map[string]int
	styles  []string
}

func newFakeTab(pages map[string]*fakePage) *fakeTab {
	return &fakeTab{pages: pages, pdf: []byte("%PDF-fake"), removed: map[string]int{}}
}

func (t *fakeTab) record(call string) { t.calls = append(t.calls, call) }

// callsNamed returns the recorded calls starting with prefix.
func (t *fakeTab) callsNamed(prefix string) []string {
	var out []string
	for _, c := range t.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (t *fakeTab) Block(_ context.Context, match func(string) bool) error {
	t.record("block")
	t.blocked = match
	return nil
}

func (t *fakeTab) Navigate(ctx context.Context, url string) error {
	t.record("navigate " + url)
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := t.pages[url]
	if !ok {
		return &NavigationError{URL: url, Reason: "net::ERR_NAME_NOT_RESOLVED"}
	}
	if p.navErr != nil {
		return p.navErr
	}
	t.current = url
	t.body = p.content
	return nil
}

func (t *fakeTab) page() *fakePage {
	if p, ok := t.pages[t.current]; ok {
		return p
	}
	return &fakePage{}
}

func (t *fakeTab) MetaKeywords(context.Context) (string, bool, error) {
	t.record("keywords " + t.current)
	p := t.page()
	return p.keywords, p.hasKeywords, nil
}

func (t *fakeTab) ExpandDetails(_ context.Context, _ time.Duration) (int, error) {
	t.record("details " + t.current)
	return t.page().details, nil
}

func (t *fakeTab) ContentHTML(_ context.Context, _ string) (string, bool, error) {
	t.record("content " + t.current)
	p := t.page()
	return p.content, p.content != "", nil
}

func (t *fakeTab) LinkHref(_ context.Context, _ string) (string, error) {
	t.record("next " + t.current)
	if err := t.page().nextErr; err != nil {
		return "", err
	}
	return t.page().next, nil
}

func (t *fakeTab) SetBody(_ context.Context, html string) error {
	t.record("setbody")
	t.body = html
	return nil
}

func (t *fakeTab) RemoveAll(_ context.Context, selector string) (int, error) {
	t.record("remove " + selector)
	n := strings.Count(t.body, selector)
	t.body = strings.ReplaceAll(t.body, selector, "")
	t.removed[selector] += n
	return n, nil
}

func (t *fakeTab) AddStyle(_ context.Context, css string) error {
	t.record("style")
	t.styles = append(t.styles, css)
	return nil
}

func (t *fakeTab) BodyHTML(context.Context) (string, error) {
	t.record("body")
	return t.body, nil
}

func (t *fakeTab) ScrollToBottom(context.Context) error {
	t.record("scroll")
	return nil
}

func (t *fakeTab) PrintToPDF(_ context.Context, _ PageConfig) ([]byte, error) {
	t.record("print")
	return t.pdf, nil
}

// fakeFetcher serves resources from memory.
type fakeFetcher map[string]*Resource

func (f fakeFetcher) Fetch(_ context.Context, url string) (*Resource, error) {
	if r, ok := f[url]; ok {
		return r, nil
	}
	return nil, errors.New("not found: " + url)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
