package docspdf

import (
	"context"
	"time"
)

// Tab is the single browsing context a run drives. Every method exchanges
// plain data with the page; no Go code runs inside it.
type Tab interface {
	// Block aborts every request whose URL satisfies match.
	Block(ctx context.Context, match func(url string) bool) error
	// Navigate loads url and waits until the network is idle.
	Navigate(ctx context.Context, url string) error
	// MetaKeywords returns the content of <meta name="keywords">.
	MetaKeywords(ctx context.Context) (content string, found bool, err error)
	// ExpandDetails opens every collapsed <details> element one at a time,
	// pausing settle after each, and reports how many were opened.
	ExpandDetails(ctx context.Context, settle time.Duration) (int, error)
	// ContentHTML marks the first element matching selector with a page
	// break and returns its outer HTML.
	ContentHTML(ctx context.Context, selector string) (html string, found bool, err error)
	// LinkHref returns the absolute href of the first element matching
	// selector, or "" when there is none.
	LinkHref(ctx context.Context, selector string) (string, error)
	// SetBody replaces the document body.
	SetBody(ctx context.Context, html string) error
	// RemoveAll removes every element matching selector.
	RemoveAll(ctx context.Context, selector string) (int, error)
	// AddStyle appends a <style> element holding css.
	AddStyle(ctx context.Context, css string) error
	// BodyHTML returns the current body markup.
	BodyHTML(ctx context.Context) (string, error)
	// ScrollToBottom scrolls through the whole document so lazy media loads.
	ScrollToBottom(ctx context.Context) error
	// PrintToPDF renders the current document.
	PrintToPDF(ctx context.Context, pg PageConfig) ([]byte, error)
}

// Resource is a fetched binary, e.g. a cover image.
type Resource struct {
	Data        []byte
	ContentType string
}

// Fetcher retrieves binary resources.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Resource, error)
}
