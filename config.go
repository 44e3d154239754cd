package docspdf

import (
	"fmt"
	"net/url"
	"time"
)

// RestrictMode decides what RestrictPaths does to pages outside the entry
// URL's path.
type RestrictMode int

const (
	// RestrictContent drops the content of out-of-path pages but keeps
	// following their next links.
	RestrictContent RestrictMode = iota
	// RestrictTraversal also ends the crawl chain at the first
	// out-of-path page.
	RestrictTraversal
)

const (
	defaultMaxHeadingLevel = 4
	defaultDetailsSettle   = 800 * time.Millisecond
)

// Config describes one document run: where to crawl, what to keep and how
// the resulting PDF looks.
type Config struct {
	// EntryURLs start one crawl chain each, processed in order.
	EntryURLs []string
	// ExcludeURLs are skipped by exact match. Their next links are still
	// followed.
	ExcludeURLs []string

	// ContentSelector picks the element extracted from every page.
	ContentSelector string
	// PaginationSelector picks the link to the next page. An empty selector
	// or a missing element ends the chain.
	PaginationSelector string
	// ExcludeSelectors are removed from the assembled document.
	ExcludeSelectors []string
	// CSSStyle is injected into the assembled document as-is.
	CSSStyle string

	CoverTitle    string
	CoverSubtitle string
	// CoverImage is an http(s) URL, a file:// URL or a local path.
	CoverImage string

	DisableTOC bool
	TOCTitle   string
	// MaxHeadingLevel bounds the headings listed in the TOC. Defaults to 4.
	MaxHeadingLevel int

	// WaitForRender pauses after every navigation for client-side
	// rendering to settle.
	WaitForRender time.Duration

	// FilterKeyword keeps only pages whose keywords meta tag lists it.
	FilterKeyword string
	// BaseURL is emitted as a <base> tag so relative links resolve against
	// it instead of the crawled host.
	BaseURL string
	// ExcludePaths drops pages whose URL contains any of the fragments.
	ExcludePaths []string
	// RestrictPaths drops pages whose URL does not contain the entry URL's
	// path.
	RestrictPaths bool
	Restriction   RestrictMode

	// KeepDetailsClosed disables expanding <details> elements before
	// extraction.
	KeepDetailsClosed bool
	// DetailsSettle is the pause after each expanded <details>. Defaults to
	// 800ms.
	DetailsSettle time.Duration

	// MaxPages caps the number of pages loaded across all chains. Zero
	// means unlimited.
	MaxPages int

	// SkipScroll disables scrolling the assembled document to the bottom
	// before printing.
	SkipScroll bool

	// Page controls the PDF layout. The zero value means
	// [DefaultPageConfig].
	Page PageConfig
}

// Validate checks the settings that must be right before a browser is
// started.
func (c Config) Validate() error {
	if len(c.EntryURLs) == 0 {
		return ErrNoEntryURLs
	}
	for _, u := range c.EntryURLs {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("docspdf: invalid entry URL %q: %w", u, err)
		}
	}
	if c.ContentSelector == "" {
		return ErrNoContentSelector
	}
	if c.MaxHeadingLevel < 0 || c.MaxHeadingLevel > 6 {
		return ErrInvalidHeadingLevel
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxHeadingLevel == 0 {
		c.MaxHeadingLevel = defaultMaxHeadingLevel
	}
	if c.DetailsSettle == 0 {
		c.DetailsSettle = defaultDetailsSettle
	}
	if c.Page == (PageConfig{}) {
		c.Page = DefaultPageConfig()
	}
	return c
}

func (c Config) filter() Filter {
	return Filter{
		ExcludeURLs:   c.ExcludeURLs,
		Keyword:       c.FilterKeyword,
		ExcludePaths:  c.ExcludePaths,
		RestrictPaths: c.RestrictPaths,
	}
}
