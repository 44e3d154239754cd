package docspdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// PageVisit records what happened to one loaded page.
type PageVisit struct {
	URL    string
	Path   string // base path of the chain the page belongs to
	HTML   string // extracted fragment, empty unless Kept
	Kept   bool
	Reason Exclusion
}

// Accumulator holds the extracted fragments in crawl order: chain by chain,
// page by page.
type Accumulator struct {
	fragments []string
}

// Append adds a fragment.
func (a *Accumulator) Append(fragment string) {
	a.fragments = append(a.fragments, fragment)
}

// Len returns the number of fragments.
func (a Accumulator) Len() int {
	return len(a.fragments)
}

// Fragments returns a copy of the fragments.
func (a Accumulator) Fragments() []string {
	return slices.Clone(a.fragments)
}

// HTML returns the fragments concatenated.
func (a Accumulator) HTML() string {
	return strings.Join(a.fragments, "")
}

// Crawler walks the pagination chains of a [Config] through a single [Tab].
type Crawler struct {
	tab    Tab
	cfg    Config
	logger *log.Logger
	visit  func(PageVisit)
}

// NewCrawler returns a Crawler. A nil logger uses the default logger.
func NewCrawler(tab Tab, cfg Config, logger *log.Logger) *Crawler {
	if logger == nil {
		logger = log.Default()
	}
	return &Crawler{tab: tab, cfg: cfg.withDefaults(), logger: logger}
}

// OnVisit registers fn to be called after every loaded page.
func (c *Crawler) OnVisit(fn func(PageVisit)) {
	c.visit = fn
}

// Crawl visits every chain in order and returns the kept fragments. Chains
// end when a page has no next link. A failed navigation aborts the crawl.
func (c *Crawler) Crawl(ctx context.Context) (Accumulator, error) {
	var acc Accumulator
	filter := c.cfg.filter()
	loaded := 0

	for _, entry := range c.cfg.EntryURLs {
		u, err := url.Parse(entry)
		if err != nil {
			return acc, fmt.Errorf("docspdf: invalid entry URL %q: %w", entry, err)
		}
		basePath := u.Path

		for next := entry; next != ""; {
			if c.cfg.MaxPages > 0 && loaded >= c.cfg.MaxPages {
				c.logger.Warn("Page limit reached, stopping crawl", "limit", c.cfg.MaxPages, "next", next)
				return acc, nil
			}
			if isPDFURL(next) {
				c.logger.Warn("Ignoring PDF link", "url", next)
				break
			}

			visit, follow, err := c.visitPage(ctx, filter, next, basePath)
			if err != nil {
				return acc, err
			}
			loaded++
			if visit.Kept {
				acc.Append(visit.HTML)
			}
			if c.visit != nil {
				c.visit(visit)
			}
			next = follow
		}
	}
	return acc, nil
}

// visitPage loads pageURL, resolves its next link and extracts its content
// when the filter keeps it.
func (c *Crawler) visitPage(ctx context.Context, filter Filter, pageURL, basePath string) (PageVisit, string, error) {
	visit := PageVisit{URL: pageURL, Path: basePath}

	c.logger.Info("Retrieving html", "url", pageURL)
	if err := c.tab.Navigate(ctx, pageURL); err != nil {
		var navErr *NavigationError
		if !errors.As(err, &navErr) {
			err = &NavigationError{URL: pageURL, Err: err}
		}
		return visit, "", err
	}

	if d := c.cfg.WaitForRender; d > 0 {
		c.logger.Info("Waiting for render", "delay", d)
		if err := sleepCtx(ctx, d); err != nil {
			return visit, "", err
		}
	}

	// Resolved before expanding or extracting touches the DOM.
	next, err := c.nextURL(ctx)
	if err != nil {
		return visit, "", fmt.Errorf("docspdf: resolving next page on %s: %w", pageURL, err)
	}

	visit.Reason = filter.Check(ctx, pageURL, basePath, c.tab.MetaKeywords)
	if visit.Reason != Kept {
		c.logger.Info("Page excluded", "url", pageURL, "reason", visit.Reason)
		if visit.Reason == ExcludedRestriction && c.cfg.Restriction == RestrictTraversal {
			c.logger.Info("Leaving restricted path, ending chain", "base", basePath)
			next = ""
		}
		return visit, next, nil
	}

	if !c.cfg.KeepDetailsClosed {
		n, err := c.tab.ExpandDetails(ctx, c.cfg.DetailsSettle)
		if err != nil {
			return visit, "", fmt.Errorf("docspdf: expanding details on %s: %w", pageURL, err)
		}
		if n > 0 {
			c.logger.Debug("Expanded details", "url", pageURL, "count", n)
		}
	}

	html, found, err := c.tab.ContentHTML(ctx, c.cfg.ContentSelector)
	if err != nil {
		return visit, "", fmt.Errorf("docspdf: extracting content from %s: %w", pageURL, err)
	}
	if !found {
		c.logger.Info("Content selector not found", "url", pageURL, "selector", c.cfg.ContentSelector)
	}
	visit.HTML = html
	visit.Kept = true
	c.logger.Info("Success", "url", pageURL, "bytes", len(html))
	return visit, next, nil
}

// nextURL returns "" when the page has no pagination link.
func (c *Crawler) nextURL(ctx context.Context) (string, error) {
	if c.cfg.PaginationSelector == "" {
		return "", nil
	}
	return c.tab.LinkHref(ctx, c.cfg.PaginationSelector)
}

// isPDFURL reports whether u points at a PDF file.
func isPDFURL(u string) bool {
	if parsed, err := url.Parse(u); err == nil && parsed.Path != "" {
		return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u), ".pdf")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
