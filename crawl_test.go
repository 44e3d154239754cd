package docspdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crawlConfig(entries ...string) Config {
	return Config{
		EntryURLs:          entries,
		ContentSelector:    "article",
		PaginationSelector: "a.next",
	}
}

func TestCrawl_FollowsChain(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/docs/a": {content: "<article>A</article>", next: "https://d.test/docs/b"},
		"https://d.test/docs/b": {content: "<article>B</article>"},
	})
	var visits []PageVisit
	c := NewCrawler(tab, crawlConfig("https://d.test/docs/a"), discardLogger())
	c.OnVisit(func(v PageVisit) { visits = append(visits, v) })

	acc, err := c.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"<article>A</article>", "<article>B</article>"}, acc.Fragments())
	assert.Equal(t, "<article>A</article><article>B</article>", acc.HTML())
	require.Len(t, visits, 2)
	assert.True(t, visits[0].Kept)
	assert.Equal(t, "/docs/a", visits[1].Path, "the base path belongs to the chain")
}

func TestCrawl_ChainsInOrder(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/one":  {content: "1", next: "https://d.test/two"},
		"https://d.test/two":  {content: "2"},
		"https://d.test/tres": {content: "3"},
	})
	acc, err := NewCrawler(tab, crawlConfig("https://d.test/one", "https://d.test/tres"), discardLogger()).
		Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, acc.Fragments())
}

func TestCrawl_NextResolvedBeforeExtraction(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A"},
	})
	_, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"navigate https://d.test/a",
		"next https://d.test/a",
		"details https://d.test/a",
		"content https://d.test/a",
	}, tab.calls)
}

func TestCrawl_RestrictPaths(t *testing.T) {
	pages := map[string]*fakePage{
		"https://d.test/docs/intro":      {content: "intro", next: "https://d.test/blog/post"},
		"https://d.test/blog/post":       {content: "post", next: "https://d.test/docs/intro/more"},
		"https://d.test/docs/intro/more": {content: "more"},
	}

	t.Run("content mode skips the page and keeps going", func(t *testing.T) {
		cfg := crawlConfig("https://d.test/docs/intro")
		cfg.RestrictPaths = true
		var reasons []Exclusion
		c := NewCrawler(newFakeTab(pages), cfg, discardLogger())
		c.OnVisit(func(v PageVisit) { reasons = append(reasons, v.Reason) })

		acc, err := c.Crawl(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"intro", "more"}, acc.Fragments())
		assert.Equal(t, []Exclusion{Kept, ExcludedRestriction, Kept}, reasons)
	})

	t.Run("traversal mode ends the chain", func(t *testing.T) {
		cfg := crawlConfig("https://d.test/docs/intro")
		cfg.RestrictPaths = true
		cfg.Restriction = RestrictTraversal
		tab := newFakeTab(pages)

		acc, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"intro"}, acc.Fragments())
		assert.Len(t, tab.callsNamed("navigate"), 2)
	})
}

func TestCrawl_ExcludedPageSkipsDOMWork(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/b", details: 2},
		"https://d.test/b": {content: "B"},
	})
	cfg := crawlConfig("https://d.test/a")
	cfg.ExcludeURLs = []string{"https://d.test/a"}

	acc, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, acc.Fragments())
	assert.Equal(t, []string{"details https://d.test/b"}, tab.callsNamed("details"))
	assert.Equal(t, []string{"content https://d.test/b"}, tab.callsNamed("content"))
}

func TestCrawl_KeywordFilter(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/b", keywords: "go, cli", hasKeywords: true},
		"https://d.test/b": {content: "B", next: "https://d.test/c", keywords: "python", hasKeywords: true},
		"https://d.test/c": {content: "C"},
	})
	cfg := crawlConfig("https://d.test/a")
	cfg.FilterKeyword = "cli"

	acc, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, acc.Fragments())
}

func TestCrawl_KeepDetailsClosed(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{"https://d.test/a": {content: "A", details: 3}})
	cfg := crawlConfig("https://d.test/a")
	cfg.KeepDetailsClosed = true

	_, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tab.callsNamed("details"))
}

func TestCrawl_MissingContentKeepsEmptyFragment(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {next: "https://d.test/b"},
		"https://d.test/b": {content: "B"},
	})
	var visits []PageVisit
	c := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger())
	c.OnVisit(func(v PageVisit) { visits = append(visits, v) })

	acc, err := c.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "B"}, acc.Fragments())
	assert.True(t, visits[0].Kept)
}

func TestCrawl_NavigationErrorIsFatal(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/missing"},
	})
	acc, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(context.Background())

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "https://d.test/missing", navErr.URL)
	assert.Equal(t, 1, acc.Len())
}

func TestCrawl_WrapsPlainNavigationErrors(t *testing.T) {
	boom := errors.New("boom")
	tab := newFakeTab(map[string]*fakePage{"https://d.test/a": {navErr: boom}})

	_, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(context.Background())
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.ErrorIs(t, err, boom)
}

func TestCrawl_NextLinkErrorIsFatal(t *testing.T) {
	timeout := errors.New("evaluate: context deadline exceeded")
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/b", nextErr: timeout},
		"https://d.test/b": {content: "B"},
	})
	acc, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(context.Background())

	require.ErrorIs(t, err, timeout)
	assert.ErrorContains(t, err, "resolving next page on https://d.test/a")
	assert.Zero(t, acc.Len())
	assert.Empty(t, tab.callsNamed("content"), "nothing is extracted from the failing page")
}

func TestCrawl_DoesNotFollowPDFLinks(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/files/manual.PDF?dl=1"},
	})
	acc, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, acc.Len())
	assert.Len(t, tab.callsNamed("navigate"), 1)
}

func TestCrawl_MaxPages(t *testing.T) {
	// a and b link to each other.
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/b"},
		"https://d.test/b": {content: "B", next: "https://d.test/a"},
	})
	cfg := crawlConfig("https://d.test/a")
	cfg.MaxPages = 5

	acc, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, acc.Len())
}

func TestCrawl_NoPaginationSelector(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{
		"https://d.test/a": {content: "A", next: "https://d.test/b"},
	})
	cfg := crawlConfig("https://d.test/a")
	cfg.PaginationSelector = ""

	acc, err := NewCrawler(tab, cfg, discardLogger()).Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, acc.Len())
	assert.Empty(t, tab.callsNamed("next"))
}

func TestCrawl_CancelledContext(t *testing.T) {
	tab := newFakeTab(map[string]*fakePage{"https://d.test/a": {content: "A"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCrawler(tab, crawlConfig("https://d.test/a"), discardLogger()).Crawl(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsPDFURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://d.test/a.pdf", true},
		{"https://d.test/A.PDF", true},
		{"https://d.test/a.pdf?x=1", true},
		{"https://d.test/a.pdf#p2", true},
		{"https://d.test/pdf/intro", false},
		{"https://d.test/a.pdfx", false},
		{"manual.pdf", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPDFURL(tt.url), tt.url)
	}
}
