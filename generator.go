package docspdf

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// Generator turns documentation sites into PDF documents.
//
// A Generator owns one headless browser with a private, throwaway profile
// directory. Runs are sequential within a call to [Generator.Generate]:
// a single tab crawls every page and prints the result.
//
// Call [Generator.Close] when the Generator is no longer needed to stop the
// browser and remove its profile.
type Generator struct {
	cfg           generatorConfig
	profileDir    string
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewGenerator starts a headless browser configured by opts. The caller
// must call [Generator.Close] when finished.
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}
	if cfg.fetcher == nil {
		cfg.fetcher = NewHTTPFetcher()
	}

	chromePath := cfg.chromePath
	if chromePath == "" && cfg.autoDownload && lookBrowser() == "" {
		cfg.logger.Info("No local Chrome found, downloading Chromium")
		p, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		chromePath = p
	}

	dir, err := newProfileDir()
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
		chromedp.UserDataDir(dir),
	)
	if chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	for _, f := range cfg.flags {
		if opt, ok := chromeFlag(f); ok {
			allocOpts = append(allocOpts, opt)
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	g := &Generator{
		cfg:           cfg,
		profileDir:    dir,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		g.Close()
		return nil, fmt.Errorf("docspdf: starting browser: %w", err)
	}
	cfg.logger.Debug("Browser started", "profile", dir)
	return g, nil
}

// Close stops the browser and removes its profile directory. Close is
// idempotent.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	g.browserCancel()
	g.allocCancel()

	if err := os.RemoveAll(g.profileDir); err != nil {
		return fmt.Errorf("docspdf: removing profile directory: %w", err)
	}
	g.cfg.logger.Debug("Removed browser profile", "profile", g.profileDir)
	return nil
}

// Generate crawls the site described by cfg and renders it to PDF.
// Cancelling ctx closes the tab and aborts the run.
func (g *Generator) Generate(ctx context.Context, cfg Config) (*Result, error) {
	if err := g.checkClosed(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tab, cancel, err := newChromeTab(g.browserCtx, g.cfg.timeout, g.cfg.logger)
	if err != nil {
		return nil, err
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return run(ctx, tab, g.cfg.fetcher, cfg, g.cfg.logger, g.cfg.visit)
}

func (g *Generator) checkClosed() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	return nil
}

// run drives one generation on tab: crawl, index, assemble, print.
func run(ctx context.Context, tab Tab, fetcher Fetcher, cfg Config, logger *log.Logger, visit func(PageVisit)) (*Result, error) {
	cfg = cfg.withDefaults()

	if err := tab.Block(ctx, isPDFURL); err != nil {
		return nil, err
	}

	crawler := NewCrawler(tab, cfg, logger)
	crawler.OnVisit(visit)
	acc, err := crawler.Crawl(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("Start generating PDF", "pages", acc.Len())
	content, headings := NewIndexer(cfg.MaxHeadingLevel).Index(acc.HTML())
	var toc string
	if !cfg.DisableTOC {
		toc = BuildTOC(headings, cfg.TOCTitle)
		logger.Info("Generated table of contents", "headings", len(headings))
	}

	var image string
	if cfg.CoverImage != "" {
		res, err := fetcher.Fetch(ctx, cfg.CoverImage)
		if err != nil {
			return nil, fmt.Errorf("docspdf: fetching cover image: %w", err)
		}
		logger.Debug("Fetched cover image", "url", cfg.CoverImage, "type", res.ContentType, "bytes", len(res.Data))
		image = ImageHTML(res)
	}
	cover := CoverHTML(cfg.CoverTitle, cfg.CoverSubtitle, image)

	logger.Info("Restructuring the html of a document")
	if err := tab.Navigate(ctx, cfg.EntryURLs[0]); err != nil {
		return nil, err
	}
	body := Assemble(cover, toc, content, cfg.BaseURL, !cfg.DisableTOC)
	if err := applyDocument(ctx, tab, logger, body, cfg.ExcludeSelectors, cfg.CSSStyle); err != nil {
		return nil, err
	}

	if !cfg.SkipScroll {
		logger.Info("Scroll to the bottom of the page")
		if err := tab.ScrollToBottom(ctx); err != nil {
			return nil, fmt.Errorf("docspdf: scrolling document: %w", err)
		}
	}

	final, err := tab.BodyHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("docspdf: reading document: %w", err)
	}

	logger.Info("Generate PDF")
	data, err := tab.PrintToPDF(ctx, cfg.Page)
	if err != nil {
		return nil, err
	}
	logger.Info("PDF generated", "bytes", len(data))

	return &Result{data: data, html: final, outline: headings}, nil
}

// Generate renders cfg with a temporary [Generator]. The browser profile is
// removed before Generate returns, on success and on failure.
func Generate(ctx context.Context, cfg Config, opts ...Option) (res *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := NewGenerator(opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return g.Generate(ctx, cfg)
}
