package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	docspdf "github.com/porticus-lab/go-docs-pdf"
)

// chromePathEnv are consulted, in order, when --chromePath is not set.
var chromePathEnv = []string{"DOCS_TO_PDF_CHROME_PATH", "PUPPETEER_EXECUTABLE_PATH"}

// options holds every command line flag.
type options struct {
	initialDocURLs     []string
	excludeURLs        []string
	contentSelector    string
	paginationSelector string
	excludeSelectors   []string
	cssStyle           string
	output             string
	pdfMargin          string
	pdfFormat          string
	paperFormat        string
	coverTitle         string
	coverImage         string
	disableTOC         bool
	tocTitle           string
	coverSub           string
	waitForRender      int
	headerTemplate     string
	footerTemplate     string
	chromeArgs         []string
	protocolTimeout    int
	filterKeyword      string
	baseURL            string
	excludePaths       []string
	restrictPaths      bool
	openDetail         bool

	restrictTraversal bool
	maxPages          int
	maxHeadingLevel   int
	markdown          string
	progress          bool
	noSandbox         bool
	autoDownload      bool
	chromePath        string
	logLevel          string
	logFile           string

	// docusaurus only
	version int
	docsDir string
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&o.initialDocURLs, "initialDocURLs", nil, "set urls to start generating PDF from")
	fs.StringSliceVar(&o.excludeURLs, "excludeURLs", nil, "urls to be excluded in PDF")
	fs.StringVar(&o.contentSelector, "contentSelector", "", "used to find the part of main content")
	fs.StringVar(&o.paginationSelector, "paginationSelector", "", "used to find next url")
	fs.StringSliceVar(&o.excludeSelectors, "excludeSelectors", nil, "exclude selector ex: .nav")
	fs.StringVar(&o.cssStyle, "cssStyle", "", "css style to adjust PDF output ex: body{padding-top: 0;}")
	fs.StringVar(&o.output, "outputPDFFilename", "docs-to-pdf.pdf", "name of output PDF file")
	fs.StringVar(&o.pdfMargin, "pdfMargin", "32,32,32,32", "margin around PDF pages: top,right,bottom,left (px, in, cm or mm)")
	fs.StringVar(&o.pdfFormat, "pdfFormat", "", "(DEPRECATED use paperFormat)")
	fs.StringVar(&o.paperFormat, "paperFormat", "A4", "pdf format ex: A3, A4, Letter")
	fs.StringVar(&o.coverTitle, "coverTitle", "", "title for PDF cover")
	fs.StringVar(&o.coverImage, "coverImage", "", "image for PDF cover: URL, file:// URL or local path")
	fs.BoolVar(&o.disableTOC, "disableTOC", false, "disable table of contents")
	fs.StringVar(&o.tocTitle, "tocTitle", "", "title of the table of contents")
	fs.StringVar(&o.coverSub, "coverSub", "", "subtitle for PDF cover")
	fs.IntVar(&o.waitForRender, "waitForRender", 0, "wait for document render in milliseconds")
	fs.StringVar(&o.headerTemplate, "headerTemplate", "", "html template for page header")
	fs.StringVar(&o.footerTemplate, "footerTemplate", "", "html template for page footer")
	fs.StringSliceVar(&o.chromeArgs, "chromeArgs", nil, "extra Chrome switches ex: --disable-web-security")
	fs.IntVar(&o.protocolTimeout, "protocolTimeout", 0, "timeout for individual browser calls in milliseconds, 0 disables it")
	fs.StringVar(&o.filterKeyword, "filterKeyword", "", "meta keyword to filter pages")
	fs.StringVar(&o.baseURL, "baseUrl", "", "base URL for all relative URLs")
	fs.StringSliceVar(&o.excludePaths, "excludePaths", nil, "paths to be excluded in PDF")
	fs.BoolVar(&o.restrictPaths, "restrictPaths", false, "only the paths in the --initialDocURLs will be included in the PDF")
	fs.BoolVar(&o.openDetail, "openDetail", true, "open details elements in the PDF")

	fs.BoolVar(&o.restrictTraversal, "restrictTraversal", false, "with --restrictPaths, stop a chain at the first page outside its path")
	fs.IntVar(&o.maxPages, "maxPages", 0, "stop after loading this many pages, 0 means no limit")
	fs.IntVar(&o.maxHeadingLevel, "maxHeadingLevel", 4, "deepest heading level listed in the table of contents")
	fs.StringVar(&o.markdown, "markdown", "", "also write the document as Markdown to this file")
	fs.BoolVar(&o.progress, "progress", false, "show a progress spinner")
	fs.BoolVar(&o.noSandbox, "noSandbox", false, "disable the Chrome sandbox")
	fs.BoolVar(&o.autoDownload, "autoDownload", false, "download Chromium when no Chrome is installed")
	fs.StringVar(&o.chromePath, "chromePath", "", "path to the Chrome executable")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFile, "log-file", "", "also write logs to this file, rotated")
}

// config maps the flags onto a document run.
func (o *options) config() (docspdf.Config, error) {
	if o.pdfFormat != "" {
		return docspdf.Config{}, errors.New("--pdfFormat is deprecated, use --paperFormat")
	}
	size, err := docspdf.ParsePaperFormat(o.paperFormat)
	if err != nil {
		return docspdf.Config{}, err
	}
	margin, err := docspdf.ParseMargin(o.pdfMargin)
	if err != nil {
		return docspdf.Config{}, err
	}
	if o.waitForRender < 0 {
		return docspdf.Config{}, errors.New("--waitForRender must not be negative")
	}

	page := docspdf.DefaultPageConfig()
	page.Size = size
	page.Margin = margin
	page.ExactMargin = true
	page.HeaderTemplate = o.headerTemplate
	page.FooterTemplate = o.footerTemplate

	restriction := docspdf.RestrictContent
	if o.restrictTraversal {
		restriction = docspdf.RestrictTraversal
	}

	return docspdf.Config{
		EntryURLs:          o.initialDocURLs,
		ExcludeURLs:        o.excludeURLs,
		ContentSelector:    o.contentSelector,
		PaginationSelector: o.paginationSelector,
		ExcludeSelectors:   o.excludeSelectors,
		CSSStyle:           o.cssStyle,
		CoverTitle:         o.coverTitle,
		CoverSubtitle:      o.coverSub,
		CoverImage:         o.coverImage,
		DisableTOC:         o.disableTOC,
		TOCTitle:           o.tocTitle,
		MaxHeadingLevel:    o.maxHeadingLevel,
		WaitForRender:      time.Duration(o.waitForRender) * time.Millisecond,
		FilterKeyword:      o.filterKeyword,
		BaseURL:            o.baseURL,
		ExcludePaths:       o.excludePaths,
		RestrictPaths:      o.restrictPaths,
		Restriction:        restriction,
		KeepDetailsClosed:  !o.openDetail,
		MaxPages:           o.maxPages,
		Page:               page,
	}, nil
}

// generatorOptions maps the browser flags onto generator options.
func (o *options) generatorOptions(logger *log.Logger) []docspdf.Option {
	opts := []docspdf.Option{docspdf.WithLogger(logger)}
	if p := o.resolveChromePath(); p != "" {
		logger.Debug("Using Chrome", "path", p)
		opts = append(opts, docspdf.WithChromePath(p))
	}
	if o.protocolTimeout > 0 {
		opts = append(opts, docspdf.WithTimeout(time.Duration(o.protocolTimeout)*time.Millisecond))
	}
	if o.noSandbox {
		opts = append(opts, docspdf.WithNoSandbox())
	}
	if o.autoDownload {
		opts = append(opts, docspdf.WithAutoDownload())
	}
	if len(o.chromeArgs) > 0 {
		opts = append(opts, docspdf.WithChromeFlags(o.chromeArgs...))
	}
	return opts
}

func (o *options) resolveChromePath() string {
	if o.chromePath != "" {
		return o.chromePath
	}
	for _, env := range chromePathEnv {
		if p := os.Getenv(env); p != "" {
			return p
		}
	}
	return ""
}

// newLogger writes to w and, when file is set, to a rotated log file. The
// returned func releases the file.
func newLogger(w io.Writer, level, file string) (*log.Logger, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	closer := func() error { return nil }
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		w = io.MultiWriter(w, rotator)
		closer = rotator.Close
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return logger, closer, nil
}
