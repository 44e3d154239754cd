package docspdf

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// generatorConfig holds internal configuration for a Generator.
type generatorConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	flags        []string
	logger       *log.Logger
	visit        func(PageVisit)
	fetcher      Fetcher
}

func defaultConfig() generatorConfig {
	return generatorConfig{
		headless: "new",
	}
}

// Option configures a [Generator].
type Option func(*generatorConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *generatorConfig) {
		c.chromePath = path
	}
}

// WithTimeout bounds every individual browser operation, including the wait
// for a page to go network idle. Printing the PDF is never bounded. Zero,
// the default, disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *generatorConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *generatorConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium build when no Chrome path
// is configured.
func WithAutoDownload() Option {
	return func(c *generatorConfig) {
		c.autoDownload = true
	}
}

// WithChromeFlags passes extra command line switches to Chrome, written the
// way Chrome expects them: "--disable-web-security" or
// "--proxy-server=host:port".
func WithChromeFlags(flags ...string) Option {
	return func(c *generatorConfig) {
		c.flags = append(c.flags, flags...)
	}
}

// WithLogger sets the logger progress is reported to.
func WithLogger(l *log.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = l
	}
}

// WithVisitHook calls fn after every page the crawler loads.
func WithVisitHook(fn func(PageVisit)) Option {
	return func(c *generatorConfig) {
		c.visit = fn
	}
}

// WithFetcher replaces the fetcher used for the cover image.
func WithFetcher(f Fetcher) Option {
	return func(c *generatorConfig) {
		c.fetcher = f
	}
}

// chromeFlag converts "--name=value" or "--name" into an allocator option.
func chromeFlag(arg string) (chromedp.ExecAllocatorOption, bool) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return nil, false
	}
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return chromedp.Flag(name, true), true
	}
	return chromedp.Flag(name, value), true
}
