// docs-to-pdf generates a PDF from a documentation website.
//
// Usage:
//
//	docs-to-pdf [core] --initialDocURLs <urls> --contentSelector <sel> --paginationSelector <sel> [flags]
//	docs-to-pdf docusaurus --initialDocURLs <urls> [--version 2] [--docsDir build] [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	docspdf "github.com/porticus-lab/go-docs-pdf"
	"github.com/porticus-lab/go-docs-pdf/internal/docusaurus"
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	root := &cobra.Command{
		Use:   "docs-to-pdf",
		Short: "Generate a PDF from a documentation website",
		Long: `docs-to-pdf follows the "next page" links of a documentation site, collects
the content of every page and prints it, with a cover and a table of contents,
to a single PDF.

Example:
  docs-to-pdf --initialDocURLs="https://example.com/docs/intro" \
    --contentSelector="article" --paginationSelector="a.next"`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCore(cmd.Context(), &o)
		},
	}
	o.register(root.PersistentFlags())

	core := &cobra.Command{
		Use:          "core",
		Short:        "generate PDF from core options",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCore(cmd.Context(), &o)
		},
	}

	docs := &cobra.Command{
		Use:          "docusaurus",
		Aliases:      []string{"d"},
		Short:        "generate PDF from a Docusaurus site",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocusaurus(cmd.Context(), &o)
		},
	}
	docs.Flags().IntVar(&o.version, "version", 2, "version of the Docusaurus site")
	docs.Flags().StringVar(&o.docsDir, "docsDir", "", "Docusaurus build directory to serve and generate PDF from")

	root.AddCommand(core, docs)
	return root
}

func runCore(ctx context.Context, o *options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr, o.logLevel, o.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	return generate(ctx, o, cfg, logger)
}

func runDocusaurus(ctx context.Context, o *options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	if err := docusaurus.Apply(&cfg, o.version); err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr, o.logLevel, o.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("Docusaurus", "version", o.version, "dir", o.docsDir)

	if o.docsDir == "" {
		return generate(ctx, o, cfg, logger)
	}
	srv, err := docusaurus.Serve(o.docsDir, docusaurus.DefaultPort, logger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Stopping server failed", "err", err)
		}
	}()

	entry := srv.URL + "/"
	if len(cfg.EntryURLs) > 0 {
		if entry, err = docusaurus.LocalURL(cfg.EntryURLs[0], srv.URL); err != nil {
			return err
		}
	}
	cfg.EntryURLs = []string{entry}
	return generate(ctx, o, cfg, logger)
}

func generate(ctx context.Context, o *options, cfg docspdf.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := o.generatorOptions(logger)
	if o.progress {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		var loaded, kept int
		opts = append(opts, docspdf.WithVisitHook(func(v docspdf.PageVisit) {
			loaded++
			if v.Kept {
				kept++
			}
			s.Lock()
			s.Suffix = fmt.Sprintf(" %d pages loaded, %d kept: %s", loaded, kept, v.URL)
			s.Unlock()
		}))
		s.Start()
		defer s.Stop()
	}

	res, err := docspdf.Generate(ctx, cfg, opts...)
	if err != nil {
		logger.Error("Generating PDF failed", "err", err)
		return err
	}

	if err := res.WriteToFile(o.output, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", o.output, err)
	}
	logger.Info("PDF generated", "path", o.output, "bytes", res.Len(), "headings", len(res.Outline()))

	if o.markdown != "" {
		md, err := res.Markdown()
		if err != nil {
			return fmt.Errorf("converting to markdown: %w", err)
		}
		if err := os.WriteFile(o.markdown, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", o.markdown, err)
		}
		logger.Info("Markdown written", "path", o.markdown)
	}
	return nil
}
