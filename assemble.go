package docspdf

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/log"
)

// Assemble concatenates the document body in its fixed order: base tag,
// cover, table of contents (only when withTOC is set), content.
func Assemble(cover, toc, content, baseURL string, withTOC bool) string {
	var b strings.Builder
	if baseURL != "" {
		fmt.Fprintf(&b, `<base href="%s" />`, html.EscapeString(baseURL))
	}
	b.WriteString(cover)
	if withTOC {
		b.WriteString(toc)
	}
	b.WriteString(content)
	return b.String()
}

// applyDocument replaces the live body with body, prunes excludeSelectors
// from the resulting document and injects css.
func applyDocument(ctx context.Context, tab Tab, logger *log.Logger, body string, excludeSelectors []string, css string) error {
	if err := tab.SetBody(ctx, body); err != nil {
		return fmt.Errorf("docspdf: replacing document body: %w", err)
	}
	if len(excludeSelectors) > 0 {
		logger.Info("Removing excluded elements", "selectors", excludeSelectors)
	}
	for _, sel := range excludeSelectors {
		if sel == "" {
			continue
		}
		n, err := tab.RemoveAll(ctx, sel)
		if err != nil {
			return fmt.Errorf("docspdf: removing %q: %w", sel, err)
		}
		logger.Debug("Removed elements", "selector", sel, "count", n)
	}
	if css != "" {
		logger.Info("Adding CSS to document")
		if err := tab.AddStyle(ctx, css); err != nil {
			return fmt.Errorf("docspdf: adding style: %w", err)
		}
	}
	return nil
}
