// Package docspdf turns a documentation website into a single PDF.
//
// Starting from one or more entry URLs, a headless Chrome tab follows each
// page's "next" link, extracts the element matching a content selector and
// concatenates the fragments in crawl order. Headings are given fresh ids and
// listed in a table of contents; a cover page, the table of contents and the
// content then replace the body of the first entry page, which is printed
// with Chrome's PDF printer.
//
// For one-off runs use the package-level helper:
//
//	res, err := docspdf.Generate(ctx, docspdf.Config{
//	    EntryURLs:          []string{"https://example.com/docs/intro"},
//	    ContentSelector:    "article",
//	    PaginationSelector: "a.pagination-nav__link--next",
//	})
//
// For repeated runs create a [Generator], which reuses the browser process:
//
//	g, err := docspdf.NewGenerator(docspdf.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	res, err := g.Generate(ctx, cfg)
//
// Pages can be dropped by exact URL, by a keyword in their keywords meta
// tag, by URL fragment, or for leaving the entry URL's path; see [Filter].
// Dropped pages are still traversed.
//
// Use [PageConfig] to control paper size, orientation, margins, headers and
// footers. A [Result] holds the PDF bytes along with the printed HTML, its
// [Heading] outline and a Markdown rendition:
//
//	res.WriteToFile("docs.pdf", 0o644)
//	res.Outline()  // []Heading
//	res.Markdown() // string, error
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	g, err := docspdf.NewGenerator(docspdf.WithAutoDownload())
package docspdf
