package docspdf_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	docspdf "github.com/porticus-lab/go-docs-pdf"
)

// chromeAvailable reports whether a Chrome/Chromium executable is in PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
}

func newTestGenerator(t *testing.T, opts ...docspdf.Option) *docspdf.Generator {
	t.Helper()
	skipIfNoChrome(t)
	g, err := docspdf.NewGenerator(append([]docspdf.Option{
		docspdf.WithNoSandbox(),
		docspdf.WithTimeout(30 * time.Second),
	}, opts...)...)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// isPDF checks whether data starts with the PDF magic number.
func isPDF(data []byte) bool {
	return len(data) > 4 && string(data[:5]) == "%PDF-"
}

const docPage = `<!DOCTYPE html>
<html><head><title>%[1]s</title><meta name="keywords" content="%[3]s"></head>
<body>
  <nav class="sidebar">menu</nav>
  <article>
    <h1>%[1]s</h1>
    <details><summary>More</summary><p>hidden %[1]s</p></details>
    <p>Body of %[1]s.</p>
    <a href="/files/%[1]s.pdf">download</a>
  </article>
  %[2]s
</body></html>`

// docsSite serves a three page chain: intro -> usage -> faq.
func docsSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string][2]string{
		"/docs/intro": {`<a class="next" href="/docs/usage">Next</a>`, "guide"},
		"/docs/usage": {`<a class="next" href="/docs/faq">Next</a>`, "guide"},
		"/docs/faq":   {"", "faq"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		title := strings.TrimPrefix(r.URL.Path, "/docs/")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, docPage, title, p[0], p[1])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func siteConfig(srv *httptest.Server) docspdf.Config {
	return docspdf.Config{
		EntryURLs:          []string{srv.URL + "/docs/intro"},
		ContentSelector:    "article",
		PaginationSelector: "a.next",
		ExcludeSelectors:   []string{"nav.sidebar"},
		CoverTitle:         "Test Docs",
		DetailsSettle:      10 * time.Millisecond,
	}
}

func TestGenerator_Site(t *testing.T) {
	g := newTestGenerator(t)
	srv := docsSite(t)

	res, err := g.Generate(context.Background(), siteConfig(srv))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !isPDF(res.Bytes()) {
		t.Fatal("output is not a valid PDF")
	}

	html := res.HTML()
	for _, want := range []string{"Body of intro.", "Body of usage.", "Body of faq.", "Test Docs", "toc-page"} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Contains(html, "menu") {
		t.Error("excluded selector still present")
	}
	if got := len(res.Outline()); got != 3 {
		t.Errorf("outline has %d headings, want 3", got)
	}
	if !strings.Contains(html, "<details open") {
		t.Error("details were not expanded")
	}
}

func TestGenerator_KeywordFilter(t *testing.T) {
	var visits []docspdf.PageVisit
	g := newTestGenerator(t, docspdf.WithVisitHook(func(v docspdf.PageVisit) {
		visits = append(visits, v)
	}))
	srv := docsSite(t)

	cfg := siteConfig(srv)
	cfg.FilterKeyword = "faq"
	cfg.DisableTOC = true
	res, err := g.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(visits) != 3 {
		t.Fatalf("visited %d pages, want 3", len(visits))
	}
	if strings.Contains(res.HTML(), "Body of intro.") || !strings.Contains(res.HTML(), "Body of faq.") {
		t.Error("keyword filter not applied")
	}
}

func TestGenerator_NavigationError(t *testing.T) {
	g := newTestGenerator(t)
	cfg := docspdf.Config{
		EntryURLs:       []string{"http://127.0.0.1:1/docs"},
		ContentSelector: "article",
	}
	_, err := g.Generate(context.Background(), cfg)
	var navErr *docspdf.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected NavigationError, got %v", err)
	}
}

func TestGenerator_CloseIdempotent(t *testing.T) {
	skipIfNoChrome(t)
	g, err := docspdf.NewGenerator(docspdf.WithNoSandbox())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestGenerator_UsedAfterClose(t *testing.T) {
	skipIfNoChrome(t)
	g, err := docspdf.NewGenerator(docspdf.WithNoSandbox())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	g.Close()

	cfg := docspdf.Config{EntryURLs: []string{"https://example.com"}, ContentSelector: "article"}
	if _, err := g.Generate(context.Background(), cfg); !errors.Is(err, docspdf.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestGenerate_RemovesProfile(t *testing.T) {
	skipIfNoChrome(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	srv := docsSite(t)

	if _, err := docspdf.Generate(context.Background(), siteConfig(srv), docspdf.WithNoSandbox()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "docspdf-profile-") {
			t.Errorf("profile directory %s left behind", e.Name())
		}
	}
}
