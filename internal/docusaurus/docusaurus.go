// Package docusaurus configures a document run for sites built with
// Docusaurus and serves local build directories.
package docusaurus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	docspdf "github.com/porticus-lab/go-docs-pdf"
)

// DefaultPort is where build directories are served.
const DefaultPort = 3000

// ErrUnsupportedVersion is returned for Docusaurus versions other than 1 and 2.
var ErrUnsupportedVersion = errors.New("docusaurus: unsupported version")

// Apply overwrites the selectors of cfg with the ones matching the given
// Docusaurus major version.
func Apply(cfg *docspdf.Config, version int) error {
	cfg.ContentSelector = "article"
	switch version {
	case 2:
		cfg.PaginationSelector = "a.pagination-nav__link.pagination-nav__link--next"
		cfg.ExcludeSelectors = []string{
			".margin-vert--xl a",
			"[class^='tocCollapsible']",
			".breadcrumbs",
			".theme-edit-this-page",
		}
	case 1:
		cfg.PaginationSelector = ".docs-prevnext > a.docs-next"
		cfg.ExcludeSelectors = []string{
			".fixedHeaderContainer",
			"footer.nav-footer",
			"#docsNav",
			"nav.onPageNav",
			"a.edit-page-link",
			"div.docs-prevnext",
		}
		cfg.CSSStyle = ".navPusher {padding-top: 0;}"
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return nil
}

// CheckBuildDir reports whether dir exists and is a directory.
func CheckBuildDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("docusaurus: could not find build directory at %q, have you run \"docusaurus build\"? %w", dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("docusaurus: %s is not a build directory", dir)
	}
	return nil
}

// Server serves a build directory on the loopback interface.
type Server struct {
	// URL is the server root, e.g. http://127.0.0.1:3000.
	URL string

	srv    *http.Server
	done   chan error
	logger *log.Logger
}

// Serve starts serving dir on 127.0.0.1:port. Port 0 picks a free port.
func Serve(dir string, port int, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := CheckBuildDir(dir); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("docusaurus: resolving %s: %w", dir, err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("docusaurus: listening on port %d: %w", port, err)
	}
	s := &Server{
		URL: "http://" + ln.Addr().String(),
		srv: &http.Server{
			Handler:           http.FileServer(http.Dir(abs)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		done:   make(chan error, 1),
		logger: logger,
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	logger.Info("Docusaurus server listening", "url", s.URL, "dir", abs)
	return s, nil
}

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("docusaurus: stopping server: %w", err)
	}
	err := <-s.done
	s.logger.Info("Docusaurus server stopped")
	return err
}

// LocalURL moves the path of entry onto the server root base.
func LocalURL(entry, base string) (string, error) {
	u, err := url.Parse(entry)
	if err != nil {
		return "", fmt.Errorf("docusaurus: invalid URL %q: %w", entry, err)
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("docusaurus: invalid URL %q: %w", base, err)
	}
	b.Path = u.Path
	b.RawPath = u.RawPath
	return b.String(), nil
}
