package docspdf

import (
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("docspdf: downloading browser: %w", err)
	}
	return path, nil
}

// lookBrowser returns a Chrome found on the system, or "".
func lookBrowser() string {
	path, _ := launcher.LookPath()
	return path
}

// newProfileDir creates the throwaway Chrome profile directory of one
// Generator.
func newProfileDir() (string, error) {
	dir, err := os.MkdirTemp("", "docspdf-profile-*")
	if err != nil {
		return "", fmt.Errorf("docspdf: creating profile directory: %w", err)
	}
	return dir, nil
}
