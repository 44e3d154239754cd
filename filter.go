package docspdf

import (
	"context"
	"slices"
	"strings"
)

// Exclusion is the outcome of a [Filter] check. The zero value keeps the
// page.
type Exclusion int

const (
	Kept Exclusion = iota
	ExcludedURL
	ExcludedKeyword
	ExcludedPath
	ExcludedRestriction
)

func (e Exclusion) String() string {
	switch e {
	case Kept:
		return "kept"
	case ExcludedURL:
		return "excluded url"
	case ExcludedKeyword:
		return "keyword filter"
	case ExcludedPath:
		return "path filter"
	case ExcludedRestriction:
		return "path restriction"
	default:
		return "unknown"
	}
}

// KeywordLookup returns the content of the page's keywords meta tag and
// whether the tag exists.
type KeywordLookup func(ctx context.Context) (content string, found bool, err error)

// Filter decides whether a visited page contributes content.
type Filter struct {
	ExcludeURLs   []string
	Keyword       string
	ExcludePaths  []string
	RestrictPaths bool
}

// Check runs the exclusions in a fixed order and returns the first that
// applies: exact URL, keyword, path fragment, path restriction. The keyword
// lookup is only invoked when a keyword is configured and the URL was not
// already excluded; its failures count as a missing keyword.
func (f Filter) Check(ctx context.Context, pageURL, basePath string, keywords KeywordLookup) Exclusion {
	if slices.Contains(f.ExcludeURLs, pageURL) {
		return ExcludedURL
	}
	if f.Keyword != "" && !f.matchKeyword(ctx, keywords) {
		return ExcludedKeyword
	}
	for _, p := range f.ExcludePaths {
		if p != "" && strings.Contains(pageURL, p) {
			return ExcludedPath
		}
	}
	if f.RestrictPaths && !strings.Contains(pageURL, basePath) {
		return ExcludedRestriction
	}
	return Kept
}

func (f Filter) matchKeyword(ctx context.Context, keywords KeywordLookup) bool {
	if keywords == nil {
		return false
	}
	content, found, err := keywords(ctx)
	if err != nil || !found {
		return false
	}
	for _, k := range strings.Split(content, ",") {
		if strings.TrimSpace(k) == f.Keyword {
			return true
		}
	}
	return false
}
