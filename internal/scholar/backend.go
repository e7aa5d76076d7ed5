// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// Request is a backend-specific search request: the fully encoded URL plus
// any headers the engine requires beyond the session defaults.
type Request struct {
	URL    string
	Header map[string]string
}

// Metadata carries the non-itemized attributes of a parsed results page.
type Metadata struct {
	// NumResults is the total hit count the engine reported in its header
	// region. Valid only when HasNumResults is set; header parse failures
	// are non-fatal and simply leave it unset.
	NumResults    int
	HasNumResults bool

	// Placeholders counts result fragments that carried no usable title.
	// A non-zero count marks the response as suspect for agreement scoring.
	Placeholders int
}

// Backend is the per-engine strategy: it builds the search request for a
// query spec and parses the engine's raw response payload into Articles.
// Parse invokes emit for each finalized, title-bearing article; fragments
// whose optional sub-structure is missing keep the affected attributes
// unset rather than aborting the document.
type Backend interface {
	Name() string
	BuildRequest(spec Spec) (Request, error)
	Parse(payload []byte, emit func(*types.Article)) (Metadata, error)
}

// yearRe matches a plausible publication year (1900-2099) in byline text.
var yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// absURL resolves a possibly site-relative href against the engine's site.
func absURL(site, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return site + path
}

// stripURLArg removes one query argument from a URL, if present. The
// engines propagate the original query's page-size argument into embedded
// list URLs; stored as-is it would bias any later crawl of those URLs.
func stripURLArg(arg, url string) string {
	parts := strings.SplitN(url, "?", 2)
	if len(parts) != 2 {
		return url
	}
	var kept []string
	for _, part := range strings.Split(parts[1], "&") {
		if !strings.HasPrefix(part, arg+"=") {
			kept = append(kept, part)
		}
	}
	return parts[0] + "?" + strings.Join(kept, "&")
}

// urlArg extracts the value of one query argument from a URL, or "".
func urlArg(arg, url string) string {
	parts := strings.SplitN(url, "?", 2)
	if len(parts) != 2 {
		return ""
	}
	for _, part := range strings.Split(parts[1], "&") {
		if v, ok := strings.CutPrefix(part, arg+"="); ok {
			return v
		}
	}
	return ""
}

// trailingInt parses the last whitespace-separated token of s as an int
// ("Cited by 42" → 42). Returns 0, false when the token is not numeric.
func trailingInt(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingInt scans s for the first token parseable as an integer after
// stripping thousands separators ("About 1,280,000 results" → 1280000).
func leadingInt(s string) (int, bool) {
	for _, field := range strings.Fields(s) {
		n, err := strconv.Atoi(strings.ReplaceAll(field, ",", ""))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// finalize trims the article title and reports whether the article is
// valid. Articles without a title never leave the parser.
func finalize(a *types.Article, meta *Metadata, emit func(*types.Article)) {
	title := strings.TrimSpace(a.Title())
	if title == "" {
		meta.Placeholders++
		return
	}
	a.Set(types.AttrTitle, title)
	emit(a)
}
