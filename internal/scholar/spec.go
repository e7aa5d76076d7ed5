// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar defines the per-backend query construction and response
// parsing strategies for the literature-search engines, plus the shared
// query specification and session settings they operate on.
package scholar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPageResults is the hard per-page result cap the engines serve to
// anonymous sessions.
const MaxPageResults = 8

// ErrUnderConstrained is returned when a query spec carries no
// discriminating criterion at all.
var ErrUnderConstrained = errors.New("search query needs more parameters")

// Spec holds the recognized search options, mirroring the engines' advanced
// search forms. The zero value of every field means "unset".
type Spec struct {
	// Words must all appear in a result.
	Words string
	// WordsSome: at least one must appear. Comma-separated phrases are
	// quoted before transmission.
	WordsSome string
	// WordsNone: none may appear. Same phrase handling as WordsSome.
	WordsNone string
	// Phrase must appear exactly.
	Phrase string
	// TitleOnly restricts matching to the title.
	TitleOnly bool
	// Author names that must be on the result's author list.
	Author string
	// Publication the result must have appeared in.
	Publication string
	// YearLo and YearHi bound the publication year. 0 means unbounded.
	YearLo, YearHi int
	// IncludePatents and IncludeCitations toggle those result classes.
	IncludePatents   bool
	IncludeCitations bool
	// SortBy selects the result ordering for backends that support it.
	SortBy string
	// AdvancedElements enables the JSON-rendered engine's advanced search.
	AdvancedElements bool
	// NumResults is the per-page result count to request.
	NumResults int
}

// NewSpec returns a Spec with the engines' defaults.
func NewSpec() Spec {
	return Spec{
		IncludePatents:   true,
		IncludeCitations: true,
		SortBy:           "relevance",
		NumResults:       MaxPageResults,
	}
}

// SetTimeframe sets the publication-year bounds from string arguments.
// Either may be empty; non-numeric values are an error.
func (s *Spec) SetTimeframe(lo, hi string) error {
	var err error
	if lo != "" {
		if s.YearLo, err = ensureInt(lo, "start year must be numeric"); err != nil {
			return err
		}
	}
	if hi != "" {
		if s.YearHi, err = ensureInt(hi, "end year must be numeric"); err != nil {
			return err
		}
	}
	return nil
}

// SetNumResults sets the per-page result count from a string argument.
func (s *Spec) SetNumResults(n string) error {
	v, err := ensureInt(n, "maximum number of results on page must be numeric")
	if err != nil {
		return err
	}
	s.NumResults = v
	return nil
}

// Validate reports whether the spec carries at least one discriminating
// criterion. An under-constrained spec would crawl the engines' front pages.
func (s Spec) Validate() error {
	if s.Words == "" && s.WordsSome == "" && s.WordsNone == "" &&
		s.Phrase == "" && s.Author == "" && s.Publication == "" &&
		s.YearLo == 0 && s.YearHi == 0 {
		return ErrUnderConstrained
	}
	return nil
}

// parenthesizePhrases turns a comma-separated phrase list into a
// space-separated token list, quoting multi-word phrases:
//
//	"some words, foo, bar"  →  `"some words" foo bar`
func parenthesizePhrases(query string) string {
	if !strings.Contains(query, ",") {
		return query
	}
	var phrases []string
	for _, phrase := range strings.Split(query, ",") {
		phrase = strings.TrimSpace(phrase)
		if strings.Contains(phrase, " ") {
			phrase = `"` + phrase + `"`
		}
		phrases = append(phrases, phrase)
	}
	return strings.Join(phrases, " ")
}

// ensureInt parses arg as an int, wrapping failures with msg.
func ensureInt(arg, msg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s: %q", msg, arg)
	}
	return v, nil
}

// CitationFormat enumerates the citation export formats the HTML engine can
// be configured to serve.
type CitationFormat int

const (
	CitationNone CitationFormat = iota
	CitationRefWorks
	CitationRefMan
	CitationEndNote
	CitationBibTeX
)

// ParseCitationFormat maps the CLI short codes to a CitationFormat.
func ParseCitationFormat(code string) (CitationFormat, error) {
	switch code {
	case "rw":
		return CitationRefWorks, nil
	case "rm":
		return CitationRefMan, nil
	case "en":
		return CitationEndNote, nil
	case "bt":
		return CitationBibTeX, nil
	default:
		return CitationNone, fmt.Errorf(`invalid citation format %q, must be one of "bt", "en", "rm", or "rw"`, code)
	}
}

// Settings holds backend session preferences. A Settings value is only
// applied once at least one field has been explicitly set; applying an
// unconfigured Settings is a no-op.
type Settings struct {
	citationFormat CitationFormat
	perPageResults int
	configured     bool
}

// NewSettings returns Settings with the engine defaults and the configured
// flag unset.
func NewSettings() *Settings {
	return &Settings{perPageResults: MaxPageResults}
}

// SetCitationFormat selects the citation export format.
func (s *Settings) SetCitationFormat(f CitationFormat) error {
	if f < CitationNone || f > CitationBibTeX {
		return fmt.Errorf("citation format invalid: %d", f)
	}
	s.citationFormat = f
	s.configured = true
	return nil
}

// SetPerPageResults sets the per-page result cap, clamped to the hard
// maximum the engine serves.
func (s *Settings) SetPerPageResults(n string) error {
	v, err := ensureInt(n, "page results must be integer")
	if err != nil {
		return err
	}
	s.perPageResults = min(v, MaxPageResults)
	s.configured = true
	return nil
}

// CitationFormat returns the configured export format.
func (s *Settings) CitationFormat() CitationFormat { return s.citationFormat }

// PerPageResults returns the configured per-page cap.
func (s *Settings) PerPageResults() int { return s.perPageResults }

// Configured reports whether any field was explicitly set.
func (s *Settings) Configured() bool { return s.configured }
