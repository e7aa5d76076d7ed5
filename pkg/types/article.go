// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-overlap
// pipeline: the Article attribute bag produced by backend parsers and the
// per-stage configuration structs threaded through construction.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical Article attribute keys. Parsers populate these; ad hoc keys may
// be added at runtime and sort after the canonical set.
const (
	AttrTitle        = "title"
	AttrURL          = "url"
	AttrYear         = "year"
	AttrNumCitations = "num_citations"
	AttrNumVersions  = "num_versions"
	AttrClusterID    = "cluster_id"
	AttrURLPDF       = "url_pdf"
	AttrURLCitations = "url_citations"
	AttrURLVersions  = "url_versions"
	AttrURLCitation  = "url_citation"
	AttrExcerpt      = "excerpt"
)

// Attribute is one named value on an Article, carrying a display label and
// an ordering index used by the text and CSV renderings.
type Attribute struct {
	Key   string
	Value any
	Label string
	Order int
}

// Article represents one search result in a backend-independent form. It is
// an ordered attribute bag: canonical attributes are pre-declared with fixed
// labels and order indices, and arbitrary attributes may be attached later.
// An Article without a title is not valid and must not leave the parser.
type Article struct {
	attrs map[string]*Attribute

	// citationData holds the raw citation-export payload (e.g. a BibTeX
	// entry) fetched lazily by the querier.
	citationData []byte
}

// NewArticle returns an Article with the canonical attribute set declared
// and unset (counts default to 0).
func NewArticle() *Article {
	a := &Article{attrs: make(map[string]*Attribute)}
	for _, c := range []struct {
		key   string
		value any
		label string
	}{
		{AttrTitle, nil, "Title"},
		{AttrURL, nil, "URL"},
		{AttrYear, nil, "Year"},
		{AttrNumCitations, 0, "Citations"},
		{AttrNumVersions, 0, "Versions"},
		{AttrClusterID, nil, "Cluster ID"},
		{AttrURLPDF, nil, "PDF link"},
		{AttrURLCitations, nil, "Citations list"},
		{AttrURLVersions, nil, "Versions list"},
		{AttrURLCitation, nil, "Citation link"},
		{AttrExcerpt, nil, "Excerpt"},
	} {
		a.attrs[c.key] = &Attribute{Key: c.key, Value: c.value, Label: c.label, Order: len(a.attrs)}
	}
	return a
}

// Get returns the value for key, or nil when the key is unknown or unset.
func (a *Article) Get(key string) any {
	if attr, ok := a.attrs[key]; ok {
		return attr.Value
	}
	return nil
}

// GetString returns the value for key as a string; unset and non-string
// values yield "".
func (a *Article) GetString(key string) string {
	if s, ok := a.Get(key).(string); ok {
		return s
	}
	return ""
}

// GetInt returns the value for key as an int, or 0.
func (a *Article) GetInt(key string) int {
	if n, ok := a.Get(key).(int); ok {
		return n
	}
	return 0
}

// Set assigns value to key. A known key keeps its label and order; an
// unknown key is appended with the key itself as label and the next free
// order index.
func (a *Article) Set(key string, value any) {
	if attr, ok := a.attrs[key]; ok {
		attr.Value = value
		return
	}
	a.attrs[key] = &Attribute{Key: key, Value: value, Label: key, Order: len(a.attrs)}
}

// SetLabeled attaches a dynamic attribute with an explicit display label.
func (a *Article) SetLabeled(key string, value any, label string) {
	a.Set(key, value)
	a.attrs[key].Label = label
}

// Delete removes an attribute entirely.
func (a *Article) Delete(key string) {
	delete(a.attrs, key)
}

// Title returns the article title, or "" when unset.
func (a *Article) Title() string { return a.GetString(AttrTitle) }

// SetCitationData attaches the raw citation-export payload.
func (a *Article) SetCitationData(data []byte) { a.citationData = data }

// HasCitationData reports whether export data was already attached.
func (a *Article) HasCitationData() bool { return a.citationData != nil }

// ordered returns the attributes sorted by display order.
func (a *Article) ordered() []*Attribute {
	attrs := make([]*Attribute, 0, len(a.attrs))
	for _, attr := range a.attrs {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Order < attrs[j].Order })
	return attrs
}

// Txt renders the article as aligned "Label value" lines in display order,
// skipping unset attributes.
func (a *Article) Txt() string {
	attrs := a.ordered()

	maxLabel := 0
	for _, attr := range attrs {
		if len(attr.Label) > maxLabel {
			maxLabel = len(attr.Label)
		}
	}

	var lines []string
	for _, attr := range attrs {
		if attr.Value == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%*s %v", maxLabel, attr.Label, attr.Value))
	}
	return strings.Join(lines, "\n")
}

// CSV renders the article as a single sep-joined line of all attribute
// values in display order. When header is true a line of attribute keys in
// the same order precedes it. Unset values render as "<nil>", matching the
// text rendering of missing data in delimited dumps.
func (a *Article) CSV(header bool, sep string) string {
	attrs := a.ordered()

	var res []string
	if header {
		keys := make([]string, len(attrs))
		for i, attr := range attrs {
			keys[i] = attr.Key
		}
		res = append(res, strings.Join(keys, sep))
	}

	values := make([]string, len(attrs))
	for i, attr := range attrs {
		values[i] = fmt.Sprintf("%v", attr.Value)
	}
	res = append(res, strings.Join(values, sep))
	return strings.Join(res, "\n")
}

// Citation returns the attached citation-export payload, or "" when the
// querier was not configured to retrieve one.
func (a *Article) Citation() string {
	return string(a.citationData)
}
