// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

const defaultScopusSite = "http://api.elsevier.com/content"

const scopusFields = "title,doi,coverDate"

// Scopus is the JSON/API-rendered engine backend. Unlike the HTML engines
// it returns a structured document with a top-level result array.
type Scopus struct {
	Site   string
	APIKey string
}

// NewScopus returns the backend pointed at the production API.
func NewScopus(apiKey string) *Scopus {
	return &Scopus{Site: defaultScopusSite, APIKey: apiKey}
}

// Name returns the backend identifier.
func (b *Scopus) Name() string { return "scopus" }

// SiteURL returns the site whose cookies the session persists.
func (b *Scopus) SiteURL() string { return b.Site }

// BuildRequest encodes the spec into the API's search URL. The query term
// is matched against title, abstract, and keywords within the computing
// subject area.
func (b *Scopus) BuildRequest(spec Spec) (Request, error) {
	if err := spec.Validate(); err != nil {
		return Request{}, err
	}

	q := spec.Phrase
	if q == "" {
		q = spec.Words
	}
	count := spec.NumResults
	if count <= 0 {
		count = MaxPageResults
	}

	u := b.Site + "/search/scopus?" +
		"query=" + url.QueryEscape("title-abs-key("+q+")") +
		"&SUBJAREA(COMP)" +
		"&field=" + scopusFields +
		"&count=" + strconv.Itoa(count)

	return Request{
		URL: u,
		Header: map[string]string{
			"Accept":       "application/json",
			"X-ELS-APIKey": b.APIKey,
		},
	}, nil
}

// Parse decodes the API response and emits one Article per entry. Entries
// without a title are counted as placeholders; the agreement scorer treats
// their presence as a data-quality failure for the topic.
func (b *Scopus) Parse(payload []byte, emit func(*types.Article)) (Metadata, error) {
	var sr scopusResponse
	if err := json.Unmarshal(payload, &sr); err != nil {
		return Metadata{}, fmt.Errorf("parsing API response: %w", err)
	}

	var meta Metadata
	if n, err := strconv.Atoi(sr.SearchResults.TotalResults); err == nil {
		meta.NumResults, meta.HasNumResults = n, true
	}

	for _, entry := range sr.SearchResults.Entries {
		art := types.NewArticle()
		art.Set(types.AttrTitle, entry.Title)

		if entry.URL != "" {
			art.Set(types.AttrURL, entry.URL)
			if strings.HasSuffix(entry.URL, ".pdf") {
				art.Set(types.AttrURLPDF, entry.URL)
			}
		}
		if year := yearRe.FindString(entry.CoverDate); year != "" {
			art.Set(types.AttrYear, year)
		}
		if entry.DOI != "" {
			art.SetLabeled("doi", entry.DOI, "DOI")
		}
		if n, err := strconv.Atoi(entry.CitedByCount); err == nil {
			art.Set(types.AttrNumCitations, n)
		}

		finalize(art, &meta, emit)
	}
	return meta, nil
}

// Scopus search API JSON structures.
type scopusResponse struct {
	SearchResults scopusSearchResults `json:"search-results"`
}

type scopusSearchResults struct {
	TotalResults string        `json:"opensearch:totalResults"`
	Entries      []scopusEntry `json:"entry"`
}

type scopusEntry struct {
	Title        string `json:"dc:title"`
	DOI          string `json:"prism:doi"`
	URL          string `json:"prism:url"`
	CoverDate    string `json:"prism:coverDate"`
	CitedByCount string `json:"citedby-count"`
}
