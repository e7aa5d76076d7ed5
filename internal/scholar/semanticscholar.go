// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

const defaultSemanticScholarSite = "http://semanticscholar.org"

// SemanticScholar is the second HTML-rendered engine backend. Its search
// page tags each result as an article element with a search-result class.
type SemanticScholar struct {
	Site string
}

// NewSemanticScholar returns the backend pointed at the production site.
func NewSemanticScholar() *SemanticScholar {
	return &SemanticScholar{Site: defaultSemanticScholarSite}
}

// Name returns the backend identifier.
func (b *SemanticScholar) Name() string { return "semantic_scholar" }

// SiteURL returns the site whose cookies the session persists.
func (b *SemanticScholar) SiteURL() string { return b.Site }

// BuildRequest encodes the spec into the engine's search URL. The engine
// has no advanced-search form; the query term is the phrase when set, else
// the all-words field.
func (b *SemanticScholar) BuildRequest(spec Spec) (Request, error) {
	if err := spec.Validate(); err != nil {
		return Request{}, err
	}

	q := spec.Phrase
	if q == "" {
		q = spec.Words
	}
	sort := spec.SortBy
	if sort == "" {
		sort = "relevance"
	}
	ae := "false"
	if spec.AdvancedElements {
		ae = "true"
	}

	u := b.Site + "/search?" +
		"q=" + url.QueryEscape(q) +
		"&sort=" + url.QueryEscape(sort) +
		"&ae=" + ae

	return Request{URL: u}, nil
}

// Parse scrapes the results page. Fragments are article.search-result
// elements; the title and URL sit in the first anchor of the result header.
func (b *SemanticScholar) Parse(payload []byte, emit func(*types.Article)) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing results page: %w", err)
	}

	var meta Metadata
	doc.Find("article.search-result").Each(func(_ int, frag *goquery.Selection) {
		art := types.NewArticle()

		header := frag.Find("header.search-result-header").First()
		if anchor := header.Find("a").First(); anchor.Length() > 0 {
			art.Set(types.AttrTitle, anchor.Text())
			if href, ok := anchor.Attr("href"); ok {
				u := absURL(b.Site, href)
				art.Set(types.AttrURL, u)
				if strings.HasSuffix(u, ".pdf") {
					art.Set(types.AttrURLPDF, u)
				}
			}
		}

		if byline := frag.Find("ul.subhead").First(); byline.Length() > 0 {
			if year := yearRe.FindString(byline.Text()); year != "" {
				art.Set(types.AttrYear, year)
			}
		}

		finalize(art, &meta, emit)
	})
	return meta, nil
}
