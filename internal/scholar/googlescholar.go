// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// defaultGoogleScholarSite is the production site; tests substitute an
// httptest server through the Site field.
const defaultGoogleScholarSite = "http://scholar.google.com"

// GoogleScholar is the HTML-rendered engine backend. Results are scraped
// from the advanced-search results page.
type GoogleScholar struct {
	Site string
}

// NewGoogleScholar returns the backend pointed at the production site.
func NewGoogleScholar() *GoogleScholar {
	return &GoogleScholar{Site: defaultGoogleScholarSite}
}

// Name returns the backend identifier.
func (b *GoogleScholar) Name() string { return "google_scholar" }

// SiteURL returns the site whose cookies the session persists.
func (b *GoogleScholar) SiteURL() string { return b.Site }

// BuildRequest encodes the spec into the engine's advanced-search URL. The
// parameter order is fixed and every value is percent-encoded, so the same
// spec always yields a byte-identical URL. Unset year bounds are omitted,
// not zero-filled.
func (b *GoogleScholar) BuildRequest(spec Spec) (Request, error) {
	if err := spec.Validate(); err != nil {
		return Request{}, err
	}

	scope := "any"
	if spec.TitleOnly {
		scope = "title"
	}
	ylo, yhi := "", ""
	if spec.YearLo != 0 {
		ylo = strconv.Itoa(spec.YearLo)
	}
	if spec.YearHi != 0 {
		yhi = strconv.Itoa(spec.YearHi)
	}
	patents, citations := "0", "0"
	if !spec.IncludePatents {
		patents = "1"
	}
	if !spec.IncludeCitations {
		citations = "1"
	}
	num := spec.NumResults
	if num <= 0 {
		num = MaxPageResults
	}

	u := b.Site + "/scholar?" +
		"as_q=" + url.QueryEscape(spec.Words) +
		"&as_epq=" + url.QueryEscape(spec.Phrase) +
		"&as_oq=" + url.QueryEscape(parenthesizePhrases(spec.WordsSome)) +
		"&as_eq=" + url.QueryEscape(parenthesizePhrases(spec.WordsNone)) +
		"&as_occt=" + scope +
		"&as_sauthors=" + url.QueryEscape(spec.Author) +
		"&as_publication=" + url.QueryEscape(spec.Publication) +
		"&as_ylo=" + ylo +
		"&as_yhi=" + yhi +
		"&as_sdt=" + patents + "%2C5" +
		"&as_vis=" + citations +
		"&btnG=&hl=en" +
		"&num=" + strconv.Itoa(num)

	return Request{URL: u}, nil
}

// Parse scrapes the results page. Fragments are div.gs_r containers; the
// header region div#gs_ab_md carries the total hit count.
func (b *GoogleScholar) Parse(payload []byte, emit func(*types.Article)) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing results page: %w", err)
	}

	var meta Metadata
	if text := doc.Find("div#gs_ab_md").First().Text(); text != "" {
		if n, ok := leadingInt(text); ok {
			meta.NumResults, meta.HasNumResults = n, true
		}
	}

	doc.Find("div.gs_r").Each(func(_ int, frag *goquery.Selection) {
		b.parseFragment(frag, &meta, emit)
	})
	return meta, nil
}

func (b *GoogleScholar) parseFragment(frag *goquery.Selection, meta *Metadata, emit func(*types.Article)) {
	art := types.NewArticle()
	ri := frag.Find("div.gs_ri")

	// Two heading layouts: a linked result, or a "[CITATION]" entry with
	// no outbound link. The latter keeps its title once the decorative
	// spans are stripped.
	heading := ri.Find("h3.gs_rt").First()
	if anchor := heading.Find("a").First(); anchor.Length() > 0 {
		art.Set(types.AttrTitle, anchor.Text())
		if href, ok := anchor.Attr("href"); ok {
			u := absURL(b.Site, href)
			art.Set(types.AttrURL, u)
			if strings.HasSuffix(u, ".pdf") {
				art.Set(types.AttrURLPDF, u)
			}
		}
	} else if heading.Length() > 0 {
		clone := heading.Clone()
		clone.Find("span").Remove()
		art.Set(types.AttrTitle, clone.Text())
	}

	if byline := ri.Find("div.gs_a").First(); byline.Length() > 0 {
		if year := yearRe.FindString(byline.Text()); year != "" {
			art.Set(types.AttrYear, year)
		}
	}

	if links := ri.Find("div.gs_fl").First(); links.Length() > 0 {
		b.parseLinks(links, art)
	}

	if excerpt := ri.Find("div.gs_rs").First(); excerpt.Length() > 0 {
		art.Set(types.AttrExcerpt, strings.ReplaceAll(excerpt.Text(), "\n", ""))
	}

	finalize(art, meta, emit)
}

// parseLinks extracts the cited-by, all-versions, and citation-export
// backlinks from a result's footer link row.
func (b *GoogleScholar) parseLinks(links *goquery.Selection, art *types.Article) {
	links.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		text := a.Text()

		switch {
		case strings.HasPrefix(href, "/scholar?cites"):
			if strings.HasPrefix(text, "Cited by") {
				if n, ok := trailingInt(text); ok {
					art.Set(types.AttrNumCitations, n)
				}
			}
			citURL := stripURLArg("num", absURL(b.Site, href))
			art.Set(types.AttrURLCitations, citURL)
			if id := urlArg("cites", citURL); id != "" {
				art.Set(types.AttrClusterID, id)
			}

		case strings.HasPrefix(href, "/scholar?cluster"):
			if strings.HasPrefix(text, "All ") {
				if fields := strings.Fields(text); len(fields) >= 2 {
					if n, err := strconv.Atoi(fields[1]); err == nil {
						art.Set(types.AttrNumVersions, n)
					}
				}
			}
			art.Set(types.AttrURLVersions, stripURLArg("num", absURL(b.Site, href)))

		case strings.HasPrefix(text, "Import"):
			art.Set(types.AttrURLCitation, absURL(b.Site, href))
		}
	})
}
