// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"testing"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// --- Request construction ---

func TestSemanticScholarBuildRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		want   string
	}{
		{
			"words only",
			func(s *Spec) { s.Words = "graph clustering" },
			"http://example.com/search?q=graph+clustering&sort=relevance&ae=false",
		},
		{
			"phrase wins over words",
			func(s *Spec) { s.Words = "ignored"; s.Phrase = "spectral clustering" },
			"http://example.com/search?q=spectral+clustering&sort=relevance&ae=false",
		},
		{
			"sort and advanced elements",
			func(s *Spec) { s.Words = "x"; s.SortBy = "year"; s.AdvancedElements = true },
			"http://example.com/search?q=x&sort=year&ae=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &SemanticScholar{Site: "http://example.com"}
			spec := NewSpec()
			tt.mutate(&spec)
			req, err := b.BuildRequest(spec)
			if err != nil {
				t.Fatalf("BuildRequest: %v", err)
			}
			if req.URL != tt.want {
				t.Errorf("URL = %q, want %q", req.URL, tt.want)
			}
		})
	}
}

func TestSemanticScholarBuildRequestUnderConstrained(t *testing.T) {
	b := NewSemanticScholar()
	if _, err := b.BuildRequest(NewSpec()); err == nil {
		t.Fatal("expected error for under-constrained spec")
	}
}

// --- Results page parsing ---

const semanticScholarPage = `<html><body>
<article class="search-result">
  <header class="search-result-header">
    <a href="/paper/abc123">Community detection in networks</a>
  </header>
  <ul class="subhead"><li>Physics Reports</li><li>2010</li></ul>
</article>
<article class="search-result">
  <header class="search-result-header">
    <a href="http://cdn.example.org/papers/survey.pdf">A survey of clustering methods</a>
  </header>
</article>
<article class="search-result">
  <header class="search-result-header"></header>
</article>
</body></html>`

func TestSemanticScholarParse(t *testing.T) {
	b := &SemanticScholar{Site: "http://example.com"}

	var articles []*types.Article
	meta, err := b.Parse([]byte(semanticScholarPage), func(a *types.Article) {
		articles = append(articles, a)
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if meta.Placeholders != 1 {
		t.Errorf("Placeholders = %d, want 1 (anchor-less header)", meta.Placeholders)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}

	if got := articles[0].Title(); got != "Community detection in networks" {
		t.Errorf("Title = %q", got)
	}
	if got := articles[0].GetString(types.AttrURL); got != "http://example.com/paper/abc123" {
		t.Errorf("url = %q (relative href must resolve against the site)", got)
	}
	if got := articles[0].GetString(types.AttrYear); got != "2010" {
		t.Errorf("year = %q", got)
	}

	if got := articles[1].GetString(types.AttrURLPDF); got != "http://cdn.example.org/papers/survey.pdf" {
		t.Errorf("url_pdf = %q", got)
	}
	if got := articles[1].GetString(types.AttrYear); got != "" {
		t.Errorf("year = %q, want unset without a byline", got)
	}
}

func TestSemanticScholarParseEmptyPage(t *testing.T) {
	b := NewSemanticScholar()
	calls := 0
	meta, err := b.Parse([]byte("<html><body><p>no results</p></body></html>"), func(*types.Article) { calls++ })
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if calls != 0 {
		t.Errorf("emit called %d times, want 0", calls)
	}
	if meta.Placeholders != 0 {
		t.Errorf("Placeholders = %d, want 0", meta.Placeholders)
	}
}
