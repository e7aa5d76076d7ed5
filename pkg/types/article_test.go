// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
)

// --- Attribute access ---

func TestArticleGetSet(t *testing.T) {
	a := NewArticle()

	if got := a.Get(AttrTitle); got != nil {
		t.Errorf("fresh title = %v, want nil", got)
	}
	if got := a.GetInt(AttrNumCitations); got != 0 {
		t.Errorf("fresh num_citations = %d, want 0", got)
	}

	a.Set(AttrTitle, "A title")
	if got := a.Title(); got != "A title" {
		t.Errorf("Title() = %q", got)
	}

	a.Set(AttrNumCitations, 42)
	if got := a.GetInt(AttrNumCitations); got != 42 {
		t.Errorf("GetInt = %d, want 42", got)
	}

	// Type-mismatched reads degrade to zero values.
	if got := a.GetString(AttrNumCitations); got != "" {
		t.Errorf("GetString on int attribute = %q, want empty", got)
	}
	if got := a.GetInt(AttrTitle); got != 0 {
		t.Errorf("GetInt on string attribute = %d, want 0", got)
	}

	// Unknown keys read as unset.
	if got := a.Get("nonexistent"); got != nil {
		t.Errorf("unknown key = %v, want nil", got)
	}
}

func TestArticleDynamicAttributes(t *testing.T) {
	a := NewArticle()
	a.Set("custom", "value")
	if got := a.GetString("custom"); got != "value" {
		t.Errorf("custom = %q", got)
	}

	a.SetLabeled("doi", "10.1000/x", "DOI")
	if got := a.GetString("doi"); got != "10.1000/x" {
		t.Errorf("doi = %q", got)
	}

	a.Delete("custom")
	if got := a.Get("custom"); got != nil {
		t.Errorf("deleted key = %v, want nil", got)
	}
}

// --- Citation export payload ---

func TestArticleCitationData(t *testing.T) {
	a := NewArticle()
	if a.HasCitationData() {
		t.Error("fresh article should have no citation data")
	}
	a.SetCitationData([]byte("@article{x}"))
	if !a.HasCitationData() {
		t.Error("HasCitationData should report attached data")
	}
	if got := a.Citation(); got != "@article{x}" {
		t.Errorf("Citation() = %q", got)
	}
}

// --- Text rendering ---

func TestArticleTxt(t *testing.T) {
	a := NewArticle()
	a.Set(AttrTitle, "A title")
	a.Set(AttrYear, "2014")

	out := a.Txt()
	lines := strings.Split(out, "\n")

	// Unset attributes are skipped; the counts default to 0 so they render.
	wantLines := 4 // title, year, num_citations, num_versions
	if len(lines) != wantLines {
		t.Fatalf("len(lines) = %d, want %d:\n%s", len(lines), wantLines, out)
	}

	// Labels are right-aligned to a common width.
	if !strings.HasSuffix(lines[0], " A title") {
		t.Errorf("first line = %q, want title line", lines[0])
	}
	width := strings.Index(lines[0], "A title") - 1
	for _, line := range lines {
		label := line[:width+1]
		if strings.TrimSpace(label) == "" {
			t.Errorf("line %q has an empty label column", line)
		}
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "Year") {
		t.Errorf("output missing labels:\n%s", out)
	}
}

func TestArticleTxtDisplayOrder(t *testing.T) {
	a := NewArticle()
	a.Set(AttrExcerpt, "an excerpt")
	a.Set(AttrTitle, "A title")

	out := a.Txt()
	if strings.Index(out, "Title") > strings.Index(out, "Excerpt") {
		t.Errorf("canonical order violated (title after excerpt):\n%s", out)
	}
}

// --- CSV rendering ---

func TestArticleCSV(t *testing.T) {
	a := NewArticle()
	a.Set(AttrTitle, "A title")
	a.Set(AttrNumCitations, 3)

	out := a.CSV(true, "|")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want header + values", len(lines))
	}

	header := strings.Split(lines[0], "|")
	values := strings.Split(lines[1], "|")
	if len(header) != len(values) {
		t.Fatalf("header has %d columns, values %d", len(header), len(values))
	}
	if header[0] != AttrTitle {
		t.Errorf("first header column = %q, want %q", header[0], AttrTitle)
	}
	if values[0] != "A title" {
		t.Errorf("first value = %q", values[0])
	}

	// Unset values render as <nil> so columns stay aligned across rows.
	if !strings.Contains(lines[1], "<nil>") {
		t.Errorf("values line should render unset attributes as <nil>: %q", lines[1])
	}

	// Without the header flag only the value line is produced.
	if got := a.CSV(false, "|"); strings.Count(got, "\n") != 0 {
		t.Errorf("CSV(false) = %q, want a single line", got)
	}
}
