// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(types.ArchiveConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func article(title string, citations int) *types.Article {
	a := types.NewArticle()
	a.Set(types.AttrTitle, title)
	a.Set(types.AttrNumCitations, citations)
	return a
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(types.ArchiveConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(filepath.Join(dir, dbFile)); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestOpenCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	a, err := Open(types.ArchiveConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("archive directory missing: %v", err)
	}
}

func TestSaveAndReadArticles(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	runID, err := a.BeginRun(ctx, "leaf", []string{"google_scholar", "scopus"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	articles := []*types.Article{
		article("first title", 42),
		article("second title", 0),
	}
	if err := a.SaveArticles(ctx, runID, "graph clustering", "google_scholar", articles); err != nil {
		t.Fatalf("SaveArticles: %v", err)
	}

	titles, err := a.Titles(ctx, runID, "graph clustering", "google_scholar")
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	want := []string{"first title", "second title"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v (result order must survive)", titles, want)
	}

	// Other backends and topics stay isolated.
	titles, err = a.Titles(ctx, runID, "graph clustering", "scopus")
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("scopus titles = %v, want none", titles)
	}
}

func TestRunsAreIsolated(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	first, err := a.BeginRun(ctx, "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	second, err := a.BeginRun(ctx, "", []string{"a", "b"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if first == second {
		t.Fatalf("run IDs must differ, both %d", first)
	}

	if err := a.SaveArticles(ctx, first, "topic", "a", []*types.Article{article("only in first", 0)}); err != nil {
		t.Fatalf("SaveArticles: %v", err)
	}

	titles, err := a.Titles(ctx, second, "topic", "a")
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("second run titles = %v, want none", titles)
	}
}

func TestSaveScores(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	runID, err := a.BeginRun(ctx, "leaf", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	means := map[string]float64{"a+b": 0.5, "a+b+c": 0.25}
	counts := map[string]int{"a+b": 4, "a+b+c": 3}
	if err := a.SaveScores(ctx, runID, means, counts); err != nil {
		t.Fatalf("SaveScores: %v", err)
	}

	// Re-saving replaces rather than duplicating.
	means["a+b"] = 0.75
	if err := a.SaveScores(ctx, runID, means, counts); err != nil {
		t.Fatalf("SaveScores (again): %v", err)
	}

	rows, err := a.db.Query(`SELECT combo, mean, topics FROM scores WHERE run_id = ? ORDER BY combo`, runID)
	if err != nil {
		t.Fatalf("querying scores: %v", err)
	}
	defer rows.Close()

	got := map[string]float64{}
	gotCounts := map[string]int{}
	for rows.Next() {
		var combo string
		var mean float64
		var topics int
		if err := rows.Scan(&combo, &mean, &topics); err != nil {
			t.Fatalf("scanning: %v", err)
		}
		got[combo] = mean
		gotCounts[combo] = topics
	}
	if got["a+b"] != 0.75 || got["a+b+c"] != 0.25 {
		t.Errorf("means = %v", got)
	}
	if gotCounts["a+b"] != 4 || gotCounts["a+b+c"] != 3 {
		t.Errorf("counts = %v", gotCounts)
	}
}
