// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package overlap

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Combination enumeration ---

func TestCombinations(t *testing.T) {
	got := Combinations([]string{"c", "a", "b"})

	want := map[string]bool{
		"a+b":   true,
		"a+c":   true,
		"b+c":   true,
		"a+b+c": true,
	}
	if len(got) != len(want) {
		t.Fatalf("len(combos) = %d, want %d", len(got), len(want))
	}
	for _, combo := range got {
		key := Key(combo)
		if !want[key] {
			t.Errorf("unexpected combination %q", key)
		}
		delete(want, key)
	}
	for key := range want {
		t.Errorf("missing combination %q", key)
	}
}

func TestCombinationsTooFewNames(t *testing.T) {
	if got := Combinations([]string{"solo"}); len(got) != 0 {
		t.Errorf("Combinations of one name = %v, want none", got)
	}
	if got := Combinations(nil); len(got) != 0 {
		t.Errorf("Combinations of nothing = %v, want none", got)
	}
}

func TestKeyIsOrderIndependent(t *testing.T) {
	if Key([]string{"b", "a"}) != Key([]string{"a", "b"}) {
		t.Error("Key must not depend on input order")
	}
	if got := Key([]string{"scopus", "google_scholar"}); got != "google_scholar+scopus" {
		t.Errorf("Key = %q", got)
	}
}

// --- Pairwise scoring ---

func TestScoreTopicPairwise(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical sets", []string{"X", "Y", "Z"}, []string{"X", "Y", "Z"}, 1.0},
		{"disjoint sets", []string{"X", "Y"}, []string{"W", "V"}, 0.0},
		{"half overlap", []string{"X", "Y", "Z"}, []string{"Y", "Z", "W"}, 0.5},
		{"single shared title", []string{"X"}, []string{"X", "Y"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(types.OverlapConfig{})
			scores, err := s.ScoreTopic("topic", map[string][]string{"a": tt.a, "b": tt.b})
			if err != nil {
				t.Fatalf("ScoreTopic: %v", err)
			}
			got, ok := scores["a+b"]
			if !ok {
				t.Fatalf("no a+b score in %v", scores)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("score = %f, want %f", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("score %f out of [0,1]", got)
			}
		})
	}
}

func TestScoreTopicSymmetric(t *testing.T) {
	a := []string{"X", "Y", "Z"}
	b := []string{"Y", "Z", "W"}

	s1 := NewScorer(types.OverlapConfig{})
	one, err := s1.ScoreTopic("t", map[string][]string{"a": a, "b": b})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	s2 := NewScorer(types.OverlapConfig{})
	two, err := s2.ScoreTopic("t", map[string][]string{"a": b, "b": a})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if !almostEqual(one["a+b"], two["a+b"]) {
		t.Errorf("score not symmetric: %f vs %f", one["a+b"], two["a+b"])
	}
}

// --- Higher-order combinations ---

func TestScoreTopicThreeWay(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})
	scores, err := s.ScoreTopic("t", map[string][]string{
		"a": {"X", "Y"},
		"b": {"X", "Z"},
		"c": {"X", "W"},
	})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("len(scores) = %d, want 4 combinations: %v", len(scores), scores)
	}
	// Intersection {X}, union {X,Y,Z,W}.
	if !almostEqual(scores["a+b+c"], 0.25) {
		t.Errorf("a+b+c = %f, want 0.25", scores["a+b+c"])
	}
	// Each pair: intersection {X}, union of 3.
	for _, key := range []string{"a+b", "a+c", "b+c"} {
		if !almostEqual(scores[key], 1.0/3.0) {
			t.Errorf("%s = %f, want 1/3", key, scores[key])
		}
	}
}

// --- Empty sets and denominators ---

func TestScoreTopicSkipsCombosWithEmptyMember(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})
	scores, err := s.ScoreTopic("t", map[string][]string{
		"a": {"X"},
		"b": {"X"},
		"c": {},
	})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("scores = %v, want only a+b", scores)
	}
	if !almostEqual(scores["a+b"], 1.0) {
		t.Errorf("a+b = %f, want 1.0", scores["a+b"])
	}
}

func TestFinalizePerCombinationDenominators(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})

	// Topic 1: c contributes, all combos score.
	if _, err := s.ScoreTopic("t1", map[string][]string{
		"a": {"X"}, "b": {"X"}, "c": {"X"},
	}); err != nil {
		t.Fatalf("ScoreTopic t1: %v", err)
	}
	// Topic 2: c is empty, only a+b scores (0.0 here).
	if _, err := s.ScoreTopic("t2", map[string][]string{
		"a": {"X"}, "b": {"Y"}, "c": {},
	}); err != nil {
		t.Fatalf("ScoreTopic t2: %v", err)
	}

	means := s.Finalize()
	counts := s.Counts()

	// a+b averaged over both topics: (1.0 + 0.0) / 2.
	if !almostEqual(means["a+b"], 0.5) {
		t.Errorf("mean a+b = %f, want 0.5", means["a+b"])
	}
	if counts["a+b"] != 2 {
		t.Errorf("count a+b = %d, want 2", counts["a+b"])
	}
	// Combos involving c only saw topic 1.
	for _, key := range []string{"a+c", "b+c", "a+b+c"} {
		if !almostEqual(means[key], 1.0) {
			t.Errorf("mean %s = %f, want 1.0", key, means[key])
		}
		if counts[key] != 1 {
			t.Errorf("count %s = %d, want 1", key, counts[key])
		}
	}
}

func TestFinalizeEmptyScorer(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})
	if means := s.Finalize(); len(means) != 0 {
		t.Errorf("Finalize = %v, want empty", means)
	}
}

// --- Truncation ---

func TestScoreTopicTruncates(t *testing.T) {
	s := NewScorer(types.OverlapConfig{TruncateTo: 2})
	// Shared titles sit beyond the cap; only the leading two per backend count.
	scores, err := s.ScoreTopic("t", map[string][]string{
		"a": {"A1", "A2", "SHARED"},
		"b": {"B1", "B2", "SHARED"},
	})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if !almostEqual(scores["a+b"], 0.0) {
		t.Errorf("score = %f, want 0.0 after truncation", scores["a+b"])
	}
}

// --- Title normalization ---

func TestScoreTopicNormalization(t *testing.T) {
	exact := NewScorer(types.OverlapConfig{})
	scores, err := exact.ScoreTopic("t", map[string][]string{
		"a": {"Graph  Clustering"},
		"b": {"graph clustering"},
	})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if !almostEqual(scores["a+b"], 0.0) {
		t.Errorf("exact matching score = %f, want 0.0", scores["a+b"])
	}

	norm := NewScorer(types.OverlapConfig{NormalizeTitles: true})
	scores, err = norm.ScoreTopic("t", map[string][]string{
		"a": {"Graph  Clustering"},
		"b": {"graph clustering"},
	})
	if err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	if !almostEqual(scores["a+b"], 1.0) {
		t.Errorf("normalized score = %f, want 1.0", scores["a+b"])
	}
}

// --- Data quality ---

func TestScoreTopicRejectsPlaceholderTitles(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})
	_, err := s.ScoreTopic("bad topic", map[string][]string{
		"a": {"X", ""},
		"b": {"X"},
	})
	if !errors.Is(err, ErrDataQuality) {
		t.Fatalf("err = %v, want ErrDataQuality", err)
	}

	// The failed topic must not advance any running sum.
	if means := s.Finalize(); len(means) != 0 {
		t.Errorf("Finalize after rejected topic = %v, want empty", means)
	}
}

// --- Accessors ---

func TestCountsReturnsCopy(t *testing.T) {
	s := NewScorer(types.OverlapConfig{})
	if _, err := s.ScoreTopic("t", map[string][]string{"a": {"X"}, "b": {"X"}}); err != nil {
		t.Fatalf("ScoreTopic: %v", err)
	}
	counts := s.Counts()
	counts["a+b"] = 99
	if !reflect.DeepEqual(s.Counts(), map[string]int{"a+b": 1}) {
		t.Error("mutating the returned map must not affect the scorer")
	}
}
