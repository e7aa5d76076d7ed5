// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package overlap computes Jaccard agreement between backends' top results
// for a batch of topics, across every backend combination of size >= 2,
// and maintains running sums for cross-topic averaging.
package overlap

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// ErrDataQuality marks a topic whose result sets contain a placeholder
// entry. The whole topic is excluded from scoring rather than risking a
// biased score from a backend that returned junk.
var ErrDataQuality = errors.New("result set contains a placeholder entry")

// Scorer accumulates per-combination similarity sums over a batch of
// topics. Each combination keeps its own contributing-topic count: a
// combination is skipped for a topic when any of its backends contributed
// an empty set, so denominators can differ across combinations.
type Scorer struct {
	truncateTo int
	normalize  bool

	sums   map[string]float64
	counts map[string]int
}

// NewScorer builds a Scorer from config, defaulting the truncation cap to
// the engines' per-page maximum.
func NewScorer(cfg types.OverlapConfig) *Scorer {
	truncateTo := cfg.TruncateTo
	if truncateTo <= 0 {
		truncateTo = 8
	}
	return &Scorer{
		truncateTo: truncateTo,
		normalize:  cfg.NormalizeTitles,
		sums:       make(map[string]float64),
		counts:     make(map[string]int),
	}
}

// Key returns the canonical key for a backend combination: the sorted
// names joined by "+".
func Key(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

// Combinations enumerates every subset of size >= 2 of names, each subset
// sorted, in a deterministic order.
func Combinations(names []string) [][]string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	n := len(sorted)
	var combos [][]string
	for mask := uint(1); mask < 1<<n; mask++ {
		if bits.OnesCount(mask) < 2 {
			continue
		}
		var combo []string
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				combo = append(combo, sorted[i])
			}
		}
		combos = append(combos, combo)
	}
	return combos
}

// ScoreTopic scores one topic given each backend's titles in result order.
// Title lists are truncated to the configured cap before comparison, so
// the metric reads "agreement among top-K". It returns the per-combination
// similarities for this topic; combinations with an empty member set are
// absent from the result and do not advance their running sums.
//
// A placeholder (empty) title anywhere in the input invalidates the whole
// topic and returns ErrDataQuality.
func (s *Scorer) ScoreTopic(topic string, titleSets map[string][]string) (map[string]float64, error) {
	for backend, titles := range titleSets {
		for _, t := range titles {
			if t == "" {
				return nil, fmt.Errorf("topic %q: backend %s: %w", topic, backend, ErrDataQuality)
			}
		}
	}

	names := make([]string, 0, len(titleSets))
	sets := make(map[string]map[string]struct{}, len(titleSets))
	for backend, titles := range titleSets {
		names = append(names, backend)
		if len(titles) > s.truncateTo {
			titles = titles[:s.truncateTo]
		}
		set := make(map[string]struct{}, len(titles))
		for _, t := range titles {
			if s.normalize {
				t = normalizeTitle(t)
			}
			set[t] = struct{}{}
		}
		sets[backend] = set
	}

	scores := make(map[string]float64)
	for _, combo := range Combinations(names) {
		members := make([]map[string]struct{}, len(combo))
		empty := false
		for i, name := range combo {
			members[i] = sets[name]
			if len(sets[name]) == 0 {
				empty = true
			}
		}
		if empty {
			continue
		}

		key := Key(combo)
		score := jaccard(members)
		scores[key] = score
		s.sums[key] += score
		s.counts[key]++
	}
	return scores, nil
}

// Finalize returns the mean similarity per combination, dividing each
// running sum by that combination's own contributing-topic count.
// Combinations that never contributed are absent.
func (s *Scorer) Finalize() map[string]float64 {
	means := make(map[string]float64, len(s.sums))
	for key, sum := range s.sums {
		if n := s.counts[key]; n > 0 {
			means[key] = sum / float64(n)
		}
	}
	return means
}

// Counts returns the contributing-topic count per combination.
func (s *Scorer) Counts() map[string]int {
	counts := make(map[string]int, len(s.counts))
	for key, n := range s.counts {
		counts[key] = n
	}
	return counts
}

// jaccard computes |intersection| / |union| over the member sets. Callers
// guarantee every member is non-empty, so the union is never empty.
func jaccard(sets []map[string]struct{}) float64 {
	union := make(map[string]struct{})
	for _, set := range sets {
		for t := range set {
			union[t] = struct{}{}
		}
	}

	intersection := 0
	for t := range sets[0] {
		in := true
		for _, set := range sets[1:] {
			if _, ok := set[t]; !ok {
				in = false
				break
			}
		}
		if in {
			intersection++
		}
	}
	return float64(intersection) / float64(len(union))
}

// normalizeTitle lowercases and collapses whitespace. Applied only when
// configured: exact string equality is what historical runs were scored
// with, and drifting from it silently changes the metric.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
