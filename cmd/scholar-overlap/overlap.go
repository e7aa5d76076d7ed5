package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-overlap/internal/archive"
	"github.com/pdiddy/scholar-overlap/internal/overlap"
	"github.com/pdiddy/scholar-overlap/internal/querier"
	"github.com/pdiddy/scholar-overlap/internal/scholar"
	"github.com/pdiddy/scholar-overlap/internal/topics"
	"github.com/pdiddy/scholar-overlap/pkg/types"
)

const defaultInterTopicDelay = 2 * time.Second

var overlapCmd = &cobra.Command{
	Use:   "overlap TOPICS_FILE",
	Short: "Score backend agreement over a batch of topics",
	Long: `Overlap queries every selected backend for each topic in TOPICS_FILE and
scores the Jaccard similarity of the top-result title sets for every
backend combination of two or more. Per-combination similarities are
averaged across topics; the result is written as a YAML report.

A topic is skipped when any backend's results contain a placeholder
record, so one engine's junk page never biases the batch. Each run's raw
articles and final scores are archived to a SQLite database for later
inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: runOverlap,
}

func init() {
	overlapCmd.Flags().StringSlice("backend", []string{"google_scholar", "semantic_scholar", "scopus"}, "backends to score (google_scholar, semantic_scholar, scopus)")
	overlapCmd.Flags().String("level", "", "topic hierarchy level to run (default: the file's default level)")
	overlapCmd.Flags().String("report", "", "write the YAML report to this file (default: stdout only)")
	overlapCmd.Flags().String("archive-dir", "", "directory for the run archive database (default runs/)")
	overlapCmd.Flags().Bool("no-archive", false, "skip archiving articles and scores")
	overlapCmd.Flags().Duration("delay", 0, "pause between topics (default 2s)")
	overlapCmd.Flags().Int("truncate-to", 0, "score agreement among the top K titles per backend (default 8)")
	overlapCmd.Flags().Bool("normalize-titles", false, "lowercase and collapse whitespace before comparing titles")
	overlapCmd.Flags().String("scopus-api-key", "", "API key for the scopus backend (default: .secrets/scopus-api-key)")
	overlapCmd.Flags().String("cookie-file", "", "file to load session cookies from and save them to")
	overlapCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(overlapCmd)
}

func runOverlap(cmd *cobra.Command, args []string) error {
	topicsFile, err := topics.Load(args[0])
	if err != nil {
		return err
	}
	level, _ := cmd.Flags().GetString("level")
	batch, err := topicsFile.Level(level)
	if err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringSlice("backend")
	scopusKey, _ := cmd.Flags().GetString("scopus-api-key")
	backends, err := newBackends(names, secretDefault("scopus-api-key", scopusKey))
	if err != nil {
		return err
	}
	if len(backends) < 2 {
		return fmt.Errorf("agreement needs at least two backends, have %d", len(backends))
	}

	sess, err := newSession(cmd, backends)
	if err != nil {
		return err
	}
	defer sess.SaveCookies()

	ocfg := overlapConfig(cmd)
	scorer := overlap.NewScorer(ocfg)

	var arc *archive.Archive
	var runID int64
	if noArchive, _ := cmd.Flags().GetBool("no-archive"); !noArchive {
		dir, _ := cmd.Flags().GetString("archive-dir")
		if dir == "" {
			dir = viper.GetString("archive.dir")
		}
		arc, err = archive.Open(types.ArchiveConfig{Dir: dir})
		if err != nil {
			return err
		}
		defer arc.Close()

		backendNames := make([]string, len(backends))
		for i, b := range backends {
			backendNames[i] = b.Name()
		}
		runID, err = arc.BeginRun(cmd.Context(), level, backendNames)
		if err != nil {
			return err
		}
	}

	qcfg := types.QuerierConfig{MaxPageResults: scholar.MaxPageResults}
	queriers := make([]*querier.Querier, len(backends))
	for i, b := range backends {
		queriers[i] = querier.New(b, sess, qcfg, os.Stderr)
	}

	var skipped []string
	for i, topic := range batch {
		fmt.Fprintf(os.Stderr, "topic %d/%d: %s\n", i+1, len(batch), topic)

		spec := scholar.NewSpec()
		spec.Words = topic

		titleSets := make(map[string][]string, len(queriers))
		dirty := false
		for _, q := range queriers {
			articles, err := q.Run(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if q.Metadata().Placeholders > 0 {
				fmt.Fprintf(os.Stderr, "warning: backend %s returned %d placeholder records for %q\n",
					q.Backend().Name(), q.Metadata().Placeholders, topic)
				dirty = true
			}
			titleSets[q.Backend().Name()] = querier.Titles(articles)

			if arc != nil {
				if err := arc.SaveArticles(cmd.Context(), runID, topic, q.Backend().Name(), articles); err != nil {
					return err
				}
			}
			time.Sleep(ocfg.InterTopicDelay)
		}

		if dirty {
			skipped = append(skipped, topic)
			continue
		}

		scores, err := scorer.ScoreTopic(topic, titleSets)
		if err != nil {
			if errors.Is(err, overlap.ErrDataQuality) {
				fmt.Fprintf(os.Stderr, "warning: skipping topic: %v\n", err)
				skipped = append(skipped, topic)
				continue
			}
			return err
		}
		for combo, score := range scores {
			fmt.Fprintf(os.Stderr, "  %s: %.3f\n", combo, score)
		}
	}

	backendNames := make([]string, len(backends))
	for i, b := range backends {
		backendNames[i] = b.Name()
	}
	report := overlap.NewReport(level, backendNames, ocfg, scorer, len(batch), skipped)

	if arc != nil {
		if err := arc.SaveScores(cmd.Context(), runID, report.Scores, report.Counts); err != nil {
			return err
		}
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := overlap.WriteReport(path, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	}

	for _, combo := range sortedKeys(report.Scores) {
		fmt.Printf("%s %.4f (%d topics)\n", combo, report.Scores[combo], report.Counts[combo])
	}
	return nil
}

// overlapConfig assembles the scoring config from flags with config-file
// fallbacks.
func overlapConfig(cmd *cobra.Command) types.OverlapConfig {
	truncateTo, _ := cmd.Flags().GetInt("truncate-to")
	if truncateTo == 0 {
		truncateTo = viper.GetInt("overlap.truncate_to")
	}
	normalize, _ := cmd.Flags().GetBool("normalize-titles")
	if !normalize {
		normalize = viper.GetBool("overlap.normalize_titles")
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("overlap.inter_topic_delay")
	}
	if delay == 0 {
		delay = defaultInterTopicDelay
	}
	return types.OverlapConfig{
		TruncateTo:      truncateTo,
		NormalizeTitles: normalize,
		InterTopicDelay: delay,
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
