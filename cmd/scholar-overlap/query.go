package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-overlap/internal/querier"
	"github.com/pdiddy/scholar-overlap/internal/scholar"
	"github.com/pdiddy/scholar-overlap/internal/session"
	"github.com/pdiddy/scholar-overlap/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one search against the selected backends",
	Long: `Query builds one search from the given criteria, runs it against each
selected backend, and prints the parsed records. At least one search
criterion is required.

With --citation the HTML engine's session preferences are configured to
serve citation-export links, and each record's export payload is fetched
and printed after the record.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringP("all", "A", "", "results must contain all of these words")
	queryCmd.Flags().StringP("some", "s", "", "results must contain at least one of these words (comma-separated phrases)")
	queryCmd.Flags().StringP("none", "n", "", "results must not contain any of these words (comma-separated phrases)")
	queryCmd.Flags().StringP("phrase", "p", "", "results must contain this exact phrase")
	queryCmd.Flags().BoolP("title-only", "t", false, "match search terms in the title only")
	queryCmd.Flags().StringP("author", "a", "", "results must be authored by these authors")
	queryCmd.Flags().StringP("pub", "P", "", "results must have appeared in this publication")
	queryCmd.Flags().String("after", "", "results must have been published after this year")
	queryCmd.Flags().String("before", "", "results must have been published before this year")
	queryCmd.Flags().Bool("no-patents", false, "exclude patents from results")
	queryCmd.Flags().Bool("no-citations", false, "exclude citation-only records from results")
	queryCmd.Flags().StringP("count", "c", "", "maximum number of results per page")
	queryCmd.Flags().String("sort", "relevance", "result ordering for backends that support it")

	queryCmd.Flags().StringSlice("backend", []string{"google_scholar"}, "backends to query (google_scholar, semantic_scholar, scopus)")
	queryCmd.Flags().String("scopus-api-key", "", "API key for the scopus backend (default: .secrets/scopus-api-key)")
	queryCmd.Flags().String("cookie-file", "", "file to load session cookies from and save them to")
	queryCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	queryCmd.Flags().Bool("txt", true, "print records as aligned text")
	queryCmd.Flags().Bool("csv", false, "print records as CSV")
	queryCmd.Flags().Bool("csv-header", false, "print a CSV header before the records")
	queryCmd.Flags().String("citation", "", `fetch citation export data in this format ("bt", "en", "rm", or "rw")`)
	queryCmd.Flags().String("csl", "", "write records as CSL-YAML to this file")

	rootCmd.AddCommand(queryCmd)
}

// buildSpec assembles the query spec from the search-criteria flags.
func buildSpec(cmd *cobra.Command) (scholar.Spec, error) {
	spec := scholar.NewSpec()

	spec.Words, _ = cmd.Flags().GetString("all")
	spec.WordsSome, _ = cmd.Flags().GetString("some")
	spec.WordsNone, _ = cmd.Flags().GetString("none")
	spec.Phrase, _ = cmd.Flags().GetString("phrase")
	spec.TitleOnly, _ = cmd.Flags().GetBool("title-only")
	spec.Author, _ = cmd.Flags().GetString("author")
	spec.Publication, _ = cmd.Flags().GetString("pub")
	spec.SortBy, _ = cmd.Flags().GetString("sort")

	after, _ := cmd.Flags().GetString("after")
	before, _ := cmd.Flags().GetString("before")
	if err := spec.SetTimeframe(after, before); err != nil {
		return spec, err
	}

	noPatents, _ := cmd.Flags().GetBool("no-patents")
	spec.IncludePatents = !noPatents
	noCitations, _ := cmd.Flags().GetBool("no-citations")
	spec.IncludeCitations = !noCitations

	if count, _ := cmd.Flags().GetString("count"); count != "" {
		if err := spec.SetNumResults(count); err != nil {
			return spec, err
		}
	}

	return spec, spec.Validate()
}

// newSession builds the shared session from flags, config file, and
// registered sites, and seeds it from the cookie file if one is set.
func newSession(cmd *cobra.Command, backends []scholar.Backend) (*session.Session, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("session.timeout")
	}
	cookieFile, _ := cmd.Flags().GetString("cookie-file")
	if cookieFile == "" {
		cookieFile = viper.GetString("session.cookie_file")
	}

	cfg := types.SessionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("session.user_agent"),
		},
		CookieFile: cookieFile,
		MaxRetries: viper.GetInt("session.max_retries"),
	}

	sess, err := session.New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	for _, b := range backends {
		if sited, ok := b.(interface{ SiteURL() string }); ok {
			sess.RegisterSite(sited.SiteURL())
		}
	}
	if err := sess.LoadCookies(); err != nil {
		return nil, err
	}
	return sess, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	spec, err := buildSpec(cmd)
	if err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringSlice("backend")
	scopusKey, _ := cmd.Flags().GetString("scopus-api-key")
	backends, err := newBackends(names, secretDefault("scopus-api-key", scopusKey))
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, backends)
	if err != nil {
		return err
	}
	defer sess.SaveCookies()

	citation, _ := cmd.Flags().GetString("citation")
	fetchExport := false
	if citation != "" {
		format, err := scholar.ParseCitationFormat(citation)
		if err != nil {
			return err
		}
		settings := scholar.NewSettings()
		if err := settings.SetCitationFormat(format); err != nil {
			return err
		}
		for _, b := range backends {
			gs, ok := b.(*scholar.GoogleScholar)
			if !ok {
				continue
			}
			if err := sess.ApplySettings(cmd.Context(), gs.Site, settings); err != nil {
				return fmt.Errorf("configuring citation export: %w", err)
			}
		}
		fetchExport = true
	}

	qcfg := types.QuerierConfig{
		MaxPageResults:      scholar.MaxPageResults,
		FetchCitationExport: fetchExport,
	}

	csv, _ := cmd.Flags().GetBool("csv")
	csvHeader, _ := cmd.Flags().GetBool("csv-header")
	cslPath, _ := cmd.Flags().GetString("csl")

	var all []*types.Article
	for _, backend := range backends {
		q := querier.New(backend, sess, qcfg, os.Stderr)
		articles, err := q.Run(cmd.Context(), spec)
		if err != nil {
			return err
		}
		if meta := q.Metadata(); meta.HasNumResults {
			fmt.Fprintf(os.Stderr, "%s reports %d results\n", backend.Name(), meta.NumResults)
		}

		for i, a := range articles {
			if csv {
				fmt.Print(a.CSV(csvHeader && i == 0, "|"))
			} else {
				fmt.Print(a.Txt())
				fmt.Println()
			}
			if fetchExport && a.HasCitationData() {
				fmt.Println(a.Citation())
			}
		}
		all = append(all, articles...)

		if len(backends) > 1 {
			time.Sleep(viper.GetDuration("overlap.inter_topic_delay"))
		}
	}

	if cslPath != "" {
		f, err := os.Create(cslPath)
		if err != nil {
			return fmt.Errorf("creating CSL output file: %w", err)
		}
		defer f.Close()
		if err := scholar.FormatCSL(all, f); err != nil {
			return fmt.Errorf("writing CSL output: %w", err)
		}
	}
	return nil
}
