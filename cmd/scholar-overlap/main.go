// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-overlap CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-overlap/internal/scholar"
	"github.com/pdiddy/scholar-overlap/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the scholar-overlap CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-overlap",
	Short: "Query literature-search engines and score their agreement",
	Long: `scholar-overlap queries academic literature-search engines with a shared
query specification and measures how much their top results agree.

The query subcommand runs one search against the selected backends and
prints the parsed records. The overlap subcommand runs a batch of topics
against every backend and reports the mean Jaccard similarity of the
top-result title sets for every backend combination.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-overlap.yaml or ~/.config/scholar-overlap/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-overlap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-overlap"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_OVERLAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newBackends maps backend names to their strategies. The scopus backend
// requires an API key; selecting it without one is an error.
func newBackends(names []string, scopusKey string) ([]scholar.Backend, error) {
	var backends []scholar.Backend
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case "google_scholar":
			backends = append(backends, scholar.NewGoogleScholar())
		case "semantic_scholar":
			backends = append(backends, scholar.NewSemanticScholar())
		case "scopus":
			if scopusKey == "" {
				return nil, fmt.Errorf("backend scopus requires an API key (--scopus-api-key or .secrets/scopus-api-key)")
			}
			backends = append(backends, scholar.NewScopus(scopusKey))
		default:
			return nil, fmt.Errorf("unknown backend %q (have google_scholar, semantic_scholar, scopus)", name)
		}
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no backends selected")
	}
	return backends, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
