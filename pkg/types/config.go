// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SessionConfig holds settings for the HTTP session layer.
type SessionConfig struct {
	HTTPConfig `yaml:",inline"`

	// CookieFile is the path used to load cookies at startup and save them
	// at shutdown. Empty disables cookie persistence.
	CookieFile string `json:"cookie_file,omitempty" yaml:"cookie_file,omitempty"`

	// MaxRetries bounds retry attempts on rate-limited responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// QuerierConfig holds settings for per-backend query execution.
type QuerierConfig struct {
	// MaxPageResults caps the per-page result count requested from a
	// backend. The engines serve at most 8 for anonymous sessions.
	MaxPageResults int `json:"max_page_results" yaml:"max_page_results"`

	// FetchCitationExport enables following each article's citation-export
	// link after parsing.
	FetchCitationExport bool `json:"fetch_citation_export" yaml:"fetch_citation_export"`

	// ScopusAPIKey authenticates requests to the Scopus search API.
	ScopusAPIKey string `json:"scopus_api_key,omitempty" yaml:"scopus_api_key,omitempty"`
}

// OverlapConfig holds settings for the agreement-scoring stage.
type OverlapConfig struct {
	// TruncateTo bounds each backend's title set before scoring, so the
	// metric reads "agreement among top-K" (default 8).
	TruncateTo int `json:"truncate_to" yaml:"truncate_to"`

	// NormalizeTitles lowercases and collapses whitespace before comparing
	// titles across backends. Off by default: exact match is the behavior
	// historical runs were scored with.
	NormalizeTitles bool `json:"normalize_titles" yaml:"normalize_titles"`

	// InterTopicDelay is the pause inserted after each backend fetch to
	// respect target-site rate limits (default 2s).
	InterTopicDelay time.Duration `json:"inter_topic_delay" yaml:"inter_topic_delay"`
}

// ArchiveConfig holds settings for the run archive database.
type ArchiveConfig struct {
	// Dir is the directory holding the archive database (default "runs/").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Session SessionConfig `json:"session" yaml:"session"`
	Querier QuerierConfig `json:"querier" yaml:"querier"`
	Overlap OverlapConfig `json:"overlap" yaml:"overlap"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}
