// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package overlap

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// ReportFile is the on-disk representation of one agreement run: the
// configuration that produced it, the per-combination means, and a summary
// of what was scored and what was skipped.
type ReportFile struct {
	Level    string             `yaml:"level,omitempty"`
	Backends []string           `yaml:"backends"`
	Config   ReportConfig       `yaml:"config"`
	Scores   map[string]float64 `yaml:"scores"`
	Counts   map[string]int     `yaml:"contributing_topics"`
	Summary  ReportSummary      `yaml:"summary"`
}

// ReportConfig stores the scoring configuration that produced the report.
type ReportConfig struct {
	TruncateTo      int  `yaml:"truncate_to"`
	NormalizeTitles bool `yaml:"normalize_titles"`
}

// ReportSummary stores batch statistics and a timestamp.
type ReportSummary struct {
	TopicsAttempted int       `yaml:"topics_attempted"`
	TopicsSkipped   int       `yaml:"topics_skipped"`
	Skipped         []string  `yaml:"skipped,omitempty"`
	Timestamp       time.Time `yaml:"timestamp"`
}

// NewReport assembles a ReportFile from a finished scorer and run context.
func NewReport(level string, backends []string, cfg types.OverlapConfig, s *Scorer, attempted int, skipped []string) ReportFile {
	truncateTo := cfg.TruncateTo
	if truncateTo <= 0 {
		truncateTo = 8
	}
	return ReportFile{
		Level:    level,
		Backends: backends,
		Config: ReportConfig{
			TruncateTo:      truncateTo,
			NormalizeTitles: cfg.NormalizeTitles,
		},
		Scores: s.Finalize(),
		Counts: s.Counts(),
		Summary: ReportSummary{
			TopicsAttempted: attempted,
			TopicsSkipped:   len(skipped),
			Skipped:         skipped,
			Timestamp:       time.Now(),
		},
	}
}

// WriteReport saves the report to a YAML file.
func WriteReport(path string, rep ReportFile) error {
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously saved report from disk.
func ReadReport(path string) (*ReportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var rep ReportFile
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &rep, nil
}
