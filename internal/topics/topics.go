// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics loads the topic batches an agreement run queries for.
// A topics file is either YAML with named hierarchy levels (the shape a
// classification taxonomy flattens into) or a plain text file with one
// topic per line.
package topics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// File holds the topic lists of one topics file, keyed by level name.
type File struct {
	// Levels maps a level name (e.g. "top", "leaf") to its topics.
	Levels map[string][]string `yaml:"levels"`

	// DefaultLevel selects the level used when the caller names none.
	DefaultLevel string `yaml:"default_level,omitempty"`
}

// Load reads a topics file. Files with a .yaml/.yml extension must carry
// the levels mapping; anything else is read as one topic per line under a
// single "all" level. Blank lines and #-comments are skipped.
func Load(path string) (*File, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadLines(path)
	}
}

func loadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing topics file: %w", err)
	}
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("topics file %s defines no levels", path)
	}
	return &f, nil
}

func loadLines(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	defer fh.Close()

	var lines []string
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("topics file %s is empty", path)
	}

	return &File{
		Levels:       map[string][]string{"all": lines},
		DefaultLevel: "all",
	}, nil
}

// LevelNames returns the defined level names, sorted.
func (f *File) LevelNames() []string {
	names := make([]string, 0, len(f.Levels))
	for name := range f.Levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Level returns the topics of the named level. An empty name selects the
// default level, or the only level when exactly one is defined.
func (f *File) Level(name string) ([]string, error) {
	if name == "" {
		name = f.DefaultLevel
	}
	if name == "" && len(f.Levels) == 1 {
		name = f.LevelNames()[0]
	}
	if name == "" {
		return nil, fmt.Errorf("topics file defines levels %v but no default; pick one", f.LevelNames())
	}
	topics, ok := f.Levels[name]
	if !ok {
		return nil, fmt.Errorf("topics file has no level %q (have %v)", name, f.LevelNames())
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics level %q is empty", name)
	}
	return topics, nil
}
