// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists the articles and scores of agreement runs to a
// SQLite database, so a run's raw inputs can be re-inspected after the
// remote engines have drifted.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

const dbFile = "overlap.db"

// Archive manages the run archive SQLite database.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive database at dir/overlap.db, creating
// the schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Archive, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "runs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started TEXT NOT NULL,
			level TEXT,
			backends TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			topic TEXT NOT NULL,
			backend TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			year TEXT,
			num_citations INTEGER,
			num_versions INTEGER,
			cluster_id TEXT,
			excerpt TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_run_topic ON articles(run_id, topic)`,
		`CREATE TABLE IF NOT EXISTS scores (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			combo TEXT NOT NULL,
			mean REAL NOT NULL,
			topics INTEGER NOT NULL,
			PRIMARY KEY (run_id, combo)
		)`,
	}

	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records a new run and returns its identifier.
func (a *Archive) BeginRun(ctx context.Context, level string, backends []string) (int64, error) {
	sorted := append([]string(nil), backends...)
	sort.Strings(sorted)

	res, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (started, level, backends) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), level, strings.Join(sorted, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// SaveArticles stores one backend's articles for a topic, in result order.
func (a *Archive) SaveArticles(ctx context.Context, runID int64, topic, backend string, articles []*types.Article) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (run_id, topic, backend, position, title, url, year, num_citations, num_versions, cluster_id, excerpt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, art := range articles {
		_, err := stmt.ExecContext(ctx,
			runID, topic, backend, i,
			art.Title(),
			art.GetString(types.AttrURL),
			art.GetString(types.AttrYear),
			art.GetInt(types.AttrNumCitations),
			art.GetInt(types.AttrNumVersions),
			art.GetString(types.AttrClusterID),
			art.GetString(types.AttrExcerpt),
		)
		if err != nil {
			return fmt.Errorf("inserting article %d for topic %q: %w", i, topic, err)
		}
	}
	return tx.Commit()
}

// SaveScores stores the finalized per-combination means and their
// contributing-topic counts.
func (a *Archive) SaveScores(ctx context.Context, runID int64, means map[string]float64, counts map[string]int) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for combo, mean := range means {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO scores (run_id, combo, mean, topics) VALUES (?, ?, ?, ?)`,
			runID, combo, mean, counts[combo],
		)
		if err != nil {
			return fmt.Errorf("inserting score for %s: %w", combo, err)
		}
	}
	return tx.Commit()
}

// Titles returns one backend's stored titles for a topic, in result order.
func (a *Archive) Titles(ctx context.Context, runID int64, topic, backend string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT title FROM articles WHERE run_id = ? AND topic = ? AND backend = ? ORDER BY position`,
		runID, topic, backend,
	)
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}
