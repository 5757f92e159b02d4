package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Applies migrations/*.sql in filename order, one transaction per file.
// Applied filenames are recorded in schema_migrations so reruns only pick
// up new files.
func main() {
	dir := flag.String("dir", "migrations", "directory with .sql migration files")
	status := flag.Bool("status", false, "show applied and pending migrations, change nothing")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "error", err.Error())
		os.Exit(1)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
		    filename   TEXT PRIMARY KEY,
		    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		logger.Error("ensure schema_migrations", "error", err.Error())
		os.Exit(1)
	}

	applied, err := appliedSet(db)
	if err != nil {
		logger.Error("read applied migrations", "error", err.Error())
		os.Exit(1)
	}
	files, err := migrationFiles(*dir)
	if err != nil {
		logger.Error("read migrations dir", "dir", *dir, "error", err.Error())
		os.Exit(1)
	}

	if *status {
		for _, f := range files {
			state := "pending"
			if applied[f] {
				state = "applied"
			}
			fmt.Printf("%-40s %s\n", f, state)
		}
		return
	}

	ran := 0
	for _, f := range files {
		if applied[f] {
			continue
		}
		if err := applyOne(db, *dir, f); err != nil {
			logger.Error("migration failed", "file", f, "error", err.Error())
			os.Exit(1)
		}
		logger.Info("migration applied", "file", f)
		ran++
	}
	if ran == 0 {
		logger.Info("schema up to date", "migrations", len(files))
		return
	}
	logger.Info("migrations complete", "applied", ran)
}

func appliedSet(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out[f] = true
	}
	return out, rows.Err()
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyOne runs a single migration file and records it, both inside one
// transaction, so a failed statement leaves no half-applied file behind.
func applyOne(db *sql.DB, dir, file string) error {
	content, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("empty migration file")
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, file); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
