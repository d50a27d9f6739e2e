package main

import (
	"bufio"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"remit/internal/config"
	"remit/internal/db"
)

func main() {
	logger := slog.Default()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`); err != nil {
		logger.Error("failed to ensure schema_migrations", "error", err)
		os.Exit(1)
	}

	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		logger.Error("failed to read migrations", "error", err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		filename := filepath.Base(file)
		var exists bool
		if err := database.Get(&exists, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, filename); err != nil {
			logger.Error("failed to read migration state", "error", err)
			os.Exit(1)
		}
		if exists {
			continue
		}
		if err := applyFile(database, file); err != nil {
			logger.Error("failed to apply migration", "file", filename, "error", err)
			os.Exit(1)
		}
		if _, err := database.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			logger.Error("failed to record migration", "file", filename, "error", err)
			os.Exit(1)
		}
		logger.Info("applied migration", "file", filename)
	}
}

func applyFile(db execer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// everything above the Down marker is the forward migration
	up := strings.Split(string(content), "-- +migrate Down")[0]
	for _, stmt := range splitSQL(up) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.Contains(line, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
