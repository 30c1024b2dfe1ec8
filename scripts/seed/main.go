// Package main provides a standalone seeding script that reads a sports
// catalog from CSV and writes it to PostgreSQL for rosterdesk.
//
// The CSV columns are: type, id, name, attributes (JSON), context_fields
// (JSON). id may be blank, in which case one is generated. A header row
// is detected and skipped.
//
// Usage:
//
//	CSV_PATH=catalog.csv DATABASE_URL=postgres://... go run ./scripts/seed
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// config holds environment-driven seeding settings.
type config struct {
	CSVPath     string
	DatabaseURL string
	DryRun      bool
	Truncate    bool
}

// row is one parsed CSV record.
type row struct {
	Type          string
	ID            string
	Name          string
	Attributes    map[string]any
	ContextFields map[string]string
}

// report holds the final seeding summary.
type report struct {
	Source   string
	Read     int
	Inserted int
	Skipped  []string
	Duration time.Duration
	DryRun   bool
}

var knownTypes = map[string]bool{
	"league": true, "team": true, "stadium": true,
	"brand": true, "division_conference": true, "broadcast_right": true,
}

func main() {
	cfg := loadConfig()
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	slog.Info("starting seed", "csv", cfg.CSVPath, "dry_run", cfg.DryRun)

	start := time.Now()
	r, err := runSeed(context.Background(), cfg)
	r.Duration = time.Since(start)
	if err != nil {
		slog.Error("seed failed", "error", err)
	}
	printReport(&r)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables.
func loadConfig() config {
	return config{
		CSVPath:     envOr("CSV_PATH", "catalog.csv"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		DryRun:      os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
		Truncate:    os.Getenv("TRUNCATE") == "true" || os.Getenv("TRUNCATE") == "1",
	}
}

// runSeed executes the full seeding pipeline.
func runSeed(ctx context.Context, cfg config) (report, error) {
	r := report{Source: cfg.CSVPath, DryRun: cfg.DryRun}

	f, err := os.Open(cfg.CSVPath)
	if err != nil {
		return r, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, skipped, err := readRows(f)
	if err != nil {
		return r, fmt.Errorf("read csv: %w", err)
	}
	r.Read = len(rows) + len(skipped)
	r.Skipped = skipped
	slog.Info("read rows from csv", "count", r.Read, "skipped", len(skipped))

	if cfg.DryRun {
		slog.Info("dry run — skipping PostgreSQL writes")
		r.Inserted = len(rows)
		return r, nil
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return r, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if cfg.Truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE entities"); err != nil {
			return r, fmt.Errorf("truncate entities: %w", err)
		}
		slog.Info("truncated entities table")
	}

	for _, rec := range rows {
		attrs, err := json.Marshal(rec.Attributes)
		if err != nil {
			return r, fmt.Errorf("marshal attributes for %s/%s: %w", rec.Type, rec.ID, err)
		}
		fields, err := json.Marshal(rec.ContextFields)
		if err != nil {
			return r, fmt.Errorf("marshal context fields for %s/%s: %w", rec.Type, rec.ID, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO entities (type, id, name, attributes, context_fields)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (type, id) DO UPDATE
			 SET name = EXCLUDED.name,
			     attributes = EXCLUDED.attributes,
			     context_fields = EXCLUDED.context_fields,
			     updated_at = now()`,
			rec.Type, rec.ID, rec.Name, attrs, fields)
		if err != nil {
			return r, fmt.Errorf("insert %s/%s: %w", rec.Type, rec.ID, err)
		}
		r.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return r, fmt.Errorf("commit: %w", err)
	}
	slog.Info("transaction committed", "inserted", r.Inserted)
	return r, nil
}

// readRows parses and validates the CSV, returning good rows and a list
// of skipped line descriptions.
func readRows(f io.Reader) ([]row, []string, error) {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows []row
	var skipped []string
	line := 0

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "type") {
			continue // header
		}
		if len(rec) < 3 {
			skipped = append(skipped, fmt.Sprintf("line %d: want at least 3 columns, got %d", line, len(rec)))
			continue
		}

		r := row{
			Type: strings.TrimSpace(rec[0]),
			ID:   strings.TrimSpace(rec[1]),
			Name: strings.TrimSpace(rec[2]),
		}
		if !knownTypes[r.Type] {
			skipped = append(skipped, fmt.Sprintf("line %d: unknown type %q", line, r.Type))
			continue
		}
		if r.Name == "" {
			skipped = append(skipped, fmt.Sprintf("line %d: empty name", line))
			continue
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}

		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			if err := json.Unmarshal([]byte(rec[3]), &r.Attributes); err != nil {
				skipped = append(skipped, fmt.Sprintf("line %d: bad attributes JSON: %v", line, err))
				continue
			}
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			if err := json.Unmarshal([]byte(rec[4]), &r.ContextFields); err != nil {
				skipped = append(skipped, fmt.Sprintf("line %d: bad context_fields JSON: %v", line, err))
				continue
			}
		}

		rows = append(rows, r)
	}

	return rows, skipped, nil
}

func printReport(r *report) {
	fmt.Println()
	fmt.Println("Seed report")
	fmt.Println("===========")
	fmt.Printf("Source:    %s\n", r.Source)
	fmt.Printf("Read:      %d\n", r.Read)
	fmt.Printf("Inserted:  %d\n", r.Inserted)
	fmt.Printf("Skipped:   %d\n", len(r.Skipped))
	for _, s := range r.Skipped {
		fmt.Printf("  - %s\n", s)
	}
	fmt.Printf("Duration:  %s\n", r.Duration.Round(time.Millisecond))
	if r.DryRun {
		fmt.Println("Mode:      dry run (no writes)")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
