// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retail owns the daily sales SQLite database and the data tools
// that query it. The fact table is written only by the seeder; every tool
// is a read-only aggregate over it.
// Implements: prd005-retail-data (R1-R6);
//
//	docs/ARCHITECTURE § Retail Data.
package retail

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/insight-engine/internal/seed"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Store manages the retail sales SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the sales database at cfg.Path, creating the
// schema if it does not exist (R1.1, R1.2).
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("opening sales database: empty path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fct_daily_sales (
			sale_date TEXT NOT NULL,
			region TEXT NOT NULL,
			category TEXT NOT NULL,
			product_name TEXT NOT NULL,
			daily_revenue REAL NOT NULL,
			daily_quantity INTEGER NOT NULL,
			PRIMARY KEY (sale_date, region, category, product_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_category ON fct_daily_sales(category)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_region ON fct_daily_sales(region)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SeedSummary holds counts from a seeding run (R2.4).
type SeedSummary struct {
	Rows    int
	Revenue float64
	From    time.Time
	To      time.Time
}

// Seed replaces the fact table contents with a freshly generated dataset
// (R2.1-R2.3). The whole load runs in one transaction; progress lines go
// to w per generated year.
func (s *Store) Seed(ctx context.Context, cfg seed.Config, w io.Writer) (SeedSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fct_daily_sales`); err != nil {
		return SeedSummary{}, fmt.Errorf("clearing fact table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fct_daily_sales
		 (sale_date, region, category, product_name, daily_revenue, daily_quantity)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary SeedSummary
	yearRows := 0
	year := 0

	flushYear := func() {
		if year != 0 {
			fmt.Fprintf(w, "%d: %d rows\n", year, yearRows)
		}
	}

	_, err = seed.Generate(cfg, func(r seed.Row) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if y := r.SaleDate.Year(); y != year {
			flushYear()
			year, yearRows = y, 0
		}

		_, err := stmt.ExecContext(ctx,
			r.SaleDate.Format("2006-01-02"), r.Region, r.Category, r.Product,
			r.Revenue, r.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting row for %s/%s: %w", r.Category, r.Product, err)
		}

		if summary.Rows == 0 || r.SaleDate.Before(summary.From) {
			summary.From = r.SaleDate
		}
		if r.SaleDate.After(summary.To) {
			summary.To = r.SaleDate
		}
		summary.Rows++
		summary.Revenue += r.Revenue
		yearRows++
		return nil
	})
	if err != nil {
		return SeedSummary{}, fmt.Errorf("generating sales data: %w", err)
	}
	flushYear()

	if err := tx.Commit(); err != nil {
		return SeedSummary{}, fmt.Errorf("committing seed data: %w", err)
	}

	fmt.Fprintf(w, "\nseeded %d rows, %s..%s, total revenue $%.0f\n",
		summary.Rows, summary.From.Format("2006-01-02"),
		summary.To.Format("2006-01-02"), summary.Revenue)
	return summary, nil
}

// Count returns the number of fact rows currently stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM fct_daily_sales`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting fact rows: %w", err)
	}
	return n, nil
}

// Window returns the earliest and latest sale dates, or ok=false when the
// table is empty.
func (s *Store) Window(ctx context.Context) (from, to string, ok bool, err error) {
	var minDate, maxDate sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT MIN(sale_date), MAX(sale_date) FROM fct_daily_sales`,
	).Scan(&minDate, &maxDate); err != nil {
		return "", "", false, fmt.Errorf("querying sales window: %w", err)
	}
	if !minDate.Valid {
		return "", "", false, nil
	}
	return minDate.String, maxDate.String, true, nil
}
