// Package store persists enriched bank records to SQLite and runs read queries against them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aluiziolira/go-scrape-banks/config"
	"github.com/aluiziolira/go-scrape-banks/models"
)

// Store owns the single database handle of a run.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite file at path, creating it if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	return New(db), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the handle. Calling it more than once is safe.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceTable drops table, recreates it and inserts records in one transaction.
func (s *Store) ReplaceTable(ctx context.Context, table string, records []models.EnrichedRecord) error {
	if !config.ValidTableName(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	name := quoteIdent(table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(name)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(name))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Name, r.MarketCapUSD, r.MarketCapGBP, r.MarketCapEUR, r.MarketCapINR); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", table, err)
	}
	return nil
}

func createTableSQL(name string) string {
	return "CREATE TABLE " + name + " (" +
		"Name TEXT, MarketCapUSD REAL, MarketCapGBP REAL, MarketCapEUR REAL, MarketCapINR REAL)"
}

func insertSQL(name string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(models.Columns)), ", ")
	return "INSERT INTO " + name + " (" + strings.Join(models.Columns, ", ") + ") VALUES (" + placeholders + ")"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
