package store

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// QueryError reports a statement that could not be executed or read.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Result is a fully materialised query result.
type Result struct {
	Header []string
	Rows   [][]any
}

// DefaultQueries returns the statements printed after every load.
func DefaultQueries(tableName string) []string {
	name := quoteIdent(tableName)
	return []string{
		"SELECT * FROM " + name,
		"SELECT AVG(MarketCapGBP) FROM " + name,
		"SELECT Name FROM " + name + " LIMIT 5",
	}
}

// Query runs a read statement and collects every row.
func (s *Store) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	result := &Result{Header: header}
	for rows.Next() {
		values := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	return result, nil
}

// RunQuery executes query and prints the statement and its result table to w.
func (s *Store) RunQuery(ctx context.Context, query string, w io.Writer) error {
	result, err := s.Query(ctx, query)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, query); err != nil {
		return fmt.Errorf("print query: %w", err)
	}
	return FormatTable(result, w)
}

// FormatTable renders result as a borderless text table.
func FormatTable(result *Result, w io.Writer) error {
	header := make(table.Row, 0, len(result.Header))
	for _, h := range result.Header {
		header = append(header, h)
	}

	rows := make([]table.Row, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, table.Row(row))
	}

	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
