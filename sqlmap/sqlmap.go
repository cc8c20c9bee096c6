// Package sqlmap maps registered struct types onto database/sql rows.
//
// Column names derive from field names via snake_case and can be overridden
// with a `db:"..."` struct tag; a tag of "-" excludes the field. Result
// columns are scanned into holders of the declared field types and written
// through the descriptor's checked Set, so a query returning a column with
// no registered counterpart fails instead of being dropped.
package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/noaland/mirror"
	strutil "github.com/noaland/mirror/internal/util/strings"
)

// Common mapping error types
var (
	// ErrNotFound is returned by Get when the query yields no rows.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownColumn is returned when a result column has no registered
	// field on the descriptor.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoColumns is returned by Insert when every registered field is
	// excluded from mapping.
	ErrNoColumns = errors.New("no mapped columns")
)

// Queryer is the subset of database/sql needed by the mapping helpers.
// Both *sql.DB and *sql.Tx satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ColumnName returns the column a field maps to: the `db` tag when present,
// otherwise the snake_cased field name. The empty string marks a field
// excluded with `db:"-"`.
func ColumnName(f mirror.Field) string {
	if tag, ok := f.Tag.Lookup("db"); ok {
		if tag == "-" {
			return ""
		}
		return tag
	}
	return strutil.ToSnakeCase(f.Name)
}

// Columns returns the mapped column for every registered field in
// registration order, excluded fields omitted.
func Columns(info *mirror.Info) []string {
	fields := info.Fields()
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		if col := ColumnName(f); col != "" {
			columns = append(columns, col)
		}
	}
	return columns
}

// Select runs the query and maps every result row onto a T.
func Select[T any](ctx context.Context, db Queryer, d *mirror.Type[T], query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields, err := resultFields(d.Info(), rows)
	if err != nil {
		return nil, err
	}

	var results []T
	for rows.Next() {
		item, err := scanRow(rows, d, fields)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// Get runs the query and maps the first result row onto a T. ErrNotFound is
// returned when the query yields nothing.
func Get[T any](ctx context.Context, db Queryer, d *mirror.Type[T], query string, args ...any) (T, error) {
	var zero T

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	fields, err := resultFields(d.Info(), rows)
	if err != nil {
		return zero, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %s", ErrNotFound, d.Name())
	}
	return scanRow(rows, d, fields)
}

// Insert writes every mapped field of value into table, columns in
// registration order.
func Insert[T any](ctx context.Context, db Queryer, d *mirror.Type[T], table string, value *T) error {
	var (
		columns      []string
		placeholders []string
		args         []any
	)
	for _, f := range d.Fields() {
		col := ColumnName(f)
		if col == "" {
			continue
		}
		v, err := d.Get(value, f.Name)
		if err != nil {
			return err
		}
		columns = append(columns, col)
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: %s", ErrNoColumns, d.Name())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err := db.ExecContext(ctx, query, args...)
	return err
}

// resultFields resolves the query's result columns against the descriptor.
// Column order follows the result set, not registration order.
func resultFields(info *mirror.Info, rows *sql.Rows) ([]mirror.Field, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string]mirror.Field, info.NumFields())
	for _, f := range info.Fields() {
		if col := ColumnName(f); col != "" {
			byColumn[col] = f
		}
	}

	fields := make([]mirror.Field, len(columns))
	for i, col := range columns {
		f, ok := byColumn[col]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no registered field on %s", ErrUnknownColumn, col, info.Name())
		}
		fields[i] = f
	}
	return fields, nil
}

// scanRow scans the current row into holders of the declared field types
// and commits them through the checked Set.
func scanRow[T any](rows *sql.Rows, d *mirror.Type[T], fields []mirror.Field) (T, error) {
	var item T

	holders := make([]any, len(fields))
	for i, f := range fields {
		holders[i] = reflect.New(f.Type).Interface()
	}
	if err := rows.Scan(holders...); err != nil {
		return item, err
	}

	for i, f := range fields {
		value := reflect.ValueOf(holders[i]).Elem().Interface()
		if err := d.Set(&item, f.Name, value); err != nil {
			return item, err
		}
	}
	return item, nil
}
