package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vip7612-maker/monglemongle/internal/infra"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// sliceRows serves fixed values through the pgx.Rows interface.
type sliceRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *sliceRows) Close() {}

func (r *sliceRows) Err() error { return r.err }

func (r *sliceRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *sliceRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *sliceRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *sliceRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *sliceRows) RawValues() [][]byte { return nil }

func (r *sliceRows) Conn() *pgx.Conn { return nil }

type execCall struct {
	marker string
	args   []any
}

// fakeExecutor records statements by marker and answers from canned results.
type fakeExecutor struct {
	calls   []execCall
	tag     pgconn.CommandTag
	execErr error
	rows    *sliceRows
	row     simpleRow
}

func (f *fakeExecutor) record(query string, args []any) error {
	marker, _, err := infra.ExtractMarker(query)
	if err != nil {
		return err
	}
	f.calls = append(f.calls, execCall{marker: marker, args: args})
	return nil
}

func (f *fakeExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if err := f.record(query, args); err != nil {
		return pgconn.CommandTag{}, err
	}
	return f.tag, f.execErr
}

func (f *fakeExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if err := f.record(query, args); err != nil {
		return simpleRow{scan: func(...any) error { return err }}
	}
	return f.row
}

func (f *fakeExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if err := f.record(query, args); err != nil {
		return nil, err
	}
	if f.rows == nil {
		return &sliceRows{}, nil
	}
	return f.rows, nil
}
