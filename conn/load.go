package conn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/bawdo/ctesbee/cte"
	"github.com/bawdo/ctesbee/dialect"
	"github.com/go-viper/mapstructure/v2"
)

// ErrNoRows is returned by Get when the query produced no rows.
var ErrNoRows = errors.New("conn: no rows in result set")

// ColumnCountError is returned when a scalar row type meets a result with
// more or fewer than one column.
type ColumnCountError struct {
	Want int
	Got  int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("conn: scalar row type needs %d column, result has %d", e.Want, e.Got)
}

// Rows renders q and runs it, returning the raw result set. The caller must
// close it.
func Rows[B dialect.Backend, T any](ctx context.Context, c *DB[B], q cte.Query[B, T]) (*sql.Rows, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	id, err := q.QueryID()
	if err != nil {
		return nil, err
	}
	rows, err := c.query(ctx, id, query, args)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Load runs q and decodes every row into T.
func Load[B dialect.Backend, T any](ctx context.Context, c *DB[B], q cte.Query[B, T]) ([]T, error) {
	rows, err := Rows(ctx, c, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dec, err := newDecoder[T](rows)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for rows.Next() {
		v, err := dec.decode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Get runs q and decodes the first row. It returns ErrNoRows for an empty
// result.
func Get[B dialect.Backend, T any](ctx context.Context, c *DB[B], q cte.Query[B, T]) (T, error) {
	var zero T
	rows, err := Rows(ctx, c, q)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	dec, err := newDecoder[T](rows)
	if err != nil {
		return zero, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, fmt.Errorf("rows: %w", err)
		}
		return zero, ErrNoRows
	}
	return dec.decode(rows)
}

// decoder turns the current row into a T. For struct rows one
// mapstructure decoder is built per result set and writes into row.
type decoder[T any] struct {
	columns []string
	byName  bool
	row     *T
	mapper  *mapstructure.Decoder
}

var (
	scannerType = reflect.TypeFor[sql.Scanner]()
	timeType    = reflect.TypeFor[time.Time]()
)

// byColumnName reports whether t is decoded field by field rather than
// scanned as a single value.
func byColumnName(t reflect.Type) bool {
	if t.Kind() != reflect.Struct || t == timeType {
		return false
	}
	return !reflect.PointerTo(t).Implements(scannerType)
}

func newDecoder[T any](rows *sql.Rows) (*decoder[T], error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	d := &decoder[T]{columns: cols, byName: byColumnName(reflect.TypeFor[T]())}
	if !d.byName {
		if len(cols) != 1 {
			return nil, &ColumnCountError{Want: 1, Got: len(cols)}
		}
		return d, nil
	}
	d.row = new(T)
	d.mapper, err = mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "db",
		WeaklyTypedInput: true,
		Result:           d.row,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			bytesToString,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}
	return d, nil
}

func (d *decoder[T]) decode(rows *sql.Rows) (T, error) {
	var out T
	if !d.byName {
		if err := rows.Scan(&out); err != nil {
			return out, fmt.Errorf("scan: %w", err)
		}
		return out, nil
	}

	values := make([]any, len(d.columns))
	ptrs := make([]any, len(d.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return out, fmt.Errorf("scan: %w", err)
	}
	record := make(map[string]any, len(d.columns))
	for i, col := range d.columns {
		record[col] = values[i]
	}

	*d.row = out
	if err := d.mapper.Decode(record); err != nil {
		return out, fmt.Errorf("decode row: %w", err)
	}
	return *d.row, nil
}

// bytesToString hands text columns returned as []byte to the weak decoder
// as strings, so they can fill string and numeric fields alike.
func bytesToString(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if b, ok := data.([]byte); ok && to.Kind() != reflect.Slice {
		return string(b), nil
	}
	return data, nil
}
