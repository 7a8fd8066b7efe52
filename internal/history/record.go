package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/automodel/internal/compiler"
	"github.com/roach88/automodel/internal/model"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history record not found")

// Diagnostic is the stored form of a clause failure.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Clause  string `json:"clause,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Entry is a compile call to be recorded.
type Entry struct {
	Table       string
	Strategy    string
	Filter      string
	Expression  string
	Params      []any
	Diagnostics []Diagnostic
}

// NewEntry captures a compile result.
func NewEntry(res *compiler.Result) Entry {
	e := Entry{
		Table:      res.Table,
		Strategy:   res.Strategy,
		Filter:     res.Original,
		Expression: res.Text,
		Params:     res.Params,
	}
	for _, d := range res.Diagnostics {
		e.Diagnostics = append(e.Diagnostics, fromDiagnostic(d))
	}
	return e
}

func fromDiagnostic(d *model.Diagnostic) Diagnostic {
	return Diagnostic{Code: string(d.Code), Message: d.Message, Clause: d.Clause, Start: d.Start, End: d.End}
}

// Record is a stored compile call.
type Record struct {
	Seq         int64           `json:"seq"`
	ID          string          `json:"id"`
	Hash        string          `json:"content_hash"`
	Table       string          `json:"table"`
	Strategy    string          `json:"strategy"`
	Filter      string          `json:"filter"`
	Expression  string          `json:"expression"`
	Params      json.RawMessage `json:"params"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Append stores e and returns the new record.
func (s *Store) Append(ctx context.Context, e Entry) (*Record, error) {
	params := e.Params
	if params == nil {
		params = []any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("append: marshal params: %w", err)
	}
	diags := e.Diagnostics
	if diags == nil {
		diags = []Diagnostic{}
	}
	diagsJSON, err := json.Marshal(diags)
	if err != nil {
		return nil, fmt.Errorf("append: marshal diagnostics: %w", err)
	}

	rec := &Record{
		ID:          s.ids.Generate(),
		Hash:        ContentHash(e.Table, e.Expression, e.Strategy),
		Table:       e.Table,
		Strategy:    e.Strategy,
		Filter:      e.Filter,
		Expression:  e.Expression,
		Params:      paramsJSON,
		Diagnostics: diags,
		CreatedAt:   s.clock.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO compiles
		(id, content_hash, table_name, strategy, filter, expression, params, diagnostics, error_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Hash,
		rec.Table,
		rec.Strategy,
		rec.Filter,
		rec.Expression,
		string(paramsJSON),
		string(diagsJSON),
		len(diags),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("append: %w", err)
	}
	if rec.Seq, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("append: %w", err)
	}
	return rec, nil
}

const selectRecord = `
	SELECT seq, id, content_hash, table_name, strategy, filter, expression, params, diagnostics, created_at
	FROM compiles
`

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+`WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Table restricts the listing to one table when set.
	Table string

	// Limit caps the number of records; zero means 50.
	Limit int

	// ErrorsOnly keeps records with at least one diagnostic.
	ErrorsOnly bool
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query := selectRecord + `
		WHERE (? = '' OR table_name = ?)
		AND (? = 0 OR error_count > 0)
		ORDER BY seq DESC
		LIMIT ?
	`
	errorsOnly := 0
	if opts.ErrorsOnly {
		errorsOnly = 1
	}
	rows, err := s.db.QueryContext(ctx, query, opts.Table, opts.Table, errorsOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return collect(rows)
}

// FindByHash returns every record of a compiled predicate, oldest first.
func (s *Store) FindByHash(ctx context.Context, hash string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+`WHERE content_hash = ? ORDER BY seq ASC`, hash)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		params    string
		diags     string
		createdAt string
	)
	if err := row.Scan(&rec.Seq, &rec.ID, &rec.Hash, &rec.Table, &rec.Strategy,
		&rec.Filter, &rec.Expression, &params, &diags, &createdAt); err != nil {
		return nil, err
	}
	rec.Params = json.RawMessage(params)
	if err := json.Unmarshal([]byte(diags), &rec.Diagnostics); err != nil {
		return nil, fmt.Errorf("record %s: diagnostics: %w", rec.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("record %s: created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
