package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/roach88/automodel/internal/model"
)

// Option configures a Registry.
type Option func(*Registry)

// WithCaseInsensitive makes field resolution ignore case.
func WithCaseInsensitive() Option {
	return func(r *Registry) {
		r.foldCase = true
	}
}

// WithLogger sets the logger used while sealing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry is the catalog of tables.
type Registry struct {
	mu       sync.Mutex
	pending  map[string]*model.Table
	order    []string
	foldCase bool
	logger   *slog.Logger

	snapshot atomic.Pointer[snapshot]
}

type snapshot struct {
	tables map[string]*Table
	names  []string
}

// New creates an empty registry in the registration phase.
func New(opts ...Option) *Registry {
	r := &Registry{
		pending: make(map[string]*model.Table),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sealed reports whether registration has ended.
func (r *Registry) Sealed() bool {
	return r.snapshot.Load() != nil
}

// Register adds a table. Fields already on the table are registered too.
func (r *Registry) Register(table *model.Table) error {
	if table == nil || table.Name == "" {
		return fmt.Errorf("register table: table name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Sealed() {
		return fmt.Errorf("register table %s: %w", table.Name, ErrSealed)
	}
	if _, ok := r.pending[table.Name]; ok {
		return fmt.Errorf("register table %s: %w", table.Name, ErrDuplicateTable)
	}

	t := &model.Table{Name: table.Name, DisplayName: table.DisplayName}
	for _, f := range table.Fields {
		nf, err := normalizeField(f)
		if err != nil {
			return fmt.Errorf("register table %s: %w", table.Name, err)
		}
		t.Fields = append(t.Fields, nf)
	}
	r.pending[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// RegisterField adds a field to a registered table.
func (r *Registry) RegisterField(tableName string, field *model.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Sealed() {
		return fmt.Errorf("register field on %s: %w", tableName, ErrSealed)
	}
	t, ok := r.pending[tableName]
	if !ok {
		return fmt.Errorf("register field on %s: %w", tableName, ErrUnknownTable)
	}
	nf, err := normalizeField(field)
	if err != nil {
		return fmt.Errorf("register field on %s: %w", tableName, err)
	}
	t.Fields = append(t.Fields, nf)
	return nil
}

// normalizeField validates a field and returns a private copy with
// defaults applied.
func normalizeField(f *model.Field) (*model.Field, error) {
	if f == nil || f.ReflectionName == "" {
		return nil, fmt.Errorf("field reflection name is required")
	}
	for i, h := range f.Navigation {
		if h.Name == "" {
			return nil, fmt.Errorf("field %s: navigation hop %d has no name", f.ReflectionName, i)
		}
	}
	if f.Type.Basic == "" {
		return nil, fmt.Errorf("field %s: basic type is required", f.ReflectionName)
	}

	nf := *f
	nf.Navigation = append([]model.Hop(nil), f.Navigation...)
	nf.Type.EnumValues = append([]string(nil), f.Type.EnumValues...)
	if nf.Title == "" {
		nf.Title = nf.ReflectionName
	}

	seen := make(map[string]bool)
	nf.ActivateNames = nil
	for _, name := range f.ActivateNames {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		nf.ActivateNames = append(nf.ActivateNames, name)
	}
	if len(nf.ActivateNames) == 0 {
		nf.ActivateNames = []string{nf.DefaultActivationName()}
	}
	return &nf, nil
}

// Seal ends the registration phase and publishes the snapshot.
// Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Sealed() {
		return
	}

	snap := &snapshot{tables: make(map[string]*Table, len(r.pending))}
	for _, name := range r.order {
		t := newTable(r.pending[name], r.foldCase)
		snap.tables[name] = t
		snap.names = append(snap.names, name)
		for _, alias := range t.AmbiguousNames() {
			r.logger.Warn("ambiguous activation name", "table", name, "name", alias)
		}
	}
	sort.Strings(snap.names)
	r.pending = nil
	r.snapshot.Store(snap)

	r.logger.Debug("registry sealed", "tables", len(snap.names))
}

// Lookup returns the table registered under typeName.
// The first lookup seals the registry.
func (r *Registry) Lookup(typeName string) (*Table, bool) {
	snap := r.snapshot.Load()
	if snap == nil {
		r.Seal()
		snap = r.snapshot.Load()
	}
	t, ok := snap.tables[typeName]
	return t, ok
}

// Get is like Lookup but reports an absent table as ErrUnknownTable.
func (r *Registry) Get(typeName string) (*Table, error) {
	t, ok := r.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", typeName, ErrUnknownTable)
	}
	return t, nil
}

// Tables returns the registered table names in sorted order.
func (r *Registry) Tables() []string {
	snap := r.snapshot.Load()
	if snap == nil {
		r.Seal()
		snap = r.snapshot.Load()
	}
	return append([]string(nil), snap.names...)
}
