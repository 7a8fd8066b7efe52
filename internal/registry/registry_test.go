package registry

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/automodel/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orderTable() *model.Table {
	return &model.Table{
		Name:        "Shop.Order",
		DisplayName: "Order",
		Fields: []*model.Field{
			{ReflectionName: "Status", ActivateNames: []string{"status", "state"}, Type: model.TypeSetting{Basic: model.TypeString}},
			{ReflectionName: "Total", Type: model.TypeSetting{Basic: model.TypeDecimal}},
			{
				ReflectionName: "Sku",
				Navigation:     []model.Hop{{Name: "Items", Collection: true}},
				Type:           model.TypeSetting{Basic: model.TypeString},
			},
			{
				ReflectionName: "City",
				Navigation:     []model.Hop{{Name: "Customer"}, {Name: "Address"}},
				IgnorePrefix:   true,
				Type:           model.TypeSetting{Basic: model.TypeString},
			},
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))
	require.NoError(t, r.RegisterField("Shop.Order", &model.Field{
		ReflectionName: "Note",
		Type:           model.TypeSetting{Basic: model.TypeString},
	}))

	tbl, ok := r.Lookup("Shop.Order")
	require.True(t, ok)
	assert.Equal(t, "Order", tbl.DisplayName())
	assert.Len(t, tbl.Fields(), 5)

	_, ok = r.Lookup("Shop.Missing")
	assert.False(t, ok)

	_, err := r.Get("Shop.Missing")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestRegistry_Defaults(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))
	tbl, err := r.Get("Shop.Order")
	require.NoError(t, err)

	f, err := tbl.Resolve("Total")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total"}, f.ActivateNames)
	assert.Equal(t, "Total", f.Title)

	f, err = tbl.Resolve("Items.Sku")
	require.NoError(t, err)
	assert.Equal(t, "Sku", f.ReflectionName)

	f, err = tbl.Resolve("City")
	require.NoError(t, err)
	assert.Equal(t, "Customer.Address.City", f.Path())
}

func TestRegistry_SealedRejectsRegistration(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))

	_, _ = r.Lookup("Shop.Order")
	assert.True(t, r.Sealed())

	err := r.Register(&model.Table{Name: "Shop.Other"})
	assert.ErrorIs(t, err, ErrSealed)

	err = r.RegisterField("Shop.Order", &model.Field{ReflectionName: "X", Type: model.TypeSetting{Basic: model.TypeInt}})
	assert.ErrorIs(t, err, ErrSealed)
}

func TestRegistry_RegistrationErrors(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))

	assert.ErrorIs(t, r.Register(orderTable()), ErrDuplicateTable)
	assert.ErrorIs(t, r.RegisterField("Nope", &model.Field{ReflectionName: "X", Type: model.TypeSetting{Basic: model.TypeInt}}), ErrUnknownTable)
	assert.Error(t, r.Register(&model.Table{}))
	assert.Error(t, r.RegisterField("Shop.Order", &model.Field{}))
	assert.Error(t, r.RegisterField("Shop.Order", &model.Field{ReflectionName: "NoType"}))
	assert.Error(t, r.RegisterField("Shop.Order", &model.Field{
		ReflectionName: "X",
		Navigation:     []model.Hop{{Name: ""}},
		Type:           model.TypeSetting{Basic: model.TypeInt},
	}))
}

func TestTable_Resolve(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(&model.Table{
		Name: "T",
		Fields: []*model.Field{
			{ReflectionName: "Name", ActivateNames: []string{"name", "n"}, Type: model.TypeSetting{Basic: model.TypeString}},
			{ReflectionName: "Nickname", ActivateNames: []string{"nick", "n"}, Type: model.TypeSetting{Basic: model.TypeString}},
			{ReflectionName: "Name", Navigation: []model.Hop{{Name: "Owner"}}, IgnorePrefix: true, ActivateNames: []string{"owner"}, Type: model.TypeSetting{Basic: model.TypeString}},
			{ReflectionName: "Code", Navigation: []model.Hop{{Name: "A"}}, IgnorePrefix: true, ActivateNames: []string{"a.code"}, Type: model.TypeSetting{Basic: model.TypeString}},
			{ReflectionName: "Code", Navigation: []model.Hop{{Name: "B"}}, IgnorePrefix: true, ActivateNames: []string{"b.code"}, Type: model.TypeSetting{Basic: model.TypeString}},
		},
	}))
	tbl, err := r.Get("T")
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		wantPath  string
		ambiguous bool
		notFound  bool
	}{
		{name: "exact alias", text: "nick", wantPath: "Nickname"},
		{name: "exact alias beats bare name", text: "name", wantPath: "Name"},
		{name: "shared alias is ambiguous", text: "n", ambiguous: true},
		{name: "bare name fallback", text: "Name", wantPath: "Owner.Name"},
		{name: "bare name shared by two fields", text: "Code", ambiguous: true},
		{name: "case sensitive by default", text: "NICK", notFound: true},
		{name: "unknown", text: "missing", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tbl.Resolve(tt.text)
			switch {
			case tt.ambiguous:
				assert.True(t, IsAmbiguous(err), "err = %v", err)
				assert.Nil(t, f)
			case tt.notFound:
				assert.True(t, IsNotFound(err), "err = %v", err)
				assert.Nil(t, f)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantPath, f.Path())
			}
		})
	}

	assert.Equal(t, []string{"n"}, tbl.AmbiguousNames())
}

func TestTable_ResolveAmbiguityCandidates(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(&model.Table{
		Name: "T",
		Fields: []*model.Field{
			{ReflectionName: "A", ActivateNames: []string{"x"}, Type: model.TypeSetting{Basic: model.TypeInt}},
			{ReflectionName: "B", ActivateNames: []string{"x"}, Type: model.TypeSetting{Basic: model.TypeInt}},
		},
	}))
	tbl, err := r.Get("T")
	require.NoError(t, err)

	_, err = tbl.Resolve("x")
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldAmbiguous, fe.Kind)
	assert.Equal(t, []string{"A", "B"}, fe.Candidates)
	assert.Nil(t, tbl.Field("x"))
}

func TestTable_ResolveCaseInsensitive(t *testing.T) {
	r := New(WithCaseInsensitive(), WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))
	tbl, err := r.Get("Shop.Order")
	require.NoError(t, err)

	f, err := tbl.Resolve("STATUS")
	require.NoError(t, err)
	assert.Equal(t, "Status", f.ReflectionName)

	f, err = tbl.Resolve("items.sku")
	require.NoError(t, err)
	assert.Equal(t, "Sku", f.ReflectionName)
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	r := New(WithLogger(testLogger()))
	require.NoError(t, r.Register(orderTable()))
	r.Seal()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := r.Get("Shop.Order")
			if err != nil {
				errs <- err
				return
			}
			if _, err := tbl.Resolve("status"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent lookup: %v", err)
	}
}
