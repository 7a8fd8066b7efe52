package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_LocalPath(t *testing.T) {
	tests := []struct {
		name string
		nav  string
		want string
	}{
		{"root field", "", "Sku"},
		{"single reference", "Customer", "Customer.Sku"},
		{"single collection", "Items[]", "Sku"},
		{"reference after collection", "Orders[].Product", "Product.Sku"},
		{"collection after reference", "Customer.Orders[]", "Sku"},
		{"nested collections", "Orders[].Items[]", "Sku"},
		{"references both sides", "Customer.Orders[].Product.Vendor", "Product.Vendor.Sku"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hops, err := ParseNavigation(tt.nav)
			require.NoError(t, err)
			f := &Field{ReflectionName: "Sku", Navigation: hops}
			assert.Equal(t, tt.want, f.LocalPath())
		})
	}
}

func TestField_Names(t *testing.T) {
	hops, err := ParseNavigation("Customer.Orders[]")
	require.NoError(t, err)

	f := &Field{ReflectionName: "Total", Navigation: hops}
	assert.Equal(t, "Customer.Orders.Total", f.Path())
	assert.Equal(t, "Customer.Orders.Total", f.DefaultActivationName())
	assert.Equal(t, 1, f.CollectionHops())

	f.IgnorePrefix = true
	assert.Equal(t, "Total", f.DefaultActivationName())

	f.Type.Collection = true
	assert.Equal(t, 2, f.Quantifiers())
}

func TestParseNavigation(t *testing.T) {
	hops, err := ParseNavigation("Customer.Orders[].Items[]")
	require.NoError(t, err)
	assert.Equal(t, []Hop{
		{Name: "Customer"},
		{Name: "Orders", Collection: true},
		{Name: "Items", Collection: true},
	}, hops)
	assert.Equal(t, "Customer.Orders[].Items[]", FormatNavigation(hops))

	hops, err = ParseNavigation("")
	require.NoError(t, err)
	assert.Nil(t, hops)

	_, err = ParseNavigation("Customer..Orders")
	assert.Error(t, err)

	_, err = ParseNavigation("[]")
	assert.Error(t, err)
}

func TestParseTypeSetting(t *testing.T) {
	tests := []struct {
		in      string
		want    TypeSetting
		wantErr bool
	}{
		{in: "string", want: TypeSetting{Basic: TypeString}},
		{in: "int?", want: TypeSetting{Basic: TypeInt, Nullable: true}},
		{in: "[]string", want: TypeSetting{Basic: TypeString, Collection: true}},
		{in: "[]int64?", want: TypeSetting{Basic: TypeLong, Collection: true, Nullable: true}},
		{in: "uuid", want: TypeSetting{Basic: TypeGuid}},
		{in: "DateTime", want: TypeSetting{Basic: TypeDateTime}},
		{in: "complex128", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeSetting(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBasicType_Ordered(t *testing.T) {
	assert.True(t, TypeInt.Ordered())
	assert.True(t, TypeDateTime.Ordered())
	assert.True(t, TypeEnum.Ordered())
	assert.False(t, TypeString.Ordered())
	assert.False(t, TypeBool.Ordered())
	assert.False(t, TypeGuid.Ordered())
}

func TestCondition_Symbols(t *testing.T) {
	assert.Equal(t,
		[]string{"=", "like", "in", ">", "<", ">=", "<=", "!=", "explike", "notlike", "is"},
		Symbols())
	assert.Equal(t, "none", ConditionNone.String())
	assert.True(t, ConditionLessThanOrEqual.Ordering())
	assert.False(t, ConditionUnequal.Ordering())
}

func TestFeatures_String(t *testing.T) {
	assert.Equal(t, "None", Features(0).String())
	f := FeatureMulti | FeatureNot
	assert.Equal(t, "Multi|Not", f.String())
	assert.True(t, f.Has(FeatureMulti))
	assert.False(t, f.Has(FeatureFuzzy))
	assert.False(t, f.Has(FeatureMulti|FeatureFuzzy))
}

func TestContext_Finalize(t *testing.T) {
	const text = `Name = "a" && Age > "3"`

	t.Run("no tokens returns text unchanged", func(t *testing.T) {
		ctx := NewContext(text)
		got, err := ctx.Finalize()
		require.NoError(t, err)
		assert.Equal(t, text, got)
	})

	t.Run("splices every compiled token", func(t *testing.T) {
		ctx := NewContext(text)
		ctx.Add(&Token{Start: 0, End: 9, Expression: `Name == "a"`})
		ctx.Add(&Token{Start: 14, End: 22, Expression: `Age > 3`})
		got, err := ctx.Finalize()
		require.NoError(t, err)
		assert.Equal(t, `Name == "a" && Age > 3`, got)
	})

	t.Run("failed token keeps raw text", func(t *testing.T) {
		ctx := NewContext(text)
		ctx.Add(&Token{Start: 0, End: 9, Expression: `Name == "a"`})
		bad := &Token{Start: 14, End: 22}
		bad.Fail(NewDiagnostic(CodeValueConversion, "bad"))
		ctx.Add(bad)
		got, err := ctx.Finalize()
		require.NoError(t, err)
		assert.Equal(t, `Name == "a" && Age > "3"`, got)
		require.Len(t, ctx.Errors(), 1)
		assert.Equal(t, 14, ctx.Errors()[0].Start)
	})

	t.Run("overlapping spans are an invariant violation", func(t *testing.T) {
		ctx := NewContext(text)
		ctx.Add(&Token{Start: 0, End: 9, Expression: "x"})
		ctx.Add(&Token{Start: 9, End: 12, Expression: "y"})
		got, err := ctx.Finalize()
		assert.True(t, IsCode(err, CodeInternalInvariant))
		assert.Equal(t, text, got)
	})

	t.Run("span past end of text", func(t *testing.T) {
		ctx := NewContext(text)
		ctx.Add(&Token{Start: 14, End: len(text), Expression: "x"})
		_, err := ctx.Finalize()
		assert.True(t, IsCode(err, CodeInternalInvariant))
	})
}

func TestDiagnostic_Error(t *testing.T) {
	d := NewDiagnostic(CodeFieldNotFound, "field %q not found", "Foo")
	assert.Equal(t, `FIELD_NOT_FOUND: field "Foo" not found`, d.Error())

	d.At(`Foo = "x"`, 3, 11)
	assert.Equal(t, `FIELD_NOT_FOUND: field "Foo" not found (at 3..11)`, d.Error())
	assert.Equal(t, CodeFieldNotFound, CodeOf(d))
	assert.False(t, IsCode(nil, CodeFieldNotFound))
}
