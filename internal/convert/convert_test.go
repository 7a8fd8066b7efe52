package convert

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/testutil"
)

func field(basic model.BasicType) *model.Field {
	return &model.Field{ReflectionName: "F", Type: model.TypeSetting{Basic: basic}}
}

var statusField = &model.Field{
	ReflectionName: "Status",
	Type:           model.TypeSetting{Basic: model.TypeEnum, EnumValues: testutil.OrderStatuses},
}

func TestConverter_Value(t *testing.T) {
	c := New("", testutil.NewFixedClock(time.Time{}))
	utc := time.UTC

	tests := []struct {
		name    string
		raw     string
		field   *model.Field
		fuzzy   bool
		want    any
		wantErr bool
	}{
		{name: "string", raw: "abc", field: field(model.TypeString), want: "abc"},
		{name: "string fuzzy wraps", raw: "abc", field: field(model.TypeString), fuzzy: true, want: "%abc%"},
		{name: "string fuzzy keeps wildcard", raw: "ab%", field: field(model.TypeString), fuzzy: true, want: "ab%"},
		{name: "int", raw: " 42 ", field: field(model.TypeInt), want: int64(42)},
		{name: "int overflow", raw: "3000000000", field: field(model.TypeInt), wantErr: true},
		{name: "long", raw: "3000000000", field: field(model.TypeLong), want: int64(3000000000)},
		{name: "int not a number", raw: "x", field: field(model.TypeInt), wantErr: true},
		{name: "int fuzzy keeps raw", raw: "12", field: field(model.TypeInt), fuzzy: true, want: "12"},
		{name: "double", raw: "1.5", field: field(model.TypeDouble), want: 1.5},
		{name: "bool yes", raw: "YES", field: field(model.TypeBool), want: true},
		{name: "bool chinese", raw: "否", field: field(model.TypeBool), want: false},
		{name: "bool invalid", raw: "maybe", field: field(model.TypeBool), wantErr: true},
		{name: "bool fuzzy invalid keeps raw", raw: "ru", field: field(model.TypeBool), fuzzy: true, want: "ru"},
		{name: "bool fuzzy valid parses", raw: "1", field: field(model.TypeBool), fuzzy: true, want: true},
		{name: "datetime", raw: "2024-01-02 03:04:05", field: field(model.TypeDateTime), want: time.Date(2024, 1, 2, 3, 4, 5, 0, utc)},
		{name: "datetime from date", raw: "20240102", field: field(model.TypeDateTime), want: time.Date(2024, 1, 2, 0, 0, 0, 0, utc)},
		{name: "datetime short year", raw: "240102", field: field(model.TypeDateTime), want: time.Date(2024, 1, 2, 0, 0, 0, 0, utc)},
		{name: "datetime month day", raw: "0704", field: field(model.TypeDateTime), want: time.Date(2024, 7, 4, 0, 0, 0, 0, utc)},
		{name: "datetime now", raw: "now", field: field(model.TypeDateTime), want: testutil.ReferenceTime},
		{name: "datetime now minus day", raw: "now-1d", field: field(model.TypeDateTime), want: testutil.ReferenceTime.AddDate(0, 0, -1)},
		{name: "datetime plus hours", raw: "2024-01-01+2h", field: field(model.TypeDateTime), want: time.Date(2024, 1, 1, 2, 0, 0, 0, utc)},
		{name: "datetime minus minutes", raw: "today - 30min", field: field(model.TypeDateTime), want: time.Date(2024, 3, 14, 23, 30, 0, 0, utc)},
		{name: "datetime invalid", raw: "yesterday", field: field(model.TypeDateTime), wantErr: true},
		{name: "date", raw: "2024-02-29", field: field(model.TypeDate), want: time.Date(2024, 2, 29, 0, 0, 0, 0, utc)},
		{name: "date relative truncates", raw: "now+1d", field: field(model.TypeDate), want: time.Date(2024, 3, 16, 0, 0, 0, 0, utc)},
		{name: "date invalid", raw: "2024-02-30", field: field(model.TypeDate), wantErr: true},
		{name: "time", raw: "13:45:10", field: field(model.TypeTime), want: time.Date(0, 1, 1, 13, 45, 10, 0, utc)},
		{name: "time compact", raw: "0930", field: field(model.TypeTime), want: time.Date(0, 1, 1, 9, 30, 0, 0, utc)},
		{name: "timespan clock", raw: "1.02:03:04", field: field(model.TypeTimeSpan), want: 26*time.Hour + 3*time.Minute + 4*time.Second},
		{name: "timespan go", raw: "90m", field: field(model.TypeTimeSpan), want: 90 * time.Minute},
		{name: "timespan invalid", raw: "1:2:3:4", field: field(model.TypeTimeSpan), wantErr: true},
		{name: "enum case insensitive", raw: "paid", field: statusField, want: "Paid"},
		{name: "enum unknown", raw: "Lost", field: statusField, wantErr: true},
		{name: "enum fuzzy", raw: "p", field: statusField, fuzzy: true, want: []any{"Pending", "Paid", "Shipped"}},
		{name: "enum fuzzy no match", raw: "zz", field: statusField, fuzzy: true, want: model.NoMatch{}},
		{name: "guid", raw: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", field: field(model.TypeGuid), want: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
		{name: "guid invalid", raw: "nope", field: field(model.TypeGuid), wantErr: true},
		{name: "class", raw: "x", field: field(model.TypeClass), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var features model.Features
			if tt.fuzzy {
				features |= model.FeatureFuzzy
			}
			got, err := c.Value(tt.raw, tt.field, features)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConversionError(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConverter_Decimal(t *testing.T) {
	c := New("", nil)

	got, err := c.Value("12.50", field(model.TypeDecimal), 0)
	require.NoError(t, err)
	d, ok := got.(*apd.Decimal)
	require.True(t, ok)
	assert.Equal(t, "12.50", d.String())

	_, err = c.Value("12,5", field(model.TypeDecimal), 0)
	assert.Error(t, err)

	_, err = c.Value("NaN", field(model.TypeDecimal), 0)
	assert.Error(t, err)
}

func TestConverter_Convert(t *testing.T) {
	c := New("", testutil.NewFixedClock(time.Time{}))

	t.Run("multi converts every item in order", func(t *testing.T) {
		tok := &model.Token{Field: statusField, Condition: model.ConditionIn, Features: model.FeatureMulti, ValueStr: "pending, PAID ,shipped"}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, []any{"Pending", "Paid", "Shipped"}, tok.Value)
	})

	t.Run("one bad item fails the token", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeInt), Condition: model.ConditionIn, Features: model.FeatureMulti, ValueStr: "1,x,3"}
		err := c.Convert(tok)
		require.Error(t, err)
		assert.True(t, model.IsCode(err, model.CodeValueConversion))
		assert.True(t, IsConversionError(err))
		assert.Nil(t, tok.Value)
		assert.NotNil(t, tok.Err)
	})

	t.Run("empty item fails the token", func(t *testing.T) {
		for _, tok := range []*model.Token{
			{Field: statusField, Condition: model.ConditionIn, Features: model.FeatureMulti, ValueStr: "Paid,,Shipped"},
			{Field: statusField, Condition: model.ConditionIn, Features: model.FeatureMulti, ValueStr: "Paid, "},
			{Field: statusField, Condition: model.ConditionIn, Features: model.FeatureMulti, Items: []string{"Paid", ""}},
		} {
			err := c.Convert(tok)
			assert.True(t, model.IsCode(err, model.CodeValueConversion), tok.ValueStr)
			assert.Nil(t, tok.Value)
		}
	})

	t.Run("list items", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeInt), Condition: model.ConditionIn, Features: model.FeatureMulti, Items: []string{"1", "2"}}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, []any{int64(1), int64(2)}, tok.Value)
	})

	t.Run("single item list", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeInt), Condition: model.ConditionEqual, Items: []string{"7"}}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, int64(7), tok.Value)
	})

	t.Run("fuzzy enum sets multi", func(t *testing.T) {
		tok := &model.Token{Field: statusField, Condition: model.ConditionLike, Features: model.FeatureFuzzy, ValueStr: "ed"}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, []any{"Shipped", "Cancelled"}, tok.Value)
		assert.True(t, tok.Features.Has(model.FeatureMulti))
	})

	t.Run("is null", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeString), Condition: model.ConditionIs, ValueStr: " Not  NULL "}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, model.NullTest{Not: true}, tok.Value)
	})

	t.Run("is with garbage", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeString), Condition: model.ConditionIs, ValueStr: "empty"}
		assert.True(t, model.IsCode(c.Convert(tok), model.CodeValueConversion))
	})

	t.Run("explike narrows full width punctuation", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeString), Condition: model.ConditionExpLike, ValueStr: "（a｜b）＆！c"}
		require.NoError(t, c.Convert(tok))
		assert.Equal(t, "(a|b)&!c", tok.Value)
	})

	t.Run("unclassified token is an invariant violation", func(t *testing.T) {
		tok := &model.Token{Field: field(model.TypeString), ValueStr: "x"}
		assert.True(t, model.IsCode(c.Convert(tok), model.CodeInternalInvariant))
	})
}

func TestParseTimeSpan_Negative(t *testing.T) {
	d, err := ParseTimeSpan("-01:30")
	require.NoError(t, err)
	assert.Equal(t, -90*time.Minute, d)
}

func TestFuzzyPattern(t *testing.T) {
	assert.Equal(t, "%x%", FuzzyPattern("x"))
	assert.Equal(t, "x%", FuzzyPattern("x%"))
}
