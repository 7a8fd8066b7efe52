package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/automodel/internal/model"
)

func TestScan_Clauses(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		want        []Clause
	}{
		{
			description: "single clause",
			text:        `Items.Sku = "X1"`,
			want: []Clause{
				{Field: "Items.Sku", Condition: "=", Value: "X1", Start: 0, End: 15, Source: `Items.Sku = "X1"`},
			},
		},
		{
			description: "connectives and groups pass through",
			text:        `(name like "bo") && (age >= "18" || vip = "true")`,
			want: []Clause{
				{Field: "name", Condition: "like", Value: "bo", Start: 1, End: 14, Source: `name like "bo"`},
				{Field: "age", Condition: ">=", Value: "18", Start: 21, End: 31, Source: `age >= "18"`},
				{Field: "vip", Condition: "=", Value: "true", Start: 36, End: 47, Source: `vip = "true"`},
			},
		},
		{
			description: "negation marker belongs to the clause",
			text:        `!status = "A" && !(x = "1")`,
			want: []Clause{
				{Field: "status", Condition: "=", Value: "A", Negated: true, Start: 0, End: 12, Source: `!status = "A"`},
				{Field: "x", Condition: "=", Value: "1", Start: 19, End: 25, Source: `x = "1"`},
			},
		},
		{
			description: "escaped quote in value",
			text:        `title = "say \"hi\""`,
			want: []Clause{
				{Field: "title", Condition: "=", Value: `say "hi"`, Start: 0, End: 19, Source: `title = "say \"hi\""`},
			},
		},
		{
			description: "bracketed list",
			text:        `status in [A, "B,C", D]`,
			want: []Clause{
				{Field: "status", Condition: "in", Value: `A, "B,C", D`, Items: []string{"A", "B,C", "D"}, Start: 0, End: 22, Source: `status in [A, "B,C", D]`},
			},
		},
		{
			description: "unknown condition is still a clause",
			text:        `age ~ "3"`,
			want: []Clause{
				{Field: "age", Condition: "~", Value: "3", Start: 0, End: 8, Source: `age ~ "3"`},
			},
		},
		{
			description: "stray words are skipped",
			text:        `foo bar baz = "x"`,
			want: []Clause{
				{Field: "baz", Condition: "=", Value: "x", Start: 8, End: 16, Source: `baz = "x"`},
			},
		},
		{
			description: "non ascii alias",
			text:        `名称 = "值"`,
			want: []Clause{
				{Field: "名称", Condition: "=", Value: "值", Start: 0, End: 13, Source: `名称 = "值"`},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			res := Scan(tc.text)
			assert.Empty(t, res.Diagnostics)
			assert.Equal(t, tc.want, res.Clauses)
		})
	}
}

func TestScan_NoClauses(t *testing.T) {
	for _, text := range []string{"", "   ", "a && b", `"just a string"`, `(x || y)`, `Name="nospace"`} {
		res := Scan(text)
		assert.Empty(t, res.Clauses, text)
		assert.Empty(t, res.Diagnostics, text)
		var sb strings.Builder
		for _, seg := range res.Segments {
			sb.WriteString(seg.Text)
		}
		assert.Equal(t, text, sb.String(), "segments must reconstruct %q", text)
	}
}

func TestScan_Malformed(t *testing.T) {
	text := `a = "1" && b = "unterminated`
	res := Scan(text)

	require.Len(t, res.Clauses, 1)
	assert.Equal(t, "a", res.Clauses[0].Field)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, model.CodeMalformedClause, d.Code)
	assert.Equal(t, 11, d.Start)
	assert.Equal(t, len(text)-1, d.End)
}

func TestScan_EscapedCloserIsNotATerminator(t *testing.T) {
	res := Scan(`note = "a\" && id = "1"`)
	require.Len(t, res.Clauses, 1)
	assert.Equal(t, "note", res.Clauses[0].Field)
	assert.Equal(t, `a" && id = `, res.Clauses[0].Value)

	res = Scan(`note = "a\"`)
	assert.Empty(t, res.Clauses)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, model.CodeMalformedClause, res.Diagnostics[0].Code)
}

func TestScan_MalformedDoesNotAbort(t *testing.T) {
	text := `a = [1, 2 && b = "2"`
	res := Scan(text)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, model.CodeMalformedClause, res.Diagnostics[0].Code)
	require.Len(t, res.Clauses, 1)
	assert.Equal(t, "b", res.Clauses[0].Field)
	assert.Equal(t, "2", res.Clauses[0].Value)
}

func TestScan_SpansDoNotOverlap(t *testing.T) {
	text := `(a = "1" || !b like "x") && c in "1,2,3" && d is "null" && e explike "x|y" && f notlike "z"`
	res := Scan(text)
	require.Len(t, res.Clauses, 6)

	prevEnd := -1
	for _, c := range res.Clauses {
		assert.Greater(t, c.Start, prevEnd)
		assert.LessOrEqual(t, c.Start, c.End)
		assert.Less(t, c.End, len(text))
		assert.Equal(t, text[c.Start:c.End+1], c.Source)
		prevEnd = c.End
	}

	var sb strings.Builder
	next := 0
	for _, c := range res.Clauses {
		sb.WriteString(text[next:c.Start])
		sb.WriteString(c.Source)
		next = c.End + 1
	}
	sb.WriteString(text[next:])
	assert.Equal(t, text, sb.String())
}

func TestSplitItems(t *testing.T) {
	items, err := splitItems(` "a" , b c,, "d\"e" `)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c", "", `d"e`}, items)

	items, err = splitItems(`a,`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, items)

	items, err = splitItems("")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = splitItems(`"a" "b"`)
	assert.Error(t, err)
}

func TestClause_Token(t *testing.T) {
	res := Scan(`!x in [1,2]`)
	require.Len(t, res.Clauses, 1)
	tok := res.Clauses[0].Token()
	assert.Equal(t, "x", tok.FieldStr)
	assert.Equal(t, "in", tok.ConditionStr)
	assert.Equal(t, []string{"1", "2"}, tok.Items)
	assert.True(t, tok.Negated)
	assert.Equal(t, `!x in [1,2]`, tok.Raw())
	assert.Equal(t, 0, tok.Start)
	assert.Equal(t, 10, tok.End)
}
