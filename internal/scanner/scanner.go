package scanner

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"

	"github.com/roach88/automodel/internal/model"
)

// Clause is one recognized field clause.
type Clause struct {
	Field     string
	Condition string

	// Value is the unescaped quoted value, or the raw text between the
	// brackets of a list value.
	Value string

	// Items holds the entries of a list value; nil for quoted values.
	Items []string

	Negated bool

	// Start and End are the inclusive byte span, Source the spanned text.
	Start  int
	End    int
	Source string
}

// Token converts the clause into a fresh compile token.
func (c Clause) Token() *model.Token {
	return &model.Token{
		FieldStr:     c.Field,
		ConditionStr: c.Condition,
		ValueStr:     c.Value,
		Items:        c.Items,
		Negated:      c.Negated,
		Source:       c.Source,
		Start:        c.Start,
		End:          c.End,
	}
}

// Segment is a run of interstitial text between clauses.
type Segment struct {
	Start int
	Text  string
}

// Result is the outcome of scanning one text.
type Result struct {
	Clauses     []Clause
	Segments    []Segment
	Diagnostics []*model.Diagnostic
}

// Scan splits text into clauses and interstitial segments.
// Malformed clauses are reported in Diagnostics and scanning continues
// after the offending value opener.
func Scan(text string) *Result {
	res := &Result{}
	cursor := parsly.NewCursor("", []byte(text), 0)
	segStart := 0

	for cursor.Pos < cursor.InputSize {
		pos := cursor.Pos
		if matchPassthrough(cursor) {
			continue
		}

		clause, diag := matchClause(cursor, text)
		if clause != nil {
			res.addSegment(text, segStart, clause.Start)
			res.Clauses = append(res.Clauses, *clause)
			segStart = cursor.Pos
			continue
		}
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, diag)
			continue
		}

		// Not a clause: skip one word of free text.
		cursor.Pos = pos
		cursor.MatchOne(fieldMatcher)
		if cursor.Pos == pos {
			cursor.Pos++
		}
	}
	res.addSegment(text, segStart, len(text))
	return res
}

func (r *Result) addSegment(text string, start, end int) {
	if end > start {
		r.Segments = append(r.Segments, Segment{Start: start, Text: text[start:end]})
	}
}

func matchPassthrough(cursor *parsly.Cursor) bool {
	pos := cursor.Pos
	cursor.MatchAny(whitespaceMatcher, connectiveMatcher, groupMatcher)
	return cursor.Pos > pos
}

func matchSpace(cursor *parsly.Cursor) bool {
	pos := cursor.Pos
	cursor.MatchOne(whitespaceMatcher)
	return cursor.Pos > pos
}

// matchClause tries to read a clause at the cursor. On failure the cursor
// is restored, except for malformed clauses where it is left just past
// the value opener.
func matchClause(cursor *parsly.Cursor, text string) (*Clause, *model.Diagnostic) {
	start := cursor.Pos
	fail := func() (*Clause, *model.Diagnostic) {
		cursor.Pos = start
		return nil, nil
	}

	clause := &Clause{Start: start}
	if cursor.MatchOne(negationMatcher).Code == negationToken {
		clause.Negated = true
	}

	fieldStart := cursor.Pos
	if cursor.MatchOne(fieldMatcher).Code != fieldToken {
		return fail()
	}
	clause.Field = text[fieldStart:cursor.Pos]
	if !matchSpace(cursor) {
		return fail()
	}

	condStart := cursor.Pos
	if cursor.MatchOne(conditionMatcher).Code != conditionToken {
		return fail()
	}
	clause.Condition = text[condStart:cursor.Pos]
	if !matchSpace(cursor) {
		return fail()
	}

	valueStart := cursor.Pos
	switch cursor.MatchAny(quotedMatcher, listMatcher).Code {
	case quotedToken:
		clause.Value = unescape(text[valueStart+1 : cursor.Pos-1])
	case listToken:
		inner := text[valueStart+1 : cursor.Pos-1]
		items, err := splitItems(inner)
		if err != nil {
			end := cursor.Pos - 1
			return nil, model.NewDiagnostic(model.CodeMalformedClause, "list value: %v", err).
				At(text[start:end+1], start, end)
		}
		clause.Value = strings.TrimSpace(inner)
		clause.Items = items
	default:
		if valueStart < len(text) && (text[valueStart] == '"' || text[valueStart] == '[') {
			end := len(text) - 1
			diag := model.NewDiagnostic(model.CodeMalformedClause, "unterminated value for field %q", clause.Field).
				At(text[start:], start, end)
			cursor.Pos = valueStart + 1
			return nil, diag
		}
		return fail()
	}

	clause.End = cursor.Pos - 1
	clause.Source = text[start:cursor.Pos]
	return clause, nil
}

// splitItems splits the inside of a list value into items. Items may be
// quoted; an empty slot between commas yields an empty item.
func splitItems(inner string) ([]string, error) {
	items := []string{}
	if strings.TrimSpace(inner) == "" {
		return items, nil
	}
	cursor := parsly.NewCursor("", []byte(inner), 0)
	for {
		matchSpace(cursor)
		pos := cursor.Pos
		switch cursor.MatchAny(quotedMatcher, itemMatcher).Code {
		case quotedToken:
			items = append(items, unescape(inner[pos+1:cursor.Pos-1]))
		case itemToken:
			items = append(items, strings.TrimSpace(inner[pos:cursor.Pos]))
		default:
			if pos < len(inner) && inner[pos] != ',' {
				return nil, fmt.Errorf("unexpected %q at offset %d", inner[pos], pos)
			}
			items = append(items, "")
		}

		matchSpace(cursor)
		if cursor.Pos >= cursor.InputSize {
			return items, nil
		}
		if cursor.MatchOne(comaMatcher).Code != comaToken {
			return nil, fmt.Errorf("expected ',' at offset %d", cursor.Pos)
		}
	}
}

// unescape resolves \" and \\ inside a quoted value. Other backslashes
// are kept so that like patterns survive.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
