package scanner

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken int = iota
	connectiveToken
	groupToken
	negationToken
	fieldToken
	conditionToken
	quotedToken
	listToken
	itemToken
	comaToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var connectiveMatcher = parsly.NewToken(connectiveToken, "Connective", matcher.NewFragments([]byte("&&"), []byte("||")))
var groupMatcher = parsly.NewToken(groupToken, "Group", &byteSetMatcher{set: "()"})
var negationMatcher = parsly.NewToken(negationToken, "Negation", &negationByteMatcher{})
var fieldMatcher = parsly.NewToken(fieldToken, "Field", &runMatcher{stop: fieldStops})
var conditionMatcher = parsly.NewToken(conditionToken, "Condition", &runMatcher{stop: conditionStops})
var quotedMatcher = parsly.NewToken(quotedToken, "Quoted value", matcher.NewBlock('"', '"', '\\'))
var listMatcher = parsly.NewToken(listToken, "List value", &listBlockMatcher{open: '[', close: ']', escape: '\\', quote: '"'})
var itemMatcher = parsly.NewToken(itemToken, "List item", &runMatcher{stop: itemStops, allowSpace: true})
var comaMatcher = parsly.NewToken(comaToken, "Coma", matcher.NewByte(','))

const (
	fieldStops     = "()&|\"[],!"
	conditionStops = "()\"["
	itemStops      = ",\""
)

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func contains(set string, b byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}

// runMatcher matches a run of bytes up to whitespace or a stop byte.
type runMatcher struct {
	stop       string
	allowSpace bool
}

func (m *runMatcher) Match(cursor *parsly.Cursor) (matched int) {
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		b := cursor.Input[i]
		if contains(m.stop, b) || (!m.allowSpace && isSpace(b)) {
			break
		}
		matched++
	}
	return matched
}

// byteSetMatcher matches exactly one byte out of set.
type byteSetMatcher struct {
	set string
}

func (m *byteSetMatcher) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos < cursor.InputSize && contains(m.set, cursor.Input[cursor.Pos]) {
		return 1
	}
	return 0
}

// negationByteMatcher matches a "!" that directly precedes a field byte,
// leaving "!=" and "!(" alone.
type negationByteMatcher struct{}

func (m *negationByteMatcher) Match(cursor *parsly.Cursor) (matched int) {
	pos := cursor.Pos
	if pos+1 >= cursor.InputSize || cursor.Input[pos] != '!' {
		return 0
	}
	next := cursor.Input[pos+1]
	if isSpace(next) || contains(fieldStops, next) || next == '=' {
		return 0
	}
	return 1
}

// listBlockMatcher matches an open..close block, skipping close bytes
// inside quoted runs. An unterminated block matches nothing.
type listBlockMatcher struct {
	open, close, escape, quote byte
}

func (m *listBlockMatcher) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != m.open {
		return 0
	}
	inQuote := false
	for i := pos + 1; i < cursor.InputSize; i++ {
		b := input[i]
		switch {
		case b == m.escape:
			i++
		case m.quote != 0 && b == m.quote:
			inQuote = !inQuote
		case b == m.close && !inQuote:
			return i - pos + 1
		}
	}
	return 0
}
