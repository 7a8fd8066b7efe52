package model

import (
	"fmt"
	"strings"
)

// Token is one clause of a compile call.
type Token struct {
	FieldStr     string `json:"field"`
	ConditionStr string `json:"condition"`
	ValueStr     string `json:"value"`

	// Items holds the entries of a bracketed list value; nil for quoted values.
	Items []string `json:"items,omitempty"`

	// Negated records a "!" marker in front of the field text.
	Negated bool `json:"negated,omitempty"`

	// Source is the exact clause text as scanned.
	Source string `json:"source"`

	Field      *Field    `json:"-"`
	Condition  Condition `json:"-"`
	Features   Features  `json:"-"`
	Value      any       `json:"-"`
	Expression string    `json:"expression,omitempty"`

	// Start and End are the inclusive byte span of the clause in the
	// original text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Err is the first failure any stage attached to the token.
	Err *Diagnostic `json:"-"`
}

// Compiled reports whether a sub-expression has been generated.
func (t *Token) Compiled() bool {
	return t.Expression != "" && t.Err == nil
}

// Fail attaches d to the token, filling in the token's span.
func (t *Token) Fail(d *Diagnostic) *Diagnostic {
	if d.Start < 0 {
		d.At(t.Raw(), t.Start, t.End)
	}
	t.Err = d
	t.Expression = ""
	return d
}

// Raw returns the clause as written, rebuilding it from its parts when
// the token was not produced by the scanner.
func (t *Token) Raw() string {
	if t.Source != "" {
		return t.Source
	}
	var sb strings.Builder
	if t.Negated {
		sb.WriteByte('!')
	}
	sb.WriteString(t.FieldStr)
	sb.WriteByte(' ')
	sb.WriteString(t.ConditionStr)
	sb.WriteByte(' ')
	if t.Items != nil {
		sb.WriteByte('[')
		sb.WriteString(strings.Join(t.Items, ", "))
		sb.WriteByte(']')
	} else {
		fmt.Fprintf(&sb, "%q", t.ValueStr)
	}
	return sb.String()
}

func (t *Token) String() string {
	var sb strings.Builder
	sb.WriteString(t.Raw())
	if t.Field != nil {
		fmt.Fprintf(&sb, " -> %s %s %v", t.Field, t.Condition, t.Value)
	}
	if t.Features != 0 {
		fmt.Fprintf(&sb, " with %s", t.Features)
	}
	if t.Expression != "" {
		fmt.Fprintf(&sb, " => %s", t.Expression)
	}
	return sb.String()
}

// NullTest is the converted value of an "is" clause.
type NullTest struct {
	// Not selects "is not null".
	Not bool
}

func (n NullTest) String() string {
	if n.Not {
		return "not null"
	}
	return "null"
}

// NoMatch is the converted value of a fuzzy enum clause that matched no
// enum name. It compiles to a constant false.
type NoMatch struct{}

func (NoMatch) String() string { return "no match" }

// Context holds the state of one compile call.
// Text is never modified; Tokens are kept in ascending Start order.
type Context struct {
	Text   string
	Tokens []*Token

	// Diagnostics holds failures that are not bound to a token, such as
	// unterminated clauses.
	Diagnostics []*Diagnostic
}

// NewContext creates a context over text.
func NewContext(text string) *Context {
	return &Context{Text: text}
}

// Add appends a token. Tokens must be added in scan order.
func (c *Context) Add(t *Token) {
	c.Tokens = append(c.Tokens, t)
}

// Errors returns every diagnostic of the call: token failures first, in
// token order, followed by unbound diagnostics.
func (c *Context) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, t := range c.Tokens {
		if t.Err != nil {
			out = append(out, t.Err)
		}
	}
	return append(out, c.Diagnostics...)
}

// Validate checks that token spans lie within the text, are ordered and
// do not overlap.
func (c *Context) Validate() error {
	prevEnd := -1
	for i, t := range c.Tokens {
		if t.Start < 0 || t.End < t.Start || t.End >= len(c.Text) {
			return NewDiagnostic(CodeInternalInvariant, "token %d span [%d, %d] outside text of length %d", i, t.Start, t.End, len(c.Text))
		}
		if t.Start <= prevEnd {
			return NewDiagnostic(CodeInternalInvariant, "token %d span [%d, %d] overlaps previous token ending at %d", i, t.Start, t.End, prevEnd)
		}
		prevEnd = t.End
	}
	return nil
}

// Finalize splices every compiled token expression into the text.
// Tokens are applied from last to first so that earlier offsets stay
// valid. Tokens without an expression keep their raw text.
func (c *Context) Finalize() (string, error) {
	if err := c.Validate(); err != nil {
		return c.Text, err
	}
	final := c.Text
	for i := len(c.Tokens) - 1; i >= 0; i-- {
		t := c.Tokens[i]
		if !t.Compiled() {
			continue
		}
		final = final[:t.Start] + t.Expression + final[t.End+1:]
	}
	return final, nil
}
