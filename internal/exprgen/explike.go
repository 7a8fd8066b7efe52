package exprgen

import (
	"strings"

	"github.com/roach88/automodel/internal/model"
)

type expPart struct {
	op   string
	lit  string
	neg  bool
	term bool
}

// expLike compiles a boolean pattern such as "(a|b)&!c" into like calls
// joined by the pattern's operators. A pattern of several terms is
// parenthesized so it splices into surrounding text as one operand.
func (g *Generator) expLike(pattern string, params *Params) (func(string) string, error) {
	var (
		parts []expPart
		buf   strings.Builder
		neg   bool
		terms int
		depth int
	)
	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		if !strings.Contains(text, "%") {
			text = "%" + text + "%"
		}
		parts = append(parts, expPart{lit: text, neg: neg, term: true})
		neg = false
		terms++
	}

	for _, r := range pattern {
		switch {
		case r == '!' && strings.TrimSpace(buf.String()) == "":
			neg = !neg
		case strings.ContainsRune(g.expLikeTokens, r) && strings.ContainsRune(DefaultExpLikeTokens, r):
			flush()
			switch r {
			case '(':
				depth++
			case ')':
				if depth == 0 {
					return nil, model.NewDiagnostic(model.CodeValueConversion, "explike pattern %q has an unmatched )", pattern)
				}
				depth--
			}
			op := expOperator(r)
			if r == '(' && neg {
				op = "!("
				neg = false
			}
			parts = append(parts, expPart{op: op})
		default:
			buf.WriteRune(r)
		}
	}
	flush()

	if terms == 0 {
		return nil, model.NewDiagnostic(model.CodeValueConversion, "explike pattern %q has no terms", pattern)
	}
	if depth != 0 {
		return nil, model.NewDiagnostic(model.CodeValueConversion, "explike pattern %q has an unmatched (", pattern)
	}

	for i, p := range parts {
		if !p.term {
			continue
		}
		if params != nil {
			parts[i].lit = params.Add(p.lit)
		} else {
			parts[i].lit, _ = FormatLiteral(p.lit, model.TypeString)
		}
	}

	return func(ref string) string {
		var sb strings.Builder
		if terms > 1 {
			sb.WriteByte('(')
		}
		for _, p := range parts {
			if !p.term {
				sb.WriteString(p.op)
				continue
			}
			if p.neg {
				sb.WriteByte('!')
			}
			sb.WriteString(g.likeFunction)
			sb.WriteByte('(')
			sb.WriteString(ref)
			sb.WriteString(", ")
			sb.WriteString(p.lit)
			sb.WriteByte(')')
		}
		if terms > 1 {
			sb.WriteByte(')')
		}
		return sb.String()
	}, nil
}

func expOperator(r rune) string {
	switch r {
	case '&':
		return " && "
	case '|':
		return " || "
	}
	return string(r)
}
