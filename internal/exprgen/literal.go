package exprgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/automodel/internal/model"
)

// literal writes v as a literal of f's type, or as a placeholder when
// params is non-nil.
func literal(v any, f *model.Field, params *Params) (string, error) {
	if params != nil {
		return params.Add(v), nil
	}
	return FormatLiteral(v, f.Type.Basic)
}

// FormatLiteral writes a converted value in predicate syntax.
func FormatLiteral(v any, typ model.BasicType) (string, error) {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case *apd.Decimal:
		return x.String(), nil
	case uuid.UUID:
		return `Guid.Parse("` + x.String() + `")`, nil
	case time.Duration:
		return `TimeSpan.Parse("` + FormatTimeSpan(x) + `")`, nil
	case time.Time:
		return formatTime(x, typ), nil
	}
	return "", model.NewDiagnostic(model.CodeInternalInvariant, "no literal form for %T value of %s field", v, typ)
}

// FormatParam writes a placeholder value for display. Times use the
// DateTime form and lists are written as [a, b].
func FormatParam(v any) (string, error) {
	list, ok := v.([]any)
	if !ok {
		return FormatLiteral(v, model.TypeDateTime)
	}
	items := make([]string, len(list))
	for i, item := range list {
		lit, err := FormatLiteral(item, model.TypeDateTime)
		if err != nil {
			return "", err
		}
		items[i] = lit
	}
	return "[" + strings.Join(items, ", ") + "]", nil
}

func formatTime(t time.Time, typ model.BasicType) string {
	switch typ {
	case model.TypeDate:
		return fmt.Sprintf("DateOnly(%d, %d, %d)", t.Year(), t.Month(), t.Day())
	case model.TypeTime:
		return fmt.Sprintf("TimeOnly(%d, %d, %d)", t.Hour(), t.Minute(), t.Second())
	}
	if ms := t.Nanosecond() / int(time.Millisecond); ms != 0 {
		return fmt.Sprintf("DateTime(%d, %d, %d, %d, %d, %d, %d)",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), ms)
	}
	return fmt.Sprintf("DateTime(%d, %d, %d, %d, %d, %d)",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// FormatTimeSpan writes d as [-][d.]hh:mm:ss[.fffffff].
func FormatTimeSpan(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second

	out := sign
	if days > 0 {
		out += strconv.FormatInt(int64(days), 10) + "."
	}
	out += fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if ticks := d / 100; ticks > 0 {
		out += fmt.Sprintf(".%07d", ticks)
	}
	return out
}
