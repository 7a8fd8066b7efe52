// Package convert turns raw clause value text into typed values for a
// field's declared shape.
//
// Converted values by basic type:
//
//	string          string
//	int, long       int64
//	double          float64
//	decimal         *apd.Decimal
//	bool            bool
//	datetime, date  time.Time
//	time            time.Time (zero date)
//	timespan        time.Duration
//	enum            string (declared name)
//	guid            uuid.UUID
//
// Multi-valued clauses convert to []any in item order. Fuzzy clauses keep
// the raw text for most types. A conversion failure is never replaced
// by a default value.
package convert
