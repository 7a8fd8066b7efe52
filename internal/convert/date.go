package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"060102",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"1504",
}

// relativeExpr matches "<base>+<n><unit>" and "<base>-<n><unit>".
var relativeExpr = regexp.MustCompile(`(?i)^(.+?)\s*([+-])\s*(\d+)\s*(s|min|h|d)$`)

// ParseDateTime parses an absolute or relative date-time.
//
// Accepted forms: the layouts above, any date layout (midnight), MMdd
// in the current year, "now", "today", and any of these followed by an
// offset such as "-1d", "+2h", "+30min" or "-10s".
func (c *Converter) ParseDateTime(s string) (time.Time, error) {
	if m := relativeExpr.FindStringSubmatch(s); m != nil {
		base, err := c.ParseDateTime(strings.TrimSpace(m[1]))
		if err != nil {
			return time.Time{}, err
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, err
		}
		if m[2] == "-" {
			n = -n
		}
		return addOffset(base, n, strings.ToLower(m[4])), nil
	}

	now := c.Clock.Now()
	switch strings.ToLower(s) {
	case "now":
		return now, nil
	case "today":
		return truncateDay(now), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return c.parseDay(s, now)
}

// ParseDate parses a calendar date. Relative forms are accepted and
// truncated to midnight.
func (c *Converter) ParseDate(s string) (time.Time, error) {
	if relativeExpr.MatchString(s) || strings.EqualFold(s, "now") || strings.EqualFold(s, "today") {
		t, err := c.ParseDateTime(s)
		if err != nil {
			return time.Time{}, err
		}
		return truncateDay(t), nil
	}
	return c.parseDay(s, c.Clock.Now())
}

func (c *Converter) parseDay(s string, now time.Time) (time.Time, error) {
	for _, layout := range dateLayouts {
		if len(layout) != len(s) {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if len(s) == 4 {
		if t, err := time.ParseInLocation("0102", s, now.Location()); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// ParseTimeOfDay parses HH:mm:ss, HH:mm or HHmm.
func ParseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// ParseTimeSpan parses [d.]hh:mm[:ss] or a Go duration such as "90m".
func ParseTimeSpan(s string) (time.Duration, error) {
	neg := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		neg = true
		s = rest
	}

	var d time.Duration
	if strings.Contains(s, ":") {
		days := 0
		clock := s
		if before, after, ok := strings.Cut(s, "."); ok && !strings.Contains(before, ":") {
			n, err := strconv.Atoi(before)
			if err != nil {
				return 0, fmt.Errorf("invalid day count %q", before)
			}
			days = n
			clock = after
		}
		parts := strings.Split(clock, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("unrecognized time span format")
		}
		units := []time.Duration{time.Hour, time.Minute, time.Second}
		for i, part := range parts {
			n, err := strconv.ParseFloat(part, 64)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid time span component %q", part)
			}
			d += time.Duration(n * float64(units[i]))
		}
		d += time.Duration(days) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		d = parsed
	}

	if neg {
		d = -d
	}
	return d, nil
}

func addOffset(t time.Time, n int, unit string) time.Time {
	switch unit {
	case "s":
		return t.Add(time.Duration(n) * time.Second)
	case "min":
		return t.Add(time.Duration(n) * time.Minute)
	case "h":
		return t.Add(time.Duration(n) * time.Hour)
	default:
		return t.AddDate(0, 0, n)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
