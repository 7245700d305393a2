package bleve

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// step adds n units to t.
type step func(t time.Time, n int) time.Time

var units = map[string]step{
	"DAY":   func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
	"MONTH": func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) },
	"YEAR":  func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) },
}

// resolveDateMath evaluates "NOW", "NOW-100YEARS" and "NOW+1DAY" style
// expressions against now.
func resolveDateMath(expr string, now time.Time) (time.Time, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(expr), "NOW")
	if !ok {
		return time.Time{}, fmt.Errorf("unsupported date math %q", expr)
	}
	if rest == "" {
		return now, nil
	}
	n, fn, err := parseOffset(rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("date math %q: %w", expr, err)
	}
	return fn(now, n), nil
}

// parseGap reads a "+1MONTH" gap into a function that advances one bucket.
func parseGap(gap string) (func(time.Time) time.Time, error) {
	n, fn, err := parseOffset(strings.TrimSpace(gap))
	if err != nil {
		return nil, fmt.Errorf("gap %q: %w", gap, err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("gap %q must be positive", gap)
	}
	return func(t time.Time) time.Time { return fn(t, n) }, nil
}

// floorTo truncates t to the start of its bucket for the gap unit.
func floorTo(t time.Time, gap string) time.Time {
	switch {
	case strings.HasSuffix(gap, "YEAR") || strings.HasSuffix(gap, "YEARS"):
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	case strings.HasSuffix(gap, "MONTH") || strings.HasSuffix(gap, "MONTHS"):
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseOffset(s string) (int, step, error) {
	if s == "" || (s[0] != '+' && s[0] != '-') {
		return 0, nil, fmt.Errorf("offset must start with + or -")
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(s[1:i])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid amount")
	}
	unit := strings.TrimSuffix(strings.ToUpper(s[i:]), "S")
	fn, ok := units[unit]
	if !ok {
		return 0, nil, fmt.Errorf("unsupported unit %q", s[i:])
	}
	return sign * n, fn, nil
}
