// Package dates normalizes the date representations found in stored orders
// into calendar-day keys ("YYYY-MM-DD").
package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Timestamp is a document-store timestamp: seconds and nanoseconds since the epoch.
type Timestamp struct {
	Seconds int64 `json:"_seconds"`
	Nanos   int32 `json:"_nanoseconds"`
}

func (ts Timestamp) Time() time.Time { return time.Unix(ts.Seconds, int64(ts.Nanos)) }

var stringLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// DayKey maps a stored date value to its calendar day. Strings keep their
// literal date part (everything before 'T'); instants are converted to loc.
// The second result is false for nil, zero or unparseable values.
func DayKey(v any, loc *time.Location) (string, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch d := v.(type) {
	case nil:
		return "", false
	case string:
		return stringKey(d, loc)
	case time.Time:
		if d.IsZero() {
			return "", false
		}
		return d.In(loc).Format(DayLayout), true
	case *time.Time:
		if d == nil {
			return "", false
		}
		return DayKey(*d, loc)
	case Timestamp:
		return DayKey(d.Time(), loc)
	case *Timestamp:
		if d == nil {
			return "", false
		}
		return DayKey(d.Time(), loc)
	case Flexible:
		return DayKey(d.Time, loc)
	case map[string]any:
		if ts, ok := timestampFromMap(d); ok {
			return DayKey(ts.Time(), loc)
		}
		return "", false
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			return "", false
		}
		return DayKey(time.UnixMilli(ms), loc)
	case int64:
		return DayKey(time.UnixMilli(d), loc)
	case int:
		return DayKey(time.UnixMilli(int64(d)), loc)
	case float64:
		return DayKey(time.UnixMilli(int64(d)), loc)
	}
	return "", false
}

// ToTime converts any value DayKey accepts into an instant. Bare dates and
// zone-less strings are read in loc.
func ToTime(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch d := v.(type) {
	case string:
		t, err := ParseTime(d, loc)
		return t, err == nil
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case Timestamp:
		return d.Time(), true
	case Flexible:
		return d.Time, !d.IsZero()
	case map[string]any:
		ts, ok := timestampFromMap(d)
		return ts.Time(), ok
	}
	if ms, ok := numeric(v); ok {
		return time.UnixMilli(int64(ms)), true
	}
	return time.Time{}, false
}

func stringKey(s string, loc *time.Location) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	head, _, _ := strings.Cut(s, "T")
	if _, err := time.Parse(DayLayout, head); err == nil {
		return head, true
	}
	for _, layout := range stringLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format(DayLayout), true
		}
	}
	return "", false
}

func timestampFromMap(m map[string]any) (Timestamp, bool) {
	var ts Timestamp
	sec, ok := numeric(m["_seconds"])
	if !ok {
		if sec, ok = numeric(m["seconds"]); !ok {
			return ts, false
		}
	}
	ts.Seconds = int64(sec)
	if n, ok := numeric(m["_nanoseconds"]); ok {
		ts.Nanos = int32(n)
	} else if n, ok := numeric(m["nanoseconds"]); ok {
		ts.Nanos = int32(n)
	}
	return ts, true
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Flexible is a time.Time that decodes from any representation DayKey accepts.
type Flexible struct {
	time.Time
}

func (f *Flexible) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	switch b[0] {
	case '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		t, err := ParseTime(s, time.UTC)
		if err != nil {
			return err
		}
		f.Time = t
		return nil
	case '{':
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		ts, ok := timestampFromMap(m)
		if !ok {
			return fmt.Errorf("dates: object without seconds field")
		}
		f.Time = ts.Time().UTC()
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("dates: unsupported value %s", b)
	}
	f.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func (f Flexible) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.Format(time.RFC3339))
}

// ParseTime parses an ISO-8601 timestamp, a bare date or a dd/mm/yyyy date.
// Values without a zone are interpreted in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range append([]string{DayLayout}, stringLayouts...) {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dates: cannot parse %q", s)
}

// ParseDay parses a "YYYY-MM-DD" key; empty means today in loc.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: invalid day %q", s)
	}
	return t, nil
}

// ParseMonth parses a "YYYY-MM" key; empty means the current month in loc.
// The result is the first day of the month.
func ParseMonth(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, _ := now.In(loc).Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: invalid month %q", s)
	}
	return t, nil
}

// DaysInMonth returns the day keys of the month starting at first, in order.
func DaysInMonth(first time.Time) []string {
	var out []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DayLayout))
	}
	return out
}

// LastDays returns n day keys ending at now's day in loc, oldest first.
func LastDays(now time.Time, n int, loc *time.Location) []string {
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = today.AddDate(0, 0, i-(n-1)).Format(DayLayout)
	}
	return out
}

var monthsPT = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// LongPT formats t as "15 de março de 2024".
func LongPT(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}
