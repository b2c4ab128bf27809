package dates

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeySameInstant(t *testing.T) {
	instant := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{"iso string", "2024-03-15T14:30:00.000Z"},
		{"bare date", "2024-03-15"},
		{"time", instant},
		{"time pointer", &instant},
		{"timestamp", Timestamp{Seconds: instant.Unix()}},
		{"timestamp map", map[string]any{"_seconds": float64(instant.Unix()), "_nanoseconds": float64(0)}},
		{"seconds map", map[string]any{"seconds": float64(instant.Unix())}},
		{"epoch millis float", float64(instant.UnixMilli())},
		{"epoch millis int64", instant.UnixMilli()},
		{"json number", json.Number("1710513000000")},
		{"flexible", Flexible{Time: instant}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DayKey(tt.in, time.UTC)
			require.True(t, ok)
			assert.Equal(t, "2024-03-15", got)
		})
	}
}

func TestDayKeyRejects(t *testing.T) {
	var nilTime *time.Time
	for _, v := range []any{nil, "", "yesterday", time.Time{}, nilTime, map[string]any{"x": 1}, struct{}{}} {
		_, ok := DayKey(v, time.UTC)
		assert.False(t, ok, "%#v", v)
	}
}

func TestDayKeyTimezone(t *testing.T) {
	recife, err := time.LoadLocation("America/Recife")
	require.NoError(t, err)
	late := time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC)

	got, ok := DayKey(late, recife)
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", got)

	// strings keep their literal date
	got, _ = DayKey("2024-03-16T01:00:00Z", recife)
	assert.Equal(t, "2024-03-16", got)
}

func TestFlexibleUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso", `"2024-03-15T10:00:00Z"`, "2024-03-15"},
		{"date", `"2024-03-15"`, "2024-03-15"},
		{"br date", `"15/03/2024"`, "2024-03-15"},
		{"millis", `1710496800000`, "2024-03-15"},
		{"timestamp", `{"_seconds":1710496800,"_nanoseconds":0}`, "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flexible
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f.UTC().Format(DayLayout))
		})
	}

	var f Flexible
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.True(t, f.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &f))
}

func TestDaysInMonth(t *testing.T) {
	first, err := ParseMonth("2024-03", time.Now(), time.UTC)
	require.NoError(t, err)
	days := DaysInMonth(first)
	assert.Len(t, days, 31)
	assert.Equal(t, "2024-03-01", days[0])
	assert.Equal(t, "2024-03-31", days[30])

	feb, _ := ParseMonth("2024-02", time.Now(), time.UTC)
	assert.Len(t, DaysInMonth(feb), 29)

	_, err = ParseMonth("2024-13", time.Now(), time.UTC)
	assert.Error(t, err)
}

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{
		"2024-02-25", "2024-02-26", "2024-02-27", "2024-02-28",
		"2024-02-29", "2024-03-01", "2024-03-02",
	}, LastDays(now, 7, time.UTC))
}

func TestParseDayDefaultsToToday(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	d, err := ParseDay("", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", d.Format(DayLayout))
	_, err = ParseDay("02-03-2024", now, time.UTC)
	assert.Error(t, err)
}

func TestLongPT(t *testing.T) {
	assert.Equal(t, "05 de março de 2024", LongPT(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
}

func TestToTime(t *testing.T) {
	recife, err := time.LoadLocation("America/Recife")
	require.NoError(t, err)
	want := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	for _, in := range []any{
		"2024-03-15T14:30:00Z",
		map[string]any{"_seconds": json.Number("1710513000")},
		json.Number("1710513000000"),
		want,
	} {
		got, ok := ToTime(in, recife)
		require.True(t, ok, "%v", in)
		assert.True(t, want.Equal(got), "%v: %v", in, got)
	}

	day, ok := ToTime("2024-03-15", recife)
	require.True(t, ok)
	key, _ := DayKey(day, recife)
	assert.Equal(t, "2024-03-15", key)

	_, ok = ToTime("ontem", recife)
	assert.False(t, ok)
	_, ok = ToTime(nil, recife)
	assert.False(t, ok)
}
