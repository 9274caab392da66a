package logcleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func line(ago time.Duration, msg string) string {
	return "[" + now.Add(-ago).Format("2006-01-02 15:04:05") + "]\tINFO\t" + msg + "\n"
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   time.Time
		wantOK bool
	}{
		{name: "file format", line: "[2024-06-10 12:00:00]\tINFO\tstarted\n", want: now, wantOK: true},
		{name: "legacy format", line: "[2024-06-10 12:00:00] [INFO] started", want: now, wantOK: true},
		{name: "no bracket", line: "2024-06-10 12:00:00 started", wantOK: false},
		{name: "unterminated", line: "[2024-06-10 12:00:00 started", wantOK: false},
		{name: "bad date", line: "[yesterday] started", wantOK: false},
		{name: "stack trace continuation", line: "\tgoroutine 1 [running]:", wantOK: false},
		{name: "empty", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got))
			}
		})
	}
}

func TestSweep(t *testing.T) {
	day := 24 * time.Hour
	lines := []string{
		line(6*day, "old"),
		"panic: something\n",
		line(5*day, "exactly at cutoff"),
		line(5*day+time.Second, "just past cutoff"),
		line(time.Hour, "fresh"),
		"[garbage] kept\n",
	}

	res := Sweep(lines, now, DefaultWindow)

	assert.Equal(t, []string{lines[1], lines[2], lines[4], lines[5]}, res.Kept)
	assert.Equal(t, []string{lines[0], lines[3]}, res.Dropped)
	assert.Equal(t, 4, res.Remaining())
}

func TestSweep_Empty(t *testing.T) {
	res := Sweep(nil, now, DefaultWindow)
	assert.Empty(t, res.Kept)
	assert.Empty(t, res.Dropped)
}

// TestSweep_Idempotent は同じ now で再実行しても結果が変わらないことを確認します。
func TestSweep_Idempotent(t *testing.T) {
	day := 24 * time.Hour
	lines := []string{line(9*day, "a"), line(3*day, "b"), "no ts\n", line(0, "c")}

	first := Sweep(lines, now, DefaultWindow)
	second := Sweep(first.Kept, now, DefaultWindow)
	assert.Equal(t, first.Kept, second.Kept)
	assert.Empty(t, second.Dropped)
}

// TestSweep_MonotoneInWindow は窓が広いほど残る行が増える（部分集合になる）ことを確認します。
func TestSweep_MonotoneInWindow(t *testing.T) {
	day := 24 * time.Hour
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, line(time.Duration(i)*day+time.Duration(i)*time.Hour, "entry"))
		if i%3 == 0 {
			lines = append(lines, "unparseable\n")
		}
	}

	windows := []time.Duration{0, day, 2 * day, 5 * day, 7 * day, 30 * day}
	for i := 1; i < len(windows); i++ {
		narrow := Sweep(lines, now, windows[i-1]).Kept
		wide := Sweep(lines, now, windows[i]).Kept
		assert.Subset(t, wide, narrow, "window %v should keep everything %v keeps", windows[i], windows[i-1])
		assert.GreaterOrEqual(t, len(wide), len(narrow))
	}
}
