package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Weekday
// ---------------------------------------------------------------------------

func TestParseWeekday_CaseInsensitive(t *testing.T) {
	cases := []struct {
		in   string
		want Weekday
	}{
		{"SUNDAY", Sunday},
		{"monday", Monday},
		{"Tuesday", Tuesday},
		{" wednesday ", Wednesday},
		{"sAtUrDaY", Saturday},
	}
	for _, tc := range cases {
		got, err := ParseWeekday(tc.in)
		if err != nil {
			t.Errorf("ParseWeekday(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseWeekday_Invalid(t *testing.T) {
	for _, in := range []string{"", "FUNDAY", "MON", "8"} {
		if _, err := ParseWeekday(in); err == nil {
			t.Errorf("ParseWeekday(%q) expected error", in)
		}
	}
}

func TestWeekdayIndex_SundayAnchored(t *testing.T) {
	want := map[Weekday]int{
		Sunday: 0, Monday: 1, Tuesday: 2, Wednesday: 3,
		Thursday: 4, Friday: 5, Saturday: 6,
	}
	for day, idx := range want {
		if got := day.Index(); got != idx {
			t.Errorf("%v.Index() = %d, want %d", day, got, idx)
		}
	}
	if got := Weekday("NOPE").Index(); got != -1 {
		t.Errorf("invalid weekday Index() = %d, want -1", got)
	}
}

// ---------------------------------------------------------------------------
// TimeOfDay
// ---------------------------------------------------------------------------

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if got.Hour != 9 || got.Minute != 30 {
		t.Errorf("got %02d:%02d, want 09:30", got.Hour, got.Minute)
	}

	for _, in := range []string{"9:30:00", "24:00", "12:60", "noon", ""} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q) expected error", in)
		}
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	a := TimeOfDay{Hour: 9, Minute: 0}
	b := TimeOfDay{Hour: 9, Minute: 30}
	if !a.Before(b) {
		t.Error("09:00 should be before 09:30")
	}
	if b.Before(a) {
		t.Error("09:30 should not be before 09:00")
	}
	if a.Before(a) {
		t.Error("a time is not before itself")
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(TimeOfDay{Hour: 14, Minute: 5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"14:05"` {
		t.Errorf("marshal = %s, want \"14:05\"", data)
	}

	var parsed TimeOfDay
	if err := json.Unmarshal([]byte(`"08:15"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Hour != 8 || parsed.Minute != 15 {
		t.Errorf("unmarshal = %v, want 08:15", parsed)
	}

	if err := json.Unmarshal([]byte(`"late"`), &parsed); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan("11:45"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if tod.Hour != 11 || tod.Minute != 45 {
		t.Errorf("scan string = %v, want 11:45", tod)
	}

	if err := tod.Scan(time.Date(2026, 3, 1, 16, 20, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if tod.Hour != 16 || tod.Minute != 20 {
		t.Errorf("scan time = %v, want 16:20", tod)
	}

	if err := tod.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

// ---------------------------------------------------------------------------
// Date
// ---------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-08-27")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got.Year != 2026 || got.Month != time.August || got.Day != 27 {
		t.Errorf("got %v, want 2026-08-27", got)
	}

	for _, in := range []string{"27/08/2026", "2026-13-01", "2026-08-32", ""} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) expected error", in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(Date{Year: 2026, Month: time.January, Day: 5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2026-01-05"` {
		t.Errorf("marshal = %s, want \"2026-01-05\"", data)
	}

	var parsed Date
	if err := json.Unmarshal([]byte(`"2026-12-31"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed != (Date{Year: 2026, Month: time.December, Day: 31}) {
		t.Errorf("unmarshal = %v, want 2026-12-31", parsed)
	}
}

func TestDateAt(t *testing.T) {
	d := Date{Year: 2026, Month: time.August, Day: 27}
	got := d.At(TimeOfDay{Hour: 17, Minute: 30}, time.UTC)
	want := time.Date(2026, 8, 27, 17, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Overlaps
// ---------------------------------------------------------------------------

func TestOverlaps(t *testing.T) {
	at := func(h int) TimeOfDay { return TimeOfDay{Hour: h} }

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     TimeOfDay
		want                           bool
	}{
		{"disjoint", at(9), at(10), at(11), at(12), false},
		{"back to back", at(9), at(10), at(10), at(11), false},
		{"partial overlap", at(9), at(11), at(10), at(12), true},
		{"contained", at(9), at(17), at(12), at(13), true},
		{"identical", at(9), at(10), at(9), at(10), true},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}
