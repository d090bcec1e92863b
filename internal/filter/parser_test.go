package filter

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	d := func(y int, m time.Month, day int) string {
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}

	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantFrom string
		wantTo   string
	}{
		{"same month", "Jul 1-15", false, d(2026, 7, 1), d(2026, 7, 15)},
		{"full month name", "July 1-15", false, d(2026, 7, 1), d(2026, 7, 15)},
		{"two months", "July 1 - August 15", false, d(2026, 7, 1), d(2026, 8, 15)},
		{"cross year", "Dec 25 - Jan 5", false, d(2026, 12, 25), d(2027, 1, 5)},
		{"past month rolls over", "March", false, d(2027, 3, 1), d(2027, 3, 31)},
		{"current month", "June", false, d(2026, 6, 1), d(2026, 6, 30)},
		{"empty string", "", true, "", ""},
		{"invalid format", "not a date", true, "", ""},
		{"invalid day", "Jul 50-60", true, "", ""},
		{"invalid month", "Xxx 1-15", true, "", ""},
		{"reversed", "Jul 15-1", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDateRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := from.Format("2006-01-02"); got != tt.wantFrom {
				t.Errorf("from = %s, want %s", got, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo {
				t.Errorf("to = %s, want %s", got, tt.wantTo)
			}
			if to.Hour() != 23 || to.Minute() != 59 {
				t.Errorf("range should end at 23:59, got %s", to.Format("15:04"))
			}
		})
	}
}
