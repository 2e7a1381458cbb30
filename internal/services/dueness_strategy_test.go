package services

import (
	"testing"
	"time"
)

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastReminder time.Time
		want         bool
	}{
		{
			name:         "never reminded - is due",
			lastReminder: time.Time{},
			want:         true,
		},
		{
			name:         "reminded today - not due",
			lastReminder: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "reminded yesterday - is due",
			lastReminder: time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastReminder, now); got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastReminder time.Time
		want         bool
	}{
		{
			name:         "never reminded - is due",
			lastReminder: time.Time{},
			want:         true,
		},
		{
			name:         "reminded 3 days ago - not due",
			lastReminder: time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "reminded 7 days ago - is due",
			lastReminder: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "reminded 10 days ago - is due",
			lastReminder: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastReminder, now); got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	tests := []struct {
		frequency string
		wantErr   bool
	}{
		{FrequencyDaily, false},
		{FrequencyWeekly, false},
		{"monthly", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			checker, err := GetDuenessChecker(tt.frequency)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetDuenessChecker(%q) error = %v, wantErr %v", tt.frequency, err, tt.wantErr)
			}
			if !tt.wantErr && checker == nil {
				t.Error("expected checker, got nil")
			}
		})
	}
}
