// This file implements the Strategy Pattern for reminder frequency checking.
// Each frequency (daily, weekly) has its own strategy that decides whether an
// invoice may be reminded again given when it was last reminded.

package services

import (
	"fmt"
	"time"
)

// Reminder frequencies
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// DuenessChecker is the strategy interface for checking if a reminder is due.
type DuenessChecker interface {
	// IsDue returns true if a reminder should be sent now given the time of
	// the last one. A zero lastReminder means never reminded.
	IsDue(lastReminder, now time.Time) bool
}

// DailyChecker allows one reminder per calendar day.
type DailyChecker struct{}

// IsDue returns true if the last reminder was sent before today.
func (DailyChecker) IsDue(lastReminder, now time.Time) bool {
	if lastReminder.IsZero() {
		return true
	}
	return lastReminder.UTC().Format("2006-01-02") != now.UTC().Format("2006-01-02")
}

// WeeklyChecker allows one reminder every seven days.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last reminder.
func (WeeklyChecker) IsDue(lastReminder, now time.Time) bool {
	if lastReminder.IsZero() {
		return true
	}
	return now.Sub(lastReminder) >= 7*24*time.Hour
}

var duenessStrategies = map[string]DuenessChecker{
	FrequencyDaily:  DailyChecker{},
	FrequencyWeekly: WeeklyChecker{},
}

// GetDuenessChecker returns the checker for a reminder frequency.
func GetDuenessChecker(frequency string) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown reminder frequency: %s", frequency)
	}
	return checker, nil
}
