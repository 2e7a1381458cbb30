package summary

import "time"

// periods holds the calendar windows derived from the caller's clock.
type periods struct {
	year          int
	month         time.Month
	lastMonthYear int
	lastMonth     time.Month
}

// periodsAt derives this month, last month and this year from now.
// January rolls back to December of the previous year.
func periodsAt(now time.Time) periods {
	p := periods{
		year:          now.Year(),
		month:         now.Month(),
		lastMonthYear: now.Year(),
		lastMonth:     now.Month() - 1,
	}
	if now.Month() == time.January {
		p.lastMonth = time.December
		p.lastMonthYear = now.Year() - 1
	}
	return p
}

// window reports which reporting windows a ledger date falls into. Dates are
// compared on their recorded calendar fields. The zero time matches none.
type window struct {
	sameMonth bool
	lastMonth bool
	sameYear  bool
}

func (p periods) classify(d time.Time) window {
	if d.IsZero() {
		return window{}
	}
	y, m := d.Year(), d.Month()
	return window{
		sameMonth: y == p.year && m == p.month,
		lastMonth: y == p.lastMonthYear && m == p.lastMonth,
		sameYear:  y == p.year,
	}
}
