package usage

import "time"

// UnlimitedRemaining is reported as the remaining count for unlimited accounts.
const UnlimitedRemaining = 999999

// Account identifies whose quota is being checked.
type Account struct {
	UserID string
	Email  string
}

// Usage is a user's quota snapshot for the current month.
type Usage struct {
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
	Unlimited   bool      `json:"unlimited"`
	PeriodStart time.Time `json:"period_start"`
	ResetsAt    time.Time `json:"resets_at"`
}

// counter is the persisted state behind a Usage.
type counter struct {
	Used        int
	PeriodStart time.Time
}

// rollover resets c when now falls in a later calendar month (UTC).
func rollover(c counter, now time.Time) (counter, bool) {
	now = now.UTC()
	start := c.PeriodStart.UTC()
	if c.PeriodStart.IsZero() || start.Year() != now.Year() || start.Month() != now.Month() {
		return counter{Used: 0, PeriodStart: now}, true
	}
	return c, false
}

// nextMonth returns the first instant of the month after t, in UTC.
func nextMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
