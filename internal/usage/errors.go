package usage

import "errors"

// ErrLimitReached indicates the user has no scans left this month.
var ErrLimitReached = errors.New("limit reached")

// LimitReachedMessage is shown to clients when ErrLimitReached is returned.
const LimitReachedMessage = "Monthly quota exceeded. Please upgrade or wait for next month."
