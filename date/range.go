package date

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// Contains reports whether the date falls inside the range, boundaries
// included.
func (r Range) Contains(on Date) bool { return !on.Before(r.From) && !on.After(r.To) }

// Days returns the number of calendar days the range spans, boundaries
// included.
func (r Range) Days() int { return r.From.DaysUntil(r.To) + 1 }
