package dashboard

import "time"

// Range is the half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// DayRange is the calendar day containing t in loc.
func DayRange(t time.Time, loc *time.Location) Range {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// MonthRange is the calendar month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// Totals aggregates the invoices in a range. Sums are in cents.
type Totals struct {
	Count   int64
	Paid    int64
	Pending int64
}

// Cards are the overview counters for today. Sums are in cents.
type Cards struct {
	AppointmentsToday    int64 `json:"appointments_today"`
	AppointmentsTomorrow int64 `json:"appointments_tomorrow"`
	PaidToday            int64 `json:"paid_today"`
	PendingToday         int64 `json:"pending_today"`
}

// RevenueCards summarise one month. Sums are in cents.
type RevenueCards struct {
	Invoices    int64 `json:"invoices"`
	NewPatients int64 `json:"new_patients"`
	Paid        int64 `json:"paid"`
	Pending     int64 `json:"pending"`
}

// MonthAmounts are one month's invoice sums in major units.
type MonthAmounts struct {
	Paid    float64
	Pending float64
}

// MonthRevenue is one bar of the revenue chart. Amounts are in major units.
type MonthRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}
