package model

// Period identifies a reporting or aggregation window.
type Period string

// Supported periods.
const (
	PeriodMonth     Period = "month"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodLastMonth Period = "last_month"
	PeriodAll       Period = "all"
)

// ParsePeriod maps a classifier-extracted period string onto a known Period.
// Unrecognized values (including empty) fall back to the current month; the
// second return reports whether the input was recognized.
func ParsePeriod(raw string) (Period, bool) {
	switch Period(raw) {
	case PeriodMonth, PeriodToday, PeriodYesterday, PeriodLastMonth, PeriodAll:
		return Period(raw), true
	case "":
		return PeriodMonth, true
	default:
		return PeriodMonth, false
	}
}
