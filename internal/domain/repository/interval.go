package repository

// Interval is the intraday bar resolution requested from the primary feed.
type Interval string

const (
	Interval1Min  Interval = "1min"
	Interval5Min  Interval = "5min"
	Interval15Min Interval = "15min"
)

// IsValidInterval returns true if iv is a supported intraday interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1Min, Interval5Min, Interval15Min:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default intraday interval.
func DefaultInterval() Interval { return Interval1Min }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
