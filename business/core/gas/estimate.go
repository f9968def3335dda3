package gas

import "time"

// Window is the coarse recommendation of when to send a transaction.
type Window string

// The set of windows.
const (
	WindowNow      Window = "now-early-hours"
	WindowLater    Window = "later-today"
	WindowTomorrow Window = "tomorrow-early-hours"
)

// Label returns the display text for the window.
func (w Window) Label() string {
	switch w {
	case WindowNow:
		return "Current time (midnight-6AM)"
	case WindowLater:
		return "Later today (6PM-midnight)"
	case WindowTomorrow:
		return "Tomorrow (midnight-6AM)"
	}
	return string(w)
}

// RecommendedWindow maps the local hour onto a window. This is a static
// heuristic assuming the network is quiet between midnight and 6AM. It does
// not look at observed prices.
func RecommendedWindow(hour int) Window {
	switch {
	case hour >= 0 && hour < 6:
		return WindowNow
	case hour >= 6 && hour < 18:
		return WindowLater
	default:
		return WindowTomorrow
	}
}

// Estimate is the saving of paying the safe price instead of the fast price
// for a profile. Costs are in ether.
type Estimate struct {
	Profile     Profile `json:"profile"`
	FastCost    float64 `json:"fast_cost_eth"`
	SafeCost    float64 `json:"safe_cost_eth"`
	EtherDelta  float64 `json:"ether_delta"`
	USDDelta    float64 `json:"usd_delta"`
	Window      Window  `json:"recommended_window"`
	WindowLabel string  `json:"recommended_window_label"`
	Heuristic   bool    `json:"window_is_heuristic"`
}

// NewEstimate computes an estimate from the latest sample. A usdRate of zero
// means the rate is unavailable and yields a zero USD delta.
func NewEstimate(s Sample, p Profile, usdRate float64, now time.Time) Estimate {
	fast := CostAt(s.Fast, p.GasUnits)
	safe := CostAt(s.Safe, p.GasUnits)
	delta := fast - safe

	var usd float64
	if usdRate > 0 {
		usd = delta * usdRate
	}

	w := RecommendedWindow(now.Hour())

	return Estimate{
		Profile:     p,
		FastCost:    fast,
		SafeCost:    safe,
		EtherDelta:  delta,
		USDDelta:    usd,
		Window:      w,
		WindowLabel: w.Label(),
		Heuristic:   true,
	}
}
