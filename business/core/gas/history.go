package gas

import "time"

// HistorySize is the number of points kept for charting.
const HistorySize = 12

// Point is a sample reduced to what the chart needs.
type Point struct {
	Label   string  `json:"timestamp"`
	Safe    float64 `json:"safe"`
	Average float64 `json:"average"`
	Fast    float64 `json:"fast"`
}

// History is a rolling window of the most recent points. The zero value is
// not usable, construct one with NewHistory. History is not safe for
// concurrent use.
type History struct {
	loc    *time.Location
	points []Point
}

// NewHistory constructs an empty history that labels points in the
// specified location. A nil location means time.Local.
func NewHistory(loc *time.Location) *History {
	if loc == nil {
		loc = time.Local
	}

	return &History{
		loc:    loc,
		points: make([]Point, 0, HistorySize+1),
	}
}

// Append adds the sample labeled with its local hour and minute and evicts
// the oldest points beyond HistorySize.
func (h *History) Append(s Sample) {
	h.points = append(h.points, Point{
		Label:   s.ObservedAt.In(h.loc).Format("15:04"),
		Safe:    s.Safe,
		Average: s.Average,
		Fast:    s.Fast,
	})

	if n := len(h.points); n > HistorySize {
		h.points = append(h.points[:0], h.points[n-HistorySize:]...)
	}
}

// Len returns the number of points held.
func (h *History) Len() int {
	return len(h.points)
}

// Snapshot returns a copy of the points, oldest first.
func (h *History) Snapshot() []Point {
	cpy := make([]Point, len(h.points))
	copy(cpy, h.points)
	return cpy
}
