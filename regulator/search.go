package regulator

import "math"

const (
	// searchTolerance is the accepted packet-count error of IntervalWidth
	searchTolerance = 1e-5
	// searchInitialStep is the first offset tried from the left edge, in seconds
	searchInitialStep = 0.5
	// maxSearchIterations bounds IntervalWidth; running out counts as divergence
	maxSearchIterations = 10000
)

// Rate is the send rate r·d^t in packets per second at time t
func Rate(t, r, d float64) float64 {
	return r * math.Pow(d, t)
}

// IntervalWidth finds the width w of the interval starting at a whose
// midpoint rate, held over the whole interval, yields count packets:
// Rate(a+w/2)·w ≈ count. It returns +Inf when no such interval exists
// because the rate decays too quickly.
//
// The search walks the midpoint outward with a doubling step until it
// overshoots, then halves the step and homes in from both sides. The
// search gives up after maxSearchIterations and reports +Inf; with d >= 1
// and large counts the resolution of the midpoint can keep the tolerance
// out of reach, so such curves are cut short as if they had decayed.
func IntervalWidth(a, count, r, d float64) float64 {
	mid := a
	step := searchInitialStep
	decreasing := false
	diff := count

	for i := 0; math.Abs(diff) > searchTolerance; i++ {
		if i == maxSearchIterations {
			return math.Inf(1)
		}
		if diff < 0 {
			mid -= step
			decreasing = true
		} else {
			mid += step
		}
		if decreasing {
			step /= 2
		} else {
			step *= 2
		}
		diff = count - Rate(mid, r, d)*(mid-a)*2
	}

	// A NaN diff ends the loop once mid has run off to infinity
	width := (mid - a) * 2
	if math.IsNaN(diff) || math.IsNaN(width) || width <= 0 {
		return math.Inf(1)
	}
	return width
}

// Segment is one constant-rate piece of the decay curve
type Segment struct {
	Start float64
	Width float64
	// Rate is the curve's rate at the segment midpoint
	Rate float64
	// Last is set on the final segment, which ends the machine
	Last bool
}

// Segments partitions the decay curve from t=0 into pieces of
// p.PacketsPerState packets each. The final piece is the first one that is
// unbounded or whose midpoint rate is below MinRate; the partition is also
// cut at MaxSendStates.
func Segments(p RelayParams) []Segment {
	var segs []Segment
	t := 0.0
	for {
		width := IntervalWidth(t, p.PacketsPerState, p.InitialRate, p.Decay)
		rate := Rate(t+width/2, p.InitialRate, p.Decay)
		seg := Segment{Start: t, Width: width, Rate: rate}

		if math.IsInf(width, 1) || !(rate >= MinRate) || len(segs)+1 == MaxSendStates {
			seg.Last = true
			segs = append(segs, seg)
			return segs
		}
		segs = append(segs, seg)
		t += width
	}
}
