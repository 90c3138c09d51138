package stats

import "math"

// Stability classifies a spread proxy (in basis points) into the dashboard's
// liquidity bands.
func Stability(spreadBps float64) string {
	switch {
	case spreadBps <= 1:
		return "very stable"
	case spreadBps <= 5:
		return "moderately stable"
	case spreadBps <= 15:
		return "slightly volatile"
	default:
		return "highly volatile / illiquid"
	}
}

// LadderPoint maps a trading volume to its alpha point tier. The ladder
// doubles per point: volume = 2^(point-1) * 2, inverted here as
// point = floor(log2(volume/2) + 1), floored at tier 1. Returns false for
// non-positive volume.
func LadderPoint(volume float64) (int, bool) {
	if volume <= 0 {
		return 0, false
	}
	point := int(math.Floor(math.Log2(volume/2) + 1))
	if point < 1 {
		point = 1
	}
	return point, true
}

// LadderVolume returns the volume required for a given point tier.
func LadderVolume(point int) float64 {
	if point < 1 {
		return 0
	}
	return math.Pow(2, float64(point-1)) * 2
}
