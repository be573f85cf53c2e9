package costs

import "math"

// Trend is the coarse direction of a cost series: the absolute
// percentage change between the means of the first and second halves,
// and whether costs moved up.
type Trend struct {
	Percent float64 `json:"percent"`
	IsUp    bool    `json:"is_up"`
}

// ComputeTrend splits a chronological series at its midpoint and
// compares the mean cost of the two halves. Series with fewer than two
// points, or with a zero-cost first half (no baseline to compare
// against), report a flat trend. The midpoint bucket split is part of
// the contract; it materially affects short series.
func ComputeTrend(series []DailyCostPoint) Trend {
	if len(series) < 2 {
		return Trend{}
	}
	mid := len(series) / 2
	firstAvg := meanTotal(series[:mid])
	secondAvg := meanTotal(series[mid:])
	if firstAvg == 0 {
		return Trend{}
	}
	raw := (secondAvg - firstAvg) / firstAvg * 100
	return Trend{Percent: math.Abs(raw), IsUp: raw > 0}
}

func meanTotal(points []DailyCostPoint) float64 {
	n := len(points)
	if n == 0 {
		n = 1
	}
	var sum float64
	for _, p := range points {
		sum += p.TotalCost
	}
	return sum / float64(n)
}
