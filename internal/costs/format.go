package costs

import "fmt"

// Resource kinds reported per summary and per app, in display order.
const (
	ResourceCPU    = "cpu"
	ResourceMemory = "memory"
	ResourceDisk   = "disk"
)

// ResourceShare is one resource kind's slice of a cost total, as a raw
// value and a percentage for chart-style display.
type ResourceShare struct {
	Kind    string  `json:"kind"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// zeroTotalPercent is reported by every share when there is nothing to
// divide, so a chart still renders three equal segments. The three
// placeholders sum to 99.9, not 100; the value is displayed as-is.
const zeroTotalPercent = 33.3

// FormatCurrency renders a cost for display. Totals of a thousand
// dollars or more scale to a two-decimal "k" form, nonzero costs under
// a cent render as "<$0.01" so they are never shown as free, and
// negative input is clamped to zero (the cost source never reports
// negatives).
func FormatCurrency(value float64) string {
	if value < 0 {
		value = 0
	}
	switch {
	case value == 0:
		return "$0.00"
	case value < 0.01:
		return "<$0.01"
	case value >= 1000:
		return fmt.Sprintf("$%.2fk", value/1000)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

// ResourceShares splits a cpu/memory/disk cost triple into display
// shares, always in that order. Percentages are the exact value/total
// ratios; they are not renormalized to force the sum to 100, so small
// floating drift is expected.
func ResourceShares(cpu, memory, disk float64) []ResourceShare {
	total := cpu + memory + disk
	if total == 0 {
		return []ResourceShare{
			{Kind: ResourceCPU, Value: 0, Percent: zeroTotalPercent},
			{Kind: ResourceMemory, Value: 0, Percent: zeroTotalPercent},
			{Kind: ResourceDisk, Value: 0, Percent: zeroTotalPercent},
		}
	}
	return []ResourceShare{
		{Kind: ResourceCPU, Value: cpu, Percent: cpu / total * 100},
		{Kind: ResourceMemory, Value: memory, Percent: memory / total * 100},
		{Kind: ResourceDisk, Value: disk, Percent: disk / total * 100},
	}
}
