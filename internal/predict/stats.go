package predict

import (
	"math"
	"time"
)

// trendSlope is the ordinary least-squares slope of y against index 0..n-1.
// Returns 0 for degenerate inputs (fewer than two points or zero variance in
// x, which cannot happen with index x-values but is guarded anyway).
func trendSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

// volatility is the population standard deviation of the series.
func volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// weekdayAverages groups values by their date's weekday and averages each
// group. Keys are English weekday names.
func weekdayAverages(dates []time.Time, values []float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, d := range dates {
		name := d.Weekday().String()
		sums[name] += values[i]
		counts[name]++
	}

	averages := make(map[string]float64, len(sums))
	for name, sum := range sums {
		averages[name] = round3(sum / float64(counts[name]))
	}
	return averages
}

// peakDay returns the weekday name with the highest average value, or
// "Unknown" for an empty series. Ties break alphabetically for determinism.
func peakDay(dates []time.Time, values []float64) string {
	averages := weekdayAverages(dates, values)
	if len(averages) == 0 {
		return "Unknown"
	}

	best := ""
	bestValue := math.Inf(-1)
	for name, v := range averages {
		if v > bestValue || (v == bestValue && name < best) {
			best = name
			bestValue = v
		}
	}
	return best
}

// weekStart normalizes a date to the Monday of its calendar week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
