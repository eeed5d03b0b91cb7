// Package statistics summarizes score distributions across evaluated practices.
package statistics

import "math"

// Distribution describes a set of final scores.
type Distribution struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes the distribution of values. The zero Distribution is
// returned for empty input.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	d := Distribution{
		N:      len(values),
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    values[0],
		Max:    values[0],
	}
	for _, v := range values[1:] {
		d.Min = math.Min(d.Min, v)
		d.Max = math.Max(d.Max, v)
	}
	return d
}

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance computes the population variance of a float64 slice.
// Returns 0 for empty input.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}
