package statistics

import (
	"math/rand/v2"
	"slices"
)

// resamples is the number of bootstrap draws behind MeanInterval.
const resamples = 10000

// ConfidenceInterval bounds a mean score at a confidence level.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Mean  float64 `json:"mean"`
	Level float64 `json:"confidence_level"`
}

// MeanInterval estimates a confidence interval for the mean of scores with
// the percentile bootstrap. The same seed always yields the same interval.
// With fewer than two scores the interval collapses onto the mean.
func MeanInterval(scores []float64, level float64, seed uint64) ConfidenceInterval {
	m := Mean(scores)
	ci := ConfidenceInterval{Lower: m, Upper: m, Mean: m, Level: level}
	n := len(scores)
	if n < 2 {
		return ci
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	means := make([]float64, resamples)
	for i := range means {
		sum := 0.0
		for range n {
			sum += scores[rng.IntN(n)]
		}
		means[i] = sum / float64(n)
	}
	slices.Sort(means)

	tail := (1 - level) / 2
	ci.Lower = means[percentileIndex(tail)]
	ci.Upper = means[percentileIndex(1-tail)]
	return ci
}

func percentileIndex(p float64) int {
	return min(max(int(p*resamples), 0), resamples-1)
}
