package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// WeightedMean calculates the weighted mean. Falls back to the unweighted
// mean when weights sum to zero.
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumWeights float64
	for _, w := range weights {
		sumWeights += w
	}
	if sumWeights == 0 || len(weights) != len(values) {
		return Mean(values)
	}
	return stat.Mean(values, weights)
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Variance calculates the sample variance
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// Min returns the smallest value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Range returns max - min
func Range(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Max(values) - Min(values)
}

// Percentile calculates the p-th percentile (0-100) with linear
// interpolation between closest ranks
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median returns the 50th percentile
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Skewness calculates the sample skewness
func Skewness(values []float64) float64 {
	if len(values) < 3 {
		return 0
	}
	return stat.Skew(values, nil)
}

// Kurtosis calculates the sample excess kurtosis
func Kurtosis(values []float64) float64 {
	if len(values) < 4 {
		return 0
	}
	return stat.ExKurtosis(values, nil)
}

// Correlation calculates the Pearson correlation coefficient between two
// equal-length series. Degenerate inputs yield 0 rather than NaN.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// ZeroCrossingRate returns the fraction of consecutive sample pairs whose
// sign differs, after removing the series mean
func ZeroCrossingRate(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	crossings := 0
	for i := 1; i < len(values); i++ {
		prev := values[i-1] - mean
		cur := values[i] - mean
		if (prev < 0 && cur >= 0) || (prev >= 0 && cur < 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(values))
}
