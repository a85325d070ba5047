package services

import (
	"math"
	"sort"
)

func calculateMeanFloat64(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStdDev returns the sample standard deviation (n-1 denominator).
func calculateStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := calculateMeanFloat64(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(len(values)-1)
	return math.Sqrt(variance)
}

// fitLine fits y = slope*x + intercept by ordinary least squares.
func fitLine(x []float64, y []float64) (slope float64, intercept float64, ok bool) {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0, 0, false
	}

	var sumX float64
	var sumY float64
	var sumXX float64
	var sumXY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
	}

	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (float64(n)*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / float64(n)
	return slope, intercept, true
}

// trailingMean computes a trailing moving average with the given window.
// Positions before a full window average whatever is available so far, so
// every position yields a value.
func trailingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		span := i + 1
		if span > window {
			span = window
		}
		out[i] = sum / float64(span)
	}
	return out
}

// standardScale transforms each column to zero mean and unit variance,
// fitted on the rows being transformed (population variance). Constant
// columns stay at zero rather than dividing by zero.
func standardScale(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)

	for j := 0; j < cols; j++ {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		means[j] = sum / float64(len(rows))

		var sumSquares float64
		for _, row := range rows {
			diff := row[j] - means[j]
			sumSquares += diff * diff
		}
		stds[j] = math.Sqrt(sumSquares / float64(len(rows)))
	}

	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		scaled[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			if stds[j] == 0 {
				continue
			}
			scaled[i][j] = (row[j] - means[j]) / stds[j]
		}
	}
	return scaled
}

// meanAbsoluteError averages |predicted - actual| over both slices.
func meanAbsoluteError(actual []float64, predicted []float64) float64 {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(n)
}

// rSquared computes the coefficient of determination. A constant actual
// series yields 0 rather than dividing by zero.
func rSquared(actual []float64, predicted []float64) float64 {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return 0
	}
	mean := calculateMeanFloat64(actual)
	var ssTot float64
	var ssRes float64
	for i := 0; i < n; i++ {
		ssTot += (actual[i] - mean) * (actual[i] - mean)
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// rankedItem is one observation entering a quartile cut.
type rankedItem struct {
	key   string
	value float64
}

// quartileScores buckets items into four equal-count bins by rank and
// returns a score 1..4 per key, 4 being the highest-value quartile. Ties
// break on the key so the cut is reproducible across runs.
func quartileScores(items []rankedItem) map[string]int {
	ranked := make([]rankedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].value != ranked[j].value {
			return ranked[i].value < ranked[j].value
		}
		return ranked[i].key < ranked[j].key
	})

	n := len(ranked)
	scores := make(map[string]int, n)
	for rank, item := range ranked {
		scores[item.key] = (rank*4)/n + 1
	}
	return scores
}
