package services

import (
	"math"
	"math/rand"
)

// isolationTree isolates points by recursive random partitioning; outliers
// separate from the bulk in fewer splits.
type isolationTree struct {
	feature   int
	threshold float64
	left      *isolationTree
	right     *isolationTree
	leaf      bool
	size      int
}

// isolationForest scores points by their average isolation depth across
// trees. Scores follow the score_samples convention: values in (-1, 0),
// lower meaning more anomalous.
type isolationForest struct {
	trees      []*isolationTree
	sampleSize int
}

const isolationSubsample = 256

// fitIsolationForest trains an ensemble of isolation trees on subsamples
// of the rows. Deterministic for a given seed.
func fitIsolationForest(rows [][]float64, numTrees int, rng *rand.Rand) *isolationForest {
	n := len(rows)
	sampleSize := n
	if sampleSize > isolationSubsample {
		sampleSize = isolationSubsample
	}
	depthLimit := int(math.Ceil(math.Log2(float64(sampleSize))))

	forest := &isolationForest{
		trees:      make([]*isolationTree, 0, numTrees),
		sampleSize: sampleSize,
	}
	for t := 0; t < numTrees; t++ {
		perm := rng.Perm(n)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for i, idx := range perm {
			sample[i] = rows[idx]
		}
		forest.trees = append(forest.trees, buildIsolationTree(sample, 0, depthLimit, rng))
	}
	return forest
}

func buildIsolationTree(rows [][]float64, depth int, depthLimit int, rng *rand.Rand) *isolationTree {
	if len(rows) <= 1 || depth >= depthLimit {
		return &isolationTree{leaf: true, size: len(rows)}
	}

	feature := rng.Intn(len(rows[0]))
	minVal, maxVal := rows[0][feature], rows[0][feature]
	for _, row := range rows[1:] {
		if row[feature] < minVal {
			minVal = row[feature]
		}
		if row[feature] > maxVal {
			maxVal = row[feature]
		}
	}
	if minVal == maxVal {
		return &isolationTree{leaf: true, size: len(rows)}
	}

	threshold := minVal + rng.Float64()*(maxVal-minVal)
	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isolationTree{
		feature:   feature,
		threshold: threshold,
		left:      buildIsolationTree(left, depth+1, depthLimit, rng),
		right:     buildIsolationTree(right, depth+1, depthLimit, rng),
	}
}

func (t *isolationTree) pathLength(row []float64, depth float64) float64 {
	if t.leaf {
		return depth + averagePathLength(t.size)
	}
	if row[t.feature] < t.threshold {
		return t.left.pathLength(row, depth+1)
	}
	return t.right.pathLength(row, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// BST search over n points; it normalizes isolation depths.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	harmonic := math.Log(float64(n-1)) + 0.5772156649015329
	return 2*harmonic - 2*float64(n-1)/float64(n)
}

// score returns the negated anomaly score for one row: -2^(-E[h]/c(psi)).
// Isolated points approach -1, inliers stay nearer -0.4.
func (f *isolationForest) score(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, tree := range f.trees {
		sum += tree.pathLength(row, 0)
	}
	avgDepth := sum / float64(len(f.trees))

	norm := averagePathLength(f.sampleSize)
	if norm == 0 {
		return 0
	}
	return -math.Pow(2, -avgDepth/norm)
}
