package services

import (
	"math/rand"
	"sort"
)

// regressionTree is a binary tree splitting on feature thresholds, with
// leaf values holding the mean target of the samples that reached them.
type regressionTree struct {
	feature   int
	threshold float64
	left      *regressionTree
	right     *regressionTree
	leaf      bool
	value     float64
}

// regressionForest is a bagged ensemble of regression trees. Training is
// fully deterministic for a given seed.
type regressionForest struct {
	trees      []*regressionTree
	importance []float64
}

type forestParams struct {
	trees       int
	maxDepth    int
	minSamples  int
	maxFeatures int
}

// trainForest fits a bagged regression-tree ensemble. Each tree trains on
// a bootstrap sample and considers a random feature subset at every split.
func trainForest(features [][]float64, targets []float64, params forestParams, rng *rand.Rand) *regressionForest {
	n := len(features)
	if n == 0 {
		return &regressionForest{}
	}
	numFeatures := len(features[0])
	if params.maxFeatures <= 0 || params.maxFeatures > numFeatures {
		params.maxFeatures = (numFeatures + 2) / 3
		if params.maxFeatures < 1 {
			params.maxFeatures = 1
		}
	}
	if params.minSamples < 2 {
		params.minSamples = 2
	}

	forest := &regressionForest{
		trees:      make([]*regressionTree, 0, params.trees),
		importance: make([]float64, numFeatures),
	}
	for t := 0; t < params.trees; t++ {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		tree := buildRegressionTree(features, targets, indices, 0, params, rng, forest.importance)
		forest.trees = append(forest.trees, tree)
	}

	// Normalize accumulated importance to sum to one.
	var total float64
	for _, imp := range forest.importance {
		total += imp
	}
	if total > 0 {
		for i := range forest.importance {
			forest.importance[i] /= total
		}
	}
	return forest
}

func buildRegressionTree(features [][]float64, targets []float64, indices []int, depth int, params forestParams, rng *rand.Rand, importance []float64) *regressionTree {
	mean, variance := meanVarianceAt(targets, indices)
	if depth >= params.maxDepth || len(indices) < params.minSamples || variance == 0 {
		return &regressionTree{leaf: true, value: mean}
	}

	numFeatures := len(features[0])
	candidates := rng.Perm(numFeatures)[:params.maxFeatures]

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := variance * float64(len(indices))
	var bestLeft, bestRight []int

	for _, feature := range candidates {
		thresholds := splitCandidates(features, indices, feature)
		for _, threshold := range thresholds {
			var left, right []int
			for _, idx := range indices {
				if features[idx][feature] <= threshold {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			_, leftVar := meanVarianceAt(targets, left)
			_, rightVar := meanVarianceAt(targets, right)
			score := leftVar*float64(len(left)) + rightVar*float64(len(right))
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = threshold
				bestLeft = left
				bestRight = right
			}
		}
	}

	if bestFeature < 0 {
		return &regressionTree{leaf: true, value: mean}
	}

	importance[bestFeature] += variance*float64(len(indices)) - bestScore

	return &regressionTree{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildRegressionTree(features, targets, bestLeft, depth+1, params, rng, importance),
		right:     buildRegressionTree(features, targets, bestRight, depth+1, params, rng, importance),
	}
}

// splitCandidates returns midpoints between consecutive distinct feature
// values, capped to keep tree construction bounded on large days counts.
func splitCandidates(features [][]float64, indices []int, feature int) []float64 {
	values := make([]float64, 0, len(indices))
	for _, idx := range indices {
		values = append(values, features[idx][feature])
	}
	sort.Float64s(values)

	var thresholds []float64
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			thresholds = append(thresholds, (values[i]+values[i-1])/2)
		}
	}
	const maxThresholds = 32
	if len(thresholds) > maxThresholds {
		step := float64(len(thresholds)) / maxThresholds
		sampled := make([]float64, 0, maxThresholds)
		for i := 0; i < maxThresholds; i++ {
			sampled = append(sampled, thresholds[int(float64(i)*step)])
		}
		thresholds = sampled
	}
	return thresholds
}

func meanVarianceAt(targets []float64, indices []int) (float64, float64) {
	if len(indices) == 0 {
		return 0, 0
	}
	var sum float64
	for _, idx := range indices {
		sum += targets[idx]
	}
	mean := sum / float64(len(indices))

	var sumSquares float64
	for _, idx := range indices {
		diff := targets[idx] - mean
		sumSquares += diff * diff
	}
	return mean, sumSquares / float64(len(indices))
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func (f *regressionForest) predict(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, tree := range f.trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(f.trees))
}
