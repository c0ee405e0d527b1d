package model

import (
	"context"
	"fmt"
)

const leaf = -1

type tree struct {
	feature   []int
	threshold []float64
	left      []int
	right     []int
	value     []float64
}

// Forest averages the outputs of its regression trees
type Forest struct {
	trees     []tree
	nFeatures int
}

// NewForest validates the tree arrays and builds a Forest over nFeatures inputs
func NewForest(arrays []TreeArrays, nFeatures int) (*Forest, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("random forest needs at least one tree")
	}
	f := &Forest{nFeatures: nFeatures, trees: make([]tree, 0, len(arrays))}
	for i, a := range arrays {
		t, err := newTree(a, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		f.trees = append(f.trees, t)
	}
	return f, nil
}

func newTree(a TreeArrays, nFeatures int) (tree, error) {
	n := len(a.Value)
	if n == 0 {
		return tree{}, fmt.Errorf("empty tree")
	}
	if len(a.Feature) != n || len(a.Threshold) != n || len(a.ChildrenLeft) != n || len(a.ChildrenRight) != n {
		return tree{}, fmt.Errorf("node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		l, r := a.ChildrenLeft[i], a.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return tree{}, fmt.Errorf("node %d has exactly one child", i)
		}
		if l == leaf {
			continue
		}
		// children always come after their parent, which also rules out cycles
		if l <= i || l >= n || r <= i || r >= n {
			return tree{}, fmt.Errorf("node %d has child out of range", i)
		}
		if a.Feature[i] < 0 || a.Feature[i] >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on unknown feature %d", i, a.Feature[i])
		}
	}
	return tree{
		feature:   a.Feature,
		threshold: a.Threshold,
		left:      a.ChildrenLeft,
		right:     a.ChildrenRight,
		value:     a.Value,
	}, nil
}

func (t tree) predict(x []float64) float64 {
	node := 0
	for t.left[node] != leaf {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.value[node]
}

// Predict returns the mean leaf value over all trees
func (f *Forest) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != f.nFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", f.nFeatures, len(features))
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(features)
	}
	return sum / float64(len(f.trees)), nil
}

// Kind returns KindRandomForest
func (f *Forest) Kind() string {
	return KindRandomForest
}

// Size returns the number of trees
func (f *Forest) Size() int {
	return len(f.trees)
}
