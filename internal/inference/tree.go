// internal/inference/tree.go
package inference

import (
	"encoding/json"
	"fmt"
)

// DecisionTree is a fitted classification tree exported as a flat node array.
// Node 0 is the root.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func decodeDecisionTree(payload []byte) (*DecisionTree, error) {
	var t DecisionTree
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, invalidModel("decode decision tree: %v", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// validate checks node references up front so Predict cannot index out of
// range or loop forever. Children must point forward in the array.
func (t *DecisionTree) validate() error {
	if len(t.Nodes) == 0 {
		return invalidModel("decision tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf {
			continue
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= NumFeatures {
			return invalidModel("node %d: feature index %d out of range", i, n.FeatureIdx)
		}
		for _, child := range []int{n.LeftChild, n.RightChild} {
			if child <= i || child >= len(t.Nodes) {
				return invalidModel("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Predict walks the tree for each sample.
func (t *DecisionTree) Predict(batch [][]float64) ([]int, error) {
	if err := checkBatch(batch); err != nil {
		return nil, err
	}

	labels := make([]int, len(batch))
	for i, sample := range batch {
		idx := 0
		for !t.Nodes[idx].IsLeaf {
			node := t.Nodes[idx]
			if sample[node.FeatureIdx] <= node.Threshold {
				idx = node.LeftChild
			} else {
				idx = node.RightChild
			}
		}
		labels[i] = t.Nodes[idx].ClassLabel
	}
	return labels, nil
}

// Close is a no-op; the tree holds no native resources.
func (t *DecisionTree) Close() error {
	return nil
}

func (t *DecisionTree) String() string {
	return fmt.Sprintf("decision_tree(nodes=%d)", len(t.Nodes))
}

var _ Engine = (*DecisionTree)(nil)
