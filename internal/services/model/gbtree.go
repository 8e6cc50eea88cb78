package model

import (
	"fmt"
	"math"

	"mismatch-predictor/internal/models"
)

// TreeNode is one node of a boosted tree in XGBoost dump layout.
// Split nodes set Split, SplitCondition, Yes and No; leaves set Leaf.
type TreeNode struct {
	NodeID         int      `json:"nodeid"`
	Split          *int     `json:"split,omitempty"`
	SplitCondition float64  `json:"split_condition,omitempty"`
	Yes            *int     `json:"yes,omitempty"`
	No             *int     `json:"no,omitempty"`
	Missing        *int     `json:"missing,omitempty"`
	Leaf           *float64 `json:"leaf,omitempty"`
}

// Tree is a single regression tree.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// GBTreeParams are the parameters of a binary:logistic tree ensemble.
type GBTreeParams struct {
	Version      string   `json:"version,omitempty"`
	FeatureNames []string `json:"feature_names"`
	BaseScore    *float64 `json:"base_score,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
	Trees        []Tree   `json:"trees"`
}

// node is the flattened, index-addressed form of TreeNode.
type node struct {
	leaf      bool
	value     float64
	feature   int
	condition float64
	yes       int
	no        int
	missing   int
}

// GBTree is a gradient-boosted tree ensemble classifier.
type GBTree struct {
	featureNames []string
	baseMargin   float64
	threshold    float64
	trees        [][]node
}

// NewGBTree builds an ensemble and checks every tree's structure.
func NewGBTree(p GBTreeParams) (*GBTree, error) {
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("gbtree: no trees")
	}

	baseScore := 0.5
	if p.BaseScore != nil {
		baseScore = *p.BaseScore
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, fmt.Errorf("gbtree: base_score %v outside (0, 1)", baseScore)
	}

	threshold, err := resolveThreshold(p.Threshold)
	if err != nil {
		return nil, fmt.Errorf("gbtree: %w", err)
	}

	width := len(p.FeatureNames)
	if width == 0 {
		return nil, fmt.Errorf("gbtree: no feature_names")
	}

	g := &GBTree{
		featureNames: cloneNames(p.FeatureNames),
		baseMargin:   math.Log(baseScore / (1 - baseScore)),
		threshold:    threshold,
		trees:        make([][]node, len(p.Trees)),
	}

	for i, t := range p.Trees {
		nodes, err := buildTree(t, width)
		if err != nil {
			return nil, fmt.Errorf("gbtree: tree %d: %w", i, err)
		}
		g.trees[i] = nodes
	}

	return g, nil
}

func buildTree(t Tree, width int) ([]node, error) {
	count := len(t.Nodes)
	if count == 0 {
		return nil, fmt.Errorf("no nodes")
	}

	nodes := make([]node, count)
	seen := make([]bool, count)

	for _, tn := range t.Nodes {
		if tn.NodeID < 0 || tn.NodeID >= count {
			return nil, fmt.Errorf("nodeid %d out of range [0, %d)", tn.NodeID, count)
		}
		if seen[tn.NodeID] {
			return nil, fmt.Errorf("duplicate nodeid %d", tn.NodeID)
		}
		seen[tn.NodeID] = true

		if tn.Leaf != nil {
			if tn.Split != nil {
				return nil, fmt.Errorf("node %d is both leaf and split", tn.NodeID)
			}
			nodes[tn.NodeID] = node{leaf: true, value: *tn.Leaf}
			continue
		}

		if tn.Split == nil || tn.Yes == nil || tn.No == nil {
			return nil, fmt.Errorf("node %d needs either leaf or split, yes and no", tn.NodeID)
		}
		if *tn.Split < 0 || *tn.Split >= width {
			return nil, fmt.Errorf("node %d splits on feature %d, model has %d features", tn.NodeID, *tn.Split, width)
		}

		n := node{
			feature:   *tn.Split,
			condition: tn.SplitCondition,
			yes:       *tn.Yes,
			no:        *tn.No,
			missing:   *tn.Yes,
		}
		if tn.Missing != nil {
			n.missing = *tn.Missing
		}
		for _, child := range []int{n.yes, n.no, n.missing} {
			if child < 0 || child >= count || child == tn.NodeID {
				return nil, fmt.Errorf("node %d has invalid child %d", tn.NodeID, child)
			}
		}
		nodes[tn.NodeID] = n
	}

	if err := checkAcyclic(nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

// checkAcyclic walks from the root and fails on any revisited node.
func checkAcyclic(nodes []node) error {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(nodes))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case active:
			return fmt.Errorf("cycle through node %d", i)
		case done:
			return nil
		}
		state[i] = active
		n := nodes[i]
		if !n.leaf {
			for _, child := range []int{n.yes, n.no, n.missing} {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		state[i] = done
		return nil
	}

	return visit(0)
}

// Predict sums the leaf values of every tree and applies the logistic link.
func (g *GBTree) Predict(features []float64) (models.Prediction, error) {
	if err := checkWidth(len(features), len(g.featureNames), "gbtree input"); err != nil {
		return models.Prediction{}, err
	}

	margin := g.baseMargin
	for _, t := range g.trees {
		margin += leafValue(t, features)
	}

	p := sigmoid(margin)
	return classify(p, g.threshold), nil
}

func leafValue(nodes []node, features []float64) float64 {
	i := 0
	for !nodes[i].leaf {
		n := nodes[i]
		v := features[n.feature]
		switch {
		case math.IsNaN(v):
			i = n.missing
		case v < n.condition:
			i = n.yes
		default:
			i = n.no
		}
	}
	return nodes[i].value
}

// FeatureNames returns the training columns.
func (g *GBTree) FeatureNames() []string {
	return cloneNames(g.featureNames)
}

// Format returns FormatGBTree.
func (g *GBTree) Format() string {
	return FormatGBTree
}

// TreeCount returns the number of trees in the ensemble.
func (g *GBTree) TreeCount() int {
	return len(g.trees)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func classify(p, threshold float64) models.Prediction {
	class := 0
	if p > threshold {
		class = 1
	}
	return models.Prediction{Class: class, Probability: &p}
}

func resolveThreshold(t *float64) (float64, error) {
	if t == nil {
		return DefaultThreshold, nil
	}
	if *t <= 0 || *t >= 1 {
		return 0, fmt.Errorf("threshold %v outside (0, 1)", *t)
	}
	return *t, nil
}
