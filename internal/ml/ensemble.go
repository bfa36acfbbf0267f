package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// kZeroThreshold matches the tolerance LightGBM uses for "zero" missing values.
const kZeroThreshold = 1e-35

type missingType uint8

const (
	missingNone missingType = iota
	missingZero
	missingNaN
)

// node is a flattened tree node. Leaves have feature == -1.
type node struct {
	feature     int
	threshold   float64
	defaultLeft bool
	missing     missingType
	left        int
	right       int
	value       float64
	cover       float64
}

type tree struct {
	nodes []node
}

// Ensemble is a binary gradient boosted tree model decoded from a LightGBM
// JSON model dump.
type Ensemble struct {
	featureNames  []string
	numFeatures   int
	trees         []tree
	sigmoid       float64
	averageOutput bool
	hasCover      bool
}

// dumpModel mirrors the subset of LightGBM's dump_model() output we use.
type dumpModel struct {
	Name                string     `json:"name"`
	Version             string     `json:"version"`
	NumClass            int        `json:"num_class"`
	NumTreePerIteration int        `json:"num_tree_per_iteration"`
	MaxFeatureIdx       int        `json:"max_feature_idx"`
	Objective           string     `json:"objective"`
	AverageOutput       bool       `json:"average_output"`
	FeatureNames        []string   `json:"feature_names"`
	TreeInfo            []dumpTree `json:"tree_info"`
}

type dumpTree struct {
	TreeIndex     int       `json:"tree_index"`
	NumLeaves     int       `json:"num_leaves"`
	Shrinkage     float64   `json:"shrinkage"`
	TreeStructure *dumpNode `json:"tree_structure"`
}

type dumpNode struct {
	SplitFeature   *int            `json:"split_feature"`
	Threshold      json.RawMessage `json:"threshold"`
	DecisionType   string          `json:"decision_type"`
	DefaultLeft    bool            `json:"default_left"`
	MissingType    string          `json:"missing_type"`
	InternalCount  float64         `json:"internal_count"`
	InternalWeight float64         `json:"internal_weight"`
	LeftChild      *dumpNode       `json:"left_child"`
	RightChild     *dumpNode       `json:"right_child"`
	LeafValue      *float64        `json:"leaf_value"`
	LeafCount      float64         `json:"leaf_count"`
	LeafWeight     float64         `json:"leaf_weight"`
}

// DecodeEnsemble parses a LightGBM JSON model dump. Only binary objectives
// with numerical splits are supported.
func DecodeEnsemble(data []byte) (*Ensemble, error) {
	var dm dumpModel
	if err := json.Unmarshal(data, &dm); err != nil {
		return nil, fmt.Errorf("decode model dump: %w", err)
	}

	sigmoid, err := parseObjective(dm.Objective)
	if err != nil {
		return nil, err
	}
	if dm.NumClass > 1 || dm.NumTreePerIteration > 1 {
		return nil, fmt.Errorf("expected a single-output binary model, got %d classes", dm.NumClass)
	}
	if len(dm.TreeInfo) == 0 {
		return nil, fmt.Errorf("model dump contains no trees")
	}

	e := &Ensemble{
		featureNames:  dm.FeatureNames,
		numFeatures:   dm.MaxFeatureIdx + 1,
		sigmoid:       sigmoid,
		averageOutput: dm.AverageOutput,
		hasCover:      true,
		trees:         make([]tree, 0, len(dm.TreeInfo)),
	}
	if e.numFeatures <= 0 {
		e.numFeatures = len(dm.FeatureNames)
	}
	if e.numFeatures <= 0 {
		return nil, fmt.Errorf("model dump declares no features")
	}

	for _, ti := range dm.TreeInfo {
		if ti.TreeStructure == nil {
			return nil, fmt.Errorf("tree %d has no structure", ti.TreeIndex)
		}
		t := tree{}
		if _, err := t.flatten(ti.TreeStructure, e.numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti.TreeIndex, err)
		}
		if len(t.nodes) > 1 && !t.coverComplete() {
			e.hasCover = false
		}
		e.trees = append(e.trees, t)
	}

	return e, nil
}

// parseObjective accepts "binary" or "binary sigmoid:<k>" and returns k.
func parseObjective(objective string) (float64, error) {
	fields := strings.Fields(objective)
	if len(fields) == 0 || fields[0] != "binary" {
		return 0, fmt.Errorf("unsupported objective %q", objective)
	}
	sigmoid := 1.0
	for _, f := range fields[1:] {
		if v, ok := strings.CutPrefix(f, "sigmoid:"); ok {
			s, err := strconv.ParseFloat(v, 64)
			if err != nil || s <= 0 {
				return 0, fmt.Errorf("invalid sigmoid parameter %q", v)
			}
			sigmoid = s
		}
	}
	return sigmoid, nil
}

// flatten appends n and its subtree to t.nodes and returns n's index.
func (t *tree) flatten(n *dumpNode, numFeatures int) (int, error) {
	idx := len(t.nodes)

	if n.SplitFeature == nil {
		if n.LeafValue == nil {
			return 0, fmt.Errorf("node is neither a split nor a leaf")
		}
		cover := n.LeafCount
		if cover == 0 {
			cover = n.LeafWeight
		}
		t.nodes = append(t.nodes, node{feature: -1, value: *n.LeafValue, cover: cover})
		return idx, nil
	}

	if n.DecisionType != "" && n.DecisionType != "<=" {
		return 0, fmt.Errorf("unsupported decision type %q", n.DecisionType)
	}
	if *n.SplitFeature < 0 || *n.SplitFeature >= numFeatures {
		return 0, fmt.Errorf("split feature %d out of range", *n.SplitFeature)
	}
	if n.LeftChild == nil || n.RightChild == nil {
		return 0, fmt.Errorf("split node missing a child")
	}

	threshold, err := parseThreshold(n.Threshold)
	if err != nil {
		return 0, err
	}

	cover := n.InternalCount
	if cover == 0 {
		cover = n.InternalWeight
	}

	t.nodes = append(t.nodes, node{
		feature:     *n.SplitFeature,
		threshold:   threshold,
		defaultLeft: n.DefaultLeft,
		missing:     parseMissingType(n.MissingType),
		cover:       cover,
	})

	left, err := t.flatten(n.LeftChild, numFeatures)
	if err != nil {
		return 0, err
	}
	right, err := t.flatten(n.RightChild, numFeatures)
	if err != nil {
		return 0, err
	}
	t.nodes[idx].left = left
	t.nodes[idx].right = right

	return idx, nil
}

func parseThreshold(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("split node missing threshold")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	// Very large thresholds are sometimes written as strings.
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("invalid threshold %s", string(raw))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numerical threshold %q", s)
	}
	return v, nil
}

func parseMissingType(s string) missingType {
	switch s {
	case "Zero":
		return missingZero
	case "NaN":
		return missingNaN
	default:
		return missingNone
	}
}

func (t *tree) coverComplete() bool {
	for _, n := range t.nodes {
		if n.cover <= 0 {
			return false
		}
	}
	return true
}

// next returns the child index taken by x at split node n.
func (n *node) next(x []float64) int {
	fval := x[n.feature]
	if n.missing != missingNaN && math.IsNaN(fval) {
		fval = 0
	}
	if (n.missing == missingZero && math.Abs(fval) <= kZeroThreshold) ||
		(n.missing == missingNaN && math.IsNaN(fval)) {
		if n.defaultLeft {
			return n.left
		}
		return n.right
	}
	if fval <= n.threshold {
		return n.left
	}
	return n.right
}

func (t *tree) leafValue(x []float64) float64 {
	i := 0
	for t.nodes[i].feature >= 0 {
		i = t.nodes[i].next(x)
	}
	return t.nodes[i].value
}

// expectedValue is the cover-weighted mean leaf value of the subtree at i.
func (t *tree) expectedValue(i int) float64 {
	n := t.nodes[i]
	if n.feature < 0 {
		return n.value
	}
	cl, cr := t.nodes[n.left].cover, t.nodes[n.right].cover
	if cl+cr <= 0 {
		cl, cr = 1, 1
	}
	return (cl*t.expectedValue(n.left) + cr*t.expectedValue(n.right)) / (cl + cr)
}

// NumFeatures implements Classifier.
func (e *Ensemble) NumFeatures() int {
	return e.numFeatures
}

// FeatureNames returns the names stored in the model dump, if any.
func (e *Ensemble) FeatureNames() []string {
	out := make([]string, len(e.featureNames))
	copy(out, e.featureNames)
	return out
}

// NumTrees returns the number of trees in the ensemble.
func (e *Ensemble) NumTrees() int {
	return len(e.trees)
}

func (e *Ensemble) checkInput(x []float64) error {
	if len(x) != e.numFeatures {
		return fmt.Errorf("%w: expected %d features, got %d", ErrPrediction, e.numFeatures, len(x))
	}
	for i, v := range x {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %d is infinite", ErrPrediction, i)
		}
	}
	return nil
}

// Margin returns the raw (log-odds) score for x.
func (e *Ensemble) Margin(x []float64) (float64, error) {
	if err := e.checkInput(x); err != nil {
		return 0, err
	}
	return e.margin(x), nil
}

func (e *Ensemble) margin(x []float64) float64 {
	sum := 0.0
	for i := range e.trees {
		sum += e.trees[i].leafValue(x)
	}
	if e.averageOutput {
		sum /= float64(len(e.trees))
	}
	return sum
}

// Predict implements Classifier.
func (e *Ensemble) Predict(x []float64) (Prediction, error) {
	if err := e.checkInput(x); err != nil {
		return Prediction{}, err
	}
	p := 1.0 / (1.0 + math.Exp(-e.sigmoid*e.margin(x)))
	label := 0
	if p > 0.5 {
		label = 1
	}
	return Prediction{Label: label, Probability: p}, nil
}

// FeatureImportances implements Classifier using split counts, the default
// importance type of LightGBM's scikit-learn wrapper.
func (e *Ensemble) FeatureImportances() []float64 {
	counts := make([]float64, e.numFeatures)
	for _, t := range e.trees {
		for _, n := range t.nodes {
			if n.feature >= 0 {
				counts[n.feature]++
			}
		}
	}
	return counts
}

// SupportsContributions reports whether every split carries the sample
// counts TreeSHAP needs.
func (e *Ensemble) SupportsContributions() bool {
	return e.hasCover
}

// ExpectedValue is the model's mean raw score over the training data.
func (e *Ensemble) ExpectedValue() float64 {
	sum := 0.0
	for i := range e.trees {
		sum += e.trees[i].expectedValue(0)
	}
	if e.averageOutput {
		sum /= float64(len(e.trees))
	}
	return sum
}
