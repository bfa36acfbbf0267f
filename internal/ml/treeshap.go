package ml

import (
	"fmt"
	"math"
)

// pathElem is one entry of the unique feature path walked by TreeSHAP.
type pathElem struct {
	feature      int
	zeroFraction float64
	oneFraction  float64
	weight       float64
}

// Contributions returns one SHAP value per feature for x in raw score
// (log-odds) units, along with the expected value they are relative to.
// The values satisfy sum(phi) == Margin(x) - expected.
func (e *Ensemble) Contributions(x []float64) ([]float64, float64, error) {
	if !e.hasCover {
		return nil, 0, ErrExplainerUnavailable
	}
	if err := e.checkInput(x); err != nil {
		return nil, 0, err
	}

	phi := make([]float64, e.numFeatures)
	for i := range e.trees {
		t := &e.trees[i]
		path := make([]pathElem, 0, len(t.nodes)+1)
		t.shap(x, phi, 0, path, 0, 1, 1, -1)
	}

	expected := e.ExpectedValue()
	if e.averageOutput {
		n := float64(len(e.trees))
		for i := range phi {
			phi[i] /= n
		}
	}

	for i, v := range phi {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, fmt.Errorf("non-finite contribution for feature %d", i)
		}
	}

	return phi, expected, nil
}

// shap is the path-dependent TreeSHAP recursion (Lundberg et al., 2018).
func (t *tree) shap(x, phi []float64, nodeIdx int, parentPath []pathElem, depth int,
	zeroFraction, oneFraction float64, feature int,
) {
	path := make([]pathElem, depth+1, depth+2)
	copy(path, parentPath[:depth])
	extendPath(path, depth, zeroFraction, oneFraction, feature)

	n := &t.nodes[nodeIdx]
	if n.feature < 0 {
		for i := 1; i <= depth; i++ {
			w := unwoundPathSum(path, depth, i)
			el := path[i]
			phi[el.feature] += w * (el.oneFraction - el.zeroFraction) * n.value
		}
		return
	}

	hot := n.next(x)
	cold := n.right
	if hot == n.right {
		cold = n.left
	}
	total := t.nodes[n.left].cover + t.nodes[n.right].cover
	hotZero := t.nodes[hot].cover / total
	coldZero := t.nodes[cold].cover / total

	incomingZero, incomingOne := 1.0, 1.0

	// A feature split on twice along the path is collapsed into one entry.
	k := 1
	for ; k <= depth; k++ {
		if path[k].feature == n.feature {
			break
		}
	}
	if k <= depth {
		incomingZero = path[k].zeroFraction
		incomingOne = path[k].oneFraction
		unwindPath(path, depth, k)
		path = path[:depth]
		depth--
	}

	t.shap(x, phi, hot, path, depth+1, hotZero*incomingZero, incomingOne, n.feature)
	t.shap(x, phi, cold, path, depth+1, coldZero*incomingZero, 0, n.feature)
}

func extendPath(path []pathElem, depth int, zeroFraction, oneFraction float64, feature int) {
	w := 0.0
	if depth == 0 {
		w = 1
	}
	path[depth] = pathElem{feature: feature, zeroFraction: zeroFraction, oneFraction: oneFraction, weight: w}
	for i := depth - 1; i >= 0; i-- {
		path[i+1].weight += oneFraction * path[i].weight * float64(i+1) / float64(depth+1)
		path[i].weight = zeroFraction * path[i].weight * float64(depth-i) / float64(depth+1)
	}
}

func unwindPath(path []pathElem, depth, index int) {
	one := path[index].oneFraction
	zero := path[index].zeroFraction
	next := path[depth].weight

	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].weight
			path[i].weight = next * float64(depth+1) / (float64(i+1) * one)
			next = tmp - path[i].weight*zero*float64(depth-i)/float64(depth+1)
		} else {
			path[i].weight = path[i].weight * float64(depth+1) / (zero * float64(depth-i))
		}
	}

	for i := index; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zeroFraction = path[i+1].zeroFraction
		path[i].oneFraction = path[i+1].oneFraction
	}
}

func unwoundPathSum(path []pathElem, depth, index int) float64 {
	one := path[index].oneFraction
	zero := path[index].zeroFraction
	next := path[depth].weight
	total := 0.0

	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := next * float64(depth+1) / (float64(i+1) * one)
			total += tmp
			next = path[i].weight - tmp*zero*float64(depth-i)/float64(depth+1)
		} else if zero != 0 {
			total += (path[i].weight / zero) / (float64(depth-i) / float64(depth+1))
		}
	}

	return total
}
