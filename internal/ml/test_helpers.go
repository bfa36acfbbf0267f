package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SampleModelJSON is a small LightGBM dump over DefaultFeatures used by tests
// across packages. Three trees: a two-level tree on MAX_DELAY and LIMIT_BAL,
// a stump on AGE, and a constant leaf.
const SampleModelJSON = `{
  "name": "tree",
  "version": "v4",
  "num_class": 1,
  "num_tree_per_iteration": 1,
  "label_index": 0,
  "max_feature_idx": 6,
  "objective": "binary sigmoid:1",
  "average_output": false,
  "feature_names": ["LIMIT_BAL", "AGE", "AVG_BILL", "AVG_PAY_AMT", "TOTAL_PAY_AMT", "MAX_DELAY", "AVG_DELAY"],
  "tree_info": [
    {
      "tree_index": 0,
      "num_leaves": 4,
      "num_cat": 0,
      "shrinkage": 1,
      "tree_structure": {
        "split_index": 0, "split_feature": 5, "split_gain": 10.5, "threshold": 1.5,
        "decision_type": "<=", "default_left": true, "missing_type": "None",
        "internal_value": 0, "internal_weight": 25, "internal_count": 100,
        "left_child": {
          "split_index": 1, "split_feature": 0, "split_gain": 4.2, "threshold": 50000,
          "decision_type": "<=", "default_left": true, "missing_type": "None",
          "internal_value": 0, "internal_weight": 15, "internal_count": 60,
          "left_child": {"leaf_index": 0, "leaf_value": 0.4, "leaf_weight": 5, "leaf_count": 20},
          "right_child": {"leaf_index": 1, "leaf_value": -0.8, "leaf_weight": 10, "leaf_count": 40}
        },
        "right_child": {
          "split_index": 2, "split_feature": 5, "split_gain": 2.1, "threshold": 3.5,
          "decision_type": "<=", "default_left": true, "missing_type": "None",
          "internal_value": 0, "internal_weight": 10, "internal_count": 40,
          "left_child": {"leaf_index": 2, "leaf_value": 0.3, "leaf_weight": 2.5, "leaf_count": 10},
          "right_child": {"leaf_index": 3, "leaf_value": 1.2, "leaf_weight": 7.5, "leaf_count": 30}
        }
      }
    },
    {
      "tree_index": 1,
      "num_leaves": 2,
      "num_cat": 0,
      "shrinkage": 0.1,
      "tree_structure": {
        "split_index": 0, "split_feature": 1, "split_gain": 1.3, "threshold": 30,
        "decision_type": "<=", "default_left": true, "missing_type": "None",
        "internal_value": 0, "internal_weight": 25, "internal_count": 100,
        "left_child": {"leaf_index": 0, "leaf_value": 0.2, "leaf_weight": 10, "leaf_count": 40},
        "right_child": {"leaf_index": 1, "leaf_value": -0.1, "leaf_weight": 15, "leaf_count": 60}
      }
    },
    {
      "tree_index": 2,
      "num_leaves": 1,
      "num_cat": 0,
      "shrinkage": 1,
      "tree_structure": {"leaf_value": -0.5}
    }
  ]
}`

// Sample inputs over DefaultFeatures and their reference outputs for
// SampleModelJSON, computed independently with the reference TreeSHAP
// recursion.
var (
	SampleLowRisk  = []float64{200000, 45, 5000, 3000, 18000, 0, 0}
	SampleMidRisk  = []float64{20000, 45, 1, 1, 1, 2, 1}
	SampleHighRisk = []float64{20000, 25, 15000, 500, 3000, 5, 3}

	SampleExpectedValue = -0.33
)

// WriteSampleArtifacts writes SampleModelJSON and DefaultFeatures into dir
// using the given file names.
func WriteSampleArtifacts(dir string, names ArtifactNames) error {
	if err := os.WriteFile(filepath.Join(dir, names.Model), []byte(SampleModelJSON), 0o600); err != nil {
		return err
	}
	data, err := json.Marshal(DefaultFeatures)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, names.Features), data, 0o600)
}

// WriteCorruptArtifacts writes a model file that is not valid JSON next to
// a valid DefaultFeatures list.
func WriteCorruptArtifacts(dir string, names ArtifactNames) error {
	if err := WriteSampleArtifacts(dir, names); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, names.Model), []byte("{not json"), 0o600)
}
