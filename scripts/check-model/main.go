package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"

	"credit-risk/internal/common"
	"credit-risk/internal/form"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

func main() {
	var (
		dir          = flag.String("dir", common.DefaultArtifactDir, "Artifact directory")
		modelFile    = flag.String("model", common.DefaultModelFile, "Model file name")
		featuresFile = flag.String("features", common.DefaultFeaturesFile, "Feature list file name")
	)
	flag.Parse()

	fmt.Println("🧪 Checking credit model artifacts")
	fmt.Println("==================================")

	absDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatalf("❌ Failed to get absolute path: %v", err)
	}
	fmt.Printf("📁 Artifact directory: %s\n", absDir)

	// Test 1: Load artifacts
	fmt.Println("\n🔧 Test 1: Loading artifacts...")
	arts := ml.LoadArtifacts(absDir, ml.ArtifactNames{Model: *modelFile, Features: *featuresFile})
	if !arts.Loaded {
		log.Fatalf("❌ Artifacts did not load: %v", arts.Err)
	}
	fmt.Printf("✅ Loaded %d features: %v\n", len(arts.Features), arts.Features)

	ranked := ml.RankImportances(arts.Features, arts.Model.FeatureImportances())
	fmt.Println("  📊 Split importances:")
	for _, imp := range ranked {
		fmt.Printf("    %-16s %.0f\n", imp.Feature, imp.Score)
	}

	if e, ok := arts.Model.(*ml.Ensemble); ok {
		margins = e
	}

	provider := ml.SelectProvider(common.ExplainerTreeSHAP, arts.Model, arts.Features)
	fmt.Printf("  🧠 Explainer: %s\n", provider.Name())

	assessor := risk.NewAssessor(risk.NewContext(arts, provider, risk.DefaultLabels), nil)
	specs := form.Build(arts.Features, risk.DefaultLabels)

	// Test 2: Default form values
	fmt.Println("\n🔧 Test 2: Assessing the default form values...")
	report(assessor, form.Defaults(specs))

	// Test 3: Sweep every field across its range
	fmt.Println("\n🔧 Test 3: Sweeping each field with the others at defaults...")
	tiers := map[risk.Tier]int{}
	for i, spec := range specs {
		for _, v := range sweepValues(spec) {
			x := form.Defaults(specs)
			x[i] = v
			a, err := assessor.Assess(context.Background(), x)
			if err != nil {
				fmt.Printf("    ❌ %s=%g: %v\n", spec.Feature, v, err)
				continue
			}
			tiers[a.Tier]++
			checkAdditivity(a)
		}
	}
	fmt.Printf("  📊 Tier counts: Low=%d Medium=%d High=%d\n", tiers[risk.Low], tiers[risk.Medium], tiers[risk.High])

	// Test 4: Edge cases
	fmt.Println("\n🔧 Test 4: Testing edge cases...")
	edgeCases := []struct {
		name     string
		features []float64
	}{
		{"Empty features", []float64{}},
		{"Too few features", []float64{0.5}},
		{"Infinite value", append(form.Defaults(specs)[:len(specs)-1], math.Inf(1))},
	}
	for i, tc := range edgeCases {
		fmt.Printf("  Test 4.%d: %s\n", i+1, tc.name)
		if _, err := assessor.Assess(context.Background(), tc.features); err != nil {
			fmt.Printf("    ✅ Rejected: %v\n", err)
		} else {
			fmt.Println("    ⚠️  Accepted unexpectedly")
		}
	}

	fmt.Println("\n🎉 All checks completed!")
}

func report(assessor *risk.Assessor, x form.Vector) {
	a, err := assessor.Assess(context.Background(), x)
	if err != nil {
		fmt.Printf("    ❌ Assessment failed: %v\n", err)
		return
	}
	fmt.Printf("    📈 Default probability: %.4f (%s)\n", a.Prediction.Probability, a.Tier)
	fmt.Printf("    💡 %s\n", a.Message)
	checkAdditivity(a)
}

// margins is set when the model exposes its raw score.
var margins interface {
	Margin(x []float64) (float64, error)
}

// checkAdditivity verifies that signed attributions plus the base value add
// up to the raw model score.
func checkAdditivity(a *risk.Assessment) {
	if a.Explanation.Kind != risk.KindSigned || margins == nil {
		return
	}
	margin, err := margins.Margin(a.Input)
	if err != nil {
		return
	}
	sum := a.Explanation.BaseValue
	for _, b := range a.Explanation.Bars {
		sum += b.Value
	}
	if math.Abs(sum-margin) > 1e-6 {
		fmt.Printf("    ⚠️  Attributions sum to %.6f, margin is %.6f\n", sum, margin)
	}
}

func sweepValues(spec form.FieldSpec) []float64 {
	lo, hi := spec.Default, spec.Default
	if spec.Min != nil {
		lo = *spec.Min
	}
	switch {
	case spec.Max != nil:
		hi = *spec.Max
	case spec.Step > 0:
		hi = lo + 100*spec.Step
	default:
		hi = lo + 10
	}

	const steps = 10
	out := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		v := lo + (hi-lo)*float64(i)/steps
		if spec.Integer {
			v = math.Round(v)
		}
		out = append(out, v)
	}
	return out
}
