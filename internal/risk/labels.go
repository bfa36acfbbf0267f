package risk

// Labels maps feature identifiers to display labels.
type Labels map[string]string

// DefaultLabels covers the features of the bundled credit model.
var DefaultLabels = Labels{
	"LIMIT_BAL":     "Credit Limit (TL)",
	"AGE":           "Age",
	"AVG_BILL":      "Average Bill Amount (TL)",
	"AVG_PAY_AMT":   "Average Payment Amount (TL)",
	"TOTAL_PAY_AMT": "Total Payment Amount (TL)",
	"MAX_DELAY":     "Maximum Payment Delay (Months)",
	"AVG_DELAY":     "Average Payment Delay (Months)",
}

// For returns the display label for feature. Features without an entry are
// shown by their raw identifier.
func (l Labels) For(feature string) string {
	if label, ok := l[feature]; ok {
		return label
	}
	return feature
}
