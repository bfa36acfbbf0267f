package termui

import (
	"fmt"
	"math"
	"strings"

	"credit-risk/internal/form"
	"credit-risk/internal/risk"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

// Disclaimer closes every rendered result.
const Disclaimer = "This application is for educational purposes only. Real credit decisions require a professional evaluation."

func alertBox(sev risk.Severity) lipgloss.Style {
	switch sev {
	case risk.SeveritySuccess:
		return Styles.SuccessBox
	case risk.SeverityWarning:
		return Styles.WarningBox
	default:
		return Styles.ErrorBox
	}
}

// Assessment renders a result the way the web page does: probability and
// tier message first, then the explanation.
func Assessment(a *risk.Assessment) string {
	var b strings.Builder

	b.WriteString(Styles.Title.Render("Prediction Result"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", Styles.Muted.Render("Default Probability:"), Styles.Bold.Render(fmt.Sprintf("%.2f%%", a.Prediction.Probability*100)))
	b.WriteString(alertBox(a.Severity).Render(a.Message))
	b.WriteString("\n\n")

	b.WriteString(Styles.Title.Render("Model Explanation"))
	b.WriteString("\n")
	b.WriteString(Explanation(a.Explanation))
	b.WriteString("\n")
	b.WriteString(Styles.Muted.Render(Disclaimer))
	b.WriteString("\n")

	return b.String()
}

// Explanation renders the explanation section alone.
func Explanation(ex risk.Explanation) string {
	var b strings.Builder

	switch ex.Kind {
	case risk.KindSigned:
		b.WriteString("Factors affecting this prediction:\n\n")
		b.WriteString(Styles.Heading.Render("Factors Increasing Risk"))
		b.WriteString("\n")
		writeFactors(&b, ex.Positive, Styles.Error, "%+.3f")
		b.WriteString(Styles.Heading.Render("Factors Decreasing Risk"))
		b.WriteString("\n")
		writeFactors(&b, ex.Negative, Styles.Success, "%+.3f")
		b.WriteString("\n")
		b.WriteString(Bars(ex.Bars))
	case risk.KindImportance:
		b.WriteString(Styles.WarningBox.Render(ex.Message))
		b.WriteString("\n")
		b.WriteString(Styles.Heading.Render("Model Feature Importances"))
		b.WriteString("\n")
		writeFactors(&b, ex.Importance, Styles.Bold, "%.3f")
	default:
		b.WriteString(Styles.WarningBox.Render(ex.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func writeFactors(b *strings.Builder, factors []risk.Factor, style lipgloss.Style, format string) {
	if len(factors) == 0 {
		b.WriteString(Styles.Muted.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	for _, f := range factors {
		fmt.Fprintf(b, "  • %s: %s\n", f.Label, style.Render(fmt.Sprintf(format, f.Value)))
	}
}

// Bars draws a horizontal bar per factor around a shared zero column. Bars
// that raise the risk extend right in red, the others left in green.
func Bars(bars []risk.Factor) string {
	if len(bars) == 0 {
		return ""
	}

	maxAbs, labelWidth := 0.0, 0
	for _, f := range bars {
		maxAbs = math.Max(maxAbs, math.Abs(f.Value))
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	var b strings.Builder
	for _, f := range bars {
		n := int(math.Round(math.Abs(f.Value) / maxAbs * barWidth))
		left, right := strings.Repeat(" ", barWidth), strings.Repeat(" ", barWidth)
		switch {
		case f.Value > 0:
			right = Styles.Error.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barWidth-n)
		case f.Value < 0:
			left = strings.Repeat(" ", barWidth-n) + Styles.Success.Render(strings.Repeat("█", n))
		}
		label := f.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(f.Label))
		fmt.Fprintf(&b, "%s %s│%s %+.3f\n", label, left, right, f.Value)
	}
	return b.String()
}

// Fields lists the input fields with their bounds.
func Fields(specs []form.FieldSpec, state risk.LoadState) string {
	var b strings.Builder

	b.WriteString(Styles.Title.Render("Customer Information Fields"))
	b.WriteString("\n\n")
	for _, s := range specs {
		fmt.Fprintf(&b, "  %-16s %s\n", s.Feature, s.Label)
		fmt.Fprintf(&b, "  %-16s %s\n", "", Styles.Muted.Render(fmt.Sprintf("%s, default %s", s.Describe(), s.DefaultAttr())))
	}
	switch {
	case state.Loaded:
	case state.Corrupt:
		b.WriteString("\n")
		b.WriteString(Styles.ErrorBox.Render(state.Notice() + "\nNo prediction can be made until valid files are in place."))
		b.WriteString("\n")
	default:
		b.WriteString("\n")
		b.WriteString(Styles.ErrorBox.Render("Model files not found. These are the default fields and no prediction can be made."))
		b.WriteString("\n")
	}
	return b.String()
}

// Error renders a failure message.
func Error(msg string) string {
	return Styles.ErrorBox.Render(msg)
}
