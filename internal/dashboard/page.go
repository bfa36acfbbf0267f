package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"net/url"

	"credit-risk/internal/form"
	"credit-risk/internal/risk"
)

type fieldView struct {
	Spec  form.FieldSpec
	Value string
}

type pageData struct {
	Fields       []fieldView
	Loaded       bool
	Load         risk.LoadState
	ModelFile    string
	FeaturesFile string
	Error        string
	Result       *resultView
}

type resultView struct {
	*risk.Assessment
	Chart *chart
}

// newPage fills the form with values, or with defaults for fields values
// does not carry.
func (s *Server) newPage(values url.Values) *pageData {
	state := s.assessor.Context().LoadState()
	page := &pageData{
		Fields:       make([]fieldView, len(s.specs)),
		Loaded:       state.Loaded,
		Load:         state,
		ModelFile:    s.names.Model,
		FeaturesFile: s.names.Features,
	}
	for i, spec := range s.specs {
		v := values.Get(spec.Feature)
		if v == "" {
			v = spec.DefaultAttr()
		}
		page.Fields[i] = fieldView{Spec: spec, Value: v}
	}
	return page
}

func (p *pageData) withError(msg string) *pageData {
	p.Error = msg
	return p
}

func newResultView(a *risk.Assessment) *resultView {
	rv := &resultView{Assessment: a}
	if a.Explanation.Kind == risk.KindSigned {
		rv.Chart = newChart(a.Explanation.Bars)
	}
	return rv
}

// Chart geometry in SVG user units.
const (
	chartWidth     = 720.0
	chartLabelEdge = 250.0
	chartPlotLeft  = 300.0
	chartPlotRight = 660.0
	chartRowHeight = 30.0
	chartTop       = 36.0
	chartBarHeight = 18.0
)

type chartRow struct {
	Label    string
	Text     string
	Color    string
	Anchor   string
	Y        float64
	TextY    float64
	BarX     float64
	BarWidth float64
	TextX    float64
}

type chart struct {
	Width   float64
	Height  float64
	AxisX   float64
	AxisY1  float64
	AxisY2  float64
	LabelX  float64
	TitleX  float64
	XTitleY float64
	Rows    []chartRow
}

// newChart lays out one horizontal bar per factor, in the given order.
// Bars that raise the risk are red, the rest green.
func newChart(bars []risk.Factor) *chart {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	scale := func(v float64) float64 {
		return chartPlotLeft + (v-lo)/span*(chartPlotRight-chartPlotLeft)
	}

	c := &chart{
		Width:  chartWidth,
		Height: chartTop + float64(len(bars))*chartRowHeight + 40,
		AxisX:  scale(0),
		AxisY1: chartTop - 6,
		AxisY2: chartTop + float64(len(bars))*chartRowHeight,
		LabelX: chartLabelEdge,
		TitleX: chartWidth / 2,
		Rows:   make([]chartRow, len(bars)),
	}
	c.XTitleY = c.AxisY2 + 28

	for i, b := range bars {
		y := chartTop + float64(i)*chartRowHeight
		x0, x1 := scale(math.Min(0, b.Value)), scale(math.Max(0, b.Value))
		row := chartRow{
			Label:    b.Label,
			Text:     fmt.Sprintf("%.3f", b.Value),
			Color:    "#28a745",
			Anchor:   "end",
			Y:        y + (chartRowHeight-chartBarHeight)/2,
			TextY:    y + chartRowHeight/2 + 4,
			BarX:     x0,
			BarWidth: x1 - x0,
			TextX:    x0 - 4,
		}
		if b.Value > 0 {
			row.Color = "#dc3545"
			row.Anchor = "start"
			row.TextX = x1 + 4
		}
		c.Rows[i] = row
	}
	return c
}

var pageFuncs = template.FuncMap{
	"percent": func(p float64) string {
		return fmt.Sprintf("%.2f%%", p*100)
	},
	"signed": func(v float64) string {
		return fmt.Sprintf("%+.3f", v)
	},
	"score": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
}
