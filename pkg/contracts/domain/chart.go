package domain

// ChartType identifies how a chart specification should be drawn
type ChartType string

const (
	ChartTypeBar            ChartType = "bar"
	ChartTypeLine           ChartType = "line"
	ChartTypeScatter        ChartType = "scatter"
	ChartTypeBox            ChartType = "box"
	ChartTypeViolin         ChartType = "violin"
	ChartTypeHistogram      ChartType = "histogram"
	ChartTypeHeatmap        ChartType = "heatmap"
	ChartTypeClusterScatter ChartType = "cluster_scatter"
)

// ChartPoint is one mark. X is a category label, a date string or a number.
// A nil Y is a gap.
type ChartPoint struct {
	X     interface{} `json:"x"`
	Y     *float64    `json:"y"`
	Label string      `json:"label,omitempty"`
}

// BoxStats is a five-number summary with outliers beyond 1.5 IQR
type BoxStats struct {
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers,omitempty"`
}

// ChartSeries is a named set of points
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
	Box    *BoxStats    `json:"box,omitempty"`
}

// ChartSpec is a renderer-agnostic description of one chart
type ChartSpec struct {
	ID     string                 `json:"id"`
	Type   ChartType              `json:"type"`
	Title  string                 `json:"title"`
	XField string                 `json:"x_field,omitempty"`
	YField string                 `json:"y_field,omitempty"`
	Series []ChartSeries          `json:"series"`
	Matrix *CorrelationMatrix     `json:"matrix,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (c ChartSpec) Empty() bool {
	if c.Matrix != nil {
		return len(c.Matrix.Fields) == 0
	}
	for _, s := range c.Series {
		if len(s.Points) > 0 || s.Box != nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to v for use as a ChartPoint Y.
func Float(v float64) *float64 { return &v }
