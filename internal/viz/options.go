// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

// =============================================================================
// PALETTES
// =============================================================================

var (
	// DefaultBarPalette colors the four largest bars, largest first.
	DefaultBarPalette = []string{"#3B060A", "#8A0000", "#C83F12", "#ffd500ff"}
	// DefaultBarColor colors every other bar.
	DefaultBarColor = "#ffd500ff"
	// LineColor is the line chart accent.
	LineColor = "#91cc75"
	// PiePalette is cycled over slices by index.
	PiePalette = []string{"#FE9321", "#6EFE3C", "#185D7A", "#C8DB2A", "#EF4687"}
)

// paletteSlots is how many ranks receive a palette color.
const paletteSlots = 4

// ErrUnsupportedChart is returned for chart types with no option builder.
var ErrUnsupportedChart = errors.New("unsupported chart type")

// =============================================================================
// OPTION DOCUMENT
// =============================================================================

// Option is a declarative chart description in the shape of an ECharts
// option object. Tooltip formatters are precomputed per data point because
// a JSON document cannot carry functions.
type Option struct {
	Color   []string  `json:"color,omitempty"`
	Tooltip *Tooltip  `json:"tooltip,omitempty"`
	Legend  *Legend   `json:"legend,omitempty"`
	XAxis   *Axis     `json:"xAxis,omitempty"`
	YAxis   *Axis     `json:"yAxis,omitempty"`
	Grid    *Grid     `json:"grid,omitempty"`
	Series  []Series  `json:"series"`
	Kind    ChartType `json:"-"`
	Unit    string    `json:"-"`
}

// Tooltip holds the trigger and one formatted label per data point.
type Tooltip struct {
	Trigger string   `json:"trigger"`
	Labels  []string `json:"labels"`
}

// Legend places the series legend.
type Legend struct {
	Orient string `json:"orient"`
	Left   string `json:"left"`
}

// Axis is a category or value axis.
type Axis struct {
	Type      string     `json:"type"`
	Data      []string   `json:"data,omitempty"`
	AxisLabel *AxisLabel `json:"axisLabel,omitempty"`
}

// AxisLabel configures tick labels. Formatter "grouped" means thousands
// separators.
type AxisLabel struct {
	Rotate      int    `json:"rotate,omitempty"`
	HideOverlap bool   `json:"hideOverlap,omitempty"`
	Formatter   string `json:"formatter,omitempty"`
}

// Grid is the plot area inset.
type Grid struct {
	Top          string `json:"top,omitempty"`
	Left         string `json:"left,omitempty"`
	Right        string `json:"right,omitempty"`
	Bottom       string `json:"bottom,omitempty"`
	ContainLabel bool   `json:"containLabel,omitempty"`
}

// Series is one plotted series.
type Series struct {
	Type      string        `json:"type"`
	Data      []SeriesPoint `json:"data"`
	Smooth    bool          `json:"smooth,omitempty"`
	Radius    string        `json:"radius,omitempty"`
	ItemStyle *ItemStyle    `json:"itemStyle,omitempty"`
	LineStyle *LineStyle    `json:"lineStyle,omitempty"`
	Emphasis  *Emphasis     `json:"emphasis,omitempty"`
}

// SeriesPoint is one value, with a name for pie slices.
type SeriesPoint struct {
	Name      string     `json:"name,omitempty"`
	Value     float64    `json:"value"`
	Percent   float64    `json:"percent,omitempty"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// ItemStyle colors a point or series.
type ItemStyle struct {
	Color         string  `json:"color,omitempty"`
	ShadowBlur    float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX float64 `json:"shadowOffsetX,omitempty"`
	ShadowColor   string  `json:"shadowColor,omitempty"`
}

// LineStyle colors a line.
type LineStyle struct {
	Color string `json:"color"`
}

// Emphasis is the hover style.
type Emphasis struct {
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// Categories returns the category axis labels, or pie slice names.
func (o *Option) Categories() []string {
	if o.XAxis != nil && len(o.XAxis.Data) > 0 {
		return o.XAxis.Data
	}
	if len(o.Series) == 0 {
		return nil
	}
	names := make([]string, len(o.Series[0].Data))
	for i, p := range o.Series[0].Data {
		names[i] = p.Name
	}
	return names
}

// PointColor returns the color used for point i of the first series.
func (o *Option) PointColor(i int) string {
	if len(o.Series) == 0 || i >= len(o.Series[0].Data) {
		return ""
	}
	s := o.Series[0]
	if st := s.Data[i].ItemStyle; st != nil && st.Color != "" {
		return st.Color
	}
	if s.ItemStyle != nil && s.ItemStyle.Color != "" {
		return s.ItemStyle.Color
	}
	if len(o.Color) > 0 {
		return o.Color[i%len(o.Color)]
	}
	return ""
}

// =============================================================================
// BUILDERS
// =============================================================================

// Builder turns a config into an option document.
type Builder func(Config) *Option

var builders = map[ChartType]Builder{
	ChartBar:  BarOption,
	ChartLine: LineOption,
	ChartPie:  PieOption,
}

// BuilderFor returns the builder for t (case-insensitive).
func BuilderFor(t ChartType) (Builder, error) {
	b, ok := builders[t.Normalize()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChart, string(t))
	}
	return b, nil
}

// BuildOption builds the option for cfg.
func BuildOption(cfg Config) (*Option, error) {
	b, err := BuilderFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	return b(cfg), nil
}

// BarColors assigns colors by value rank: the largest value gets palette[0],
// the next palette[1], and so on for the first four ranks; all others get
// the default color. Ties keep input order. The result is in input order.
func BarColors(cfg Config) []string {
	palette := DefaultBarPalette
	def := DefaultBarColor
	if cfg.Colors != nil {
		if len(cfg.Colors.Palette) > 0 {
			palette = cfg.Colors.Palette
		}
		if cfg.Colors.DefaultColor != "" {
			def = cfg.Colors.DefaultColor
		}
	}

	order := make([]int, len(cfg.Data))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cfg.Data[order[a]].Value > cfg.Data[order[b]].Value
	})

	colors := make([]string, len(cfg.Data))
	for rank, idx := range order {
		if rank < paletteSlots && rank < len(palette) {
			colors[idx] = palette[rank]
		} else {
			colors[idx] = def
		}
	}
	return colors
}

// BarOption builds a bar chart. Categories stay in input order; colors
// follow value rank.
func BarOption(cfg Config) *Option {
	colors := BarColors(cfg)
	unit := cfg.Unit()

	labels := make([]string, len(cfg.Data))
	tips := make([]string, len(cfg.Data))
	points := make([]SeriesPoint, len(cfg.Data))
	for i, d := range cfg.Data {
		labels[i] = d.Label
		tips[i] = fmt.Sprintf("%s: %s %s", d.Label, util.FormatGrouped(d.Value), unit)
		points[i] = SeriesPoint{Value: d.Value, ItemStyle: &ItemStyle{Color: colors[i]}}
	}

	return &Option{
		Kind:    ChartBar,
		Unit:    unit,
		Tooltip: &Tooltip{Trigger: "axis", Labels: tips},
		XAxis: &Axis{
			Type:      "category",
			Data:      labels,
			AxisLabel: &AxisLabel{Rotate: 45, HideOverlap: true},
		},
		YAxis:  &Axis{Type: "value", AxisLabel: &AxisLabel{Formatter: "grouped"}},
		Series: []Series{{Type: "bar", Data: points}},
		Grid:   &Grid{Top: "5%", Left: "20%", Right: "10%", Bottom: "5%", ContainLabel: true},
	}
}

// LineOption builds a smooth line chart in input order.
func LineOption(cfg Config) *Option {
	unit := cfg.Unit()

	labels := make([]string, len(cfg.Data))
	tips := make([]string, len(cfg.Data))
	points := make([]SeriesPoint, len(cfg.Data))
	for i, d := range cfg.Data {
		labels[i] = d.Label
		tips[i] = fmt.Sprintf("%s: %s %s", d.Label, unit, util.FormatGrouped(d.Value))
		points[i] = SeriesPoint{Value: d.Value}
	}

	return &Option{
		Kind:    ChartLine,
		Unit:    unit,
		Tooltip: &Tooltip{Trigger: "axis", Labels: tips},
		XAxis:   &Axis{Type: "category", Data: labels},
		YAxis:   &Axis{Type: "value", AxisLabel: &AxisLabel{Formatter: "grouped"}},
		Series: []Series{{
			Type:      "line",
			Data:      points,
			Smooth:    true,
			ItemStyle: &ItemStyle{Color: LineColor},
			LineStyle: &LineStyle{Color: LineColor},
		}},
		Grid: &Grid{Left: "15%", Right: "10%", Bottom: "15%"},
	}
}

// PieOption builds a pie chart. Slice percentages are 0 when the total is 0.
func PieOption(cfg Config) *Option {
	unit := cfg.Unit()
	total := cfg.Total()

	tips := make([]string, len(cfg.Data))
	points := make([]SeriesPoint, len(cfg.Data))
	for i, d := range cfg.Data {
		tips[i] = fmt.Sprintf("%s: %s %s (%s%%)", d.Label, util.FormatGrouped(d.Value), unit, util.FormatPercent(d.Value, total))
		points[i] = SeriesPoint{
			Name:      d.Label,
			Value:     d.Value,
			Percent:   util.Percent(d.Value, total),
			ItemStyle: &ItemStyle{Color: PiePalette[i%len(PiePalette)]},
		}
	}

	palette := make([]string, len(PiePalette))
	copy(palette, PiePalette)

	return &Option{
		Kind:    ChartPie,
		Unit:    unit,
		Color:   palette,
		Tooltip: &Tooltip{Trigger: "item", Labels: tips},
		Legend:  &Legend{Orient: "vertical", Left: "left"},
		Series: []Series{{
			Type:   "pie",
			Radius: "50%",
			Data:   points,
			Emphasis: &Emphasis{ItemStyle: &ItemStyle{
				ShadowBlur:  10,
				ShadowColor: "rgba(0, 0, 0, 0.5)",
			}},
		}},
	}
}
