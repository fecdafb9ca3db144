// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

// Format is an export file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts png, svg or xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatPNG, FormatSVG, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want png, svg or xlsx)", s)
}

// Export writes cfg to w. Width and height apply to images only.
func Export(w io.Writer, cfg Config, format Format, width, height int) error {
	switch format {
	case FormatPNG:
		return RenderImage(w, cfg, chart.PNG, width, height)
	case FormatSVG:
		return RenderImage(w, cfg, chart.SVG, width, height)
	case FormatXLSX:
		return WriteXLSX(w, cfg)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// =============================================================================
// IMAGES
// =============================================================================

// RenderImage draws cfg with go-chart using the same colors as the panel.
func RenderImage(w io.Writer, cfg Config, rp chart.RendererProvider, width, height int) error {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 640
	}
	if len(cfg.Data) == 0 {
		return fmt.Errorf("visualization %s has no data", cfg.ID)
	}

	var r interface {
		Render(chart.RendererProvider, io.Writer) error
	}
	switch cfg.Kind() {
	case ChartBar:
		r = barChart(cfg, width, height)
	case ChartLine:
		r = lineChart(cfg, width, height)
	case ChartPie:
		r = pieChart(cfg, width, height)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedChart, string(cfg.Type))
	}
	if err := r.Render(rp, w); err != nil {
		return fmt.Errorf("render %s chart: %w", cfg.Kind(), err)
	}
	return nil
}

func groupedFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return util.FormatGrouped(f)
	}
	return fmt.Sprint(v)
}

func barChart(cfg Config, width, height int) *chart.BarChart {
	colors := BarColors(cfg)
	bars := make([]chart.Value, len(cfg.Data))
	for i, d := range cfg.Data {
		c := HexColor(colors[i])
		bars[i] = chart.Value{
			Label: d.Label,
			Value: d.Value,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}
	barWidth := (width - 160) / (2 * len(bars))
	if barWidth > 80 {
		barWidth = 80
	}
	if barWidth < 8 {
		barWidth = 8
	}
	return &chart.BarChart{
		Title:      cfg.Name,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis:      chart.YAxis{Name: cfg.Unit(), ValueFormatter: groupedFormatter},
		Bars:       bars,
	}
}

func lineChart(cfg Config, width, height int) *chart.Chart {
	xs := make([]float64, len(cfg.Data))
	ys := make([]float64, len(cfg.Data))
	ticks := make([]chart.Tick, len(cfg.Data))
	for i, d := range cfg.Data {
		xs[i] = float64(i)
		ys[i] = d.Value
		ticks[i] = chart.Tick{Value: float64(i), Label: d.Label}
	}
	accent := HexColor(LineColor)
	return &chart.Chart{
		Title:      cfg.Name,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis:      chart.YAxis{Name: cfg.Unit(), ValueFormatter: groupedFormatter},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    cfg.Name,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: accent, StrokeWidth: 3, DotColor: accent, DotWidth: 4},
			},
		},
	}
}

func pieChart(cfg Config, width, height int) *chart.PieChart {
	total := cfg.Total()
	values := make([]chart.Value, len(cfg.Data))
	for i, d := range cfg.Data {
		c := HexColor(PiePalette[i%len(PiePalette)])
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%s%%)", d.Label, util.FormatPercent(d.Value, total)),
			Value: d.Value,
			Style: chart.Style{FillColor: c},
		}
	}
	return &chart.PieChart{
		Title:  cfg.Name,
		Width:  width,
		Height: height,
		Values: values,
	}
}

// HexColor parses #RGB, #RRGGBB or #RRGGBBAA. Invalid input yields opaque
// black.
func HexColor(s string) drawing.Color {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return drawing.Color{A: 255}
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{A: 255}
	}
	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// =============================================================================
// SPREADSHEET
// =============================================================================

// WriteXLSX writes the data as a table with a native chart next to it.
func WriteXLSX(w io.Writer, cfg Config) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(cfg.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := []interface{}{"Label", "Value", "Unit", "Share (%)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	total := cfg.Total()
	for i, d := range cfg.Data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		share, _ := strconv.ParseFloat(util.FormatPercent(d.Value, total), 64)
		row := []interface{}{d.Label, d.Value, d.Unit, share}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(cfg.Data) > 0 {
		if err := addSheetChart(f, sheet, cfg); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addSheetChart(f *excelize.File, sheet string, cfg Config) error {
	var kind excelize.ChartType
	switch cfg.Kind() {
	case ChartBar:
		kind = excelize.Col
	case ChartLine:
		kind = excelize.Line
	case ChartPie:
		kind = excelize.Pie
	default:
		return nil
	}
	last := len(cfg.Data) + 1
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	err := f.AddChart(sheet, "F2", &excelize.Chart{
		Type: kind,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", quoted),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", quoted, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", quoted, last),
		}},
		Title: []excelize.RichTextRun{{Text: cfg.Name}},
	})
	if err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}

// SheetName makes name a legal worksheet name: at most 31 characters and
// none of []:*?/\.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Data"
	}
	runes := []rune(name)
	if len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
