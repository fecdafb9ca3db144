// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(values ...float64) []DataPoint {
	out := make([]DataPoint, len(values))
	for i, v := range values {
		out[i] = DataPoint{Label: string(rune('A' + i)), Value: v, Unit: "cups"}
	}
	return out
}

func TestBarColors_RankNotPosition(t *testing.T) {
	// Highest value sits in the middle; 5th and 6th ranks get the default.
	cfg := Config{Type: ChartBar, Data: points(30, 10, 90, 50, 5, 70)}
	colors := BarColors(cfg)

	assert.Equal(t, DefaultBarPalette[0], colors[2], "90 is rank 0")
	assert.Equal(t, DefaultBarPalette[1], colors[5], "70 is rank 1")
	assert.Equal(t, DefaultBarPalette[2], colors[3], "50 is rank 2")
	assert.Equal(t, DefaultBarPalette[3], colors[0], "30 is rank 3")
	assert.Equal(t, DefaultBarColor, colors[1], "10 is rank 4")
	assert.Equal(t, DefaultBarColor, colors[4], "5 is rank 5")
}

func TestBarColors_HighestAlwaysGetsFirstColor(t *testing.T) {
	base := []float64{1, 2, 3, 4, 5}
	for pos := range base {
		values := make([]float64, 0, len(base))
		for i, v := range base {
			if i != pos {
				values = append(values, v)
			}
		}
		// Put the maximum at every position in turn.
		values = append(values[:pos], append([]float64{100}, values[pos:]...)...)
		colors := BarColors(Config{Data: points(values...)})
		assert.Equal(t, DefaultBarPalette[0], colors[pos], "max at position %d", pos)
	}
}

func TestBarColors_Overrides(t *testing.T) {
	cfg := Config{
		Data:   points(1, 2, 3),
		Colors: &Colors{Palette: []string{"#111111"}, DefaultColor: "#eeeeee"},
	}
	colors := BarColors(cfg)
	assert.Equal(t, []string{"#eeeeee", "#eeeeee", "#111111"}, colors)

	colors = BarColors(Config{Data: points(1, 2, 3, 4, 5), Colors: &Colors{DefaultColor: "#abcdef"}})
	assert.Equal(t, DefaultBarPalette[0], colors[4])
	assert.Equal(t, "#abcdef", colors[0])
}

func TestBarColors_TiesKeepInputOrder(t *testing.T) {
	colors := BarColors(Config{Data: points(5, 5, 5)})
	assert.Equal(t, DefaultBarPalette[:3], colors)
}

func TestBarOption_KeepsAxisOrderAndFormatsTooltip(t *testing.T) {
	opt := BarOption(SampleConfigs()[0])
	assert.Equal(t, []string{"Selangor", "Johor", "Sabah"}, opt.XAxis.Data)
	assert.Equal(t, 45, opt.XAxis.AxisLabel.Rotate)
	assert.Equal(t, "Selangor: 6,000,000 people", opt.Tooltip.Labels[0])
	assert.Equal(t, "axis", opt.Tooltip.Trigger)
	require.Len(t, opt.Series, 1)
	assert.Equal(t, "bar", opt.Series[0].Type)
	assert.Equal(t, DefaultBarPalette[0], opt.PointColor(0))
}

func TestLineOption(t *testing.T) {
	cfg := Config{Type: ChartLine, Data: []DataPoint{
		{Label: "Mon", Value: 1200, Unit: "RM"},
		{Label: "Tue", Value: 900, Unit: "RM"},
	}}
	opt := LineOption(cfg)
	assert.True(t, opt.Series[0].Smooth)
	assert.Equal(t, LineColor, opt.Series[0].LineStyle.Color)
	assert.Equal(t, []string{"Mon", "Tue"}, opt.XAxis.Data)
	assert.Equal(t, 900.0, opt.Series[0].Data[1].Value)
	assert.Equal(t, "Mon: RM 1,200", opt.Tooltip.Labels[0])
	assert.Equal(t, LineColor, opt.PointColor(1))
}

func TestPieOption_PercentAndPalette(t *testing.T) {
	opt := PieOption(SampleConfigs()[1])
	assert.Equal(t, "Product A: 45 % (45.00%)", opt.Tooltip.Labels[0])
	assert.Equal(t, 45.0, opt.Series[0].Data[0].Percent)
	assert.Equal(t, "50%", opt.Series[0].Radius)
	assert.Equal(t, "vertical", opt.Legend.Orient)

	seven := PieOption(Config{Data: points(1, 1, 1, 1, 1, 1, 1)})
	assert.Equal(t, PiePalette[0], seven.PointColor(5), "palette cycles")
	assert.Equal(t, PiePalette[1], seven.PointColor(6))
}

func TestPieOption_AllZeroIsZeroPercent(t *testing.T) {
	opt := PieOption(Config{Data: points(0, 0, 0)})
	for i, p := range opt.Series[0].Data {
		assert.Zero(t, p.Percent, "slice %d", i)
		assert.Contains(t, opt.Tooltip.Labels[i], "(0%)")
	}
}

func TestBuildOption_DispatchAndUnsupported(t *testing.T) {
	for _, typ := range []ChartType{"bar", "LINE", "Pie"} {
		opt, err := BuildOption(Config{Type: typ, Data: points(1)})
		require.NoError(t, err, typ)
		assert.Equal(t, typ.Normalize(), opt.Kind)
	}

	_, err := BuildOption(Config{Type: "scatter"})
	assert.True(t, errors.Is(err, ErrUnsupportedChart))
	_, err = BuildOption(Config{Type: ChartMap})
	assert.True(t, errors.Is(err, ErrUnsupportedChart))
}

func TestOption_JSONShape(t *testing.T) {
	opt := BarOption(SampleConfigs()[0])
	data, err := json.Marshal(opt)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"tooltip", "xAxis", "yAxis", "series", "grid"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "Kind")
}
