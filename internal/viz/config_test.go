// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigs_FlexibleIDsAndValues(t *testing.T) {
	doc := `[
		{"id": 7, "name": "Sales", "type": "Bar", "data": [{"label": "Jan", "value": "12.5", "unit": "RM"}]},
		{"id": "abc", "name": "Outlets", "type": "map", "data": []},
		{"id": 9, "name": "Mix", "type": "pie", "data": [{"label": 2024, "value": null}],
		 "colors": {"palette": ["#000000"], "defaultColor": "#ffffff"}},
		{"id": 1.0, "name": "Float", "type": "line", "data": []},
		{"id": 2.5e1, "name": "Exponent", "type": "line", "data": []},
		{"id": "007", "name": "Padded", "type": "bar", "data": []}
	]`
	configs, err := ParseConfigs([]byte(doc))
	require.NoError(t, err)
	require.Len(t, configs, 6)

	assert.Equal(t, ID("7"), configs[0].ID)
	assert.Equal(t, ChartBar, configs[0].Kind())
	assert.Equal(t, 12.5, configs[0].Data[0].Value)
	assert.Equal(t, "RM", configs[0].Unit())

	assert.Equal(t, ID("abc"), configs[1].ID)
	assert.Equal(t, ChartMap, configs[1].Kind())

	assert.Equal(t, "2024", configs[2].Data[0].Label)
	assert.Zero(t, configs[2].Data[0].Value)
	require.NotNil(t, configs[2].Colors)
	assert.Equal(t, "#ffffff", configs[2].Colors.DefaultColor)

	assert.Equal(t, ID("1"), configs[3].ID)
	assert.Equal(t, ID("25"), configs[4].ID)
	assert.Equal(t, ID("007"), configs[5].ID)
}

func TestParseConfigs_RejectsBadValues(t *testing.T) {
	_, err := ParseConfigs([]byte(`[{"id":1,"type":"bar","data":[{"label":"x","value":"lots"}]}]`))
	assert.Error(t, err)

	_, err = ParseConfigs([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	_, err = ParseConfigs([]byte(`[{"id":{"nested":true},"type":"bar"}]`))
	assert.Error(t, err)
}

func TestID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]ID{"1", "abc", "007", "+5", "-3", "1.5"})
	require.NoError(t, err)
	assert.JSONEq(t, `[1, "abc", "007", "+5", -3, "1.5"]`, string(data))

	data, err = json.Marshal(Config{ID: "007", Name: "Padded", Type: ChartBar})
	require.NoError(t, err)

	var back Config
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ID("007"), back.ID)
}

func TestChartType_Label(t *testing.T) {
	assert.Equal(t, "Bar Chart", ChartType("bar").Label())
	assert.Equal(t, "Pie Chart", ChartType("PIE").Label())
	assert.Equal(t, "Line Chart", Config{Type: "line"}.Title())
}

func TestSampleConfigs(t *testing.T) {
	samples := SampleConfigs()
	require.Len(t, samples, 2)
	assert.Equal(t, ID("1"), samples[0].ID)
	assert.Equal(t, "Population by State", samples[0].Name)
	assert.Equal(t, ChartBar, samples[0].Kind())
	assert.Equal(t, ID("2"), samples[1].ID)
	assert.Equal(t, "Market Share 2025", samples[1].Name)
	assert.Equal(t, ChartPie, samples[1].Kind())
	assert.Equal(t, 100.0, samples[1].Total())
}
