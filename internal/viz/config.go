// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// CHART TYPES
// =============================================================================

// ChartType names a chart kind. Comparisons are case-insensitive; use Kind.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	// ChartMap is published by the server but never shown in the panel.
	ChartMap ChartType = "map"
)

// Normalize returns the lower-case form used for lookups.
func (t ChartType) Normalize() ChartType {
	return ChartType(strings.ToLower(strings.TrimSpace(string(t))))
}

var titleCaser = cases.Title(language.English)

// Label returns the item header text, e.g. "Bar Chart".
func (t ChartType) Label() string {
	return titleCaser.String(string(t.Normalize())) + " Chart"
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID identifies a visualization. The server sends numbers or strings; both
// decode to their string form so 1 and "1" name the same item.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("visualization id must be a number or string: %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("visualization id must be a number or string: %s", data)
	}
	// 1, 1.0 and 1e0 all name item "1".
	*id = ID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// MarshalJSON writes canonical integer ids as numbers and anything else,
// such as "007" or "+5", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// =============================================================================
// CONFIG
// =============================================================================

// DataPoint is one labelled value.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// UnmarshalJSON tolerates numeric strings and null values, which the server
// emits when it serialises pandas output.
func (d *DataPoint) UnmarshalJSON(data []byte) error {
	var aux struct {
		Label interface{} `json:"label"`
		Value interface{} `json:"value"`
		Unit  string      `json:"unit"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Unit = aux.Unit
	switch l := aux.Label.(type) {
	case nil:
		d.Label = ""
	case string:
		d.Label = l
	default:
		d.Label = fmt.Sprint(l)
	}
	switch v := aux.Value.(type) {
	case nil:
		d.Value = 0
	case float64:
		d.Value = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("value %q for %q is not a number", v, d.Label)
		}
		d.Value = f
	default:
		return fmt.Errorf("value for %q has unsupported type %T", d.Label, v)
	}
	return nil
}

// Colors overrides the bar palette.
type Colors struct {
	Palette      []string `json:"palette,omitempty"`
	DefaultColor string   `json:"defaultColor,omitempty"`
}

// Config describes one visualization. A loaded Config is never modified.
type Config struct {
	ID     ID          `json:"id"`
	Name   string      `json:"name"`
	Type   ChartType   `json:"type"`
	Data   []DataPoint `json:"data"`
	Colors *Colors     `json:"colors,omitempty"`
}

// Kind returns the normalized chart type.
func (c Config) Kind() ChartType {
	return c.Type.Normalize()
}

// Unit is the unit of the first data point; every tooltip uses it.
func (c Config) Unit() string {
	if len(c.Data) == 0 {
		return ""
	}
	return c.Data[0].Unit
}

// Title is the item header label, e.g. "Pie Chart".
func (c Config) Title() string {
	return c.Type.Label()
}

// Total sums the values.
func (c Config) Total() float64 {
	var total float64
	for _, d := range c.Data {
		total += d.Value
	}
	return total
}

// ParseConfigs decodes a visualization_config.json document.
func ParseConfigs(data []byte) ([]Config, error) {
	var configs []Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("decode visualization config: %w", err)
	}
	return configs, nil
}

// SampleConfigs is the built-in set used when the server cannot be reached.
func SampleConfigs() []Config {
	return []Config{
		{
			ID:   "1",
			Name: "Population by State",
			Type: ChartBar,
			Data: []DataPoint{
				{Label: "Selangor", Value: 6000000, Unit: "people"},
				{Label: "Johor", Value: 4000000, Unit: "people"},
				{Label: "Sabah", Value: 3500000, Unit: "people"},
			},
		},
		{
			ID:   "2",
			Name: "Market Share 2025",
			Type: ChartPie,
			Data: []DataPoint{
				{Label: "Product A", Value: 45, Unit: "%"},
				{Label: "Product B", Value: 30, Unit: "%"},
				{Label: "Product C", Value: 25, Unit: "%"},
			},
		},
	}
}

// findConfig returns the first config whose id matches.
func findConfig(configs []Config, id ID) (Config, bool) {
	for _, c := range configs {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}
