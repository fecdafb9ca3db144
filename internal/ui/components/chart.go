// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDisposed is returned when using a chart after Dispose.
	ErrDisposed = errors.New("chart disposed")
	// ErrNilOption is returned by SetOption(nil).
	ErrNilOption = errors.New("nil chart option")
)

// sparkLevels are the eight block heights used for line charts.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

const (
	barRune   = '█'
	sliceRune = "■"
	minWidth  = 12
)

// =============================================================================
// RENDERER
// =============================================================================

// ChartRenderer creates terminal charts. It implements viz.Renderer.
type ChartRenderer struct {
	mu    sync.Mutex
	theme *styles.Theme
}

// NewChartRenderer returns a renderer that draws with theme.
func NewChartRenderer(theme *styles.Theme) *ChartRenderer {
	return &ChartRenderer{theme: theme}
}

// SetTheme changes the theme used by charts created afterwards.
func (r *ChartRenderer) SetTheme(theme *styles.Theme) {
	r.mu.Lock()
	r.theme = theme
	r.mu.Unlock()
}

// Init implements viz.Renderer.
func (r *ChartRenderer) Init(region viz.Region) (viz.Chart, error) {
	if region.Width < minWidth || region.Height < 3 {
		return nil, fmt.Errorf("chart region %dx%d is too small", region.Width, region.Height)
	}
	r.mu.Lock()
	theme := r.theme
	r.mu.Unlock()
	if theme == nil {
		return nil, errors.New("chart renderer has no theme")
	}
	return &TermChart{theme: theme, width: region.Width, height: region.Height}, nil
}

// =============================================================================
// TERMINAL CHART
// =============================================================================

// TermChart draws an option document with block characters. The focused
// point's tooltip is shown under the plot.
type TermChart struct {
	mu       sync.Mutex
	theme    *styles.Theme
	width    int
	height   int
	option   *viz.Option
	focus    int
	disposed bool
}

// SetOption implements viz.Chart.
func (c *TermChart) SetOption(opt *viz.Option) error {
	if opt == nil {
		return ErrNilOption
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	c.option = opt
	c.focus = 0
	return nil
}

// Resize implements viz.Chart.
func (c *TermChart) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width >= minWidth {
		c.width = width
	}
	if height >= 3 {
		c.height = height
	}
}

// Dispose implements viz.Chart.
func (c *TermChart) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.option = nil
}

// Disposed reports whether Dispose was called.
func (c *TermChart) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Size returns the bound region.
func (c *TermChart) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// MoveFocus shifts the focused point by delta, wrapping around.
func (c *TermChart) MoveFocus(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.pointsLocked()
	if n == 0 {
		return
	}
	c.focus = ((c.focus+delta)%n + n) % n
}

// Focus returns the focused point index.
func (c *TermChart) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Tooltip returns the focused point's tooltip text.
func (c *TermChart) Tooltip() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltipLocked()
}

// View renders the chart. A disposed chart renders as an empty string.
func (c *TermChart) View() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.option == nil {
		return ""
	}
	if c.pointsLocked() == 0 {
		return c.muted("No data")
	}

	var body []string
	switch c.option.Kind {
	case viz.ChartBar:
		body = c.barLines()
	case viz.ChartLine:
		body = c.lineLines()
	case viz.ChartPie:
		body = c.pieLines()
	default:
		return ""
	}

	// Reserve the last row for the tooltip.
	rows := c.height - 1
	if len(body) > rows {
		hidden := len(body) - rows + 1
		body = append(body[:rows-1], c.muted(fmt.Sprintf("+%d more", hidden)))
	}
	if tip := c.tooltipLocked(); tip != "" {
		body = append(body, c.muted(clip(tip, c.width)))
	}
	return strings.Join(body, "\n")
}

func (c *TermChart) pointsLocked() int {
	if c.option == nil || len(c.option.Series) == 0 {
		return 0
	}
	return len(c.option.Series[0].Data)
}

func (c *TermChart) tooltipLocked() string {
	if c.option == nil || c.option.Tooltip == nil {
		return ""
	}
	labels := c.option.Tooltip.Labels
	if c.focus < 0 || c.focus >= len(labels) {
		return ""
	}
	return labels[c.focus]
}

// -----------------------------------------------------------------------------
// Bar
// -----------------------------------------------------------------------------

func (c *TermChart) barLines() []string {
	cats := c.option.Categories()
	points := c.option.Series[0].Data

	labelW := 0
	valueW := 0
	values := make([]string, len(points))
	maxV := 0.0
	for i, p := range points {
		if w := runewidth.StringWidth(cats[i]); w > labelW {
			labelW = w
		}
		values[i] = util.FormatGrouped(p.Value)
		if w := runewidth.StringWidth(values[i]); w > valueW {
			valueW = w
		}
		maxV = math.Max(maxV, p.Value)
	}
	if limit := c.width / 3; labelW > limit {
		labelW = limit
	}
	barW := c.width - labelW - valueW - 3
	if barW < 1 {
		barW = 1
	}

	lines := make([]string, len(points))
	for i, p := range points {
		label := padding.String(clip(cats[i], labelW), uint(labelW))
		n := 0
		if maxV > 0 && p.Value > 0 {
			n = int(math.Round(p.Value / maxV * float64(barW)))
			if n == 0 {
				n = 1
			}
		}
		bar := c.paint(c.option.PointColor(i), strings.Repeat(string(barRune), n))
		gap := strings.Repeat(" ", barW-n)
		lines[i] = c.marker(i) + label + " " + bar + gap + " " + values[i]
	}
	return lines
}

// -----------------------------------------------------------------------------
// Line
// -----------------------------------------------------------------------------

func (c *TermChart) lineLines() []string {
	points := c.option.Series[0].Data
	if len(points) == 0 {
		return nil
	}
	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points {
		minV = math.Min(minV, p.Value)
		maxV = math.Max(maxV, p.Value)
	}

	cell := (c.width - 1) / len(points)
	if cell < 1 {
		cell = 1
	}
	var spark strings.Builder
	for i, p := range points {
		level := len(sparkLevels) - 1
		if maxV > minV {
			level = int(math.Round((p.Value - minV) / (maxV - minV) * float64(len(sparkLevels)-1)))
		}
		s := strings.Repeat(string(sparkLevels[level]), cell)
		if i == c.focus {
			s = c.theme.PanelSelected.Render(s)
		} else {
			s = c.paint(c.option.PointColor(i), s)
		}
		spark.WriteString(s)
	}

	cats := c.option.Categories()
	axis := truncate.String(cats[0], uint(c.width/2))
	if last := cats[len(cats)-1]; len(cats) > 1 {
		axis = padding.String(axis, atLeast(c.width-runewidth.StringWidth(last)-1, 1)) + last
	}
	return []string{
		c.muted("max " + util.FormatGrouped(maxV) + " " + c.option.Unit),
		spark.String(),
		c.muted("min " + util.FormatGrouped(minV) + " " + c.option.Unit),
		c.muted(axis),
	}
}

// -----------------------------------------------------------------------------
// Pie
// -----------------------------------------------------------------------------

func (c *TermChart) pieLines() []string {
	points := c.option.Series[0].Data
	barW := c.width - 1

	// Stacked share bar across the full width.
	var stack strings.Builder
	used := 0
	for i, p := range points {
		n := int(math.Round(p.Percent / 100 * float64(barW)))
		if i == len(points)-1 && p.Percent > 0 {
			n = barW - used
		}
		if used+n > barW {
			n = barW - used
		}
		if n <= 0 {
			continue
		}
		used += n
		stack.WriteString(c.paint(c.option.PointColor(i), strings.Repeat(string(barRune), n)))
	}

	lines := []string{stack.String()}
	for i, p := range points {
		name := clip(p.Name, int(atLeast(c.width-14, 1)))
		pct := fmt.Sprintf("%6.2f%%", p.Percent)
		lines = append(lines, c.marker(i)+c.paint(c.option.PointColor(i), sliceRune)+" "+
			padding.String(name, atLeast(c.width-12, 1))+pct)
	}
	return lines
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (c *TermChart) marker(i int) string {
	if i == c.focus {
		return c.theme.PanelSelected.Render(">")
	}
	return " "
}

func (c *TermChart) paint(hex, s string) string {
	if hex == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(TermColor(hex)).Render(s)
}

func (c *TermChart) muted(s string) string {
	if c.theme == nil {
		return s
	}
	return c.theme.ChartLabel.Render(s)
}

// clip shortens s to width cells, ending in an ellipsis. Text that
// already fits is returned as is; StringWithTail would still cut it.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

func atLeast(n, floor int) uint {
	if n < floor {
		n = floor
	}
	return uint(n)
}

// TermColor converts #RRGGBBAA to the #RRGGBB form terminals understand.
func TermColor(hex string) lipgloss.Color {
	if strings.HasPrefix(hex, "#") && len(hex) == 9 {
		hex = hex[:7]
	}
	return lipgloss.Color(hex)
}
