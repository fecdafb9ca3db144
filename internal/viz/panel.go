// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotLoaded is returned when rendering before any config was loaded.
	ErrNotLoaded = errors.New("visualization config not loaded yet")
	// ErrNotFound is returned for an id with no config or no panel item.
	ErrNotFound = errors.New("visualization not found")
)

// =============================================================================
// CHART CONTRACT
// =============================================================================

// Region is the area a chart is bound to, in terminal cells.
type Region struct {
	Width  int
	Height int
}

// Chart is a live chart instance. It holds resources until Dispose.
type Chart interface {
	SetOption(opt *Option) error
	Resize(width, height int)
	Dispose()
}

// Renderer creates chart instances bound to a region.
type Renderer interface {
	Init(region Region) (Chart, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(region Region) (Chart, error)

// Init implements Renderer.
func (f RendererFunc) Init(region Region) (Chart, error) { return f(region) }

// =============================================================================
// ITEMS
// =============================================================================

// Item is a snapshot of one panel item.
type Item struct {
	ID       ID
	Name     string
	Type     ChartType
	Expanded bool
}

// Title is the header label, e.g. "Bar Chart".
func (it Item) Title() string {
	return it.Type.Label()
}

// Hook observes chart lifecycle events. Hooks run after the panel lock is
// released and may call back into the panel.
type Hook func(Item)

type panelItem struct {
	cfg      Config
	expanded bool
}

func (pi *panelItem) snapshot() Item {
	return Item{ID: pi.cfg.ID, Name: pi.cfg.Name, Type: pi.cfg.Type, Expanded: pi.expanded}
}

type event struct {
	created bool
	item    Item
}

// =============================================================================
// PANEL
// =============================================================================

// DefaultRegion is the chart area used until the first Resize.
var DefaultRegion = Region{Width: 48, Height: 14}

// Panel tracks panel items, which one is expanded, and the live charts.
//
// At most one item is expanded at a time and only an expanded item has a
// live chart. Toggle enforces this; nothing in Config does.
type Panel struct {
	mu       sync.Mutex
	renderer Renderer
	logger   *zap.Logger

	items   []*panelItem // newest first
	configs []Config     // nil until loaded
	charts  map[ID]Chart
	region  Region

	onCreate  []Hook
	onDestroy []Hook
}

// NewPanel creates an empty panel. A nil logger discards output.
func NewPanel(renderer Renderer, logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		renderer: renderer,
		logger:   logger,
		charts:   make(map[ID]Chart),
		region:   DefaultRegion,
	}
}

// OnCreate registers a hook called after a chart is created.
func (p *Panel) OnCreate(h Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCreate = append(p.onCreate, h)
}

// OnDestroy registers a hook called after a chart is disposed.
func (p *Panel) OnDestroy(h Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDestroy = append(p.onDestroy, h)
}

// -----------------------------------------------------------------------------
// Config set
// -----------------------------------------------------------------------------

// LoadConfig fetches and parses configs from src and replaces the config
// set. Any failure is logged and the built-in samples are used instead, so
// the caller always gets a usable set.
func (p *Panel) LoadConfig(ctx context.Context, src Source) []Config {
	configs, err := fetchConfigs(ctx, src)
	if err != nil {
		p.logger.Warn("Failed to load visualization config, using samples",
			zap.Stringer("source", src), zap.Error(err))
		configs = SampleConfigs()
	} else {
		p.logger.Info("Visualization config loaded",
			zap.Stringer("source", src), zap.Int("count", len(configs)))
	}
	p.SetConfigs(configs)
	return configs
}

func fetchConfigs(ctx context.Context, src Source) ([]Config, error) {
	if src == nil {
		return nil, errors.New("no source")
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ParseConfigs(data)
}

// SetConfigs replaces the config set.
func (p *Panel) SetConfigs(configs []Config) {
	cp := make([]Config, len(configs))
	copy(cp, configs)
	p.mu.Lock()
	p.configs = cp
	p.mu.Unlock()
}

// Configs returns the loaded config set, or nil before the first load.
func (p *Panel) Configs() []Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configs == nil {
		return nil
	}
	out := make([]Config, len(p.configs))
	copy(out, p.configs)
	return out
}

// Loaded reports whether a config set has been loaded.
func (p *Panel) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configs != nil
}

// Config returns the loaded config for id.
func (p *Panel) Config(id ID) (Config, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return findConfig(p.configs, id)
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

// AddItem inserts an item for cfg at the front. An existing item with the
// same id is removed first (disposing its chart) so ids stay unique.
func (p *Panel) AddItem(cfg Config) {
	p.mu.Lock()
	var events []event
	if i := p.indexLocked(cfg.ID); i >= 0 {
		events = p.disposeLocked(cfg.ID, events)
		p.items = append(p.items[:i], p.items[i+1:]...)
	}
	p.items = append([]*panelItem{{cfg: cfg}}, p.items...)
	p.mu.Unlock()
	p.fire(events)
}

// LoadFromList adds each config in order, each at the front, skipping map
// configs. The last config therefore ends up first.
func (p *Panel) LoadFromList(configs []Config) {
	for _, cfg := range configs {
		if cfg.Kind() == ChartMap {
			continue
		}
		p.AddItem(cfg)
	}
}

// Clear disposes every live chart and removes every item.
func (p *Panel) Clear() {
	p.mu.Lock()
	var events []event
	for _, it := range p.items {
		events = p.disposeLocked(it.cfg.ID, events)
	}
	// Charts whose item was already gone.
	for id := range p.charts {
		events = p.disposeLocked(id, events)
	}
	p.items = nil
	p.mu.Unlock()
	p.fire(events)
}

// Items returns a snapshot of the items, front first.
func (p *Panel) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Item, len(p.items))
	for i, it := range p.items {
		out[i] = it.snapshot()
	}
	return out
}

// HasItems reports whether the panel has any item.
func (p *Panel) HasItems() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items) > 0
}

// Expanded returns the expanded item's id.
func (p *Panel) Expanded() (ID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if it.expanded {
			return it.cfg.ID, true
		}
	}
	return "", false
}

// Live returns the ids that currently hold a chart instance.
func (p *Panel) Live() []ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]ID, 0, len(p.charts))
	for _, it := range p.items {
		if _, ok := p.charts[it.cfg.ID]; ok {
			ids = append(ids, it.cfg.ID)
		}
	}
	return ids
}

// Chart returns the live chart for id.
func (p *Panel) Chart(id ID) (Chart, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.charts[id]
	return c, ok
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Toggle collapses the item if it is expanded. Otherwise it collapses any
// other expanded item, expands this one and renders it. Render failures
// are logged and returned; the item stays expanded without a chart.
func (p *Panel) Toggle(id ID) error {
	p.mu.Lock()
	idx := p.indexLocked(id)
	if idx < 0 {
		p.mu.Unlock()
		p.logger.Error("Toggle on unknown visualization item", zap.Stringer("viz_id", id))
		return fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	target := p.items[idx]

	var events []event
	if target.expanded {
		target.expanded = false
		events = p.disposeLocked(id, events)
		p.mu.Unlock()
		p.fire(events)
		p.logger.Debug("Visualization collapsed", zap.Stringer("viz_id", id))
		return nil
	}

	for _, other := range p.items {
		if other != target && other.expanded {
			other.expanded = false
			events = p.disposeLocked(other.cfg.ID, events)
		}
	}
	target.expanded = true
	events, err := p.renderLocked(id, events)
	p.mu.Unlock()
	p.fire(events)
	p.logger.Debug("Visualization expanded", zap.Stringer("viz_id", id))
	return err
}

// Render binds a new chart for id using its loaded config, replacing any
// chart id already had.
func (p *Panel) Render(id ID) error {
	p.mu.Lock()
	events, err := p.renderLocked(id, nil)
	p.mu.Unlock()
	p.fire(events)
	return err
}

// Dispose releases id's chart. It is a no-op when id has none.
func (p *Panel) Dispose(id ID) {
	p.mu.Lock()
	events := p.disposeLocked(id, nil)
	p.mu.Unlock()
	p.fire(events)
}

// Resize records the chart region and forwards it to every live chart.
// This is the only resize path; charts never register their own.
func (p *Panel) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width > 0 {
		p.region.Width = width
	}
	if height > 0 {
		p.region.Height = height
	}
	for _, c := range p.charts {
		c.Resize(p.region.Width, p.region.Height)
	}
}

// Region returns the current chart region.
func (p *Panel) Region() Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.region
}

// renderLocked looks up id's config, picks a builder and binds a chart.
// The builder is chosen before the chart exists, so an unsupported type
// never leaves a half-made chart behind.
func (p *Panel) renderLocked(id ID, events []event) ([]event, error) {
	if p.configs == nil {
		p.logger.Warn("Visualization data not loaded yet", zap.Stringer("viz_id", id))
		return events, ErrNotLoaded
	}
	cfg, ok := findConfig(p.configs, id)
	if !ok {
		p.logger.Error("Visualization not found", zap.Stringer("viz_id", id),
			zap.Int("available", len(p.configs)))
		return events, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	opt, err := BuildOption(cfg)
	if err != nil {
		p.logger.Error("Unsupported chart type", zap.Stringer("viz_id", id),
			zap.String("type", string(cfg.Type)))
		return events, err
	}
	if p.renderer == nil {
		return events, errors.New("no chart renderer")
	}

	events = p.disposeLocked(id, events)

	chart, err := p.renderer.Init(p.region)
	if err != nil {
		p.logger.Error("Chart init failed", zap.Stringer("viz_id", id), zap.Error(err))
		return events, fmt.Errorf("init chart %s: %w", id, err)
	}
	if err := chart.SetOption(opt); err != nil {
		chart.Dispose()
		p.logger.Error("Chart setOption failed", zap.Stringer("viz_id", id), zap.Error(err))
		return events, fmt.Errorf("set option %s: %w", id, err)
	}
	p.charts[id] = chart
	return append(events, event{created: true, item: p.itemSnapshotLocked(id, cfg)}), nil
}

func (p *Panel) disposeLocked(id ID, events []event) []event {
	chart, ok := p.charts[id]
	if !ok {
		return events
	}
	chart.Dispose()
	delete(p.charts, id)
	cfg, _ := findConfig(p.configs, id)
	return append(events, event{item: p.itemSnapshotLocked(id, cfg)})
}

func (p *Panel) itemSnapshotLocked(id ID, fallback Config) Item {
	if i := p.indexLocked(id); i >= 0 {
		return p.items[i].snapshot()
	}
	return Item{ID: id, Name: fallback.Name, Type: fallback.Type}
}

func (p *Panel) indexLocked(id ID) int {
	for i, it := range p.items {
		if it.cfg.ID == id {
			return i
		}
	}
	return -1
}

func (p *Panel) fire(events []event) {
	if len(events) == 0 {
		return
	}
	p.mu.Lock()
	onCreate := append([]Hook(nil), p.onCreate...)
	onDestroy := append([]Hook(nil), p.onDestroy...)
	p.mu.Unlock()

	for _, ev := range events {
		hooks := onDestroy
		if ev.created {
			hooks = onCreate
		}
		for _, h := range hooks {
			h(ev.item)
		}
	}
}
