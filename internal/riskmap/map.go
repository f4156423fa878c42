package riskmap

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnmounted is returned for events delivered to a map after Unmount.
var ErrUnmounted = errors.New("map is unmounted")

// ErrNoFeature is returned for an event that names a feature index outside
// the layer.
var ErrNoFeature = errors.New("no such feature")

// Viewport is the initial camera of the map.
type Viewport struct {
	Center     LatLng `json:"center"`
	Zoom       int    `json:"zoom"`
	MobileZoom int    `json:"mobileZoom"`
	MinZoom    int    `json:"minZoom"`
	MaxZoom    int    `json:"maxZoom"`
}

// DefaultViewport centers on central Florida.
var DefaultViewport = Viewport{
	Center:     LatLng{Lat: 27.8, Lng: -81.5},
	Zoom:       7,
	MobileZoom: 6,
	MinZoom:    6,
	MaxZoom:    10,
}

// SelectFunc is notified on every selection change. sel is nil when the
// selection was cleared.
type SelectFunc func(sel *SelectedRegion)

// Container is the element a map renders into. At most one map is attached
// to a container at a time.
type Container struct {
	ID string

	mu  sync.Mutex
	cur *Map
}

// NewContainer returns an empty container.
func NewContainer(id string) *Container {
	return &Container{ID: id}
}

// Current returns the map attached to the container, if any.
func (c *Container) Current() *Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Map is the interactive state of one mounted risk map: current per-feature
// styles, draw order, hover and the single active selection.
type Map struct {
	mu        sync.Mutex
	container *Container
	layer     *Layer
	styles    []Style
	order     []int
	selected  *SelectedRegion
	listeners []SelectFunc
	fitted    Bounds
}

// Mount attaches a new map for layer to container. A map already attached to
// the container is unmounted first so a second initialization never leaks
// the previous one's state.
func Mount(container *Container, layer *Layer) (*Map, error) {
	if container == nil {
		return nil, errors.New("mount: nil container")
	}
	if layer == nil {
		return nil, errors.New("mount: nil layer")
	}

	container.mu.Lock()
	prev := container.cur
	container.mu.Unlock()
	if prev != nil {
		prev.Unmount()
	}

	m := &Map{
		container: container,
		layer:     layer,
		styles:    make([]Style, layer.Len()),
		order:     make([]int, layer.Len()),
		fitted:    layer.Bounds(),
	}
	for i, f := range layer.features {
		m.styles[i] = f.Style
		m.order[i] = i
	}

	container.mu.Lock()
	container.cur = m
	container.mu.Unlock()
	return m, nil
}

// Mounted reports whether the map is still attached.
func (m *Map) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layer != nil
}

// FittedBounds returns the bounds the map was fitted to at mount.
func (m *Map) FittedBounds() Bounds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fitted
}

// OnSelect registers fn for selection changes.
func (m *Map) OnSelect(fn SelectFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.layer == nil {
		return ErrUnmounted
	}
	m.listeners = append(m.listeners, fn)
	return nil
}

// Style returns the current style of feature i.
func (m *Map) Style(i int) (Style, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(i); err != nil {
		return Style{}, err
	}
	return m.styles[i], nil
}

// DrawOrder returns feature indexes from back to front.
func (m *Map) DrawOrder() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Hover highlights feature i and brings it to the front.
func (m *Map) Hover(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(i); err != nil {
		return err
	}
	m.styles[i] = Highlight(m.layer.features[i].Style)
	if pos := slices.Index(m.order, i); pos >= 0 {
		m.order = append(slices.Delete(m.order, pos, pos+1), i)
	}
	return nil
}

// Unhover restores feature i to its own base style.
func (m *Map) Unhover(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(i); err != nil {
		return err
	}
	m.styles[i] = m.layer.features[i].Style
	return nil
}

// Click selects feature i when it joined a record, replacing any current
// selection. Clicking an unmatched feature changes nothing.
func (m *Map) Click(i int) error {
	m.mu.Lock()
	if err := m.check(i); err != nil {
		m.mu.Unlock()
		return err
	}
	sel, ok := m.layer.features[i].Selection()
	if !ok {
		m.mu.Unlock()
		return nil
	}
	m.selected = &sel
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	notify(listeners, sel)
	return nil
}

// ClickAt clicks the feature under the point. A point outside every feature
// is a no-op.
func (m *Map) ClickAt(ll LatLng) error {
	m.mu.Lock()
	if m.layer == nil {
		m.mu.Unlock()
		return ErrUnmounted
	}
	i, ok := m.layer.HitTest(ll)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.Click(i)
}

// Close clears the selection and notifies listeners.
func (m *Map) Close() error {
	m.mu.Lock()
	if m.layer == nil {
		m.mu.Unlock()
		return ErrUnmounted
	}
	m.selected = nil
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
	return nil
}

// Selected returns a copy of the active selection.
func (m *Map) Selected() (SelectedRegion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return SelectedRegion{}, false
	}
	return *m.selected, true
}

// Unmount detaches the map from its container and drops the layer, styles,
// selection and listeners. It is safe to call more than once.
func (m *Map) Unmount() {
	m.mu.Lock()
	c := m.container
	m.container = nil
	m.layer = nil
	m.styles = nil
	m.order = nil
	m.selected = nil
	m.listeners = nil
	m.mu.Unlock()

	if c == nil {
		return
	}
	c.mu.Lock()
	if c.cur == m {
		c.cur = nil
	}
	c.mu.Unlock()
}

// check must be called with m.mu held.
func (m *Map) check(i int) error {
	if m.layer == nil {
		return ErrUnmounted
	}
	if i < 0 || i >= len(m.styles) {
		return fmt.Errorf("%w: %d", ErrNoFeature, i)
	}
	return nil
}

func notify(listeners []SelectFunc, sel SelectedRegion) {
	for _, fn := range listeners {
		s := sel
		fn(&s)
	}
}
