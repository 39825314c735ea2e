// Package view holds headless implementations of the controller's map, form,
// list and notice surfaces. They record what a browser would display so the
// HTTP API can report it.
package view

import (
	"errors"
	"sync"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// ErrNotInitialized is returned when a map call uses a handle before
// Initialize.
var ErrNotInitialized = errors.New("map not initialized")

// Marker is a placed map marker with its popup.
type Marker struct {
	At    models.Coordinates `json:"coordinates"`
	Popup app.PopupConfig    `json:"popup"`
}

// Viewport is the visible map area.
type Viewport struct {
	Center    models.Coordinates `json:"center"`
	Zoom      int                `json:"zoom"`
	Animated  bool               `json:"animated"`
	PanMillis int64              `json:"pan_ms"`
}

// Map is an in-memory map widget.
type Map struct {
	mu          sync.Mutex
	initialized bool
	viewport    Viewport
	markers     []Marker
	onClick     func(models.Coordinates)
}

var (
	_ app.MapProvider   = (*Map)(nil)
	_ app.MarkerClearer = (*Map)(nil)
)

// NewMap creates an uninitialized map.
func NewMap() *Map { return &Map{} }

type mapHandle struct{ m *Map }

func (m *Map) check(h app.MapHandle) error {
	mh, ok := h.(mapHandle)
	if !ok || mh.m != m {
		return ErrNotInitialized
	}
	return nil
}

func (m *Map) Initialize(center models.Coordinates, zoom int) (app.MapHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	m.viewport = Viewport{Center: center, Zoom: zoom}
	return mapHandle{m: m}, nil
}

func (m *Map) AddMarker(h app.MapHandle, at models.Coordinates, popup app.PopupConfig) error {
	if err := m.check(h); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = append(m.markers, Marker{At: at, Popup: popup})
	return nil
}

func (m *Map) OnClick(h app.MapHandle, fn func(models.Coordinates)) {
	if m.check(h) != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClick = fn
}

func (m *Map) SetView(h app.MapHandle, at models.Coordinates, zoom int, anim app.Animation) error {
	if err := m.check(h); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = Viewport{Center: at, Zoom: zoom, Animated: anim.Animate, PanMillis: anim.PanDuration.Milliseconds()}
	return nil
}

func (m *Map) ClearMarkers(h app.MapHandle) error {
	if err := m.check(h); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = nil
	return nil
}

// Click simulates a user click. It reports false before the map is ready.
func (m *Map) Click(at models.Coordinates) bool {
	m.mu.Lock()
	fn := m.onClick
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(at)
	return true
}

// Initialized reports whether Initialize ran.
func (m *Map) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Viewport returns the current view.
func (m *Map) Viewport() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Markers returns a copy of the placed markers.
func (m *Map) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Marker(nil), m.markers...)
}
