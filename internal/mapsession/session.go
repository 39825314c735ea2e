// Package mapsession tracks the one-time device position acquisition and the
// single pending create intent produced by map clicks.
package mapsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meltforce/mapty/internal/models"
)

// DefaultZoom is the zoom level used for the initial view and for panning.
const DefaultZoom = 15

var (
	// ErrPositionUnavailable wraps every failed acquisition.
	ErrPositionUnavailable = errors.New("could not get your position")
	// ErrAcquisitionStarted is returned when Acquire is called twice.
	ErrAcquisitionStarted = errors.New("position acquisition already started")
)

// Geolocator delivers the device position. Exactly one of the callbacks is
// expected to fire, possibly on another goroutine.
type Geolocator interface {
	RequestPosition(ctx context.Context, onSuccess func(models.Coordinates), onFailure func(error))
}

// Status is the acquisition state of a Session.
type Status int

const (
	StatusIdle Status = iota
	StatusAcquiring
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAcquiring:
		return "acquiring"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome is the single result of an acquisition attempt.
type Outcome struct {
	Position models.Coordinates
	Err      error
}

// Session is not safe for concurrent use. Acquire hands the outcome to a
// report callback; the owner applies it with Resolve on its own goroutine.
type Session struct {
	status  Status
	center  models.Coordinates
	zoom    int
	timeout time.Duration
	err     error

	afterFunc func(time.Duration, func()) *time.Timer

	// pending is overwritten by every click. There is no queue: a second
	// click before submission discards the first location.
	pending    models.Coordinates
	hasPending bool
}

// New creates a Session. timeout <= 0 waits for the geolocator forever.
func New(zoom int, timeout time.Duration) *Session {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Session{zoom: zoom, timeout: timeout, afterFunc: time.AfterFunc}
}

// Acquire requests the device position once. report receives exactly one
// Outcome, from whichever goroutine the geolocator or timer uses.
func (s *Session) Acquire(ctx context.Context, geo Geolocator, report func(Outcome)) error {
	if s.status != StatusIdle {
		return ErrAcquisitionStarted
	}
	s.status = StatusAcquiring

	ctx, cancel := context.WithCancel(ctx)
	var (
		once  sync.Once
		mu    sync.Mutex
		timer *time.Timer
	)
	deliver := func(o Outcome) {
		once.Do(func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			cancel()
			report(o)
		})
	}

	if geo == nil {
		deliver(Outcome{Err: fmt.Errorf("%w: geolocation not supported", ErrPositionUnavailable)})
		return nil
	}

	if timeout := s.timeout; timeout > 0 {
		mu.Lock()
		timer = s.afterFunc(timeout, func() {
			deliver(Outcome{Err: fmt.Errorf("%w: timed out after %s", ErrPositionUnavailable, timeout)})
		})
		mu.Unlock()
	}

	geo.RequestPosition(ctx,
		func(c models.Coordinates) { deliver(Outcome{Position: c}) },
		func(err error) {
			deliver(Outcome{Err: fmt.Errorf("%w: %v", ErrPositionUnavailable, err)})
		},
	)
	return nil
}

// Resolve applies an acquisition outcome. Only the first call while
// acquiring has an effect; it reports whether the outcome was applied.
func (s *Session) Resolve(o Outcome) bool {
	if s.status != StatusAcquiring {
		return false
	}
	if o.Err != nil {
		s.status = StatusFailed
		s.err = o.Err
		return true
	}
	s.status = StatusReady
	s.center = o.Position
	return true
}

// Status returns the acquisition state.
func (s *Session) Status() Status { return s.status }

// Ready reports whether the map can be used for creating workouts.
func (s *Session) Ready() bool { return s.status == StatusReady }

// Err returns the acquisition failure, if any.
func (s *Session) Err() error { return s.err }

// InitialCenter returns the acquired position. ok is false until ready.
func (s *Session) InitialCenter() (center models.Coordinates, ok bool) {
	return s.center, s.status == StatusReady
}

// Zoom returns the fixed zoom level.
func (s *Session) Zoom() int { return s.zoom }

// OnMapClicked records c as the pending intent, replacing any earlier one.
func (s *Session) OnMapClicked(c models.Coordinates) {
	s.pending = c
	s.hasPending = true
}

// PendingIntent returns the latest click location without clearing it.
func (s *Session) PendingIntent() (models.Coordinates, bool) {
	return s.pending, s.hasPending
}

// ResetIntent clears the pending intent after a successful creation.
func (s *Session) ResetIntent() {
	s.pending = models.Coordinates{}
	s.hasPending = false
}
