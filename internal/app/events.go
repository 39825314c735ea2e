package app

import (
	"github.com/meltforce/mapty/internal/mapsession"
	"github.com/meltforce/mapty/internal/models"
)

// Event is handled by the controller loop, one at a time, in arrival order.
type Event interface {
	event()
}

// PositionResolved carries the outcome of the startup position request.
type PositionResolved struct{ Outcome mapsession.Outcome }

// MapClicked is a click on the live map.
type MapClicked struct{ At models.Coordinates }

// KindChanged is a change of the form's activity selector.
type KindChanged struct{ Kind string }

// FormSubmitted submits the form. When Values is set the form is filled
// with it first.
type FormSubmitted struct{ Values *FormValues }

// WorkoutLogged clicks the map at At and submits Values as one step, so no
// other click can move the pending location in between.
type WorkoutLogged struct {
	At     models.Coordinates
	Values FormValues
}

// WorkoutSelected is a click on a rendered list entry.
type WorkoutSelected struct{ ID string }

// FormLayoutRestored fires once the form hide delay has elapsed.
type FormLayoutRestored struct{}

// ResetRequested drops every workout from memory, storage and the views.
type ResetRequested struct{}

// SnapshotRequested reads the controller state without changing it.
type SnapshotRequested struct{}

func (PositionResolved) event()   {}
func (MapClicked) event()         {}
func (KindChanged) event()        {}
func (FormSubmitted) event()      {}
func (WorkoutLogged) event()      {}
func (WorkoutSelected) event()    {}
func (FormLayoutRestored) event() {}
func (ResetRequested) event()     {}
func (SnapshotRequested) event()  {}
