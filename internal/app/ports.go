package app

import (
	"time"

	"github.com/meltforce/mapty/internal/models"
)

// MapHandle is the opaque value returned by MapProvider.Initialize.
type MapHandle any

// Animation configures a SetView pan.
type Animation struct {
	Animate     bool
	PanDuration time.Duration
}

// MapProvider is the interactive map widget. Click callbacks may arrive on
// any goroutine.
type MapProvider interface {
	Initialize(center models.Coordinates, zoom int) (MapHandle, error)
	AddMarker(h MapHandle, at models.Coordinates, popup PopupConfig) error
	OnClick(h MapHandle, fn func(models.Coordinates))
	SetView(h MapHandle, at models.Coordinates, zoom int, anim Animation) error
}

// MarkerClearer is implemented by map providers able to drop all markers.
type MarkerClearer interface {
	ClearMarkers(h MapHandle) error
}

// FormValues are the raw strings of the workout form.
type FormValues struct {
	Kind      string `json:"kind"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Form is the workout entry surface.
type Form interface {
	Show()
	FocusDistance()
	Fill(v FormValues)
	Values() FormValues
	// ShowKindFields makes the cadence row visible for running and the
	// elevation row for cycling.
	ShowKindFields(kind models.Kind)
	Clear()
	// Hide removes the form from view immediately; RestoreLayout is called
	// after the hide delay so the hidden form stops occupying space.
	Hide()
	RestoreLayout()
}

// ListRenderer draws workout list entries, newest on top.
type ListRenderer interface {
	RenderWorkout(entry ListEntry)
	Clear()
}

// Level grades a user-visible notice.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notice is a user-visible message.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}
