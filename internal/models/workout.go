package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the workout variants. Rendering and persistence branch
// on it rather than on what an instance can do.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind maps a form or wire value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title returns the capitalized kind, e.g. "Running".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("inputs have to be positive numbers")
	// ErrUnknownKind is returned for a kind outside {running, cycling}.
	ErrUnknownKind = errors.New("unknown workout kind")
)

// ValidationError reports the first numeric input that is not a finite positive number.
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s = %v", ErrInvalidInput, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Coordinates is a (latitude, longitude) pair. On the wire it is [lat, lng].
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinates: want [lat, lng], got %d values", len(pair))
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

// Valid reports whether c is a finite point within latitude [-90, 90] and
// longitude [-180, 180].
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("[%g, %g]", c.Lat, c.Lng)
}

// Workout is one recorded exercise session. Running uses Cadence and Pace,
// Cycling uses ElevationGain and Speed; the other pair stays zero.
//
// Label and the derived metric are computed once by Factory.Create and are
// never recomputed, including after a round-trip through storage.
type Workout struct {
	ID               string      `json:"id"`
	CreatedAt        time.Time   `json:"createdAt"`
	Distance         float64     `json:"distance"` // km
	Duration         float64     `json:"duration"` // min
	Coordinates      Coordinates `json:"coordinates"`
	Kind             Kind        `json:"kind"`
	Cadence          float64     `json:"cadence,omitempty"`       // steps/min
	ElevationGain    float64     `json:"elevationGain,omitempty"` // m
	Pace             float64     `json:"pace,omitempty"`          // min/km
	Speed            float64     `json:"speed,omitempty"`         // km/h
	Label            string      `json:"label"`
	InteractionCount int         `json:"interactionCount"`

	// live is set only for instances built by a Factory in this session.
	// Records decoded from storage are plain data and stay not live.
	live bool
}

// IsLive reports whether w was created in the current session.
func (w *Workout) IsLive() bool { return w.live }

// Acknowledge records a user interaction. It is a no-op on restored records
// and reports whether the count changed.
func (w *Workout) Acknowledge() bool {
	if !w.live {
		return false
	}
	w.InteractionCount++
	return true
}

// Metric returns the stored derived value: pace for running, speed for cycling.
func (w *Workout) Metric() float64 {
	if w.Kind == KindCycling {
		return w.Speed
	}
	return w.Pace
}

// Extra returns the kind-specific input: cadence for running, elevation gain for cycling.
func (w *Workout) Extra() float64 {
	if w.Kind == KindCycling {
		return w.ElevationGain
	}
	return w.Cadence
}

// monthNames is indexed by time.Month-1.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Label builds "<Kind> on <Month> <day>" for the given creation time.
func Label(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), monthNames[at.Month()-1], at.Day())
}

// Pace returns minutes per kilometer.
func Pace(distance, duration float64) float64 {
	return duration / distance
}

// Speed returns kilometers per hour.
func Speed(distance, duration float64) float64 {
	return distance / (duration / 60)
}

// Factory is the only way to build live workouts. It owns id assignment for
// a session.
type Factory struct {
	now        func() time.Time
	lastMillis int64
}

// NewFactory creates a Factory reading time from now. A nil now uses time.Now.
func NewFactory(now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{now: now}
}

// Create validates the inputs and builds a live workout at coords. extra is
// the cadence for running and the elevation gain for cycling.
func (f *Factory) Create(kind Kind, distance, duration float64, coords Coordinates, extra float64) (*Workout, error) {
	extraField := "cadence"
	switch kind {
	case KindRunning:
	case KindCycling:
		extraField = "elevationGain"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := validatePositive(
		field{"distance", distance},
		field{"duration", duration},
		field{extraField, extra},
	); err != nil {
		return nil, err
	}

	createdAt := f.now()
	w := &Workout{
		ID:          f.nextID(createdAt),
		CreatedAt:   createdAt,
		Distance:    distance,
		Duration:    duration,
		Coordinates: coords,
		Kind:        kind,
		Label:       Label(kind, createdAt),
		live:        true,
	}
	if kind == KindRunning {
		w.Cadence = extra
		w.Pace = Pace(distance, duration)
	} else {
		w.ElevationGain = extra
		w.Speed = Speed(distance, duration)
	}
	return w, nil
}

// nextID returns the last 10 digits of the creation timestamp in
// milliseconds. Repeated or backwards clock readings are bumped forward so
// ids never repeat within a session.
func (f *Factory) nextID(at time.Time) string {
	ms := at.UnixMilli()
	if ms <= f.lastMillis {
		ms = f.lastMillis + 1
	}
	f.lastMillis = ms

	s := strconv.FormatInt(ms, 10)
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}

type field struct {
	name  string
	value float64
}

func validatePositive(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return &ValidationError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// ParseInput converts a numeric form string. Blank input reads as 0 and
// anything unparseable as NaN, so both fail validation.
func ParseInput(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
