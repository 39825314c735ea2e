package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var lisbon = Coordinates{Lat: 38.0, Lng: -9.0}

// TestCreateRunning verifies pace is duration/distance with no rounding and
// that the label uses the creation month and day.
func TestCreateRunning(t *testing.T) {
	f := NewFactory(fixedClock(time.Date(2026, time.March, 7, 9, 30, 0, 0, time.UTC)))

	w, err := f.Create(KindRunning, 5, 25, lisbon, 178)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Pace != 5.0 {
		t.Errorf("pace = %v, want 5", w.Pace)
	}
	if w.Speed != 0 || w.ElevationGain != 0 {
		t.Errorf("cycling fields set on running workout: speed=%v elevation=%v", w.Speed, w.ElevationGain)
	}
	if w.Cadence != 178 {
		t.Errorf("cadence = %v, want 178", w.Cadence)
	}
	if w.Label != "Running on March 7" {
		t.Errorf("label = %q, want %q", w.Label, "Running on March 7")
	}
	if w.Coordinates != lisbon {
		t.Errorf("coordinates = %v, want %v", w.Coordinates, lisbon)
	}
	if !w.IsLive() {
		t.Error("factory-built workout should be live")
	}
}

// TestCreateCycling verifies speed is distance/(duration/60).
func TestCreateCycling(t *testing.T) {
	f := NewFactory(fixedClock(time.Date(2026, time.December, 31, 18, 0, 0, 0, time.UTC)))

	w, err := f.Create(KindCycling, 27, 95, lisbon, 523)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 27 / (95.0 / 60); w.Speed != want {
		t.Errorf("speed = %v, want %v", w.Speed, want)
	}
	if w.Metric() != w.Speed {
		t.Errorf("Metric() = %v, want speed %v", w.Metric(), w.Speed)
	}
	if w.Extra() != 523 {
		t.Errorf("Extra() = %v, want 523", w.Extra())
	}
	if w.Label != "Cycling on December 31" {
		t.Errorf("label = %q", w.Label)
	}
}

// TestDerivedMetricsExact checks the formulas over a spread of inputs.
func TestDerivedMetricsExact(t *testing.T) {
	f := NewFactory(nil)
	cases := []struct{ distance, duration, extra float64 }{
		{0.1, 0.5, 1},
		{3.7, 19.3, 165},
		{42.195, 211.5, 182},
		{1e-3, 1e3, 0.01},
	}
	for _, tc := range cases {
		r, err := f.Create(KindRunning, tc.distance, tc.duration, lisbon, tc.extra)
		if err != nil {
			t.Fatalf("running %+v: %v", tc, err)
		}
		if r.Pace != tc.duration/tc.distance {
			t.Errorf("running %+v: pace = %v", tc, r.Pace)
		}
		c, err := f.Create(KindCycling, tc.distance, tc.duration, lisbon, tc.extra)
		if err != nil {
			t.Fatalf("cycling %+v: %v", tc, err)
		}
		if c.Speed != tc.distance/(tc.duration/60) {
			t.Errorf("cycling %+v: speed = %v", tc, c.Speed)
		}
	}
}

// TestCreateRejectsInvalidInput verifies zero, negative, NaN and infinite
// inputs are rejected with a ValidationError naming the field.
func TestCreateRejectsInvalidInput(t *testing.T) {
	f := NewFactory(nil)
	cases := []struct {
		name      string
		kind      Kind
		distance  float64
		duration  float64
		extra     float64
		wantField string
	}{
		{"zero distance", KindRunning, 0, 25, 178, "distance"},
		{"zero duration", KindRunning, 5, 0, 178, "duration"},
		{"negative distance", KindRunning, -5, 25, 178, "distance"},
		{"nan cadence", KindRunning, 5, 25, math.NaN(), "cadence"},
		{"inf duration", KindCycling, 5, math.Inf(1), 10, "duration"},
		{"zero elevation", KindCycling, 5, 25, 0, "elevationGain"},
		{"negative elevation", KindCycling, 5, 25, -3, "elevationGain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := f.Create(tc.kind, tc.distance, tc.duration, lisbon, tc.extra)
			if w != nil {
				t.Errorf("expected no workout, got %+v", w)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %T, want *ValidationError", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

// TestCreateUnknownKind verifies kinds outside the closed set are refused.
func TestCreateUnknownKind(t *testing.T) {
	_, err := NewFactory(nil).Create(Kind("swimming"), 1, 1, lisbon, 1)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

// TestFactoryIDs verifies ids are the last 10 digits of the millisecond
// timestamp and stay unique when the clock does not advance.
func TestFactoryIDs(t *testing.T) {
	at := time.UnixMilli(1760000000123)
	f := NewFactory(fixedClock(at))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		w, err := f.Create(KindRunning, 1, 1, lisbon, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(w.ID) != 10 {
			t.Errorf("id %q has length %d, want 10", w.ID, len(w.ID))
		}
		if seen[w.ID] {
			t.Fatalf("duplicate id %q", w.ID)
		}
		seen[w.ID] = true
		if i == 0 && w.ID != "0000000123" {
			t.Errorf("first id = %q, want %q", w.ID, "0000000123")
		}
	}
}

// TestAcknowledge verifies interactions count on live workouts and are
// ignored on records decoded from storage.
func TestAcknowledge(t *testing.T) {
	w, err := NewFactory(nil).Create(KindRunning, 5, 25, lisbon, 178)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Acknowledge() || !w.Acknowledge() {
		t.Fatal("live workout should accept acknowledgments")
	}
	if w.InteractionCount != 2 {
		t.Errorf("interactionCount = %d, want 2", w.InteractionCount)
	}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	var restored Workout
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}
	if restored.IsLive() {
		t.Error("restored workout should not be live")
	}
	if restored.Acknowledge() {
		t.Error("restored workout accepted an acknowledgment")
	}
	if restored.InteractionCount != 2 {
		t.Errorf("restored interactionCount = %d, want 2", restored.InteractionCount)
	}
}

// TestWireFormat verifies the persisted field names and the [lat, lng] pair.
func TestWireFormat(t *testing.T) {
	f := NewFactory(fixedClock(time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)))
	w, err := f.Create(KindCycling, 10, 30, Coordinates{Lat: 38.1, Lng: -9.1}, 120)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "createdAt", "distance", "duration", "coordinates", "kind", "elevationGain", "speed", "label", "interactionCount"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
	for _, key := range []string{"cadence", "pace"} {
		if _, ok := raw[key]; ok {
			t.Errorf("unexpected %q on cycling record", key)
		}
	}
	coords, ok := raw["coordinates"].([]any)
	if !ok || len(coords) != 2 || coords[0] != 38.1 || coords[1] != -9.1 {
		t.Errorf("coordinates = %v, want [38.1 -9.1]", raw["coordinates"])
	}
	if raw["kind"] != "cycling" {
		t.Errorf("kind = %v, want cycling", raw["kind"])
	}
}

// TestParseInput verifies form strings parse like numeric inputs: blank is
// zero, garbage is NaN.
func TestParseInput(t *testing.T) {
	if v := ParseInput(" 5.5 "); v != 5.5 {
		t.Errorf("ParseInput(5.5) = %v", v)
	}
	if v := ParseInput(""); v != 0 {
		t.Errorf("ParseInput(\"\") = %v, want 0", v)
	}
	if v := ParseInput("abc"); !math.IsNaN(v) {
		t.Errorf("ParseInput(abc) = %v, want NaN", v)
	}
	if v := ParseInput("-5"); v != -5 {
		t.Errorf("ParseInput(-5) = %v", v)
	}
}

// TestParseKind verifies case-insensitive lookup and rejection of unknown kinds.
func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Cycling ")
	if err != nil || k != KindCycling {
		t.Errorf("ParseKind(Cycling) = %q, %v", k, err)
	}
	if _, err := ParseKind("rowing"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(rowing) err = %v", err)
	}
	if KindRunning.Title() != "Running" {
		t.Errorf("Title() = %q", KindRunning.Title())
	}
}

// TestCoordinatesRejectsWrongArity verifies only two-element arrays decode.
func TestCoordinatesRejectsWrongArity(t *testing.T) {
	for _, raw := range []string{`[38]`, `[]`, `[38,-9,1]`, `{"lat":38}`} {
		var c Coordinates
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			t.Errorf("Unmarshal(%s) = %v, want error", raw, c)
		}
	}
	var c Coordinates
	if err := json.Unmarshal([]byte(`[38.5,-9.25]`), &c); err != nil || c != (Coordinates{Lat: 38.5, Lng: -9.25}) {
		t.Errorf("Unmarshal = %v, %v", c, err)
	}
}

// TestCoordinatesValid covers range and NaN checks.
func TestCoordinatesValid(t *testing.T) {
	tests := []struct {
		c    Coordinates
		want bool
	}{
		{lisbon, true},
		{Coordinates{Lat: 90, Lng: -180}, true},
		{Coordinates{Lat: 90.1, Lng: 0}, false},
		{Coordinates{Lat: 0, Lng: 180.5}, false},
		{Coordinates{Lat: math.NaN(), Lng: 0}, false},
		{Coordinates{Lat: 0, Lng: math.NaN()}, false},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
