package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// fakeController records calls and answers from a fixed workout list.
type fakeController struct {
	workouts []models.Workout
	clicked  *models.Coordinates
	submit   app.FormValues
	err      error
}

func (f *fakeController) LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (models.Workout, error) {
	f.clicked = &at
	if f.err != nil {
		return models.Workout{}, f.err
	}
	f.submit = v
	w := models.Workout{ID: fmt.Sprintf("%010d", len(f.workouts)+1), Kind: models.Kind(v.Kind)}
	f.workouts = append(f.workouts, w)
	return w, nil
}

func (f *fakeController) Snapshot(ctx context.Context) (app.Snapshot, error) {
	return app.Snapshot{State: app.StateMapReady, Zoom: 15, Workouts: f.workouts}, nil
}

func newHandlers(ctl *fakeController) *handlers {
	return &handlers{ds: NewLocal(ctl), log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

var mixed = []models.Workout{
	{ID: "0000000001", Kind: models.KindRunning, Distance: 5, Duration: 25},
	{ID: "0000000002", Kind: models.KindCycling, Distance: 30, Duration: 60},
	{ID: "0000000003", Kind: models.KindRunning, Distance: 10, Duration: 60},
}

// TestListWorkoutsTool verifies the optional type filter.
func TestListWorkoutsTool(t *testing.T) {
	h := newHandlers(&fakeController{workouts: mixed})

	res := callTool(t, h.listWorkouts, map[string]any{"type": "running"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var got []models.Workout
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("running workouts = %d, want 2", len(got))
	}

	res = callTool(t, h.listWorkouts, map[string]any{"type": "swimming"})
	if !res.IsError {
		t.Error("unknown type accepted")
	}
}

// TestGetWorkoutTool covers found and missing ids.
func TestGetWorkoutTool(t *testing.T) {
	h := newHandlers(&fakeController{workouts: mixed})

	res := callTool(t, h.getWorkout, map[string]any{"id": "0000000002"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	res = callTool(t, h.getWorkout, map[string]any{"id": "9999999999"})
	if !res.IsError {
		t.Error("missing workout did not return an error result")
	}
	res = callTool(t, h.getWorkout, map[string]any{})
	if !res.IsError {
		t.Error("missing id did not return an error result")
	}
}

// TestLogWorkoutTool verifies the tool hands the location and the numbers,
// as form strings, to the controller in one call.
func TestLogWorkoutTool(t *testing.T) {
	ctl := &fakeController{}
	h := newHandlers(ctl)

	res := callTool(t, h.logWorkout, map[string]any{
		"lat": 38.5, "lng": -9.25, "kind": "cycling",
		"distance": 27.0, "duration": 95.0, "elevation": 523.0,
	})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ctl.clicked == nil || *ctl.clicked != (models.Coordinates{Lat: 38.5, Lng: -9.25}) {
		t.Errorf("clicked = %v", ctl.clicked)
	}
	want := app.FormValues{Kind: "cycling", Distance: "27", Duration: "95", Elevation: "523"}
	if ctl.submit != want {
		t.Errorf("submitted = %+v, want %+v", ctl.submit, want)
	}
}

// TestLogWorkoutToolMapUnavailable verifies controller errors come back as
// tool errors, not protocol errors.
func TestLogWorkoutToolMapUnavailable(t *testing.T) {
	h := newHandlers(&fakeController{err: app.ErrCreationDisabled})
	res := callTool(t, h.logWorkout, map[string]any{
		"lat": 1.0, "lng": 2.0, "kind": "running", "distance": 5.0, "duration": 25.0, "cadence": 170.0,
	})
	if !res.IsError {
		t.Error("expected error result")
	}
}

// TestLogWorkoutToolBadCoordinates verifies out-of-range and NaN locations
// are refused before the controller sees them.
func TestLogWorkoutToolBadCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"lat too high", 91, 0},
		{"lng too low", 0, -180.5},
		{"nan lat", math.NaN(), 0},
		{"nan lng", 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{}
			h := newHandlers(ctl)
			res := callTool(t, h.logWorkout, map[string]any{
				"lat": tt.lat, "lng": tt.lng, "kind": "running",
				"distance": 5.0, "duration": 25.0, "cadence": 170.0,
			})
			if !res.IsError {
				t.Error("expected error result")
			}
			if ctl.clicked != nil {
				t.Errorf("controller called with %v", *ctl.clicked)
			}
		})
	}
}

// TestSummarize verifies per-kind totals and the combined pace and speed.
func TestSummarize(t *testing.T) {
	got := summarize(mixed)
	if len(got) != 2 {
		t.Fatalf("summaries = %+v", got)
	}
	run, ride := got[0], got[1]
	if run.Kind != models.KindRunning || run.Count != 2 || run.Distance != 15 || run.Duration != 85 {
		t.Errorf("running = %+v", run)
	}
	if want := 85.0 / 15.0; run.Pace != want {
		t.Errorf("pace = %v, want %v", run.Pace, want)
	}
	if ride.Kind != models.KindCycling || ride.Speed != 30 {
		t.Errorf("cycling = %+v", ride)
	}

	if got := summarize(nil); len(got) != 0 {
		t.Errorf("empty summary = %+v", got)
	}
}
