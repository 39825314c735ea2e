package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts in creation order, with distance (km), duration (min), coordinates and pace or speed."),
	mcp.WithString("type", mcp.Description("Only return workouts of this kind"), mcp.Enum("running", "cycling")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get a single workout by its ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (10 digits)")),
)

var toolGetMapState = mcp.NewTool("get_map_state",
	mcp.WithDescription("Current map state: whether the map is ready, its center and zoom, and any location clicked but not yet logged."),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log a workout at a map location. Running needs cadence (steps/min), cycling needs elevation gain (m). All numbers must be positive."),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude")),
	mcp.WithString("kind", mcp.Required(), mcp.Enum("running", "cycling")),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("cadence", mcp.Description("Cadence in steps/min (running)")),
	mcp.WithNumber("elevation", mcp.Description("Elevation gain in meters (cycling)")),
)

var toolWorkoutSummary = mcp.NewTool("workout_summary",
	mcp.WithDescription("Totals per workout kind: count, distance, duration, and average pace (running) or speed (cycling)."),
	mcp.WithString("type", mcp.Description("Only summarize this kind"), mcp.Enum("running", "cycling")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := kindArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, kind)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, err := h.ds.GetWorkout(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return mcp.NewToolResultError("workout " + id + " not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMapState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.MapState(ctx)
	if err != nil {
		h.log.Error("mcp get_map_state", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	// The workout list has its own tool.
	state := map[string]any{
		"state":         snap.State,
		"center":        snap.Center,
		"zoom":          snap.Zoom,
		"kind":          snap.Kind,
		"pending":       snap.Pending,
		"workout_count": len(snap.Workouts),
	}
	if snap.PositionErr != "" {
		state["position_error"] = snap.PositionErr
	}

	result, err := mcp.NewToolResultJSON(state)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	at := models.Coordinates{Lat: lat, Lng: lng}
	if !at.Valid() {
		return mcp.NewToolResultError("coordinates out of range"), nil
	}
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := models.ParseKind(kind); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values := app.FormValues{
		Kind:      kind,
		Distance:  formatArg(req, "distance"),
		Duration:  formatArg(req, "duration"),
		Cadence:   formatArg(req, "cadence"),
		Elevation: formatArg(req, "elevation"),
	}

	w, err := h.ds.LogWorkout(ctx, at, values)
	if err != nil {
		h.log.Warn("mcp log_workout", "error", err)
		return mcp.NewToolResultError("workout not logged: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) workoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := kindArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, kind)
	if err != nil {
		h.log.Error("mcp workout_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summarize(workouts))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func kindArg(req mcp.CallToolRequest) (models.Kind, error) {
	raw := req.GetString("type", "")
	if raw == "" {
		return "", nil
	}
	return models.ParseKind(raw)
}

// formatArg renders a numeric argument the way a form field would hold it.
// Missing arguments become empty fields.
func formatArg(req mcp.CallToolRequest, key string) string {
	if _, ok := req.GetArguments()[key]; !ok {
		return ""
	}
	return strconv.FormatFloat(req.GetFloat(key, 0), 'f', -1, 64)
}
