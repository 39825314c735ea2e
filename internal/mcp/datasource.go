package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// ErrNotFound is returned by GetWorkout for an unknown id.
var ErrNotFound = errors.New("workout not found")

// DataSource abstracts the workout data for MCP tools. Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, kind models.Kind) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id string) (*models.Workout, error)
	MapState(ctx context.Context) (*app.Snapshot, error)
	LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (*models.Workout, error)
}

// Controller is the part of app.Controller Local needs.
type Controller interface {
	LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (models.Workout, error)
	Snapshot(ctx context.Context) (app.Snapshot, error)
}

// Local serves MCP requests from the controller running in this process.
type Local struct {
	ctl Controller
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource backed by ctl.
func NewLocal(ctl Controller) *Local {
	return &Local{ctl: ctl}
}

func (l *Local) ListWorkouts(ctx context.Context, kind models.Kind) ([]models.Workout, error) {
	snap, err := l.ctl.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filterKind(snap.Workouts, kind), nil
}

func (l *Local) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	snap, err := l.ctl.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.Workouts {
		if snap.Workouts[i].ID == id {
			return &snap.Workouts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (l *Local) MapState(ctx context.Context) (*app.Snapshot, error) {
	snap, err := l.ctl.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// LogWorkout clicks the map at the given location and submits v as a single
// controller event.
func (l *Local) LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (*models.Workout, error) {
	w, err := l.ctl.LogWorkout(ctx, at, v)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// filterKind keeps workouts of kind; an empty kind keeps all.
func filterKind(in []models.Workout, kind models.Kind) []models.Workout {
	out := make([]models.Workout, 0, len(in))
	for _, w := range in {
		if kind == "" || w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}
