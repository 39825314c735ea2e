package app

import (
	"context"
	"fmt"

	"github.com/meltforce/mapty/internal/models"
)

// The methods below are safe to call from any goroutine while Run is active.
// Each one is a single event on the loop.

// ClickMap sends a map click at the given location.
func (c *Controller) ClickMap(ctx context.Context, at models.Coordinates) error {
	_, err := c.Call(ctx, MapClicked{At: at})
	return err
}

// ChangeKind switches the form's activity selector.
func (c *Controller) ChangeKind(ctx context.Context, kind string) error {
	_, err := c.Call(ctx, KindChanged{Kind: kind})
	return err
}

// Submit fills the form with v and submits it.
func (c *Controller) Submit(ctx context.Context, v FormValues) (models.Workout, error) {
	res, err := c.Call(ctx, FormSubmitted{Values: &v})
	if err != nil {
		return models.Workout{}, err
	}
	return asWorkout(res)
}

// LogWorkout clicks the map at at and submits v in a single event. The
// workout is created at at even when other clicks arrive concurrently.
func (c *Controller) LogWorkout(ctx context.Context, at models.Coordinates, v FormValues) (models.Workout, error) {
	res, err := c.Call(ctx, WorkoutLogged{At: at, Values: v})
	if err != nil {
		return models.Workout{}, err
	}
	return asWorkout(res)
}

// Select acts as a click on the list entry of the workout with id.
func (c *Controller) Select(ctx context.Context, id string) (models.Workout, error) {
	res, err := c.Call(ctx, WorkoutSelected{ID: id})
	if err != nil {
		return models.Workout{}, err
	}
	return asWorkout(res)
}

// Reset drops every workout.
func (c *Controller) Reset(ctx context.Context) error {
	_, err := c.Call(ctx, ResetRequested{})
	return err
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	res, err := c.Call(ctx, SnapshotRequested{})
	if err != nil {
		return Snapshot{}, err
	}
	s, ok := res.(Snapshot)
	if !ok {
		return Snapshot{}, fmt.Errorf("unexpected snapshot result %T", res)
	}
	return s, nil
}

func asWorkout(v any) (models.Workout, error) {
	w, ok := v.(models.Workout)
	if !ok {
		return models.Workout{}, fmt.Errorf("unexpected workout result %T", v)
	}
	return w, nil
}
