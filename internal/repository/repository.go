package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/storage"
)

// DefaultKey is the store key holding the workout list.
const DefaultKey = "workouts"

var (
	// ErrNotFound is returned by FindByID for an unknown id.
	ErrNotFound = errors.New("workout not found")
	// ErrCorruptData is returned by Restore when the stored blob cannot be
	// parsed. The repository is left empty.
	ErrCorruptData = errors.New("stored workouts are corrupt")
)

// Repository holds workouts in insertion order and round-trips them through
// a key-value store as a single JSON array.
type Repository struct {
	store    storage.Store
	key      string
	log      *slog.Logger
	workouts []*models.Workout
}

// New creates an empty Repository persisting under key.
func New(store storage.Store, key string, log *slog.Logger) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key, log: log}
}

// Add appends w. It does not persist.
func (r *Repository) Add(w *models.Workout) {
	r.workouts = append(r.workouts, w)
}

// All returns the workouts in insertion order. The returned slice is a copy;
// callers must not modify the records.
func (r *Repository) All() []*models.Workout {
	out := make([]*models.Workout, len(r.workouts))
	copy(out, r.workouts)
	return out
}

// Len returns the number of workouts held.
func (r *Repository) Len() int { return len(r.workouts) }

// FindByID returns the workout with the given id.
func (r *Repository) FindByID(id string) (*models.Workout, error) {
	for _, w := range r.workouts {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Persist writes the whole sequence under the repository key, replacing any
// previous value. Failures are returned as-is and never retried.
func (r *Repository) Persist(ctx context.Context) error {
	records := r.workouts
	if records == nil {
		records = []*models.Workout{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("persisting workouts: %w", err)
	}
	r.log.Debug("workouts persisted", "count", len(records), "bytes", len(data))
	return nil
}

// Restore replaces the in-memory sequence with the stored records. A missing
// key leaves the repository untouched. Restored records are plain data: they
// keep their stored label and metrics and do not accept acknowledgments.
func (r *Repository) Restore(ctx context.Context) error {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		r.log.Debug("no stored workouts", "key", r.key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading workouts: %w", err)
	}

	var records []*models.Workout
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		r.workouts = nil
		return fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	r.workouts = r.workouts[:0:0]
	for _, w := range records {
		if w != nil {
			r.workouts = append(r.workouts, w)
		}
	}
	r.log.Info("workouts restored", "count", len(r.workouts))
	return nil
}

// Clear empties the repository and removes the stored key.
func (r *Repository) Clear(ctx context.Context) error {
	r.workouts = nil
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	return nil
}
