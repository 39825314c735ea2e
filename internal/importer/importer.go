package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/storage"
)

// Logger logs one workout at a location. *mcp.HTTPClient satisfies it.
type Logger interface {
	LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (*models.Workout, error)
}

// Stats tracks import progress.
type Stats struct {
	Total    int
	Imported int
	Skipped  int
	Rejected int
}

// Importer replays entries against a Logger. Lines already imported are
// remembered in the state store and skipped on later runs. A line is keyed
// by its text and by how many identical lines precede it, so repeated
// workouts in one file are each imported once.
type Importer struct {
	client Logger
	state  storage.Store
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Importer. client may be nil in dry-run mode.
func New(client Logger, state storage.Store, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{client: client, state: state, dryRun: dryRun, log: log}
}

// Run imports entries in order. Entries the server rejects are counted and
// skipped; transport failures stop the run.
func (im *Importer) Run(ctx context.Context, entries []Entry) (*Stats, error) {
	seen := make(map[string]int)
	for _, e := range entries {
		im.stats.Total++
		key := entryKey(e, seen[e.Raw])
		seen[e.Raw]++

		if _, err := im.state.Get(ctx, key); err == nil {
			im.stats.Skipped++
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return &im.stats, fmt.Errorf("checking import state: %w", err)
		}

		if im.dryRun {
			im.log.Info("would import", "line", e.Line, "kind", e.Values.Kind, "coordinates", e.At.String())
			im.stats.Imported++
			continue
		}

		w, err := im.client.LogWorkout(ctx, e.At, e.Values)
		if err != nil {
			if rejected(err) {
				im.log.Warn("workout rejected", "line", e.Line, "error", err)
				im.stats.Rejected++
				continue
			}
			return &im.stats, fmt.Errorf("line %d: %w", e.Line, err)
		}

		if err := im.state.Set(ctx, key, w.ID+" "+time.Now().UTC().Format(time.RFC3339)); err != nil {
			return &im.stats, fmt.Errorf("recording line %d: %w", e.Line, err)
		}
		im.stats.Imported++
		im.log.Info("imported", "line", e.Line, "id", w.ID, "label", w.Label)
	}
	return &im.stats, nil
}

// rejected reports whether err is the server refusing the workout rather
// than a transport failure.
func rejected(err error) bool {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode() == http.StatusUnprocessableEntity
	}
	return errors.Is(err, models.ErrInvalidInput)
}

// entryKey identifies the n-th occurrence of e's line. The first occurrence
// hashes the line alone.
func entryKey(e Entry, n int) string {
	raw := e.Raw
	if n > 0 {
		raw += "\x00" + strconv.Itoa(n)
	}
	sum := sha256.Sum256([]byte(raw))
	return "import:" + hex.EncodeToString(sum[:])
}
