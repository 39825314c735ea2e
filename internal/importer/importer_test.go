package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/storage"
)

const sample = `# exported from the old tracker
kind;lat;lng;distance;duration;extra
running;38.72;-9.14;5.2;24;178

cycling; 38.70 ; -9.40 ;27;95;523
`

// TestParse verifies comments, the header and blank lines are skipped, and
// the extra column lands on the kind's field.
func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	run := entries[0]
	if run.Line != 3 || run.Values.Cadence != "178" || run.Values.Elevation != "" {
		t.Errorf("running entry = %+v", run)
	}
	ride := entries[1]
	if ride.At != (models.Coordinates{Lat: 38.70, Lng: -9.40}) {
		t.Errorf("coordinates = %v", ride.At)
	}
	if ride.Values.Elevation != "523" || ride.Values.Cadence != "" {
		t.Errorf("cycling values = %+v", ride.Values)
	}
}

// TestParseErrors verifies malformed lines report their line number.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"field count", "running;1;2;3\n", "line 1: want 6 fields"},
		{"kind", "\nrowing;1;2;3;4;5\n", "line 2:"},
		{"latitude", "running;north;2;3;4;5\n", "line 1: latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

type fakeLogger struct {
	calls int
	err   error
}

func (f *fakeLogger) LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (*models.Workout, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Workout{ID: fmt.Sprintf("%010d", f.calls), Kind: models.Kind(v.Kind)}, nil
}

type rejection struct{}

func (rejection) Error() string   { return "rejected" }
func (rejection) StatusCode() int { return 422 }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// TestRunSkipsImported verifies a second run over the same entries logs
// nothing new.
func TestRunSkipsImported(t *testing.T) {
	entries, _ := Parse(strings.NewReader(sample))
	state := storage.NewMemoryStore(0)
	client := &fakeLogger{}

	stats, err := New(client, state, false, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 2 || client.calls != 2 {
		t.Fatalf("first run = %+v, calls %d", stats, client.calls)
	}

	stats, err = New(client, state, false, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 2 || stats.Imported != 0 || client.calls != 2 {
		t.Errorf("second run = %+v, calls %d", stats, client.calls)
	}
}

// TestRunRepeatedLines verifies identical lines are separate workouts: all
// are imported once and all are skipped on the next run.
func TestRunRepeatedLines(t *testing.T) {
	entries, err := Parse(strings.NewReader("running;38.72;-9.14;5;25;170\nrunning;38.72;-9.14;5;25;170\n"))
	if err != nil {
		t.Fatal(err)
	}
	state := storage.NewMemoryStore(0)
	client := &fakeLogger{}

	stats, err := New(client, state, false, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 2 || stats.Skipped != 0 || client.calls != 2 {
		t.Fatalf("first run = %+v, calls %d", stats, client.calls)
	}

	stats, err = New(client, state, false, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 2 || stats.Imported != 0 || client.calls != 2 {
		t.Errorf("second run = %+v, calls %d", stats, client.calls)
	}
}

// TestRunRejected verifies server-side validation failures are counted and
// do not stop the run.
func TestRunRejected(t *testing.T) {
	entries, _ := Parse(strings.NewReader(sample))
	stats, err := New(&fakeLogger{err: rejection{}}, storage.NewMemoryStore(0), false, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rejected != 2 {
		t.Errorf("stats = %+v, want 2 rejected", stats)
	}
}

// TestRunTransportError verifies other failures stop the run.
func TestRunTransportError(t *testing.T) {
	entries, _ := Parse(strings.NewReader(sample))
	boom := errors.New("connection refused")
	_, err := New(&fakeLogger{err: boom}, storage.NewMemoryStore(0), false, discard()).Run(context.Background(), entries)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// TestRunDryRun verifies dry runs neither call the client nor record state.
func TestRunDryRun(t *testing.T) {
	entries, _ := Parse(strings.NewReader(sample))
	state := storage.NewMemoryStore(0)
	stats, err := New(nil, state, true, discard()).Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := state.Get(context.Background(), entryKey(entries[0], 0)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("dry run recorded state: %v", err)
	}
}
