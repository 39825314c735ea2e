package view

import (
	"sync"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// FormState is what the form surface currently shows.
type FormState struct {
	Values        app.FormValues `json:"values"`
	Visible       bool           `json:"visible"`
	Focused       string         `json:"focused,omitempty"`
	CadenceRow    bool           `json:"cadence_row"`
	ElevationRow  bool           `json:"elevation_row"`
	LayoutPending bool           `json:"layout_pending"`
}

// Form is an in-memory workout form.
type Form struct {
	mu    sync.Mutex
	state FormState
}

var _ app.Form = (*Form)(nil)

// NewForm creates a hidden form on the running kind.
func NewForm() *Form {
	return &Form{state: FormState{
		Values:     app.FormValues{Kind: string(models.KindRunning)},
		CadenceRow: true,
	}}
}

func (f *Form) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Visible = true
}

func (f *Form) FocusDistance() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Focused = "distance"
}

func (f *Form) Fill(v app.FormValues) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.Kind == "" {
		v.Kind = f.state.Values.Kind
	}
	f.state.Values = v
}

func (f *Form) Values() app.FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Values
}

func (f *Form) ShowKindFields(kind models.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Values.Kind = string(kind)
	f.state.CadenceRow = kind == models.KindRunning
	f.state.ElevationRow = kind == models.KindCycling
}

// Clear empties the numeric inputs; the kind selector keeps its value.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Values = app.FormValues{Kind: f.state.Values.Kind}
}

func (f *Form) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Visible = false
	f.state.Focused = ""
	f.state.LayoutPending = true
}

func (f *Form) RestoreLayout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.LayoutPending = false
}

// State returns a copy of the form state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
