// Package app binds map clicks, form submissions and list clicks to the
// workout repository and the map session.
//
// The controller is single-threaded: every event runs to completion on the
// goroutine calling Run (or Drain) before the next one starts. Callbacks from
// the map, the geolocator and timers only enqueue events.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/mapty/internal/mapsession"
	"github.com/meltforce/mapty/internal/metrics"
	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/repository"
	"github.com/meltforce/mapty/internal/storage"
)

var (
	// ErrCreationDisabled is returned for map clicks and submissions while
	// the map is not ready.
	ErrCreationDisabled = errors.New("workout creation is unavailable: map not ready")
	// ErrNoPendingIntent is returned when the form is submitted without a
	// preceding map click.
	ErrNoPendingIntent = errors.New("no map location selected")
	// ErrStopped is returned by Call once Run has returned.
	ErrStopped = errors.New("controller stopped")
)

const (
	msgInvalidInput    = "Inputs have to be positive numbers!"
	msgNoPosition      = "Could not get your position"
	msgPersistFailed   = "Workout saved for this session only: it could not be stored."
	msgRestoreCorrupt  = "Stored workouts could not be read and were ignored."
	msgRestoreFailed   = "Stored workouts could not be loaded."
	msgMapInitFailed   = "The map could not be loaded."
	defaultFormHide    = time.Second
	defaultPanDuration = time.Second
	eventQueueCapacity = 64
)

// Deps are the collaborators the controller drives. Store and the view
// surfaces are required; Geolocator may be nil when the device has none.
type Deps struct {
	Map        MapProvider
	Geolocator mapsession.Geolocator
	Store      storage.Store
	Form       Form
	List       ListRenderer
	Notifier   Notifier
	Log        *slog.Logger
}

// Options tune the controller. Zero values select the defaults.
type Options struct {
	StoreKey      string
	Zoom          int
	GeoTimeout    time.Duration
	FormHideDelay time.Duration
	Now           func() time.Time
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	State       State               `json:"state"`
	Center      *models.Coordinates `json:"center,omitempty"`
	Zoom        int                 `json:"zoom"`
	Pending     *models.Coordinates `json:"pending_intent,omitempty"`
	Kind        models.Kind         `json:"kind"`
	Workouts    []models.Workout    `json:"workouts"`
	PositionErr string              `json:"position_error,omitempty"`
}

type result struct {
	value any
	err   error
}

type envelope struct {
	ev    Event
	reply chan result
}

// Controller owns the map session and the repository for its lifetime.
type Controller struct {
	maps     MapProvider
	geo      mapsession.Geolocator
	form     Form
	list     ListRenderer
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
	ctx      context.Context

	repo     *repository.Repository
	session  *mapsession.Session
	factory  *models.Factory
	handle   MapHandle
	state    State
	kind     models.Kind
	hideWait time.Duration

	queue   chan envelope
	stopped chan struct{}
}

// New creates a controller in StateInitializing. Call Start, then Run.
func New(deps Deps, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	hide := opts.FormHideDelay
	if hide < 0 {
		hide = 0
	} else if hide == 0 {
		hide = defaultFormHide
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		maps:     deps.Map,
		geo:      deps.Geolocator,
		form:     deps.Form,
		list:     deps.List,
		notifier: deps.Notifier,
		log:      log,
		now:      now,
		ctx:      context.Background(),
		repo:     repository.New(deps.Store, opts.StoreKey, log),
		session:  mapsession.New(opts.Zoom, opts.GeoTimeout),
		factory:  models.NewFactory(now),
		state:    StateInitializing,
		kind:     models.KindRunning,
		hideWait: hide,
		queue:    make(chan envelope, eventQueueCapacity),
		stopped:  make(chan struct{}),
	}
}

// State returns the current state. Only call it from the loop goroutine or
// when the loop is not running.
func (c *Controller) State() State { return c.state }

// Start restores stored workouts into the list and requests the device
// position. It must run before Run, on the goroutine that will run the loop.
func (c *Controller) Start(ctx context.Context) error {
	c.ctx = ctx
	c.restore(ctx)
	c.form.ShowKindFields(c.kind)
	return c.session.Acquire(ctx, c.geo, func(o mapsession.Outcome) {
		c.post(envelope{ev: PositionResolved{Outcome: o}})
	})
}

func (c *Controller) restore(ctx context.Context) {
	err := c.repo.Restore(ctx)
	switch {
	case errors.Is(err, repository.ErrCorruptData):
		c.log.Warn("stored workouts corrupt, starting empty", "error", err)
		c.notify(LevelWarning, msgRestoreCorrupt)
	case err != nil:
		c.log.Error("restoring workouts", "error", err)
		c.notify(LevelWarning, msgRestoreFailed)
	}
	all := c.repo.All()
	metrics.RecordRestored(len(all))
	for _, w := range all {
		c.list.RenderWorkout(Entry(w))
	}
}

// Run processes events until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-c.queue:
			c.dispatch(env)
		}
	}
}

// Drain handles every queued event without blocking and returns how many
// ran. It is an alternative to Run for callers that own the loop.
func (c *Controller) Drain() int {
	n := 0
	for {
		select {
		case env := <-c.queue:
			c.dispatch(env)
			n++
		default:
			return n
		}
	}
}

// Dispatch enqueues ev without waiting for it to be handled.
func (c *Controller) Dispatch(ev Event) {
	c.post(envelope{ev: ev})
}

// Call enqueues ev and waits for its result.
func (c *Controller) Call(ctx context.Context, ev Event) (any, error) {
	reply := make(chan result, 1)
	select {
	case c.queue <- envelope{ev: ev, reply: reply}:
	case <-c.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.value, r.err
	case <-c.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Controller) post(env envelope) {
	select {
	case c.queue <- env:
	case <-c.stopped:
	}
}

func (c *Controller) dispatch(env envelope) {
	v, err := c.Handle(env.ev)
	if env.reply != nil {
		env.reply <- result{value: v, err: err}
	}
}

// Handle runs one event synchronously. Only the loop goroutine may call it.
func (c *Controller) Handle(ev Event) (any, error) {
	switch e := ev.(type) {
	case PositionResolved:
		return nil, c.onPosition(e.Outcome)
	case MapClicked:
		return nil, c.onMapClick(e.At)
	case KindChanged:
		return nil, c.onKindChanged(e.Kind)
	case FormSubmitted:
		return c.onSubmit(e.Values)
	case WorkoutLogged:
		return c.onLog(e.At, e.Values)
	case WorkoutSelected:
		return c.onSelect(e.ID)
	case FormLayoutRestored:
		c.form.RestoreLayout()
		return nil, nil
	case ResetRequested:
		return nil, c.onReset()
	case SnapshotRequested:
		return c.snapshot(), nil
	}
	return nil, fmt.Errorf("unhandled event %T", ev)
}

func (c *Controller) onPosition(o mapsession.Outcome) error {
	if !c.session.Resolve(o) {
		return nil
	}
	if !c.session.Ready() {
		c.log.Warn("position unavailable", "error", c.session.Err())
		c.notify(LevelError, msgNoPosition)
		c.state = StateMapUnavailable
		return nil
	}

	center, _ := c.session.InitialCenter()
	handle, err := c.maps.Initialize(center, c.session.Zoom())
	if err != nil {
		c.log.Error("map initialization failed", "error", err)
		c.notify(LevelError, msgMapInitFailed)
		c.state = StateMapUnavailable
		return nil
	}
	c.handle = handle
	c.maps.OnClick(handle, func(at models.Coordinates) {
		c.Dispatch(MapClicked{At: at})
	})
	for _, w := range c.repo.All() {
		c.renderMarker(w)
	}
	c.state = StateMapReady
	c.log.Info("map ready", "center", center.String(), "zoom", c.session.Zoom(), "markers", c.repo.Len())
	return nil
}

func (c *Controller) onMapClick(at models.Coordinates) error {
	if c.state != StateMapReady && c.state != StateFormOpen {
		return ErrCreationDisabled
	}
	c.session.OnMapClicked(at)
	c.form.Show()
	c.form.FocusDistance()
	c.state = StateFormOpen
	return nil
}

func (c *Controller) onKindChanged(raw string) error {
	kind, err := models.ParseKind(raw)
	if err != nil {
		return err
	}
	c.kind = kind
	c.form.ShowKindFields(kind)
	return nil
}

func (c *Controller) onSubmit(values *FormValues) (models.Workout, error) {
	switch c.state {
	case StateInitializing, StateMapUnavailable:
		return models.Workout{}, ErrCreationDisabled
	case StateMapReady:
		return models.Workout{}, ErrNoPendingIntent
	}
	at, ok := c.session.PendingIntent()
	if !ok {
		return models.Workout{}, ErrNoPendingIntent
	}

	if values != nil {
		c.form.Fill(*values)
		if values.Kind != "" {
			if err := c.onKindChanged(values.Kind); err != nil {
				return models.Workout{}, err
			}
		}
	}

	c.state = StateSubmitting
	w, err := c.build(at)
	if err != nil {
		metrics.RecordValidationFailure()
		c.notify(LevelError, msgInvalidInput)
		c.state = StateFormOpen
		return models.Workout{}, err
	}

	c.repo.Add(w)
	c.renderMarker(w)
	c.list.RenderWorkout(Entry(w))
	c.hideForm()
	c.session.ResetIntent()
	metrics.RecordWorkoutCreated(string(w.Kind))
	c.log.Info("workout created", "id", w.ID, "kind", w.Kind, "coordinates", w.Coordinates.String())

	if err := c.repo.Persist(c.ctx); err != nil {
		c.log.Warn("workout not persisted", "id", w.ID, "error", err)
		c.notify(LevelWarning, msgPersistFailed)
	}
	metrics.RecordPersist(err)

	c.state = StateMapReady
	return *w, nil
}

func (c *Controller) onLog(at models.Coordinates, values FormValues) (models.Workout, error) {
	if err := c.onMapClick(at); err != nil {
		return models.Workout{}, err
	}
	return c.onSubmit(&values)
}

func (c *Controller) build(at models.Coordinates) (*models.Workout, error) {
	v := c.form.Values()
	kind := c.kind
	if v.Kind != "" {
		k, err := models.ParseKind(v.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	extra := v.Cadence
	if kind == models.KindCycling {
		extra = v.Elevation
	}
	return c.factory.Create(kind,
		models.ParseInput(v.Distance),
		models.ParseInput(v.Duration),
		at,
		models.ParseInput(extra),
	)
}

func (c *Controller) hideForm() {
	c.form.Clear()
	c.form.Hide()
	if c.hideWait == 0 {
		c.form.RestoreLayout()
		return
	}
	time.AfterFunc(c.hideWait, func() {
		c.Dispatch(FormLayoutRestored{})
	})
}

func (c *Controller) onSelect(id string) (models.Workout, error) {
	w, err := c.repo.FindByID(id)
	if err != nil {
		return models.Workout{}, err
	}
	if c.handle != nil {
		anim := Animation{Animate: true, PanDuration: defaultPanDuration}
		if err := c.maps.SetView(c.handle, w.Coordinates, c.session.Zoom(), anim); err != nil {
			c.log.Warn("pan to workout failed", "id", id, "error", err)
		}
	}
	if w.Acknowledge() {
		c.log.Debug("workout interaction", "id", id, "count", w.InteractionCount)
	}
	return *w, nil
}

func (c *Controller) onReset() error {
	if err := c.repo.Clear(c.ctx); err != nil {
		return err
	}
	c.list.Clear()
	if mc, ok := c.maps.(MarkerClearer); ok && c.handle != nil {
		if err := mc.ClearMarkers(c.handle); err != nil {
			c.log.Warn("clearing markers failed", "error", err)
		}
	}
	c.log.Info("workouts reset")
	return nil
}

func (c *Controller) renderMarker(w *models.Workout) {
	if c.handle == nil {
		return
	}
	if err := c.maps.AddMarker(c.handle, w.Coordinates, Popup(w)); err != nil {
		c.log.Warn("adding marker failed", "id", w.ID, "error", err)
	}
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:    c.state,
		Zoom:     c.session.Zoom(),
		Kind:     c.kind,
		Workouts: make([]models.Workout, 0, c.repo.Len()),
	}
	if center, ok := c.session.InitialCenter(); ok {
		s.Center = &center
	}
	if at, ok := c.session.PendingIntent(); ok {
		s.Pending = &at
	}
	if err := c.session.Err(); err != nil {
		s.PositionErr = err.Error()
	}
	for _, w := range c.repo.All() {
		s.Workouts = append(s.Workouts, *w)
	}
	return s
}

func (c *Controller) notify(level Level, msg string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Notice{Level: level, Message: msg, Time: c.now()})
}
