package marathon

import (
	"context"
	"sync"
	"time"

	"github.com/seplitza/rejuvena-gateway/internal/telemetry/metrics"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ViewState is the lifecycle phase of a day view.
type ViewState string

const (
	// StateLoading: initial load in progress, nothing to show yet.
	StateLoading ViewState = "loading"
	// StateActivating: load hit a transient activation error, a retry is scheduled.
	StateActivating ViewState = "activating"
	// StateError: load failed terminally.
	StateError ViewState = "error"
	// StateReady: day data available.
	StateReady ViewState = "ready"
)

// DayView is the server-side state of one open marathon day. The UI polls its
// snapshot while the load sequence (and its bounded retries) runs in the
// background. Every load carries a generation number; results of a superseded
// generation are discarded, so the last requested load always wins.
type DayView struct {
	// id correlates log lines and traces of one view's load attempts
	id       string
	courseID string
	dayID    string

	loader  *Loader
	retry   *RetryController
	status  *StatusUpdater
	metrics *metrics.Manager

	mu         sync.Mutex
	generation uint64
	closed     bool
	state      ViewState
	errMessage string
	result     *DayLoadResult
	startedAt  time.Time
}

func newDayView(
	courseID, dayID string,
	loader *Loader,
	status *StatusUpdater,
	metrics *metrics.Manager,
) *DayView {
	return &DayView{
		id:       uuid.NewString(),
		courseID: courseID,
		dayID:    dayID,
		loader:   loader,
		retry:    NewRetryController(nil),
		status:   status,
		metrics:  metrics,
		state:    StateLoading,
	}
}

// Reload discards current data and overlay state and starts a fresh load.
func (v *DayView) Reload() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.generation++
	gen := v.generation
	v.state = StateLoading
	v.errMessage = ""
	v.result = nil
	v.startedAt = time.Now()
	v.mu.Unlock()

	v.retry.Reset()
	v.status.Clear()

	go v.load(gen)
}

func (v *DayView) load(gen uint64) {
	ctx, span := tracing.GlobalTracer.Start(context.Background(), "dayView.load")
	defer span.End()
	span.SetAttributes(
		attribute.String("view.id", v.id),
		attribute.String("course.id", v.courseID),
		attribute.String("day.id", v.dayID),
	)

	res, err := v.loader.Load(ctx, v.courseID, v.dayID)

	v.mu.Lock()
	if v.closed || gen != v.generation {
		v.mu.Unlock()
		log.Debugf("day [%s/%s] load superseded, result discarded", v.courseID, v.dayID)
		return
	}

	if err == nil {
		v.state = StateReady
		v.result = res
		loadDuration := time.Since(v.startedAt)
		v.mu.Unlock()

		v.metrics.CounterDayLoads.With(prometheus.Labels{"outcome": "success"}).Inc()
		v.metrics.HistDayLoadDuration.Observe(loadDuration.Seconds())
		return
	}
	// tentatively mark as activating before the retry is armed, so the
	// scheduled reload can never observe (or overwrite) a stale state
	v.state = StateActivating
	v.mu.Unlock()

	retrying := v.retry.OnError(err, func() {
		v.mu.Lock()
		if v.closed || gen != v.generation {
			v.mu.Unlock()
			return
		}
		v.mu.Unlock()
		v.load(gen)
	})
	if retrying {
		v.metrics.CounterActivationRetries.Inc()
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return
	}

	log.Errorf("day [%s/%s] load failed: %s", v.courseID, v.dayID, err)
	v.state = StateError
	v.errMessage = ErrorMessage(err, "Не удалось загрузить день курса")
	v.metrics.CounterDayLoads.With(prometheus.Labels{"outcome": "error"}).Inc()
}

// close stops the retry timer and marks the view dead; in-flight load results
// will be discarded.
func (v *DayView) close() {
	v.mu.Lock()
	v.closed = true
	v.generation++
	v.mu.Unlock()
	v.retry.Stop()
}

// SetExerciseStatus toggles completion for one exercise of the loaded day.
func (v *DayView) SetExerciseStatus(ctx context.Context, key, marathonExerciseID string, newStatus bool) error {
	v.mu.Lock()
	if v.state != StateReady || v.result == nil {
		v.mu.Unlock()
		return ErrDayNotReady
	}
	resolvedDayID := v.result.ResolvedDayID
	v.mu.Unlock()

	return v.status.SetStatus(ctx, key, resolvedDayID, marathonExerciseID, newStatus)
}

// DaySnapshot is the poll response of an open day view.
type DaySnapshot struct {
	ViewID      string    `json:"viewId"`
	State       ViewState `json:"state"`
	Attempt     int       `json:"attempt,omitempty"`
	MaxAttempts int       `json:"maxAttempts,omitempty"`
	Error       string    `json:"error,omitempty"`

	CourseID       string `json:"courseId"`
	DayID          string `json:"dayId"`
	ResolvedDayID  string `json:"resolvedDayId,omitempty"`
	WelcomeMessage string `json:"welcomeMessage,omitempty"`

	Categories []CategorySnapshot `json:"categories,omitempty"`
}

type CategorySnapshot struct {
	ID        string             `json:"id"`
	Exercises []ExerciseSnapshot `json:"exercises"`
}

// ExerciseSnapshot is an Exercise with the status overlay applied. Key is what
// the status toggle endpoint expects back.
type ExerciseSnapshot struct {
	Exercise
	Key      string `json:"key"`
	Changing bool   `json:"changing"`
}

// Snapshot renders the current view state. For a ready view the exercise tree
// carries overlay-corrected completion values and in-flight markers.
func (v *DayView) Snapshot() DaySnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := DaySnapshot{
		ViewID:   v.id,
		State:    v.state,
		CourseID: v.courseID,
		DayID:    v.dayID,
	}

	switch v.state {
	case StateActivating:
		snap.Attempt = v.retry.Attempt()
		snap.MaxAttempts = MaxActivationRetries
	case StateError:
		snap.Error = v.errMessage
	case StateReady:
		snap.ResolvedDayID = v.result.ResolvedDayID
		snap.WelcomeMessage = v.result.Marathon.WelcomeMessage
		snap.Categories = v.snapshotCategoriesLocked()
	}

	return snap
}

func (v *DayView) snapshotCategoriesLocked() []CategorySnapshot {
	categories := make([]CategorySnapshot, 0, len(v.result.Exercises.Categories))
	index := 0
	for _, cat := range v.result.Exercises.Categories {
		catSnap := CategorySnapshot{
			ID:        cat.ID,
			Exercises: make([]ExerciseSnapshot, 0, len(cat.Exercises)),
		}
		for _, ex := range cat.Exercises {
			key := ExerciseKey(index, cat.ID, ex.ID)
			exSnap := ExerciseSnapshot{
				Exercise: ex,
				Key:      key,
				Changing: v.status.IsChanging(key),
			}
			exSnap.IsDone = v.status.Status(key, ex.IsDone)
			catSnap.Exercises = append(catSnap.Exercises, exSnap)
			index++
		}
		categories = append(categories, catSnap)
	}
	return categories
}

// Views tracks the open day view of each session. A session has at most one
// open day view: opening a new one tears down the previous, cancelling its
// pending retries and orphaning its in-flight loads.
type Views struct {
	loader  *Loader
	status  func() *StatusUpdater
	metrics *metrics.Manager

	mu    sync.Mutex
	views map[string]*DayView
}

func NewViews(loader *Loader, statusFactory func() *StatusUpdater, metrics *metrics.Manager) *Views {
	return &Views{
		loader:  loader,
		status:  statusFactory,
		metrics: metrics,
		views:   make(map[string]*DayView),
	}
}

// Open creates (and starts loading) a day view for the session, closing the
// session's previous view if one is open.
func (vs *Views) Open(sessionID, courseID, dayID string) *DayView {
	vs.mu.Lock()
	prev := vs.views[sessionID]
	view := newDayView(courseID, dayID, vs.loader, vs.status(), vs.metrics)
	vs.views[sessionID] = view
	vs.mu.Unlock()

	if prev != nil {
		prev.close()
	} else {
		vs.metrics.GaugeOpenDayView.Inc()
	}

	log.Tracef("session [%s]: opened day view [%s/%s]", sessionID, courseID, dayID)
	view.Reload()
	return view
}

// Get returns the session's open day view, if any.
func (vs *Views) Get(sessionID string) (*DayView, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	view, ok := vs.views[sessionID]
	return view, ok
}

// Close tears down the session's open day view.
func (vs *Views) Close(sessionID string) {
	vs.mu.Lock()
	view, ok := vs.views[sessionID]
	if ok {
		delete(vs.views, sessionID)
	}
	vs.mu.Unlock()

	if ok {
		view.close()
		vs.metrics.GaugeOpenDayView.Dec()
	}
}

// CloseAll tears down every open view, used on server shutdown.
func (vs *Views) CloseAll() {
	vs.mu.Lock()
	views := vs.views
	vs.views = make(map[string]*DayView)
	vs.mu.Unlock()

	for _, view := range views {
		view.close()
		vs.metrics.GaugeOpenDayView.Dec()
	}
}
