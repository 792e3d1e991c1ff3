package marathon

import (
	"context"
	"fmt"
	"sync"

	"github.com/seplitza/rejuvena-gateway/internal/telemetry/metrics"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=status_mocks_test.go -package=marathon_test

type statusAPI interface {
	ChangeExerciseStatus(ctx context.Context, dayID, marathonExerciseID string, status bool) error
}

// AlertFunc delivers a blocking user notification (e.g. a toggle failure).
type AlertFunc func(message string)

// StatusUpdater toggles exercise completion against the backend. While a
// toggle for an exercise key is in flight, further toggles for that key are
// ignored. Confirmed values are kept in an overlay consulted before the
// nominal backend value, so the UI reflects the change without a day reload.
type StatusUpdater struct {
	api     statusAPI
	alert   AlertFunc
	metrics *metrics.Manager

	mu       sync.Mutex
	changing map[string]struct{}
	overlay  map[string]bool
}

func NewStatusUpdater(api statusAPI, alert AlertFunc, metrics *metrics.Manager) *StatusUpdater {
	if alert == nil {
		alert = func(string) {}
	}
	return &StatusUpdater{
		api:      api,
		alert:    alert,
		metrics:  metrics,
		changing: make(map[string]struct{}),
		overlay:  make(map[string]bool),
	}
}

// SetStatus toggles the exercise to newStatus. A toggle already in flight for
// the same key makes this a no-op. On success the overlay records the new
// value; on failure the user is alerted and the overlay is left untouched.
func (su *StatusUpdater) SetStatus(ctx context.Context, key, dayID, marathonExerciseID string, newStatus bool) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "statusUpdater.setStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("exercise.key", key),
		attribute.Bool("exercise.newStatus", newStatus),
	)

	su.mu.Lock()
	if _, inFlight := su.changing[key]; inFlight {
		su.mu.Unlock()
		log.Debugf("status change for exercise [%s] already in flight, ignoring", key)
		span.SetStatus(codes.Ok, "already in flight")
		return nil
	}
	su.changing[key] = struct{}{}
	su.mu.Unlock()

	err := su.api.ChangeExerciseStatus(ctx, dayID, marathonExerciseID, newStatus)

	su.mu.Lock()
	delete(su.changing, key)
	if err == nil {
		su.overlay[key] = newStatus
	}
	su.mu.Unlock()

	if err != nil {
		su.metrics.CounterStatusToggles.With(prometheus.Labels{"outcome": "error"}).Inc()
		span.SetStatus(codes.Error, fmt.Sprintf("change status: %s", err))
		su.alert(ErrorMessage(err, "Не удалось изменить статус упражнения"))
		return fmt.Errorf("change exercise [%s] status: %w", key, err)
	}

	su.metrics.CounterStatusToggles.With(prometheus.Labels{"outcome": "success"}).Inc()
	return nil
}

// IsChanging reports whether a toggle for the key is currently in flight.
func (su *StatusUpdater) IsChanging(key string) bool {
	su.mu.Lock()
	defer su.mu.Unlock()
	_, ok := su.changing[key]
	return ok
}

// Status returns the effective completion value for the key: the confirmed
// overlay value when one exists, the nominal backend value otherwise.
func (su *StatusUpdater) Status(key string, nominal bool) bool {
	su.mu.Lock()
	defer su.mu.Unlock()
	if v, ok := su.overlay[key]; ok {
		return v
	}
	return nominal
}

// Snapshot returns a copy of the confirmed overlay values.
func (su *StatusUpdater) Snapshot() map[string]bool {
	su.mu.Lock()
	defer su.mu.Unlock()
	snap := make(map[string]bool, len(su.overlay))
	for k, v := range su.overlay {
		snap[k] = v
	}
	return snap
}

// Clear drops all overlay and in-flight state. Called when the view reloads
// and the backend values become authoritative again.
func (su *StatusUpdater) Clear() {
	su.mu.Lock()
	defer su.mu.Unlock()
	su.changing = make(map[string]struct{})
	su.overlay = make(map[string]bool)
}
