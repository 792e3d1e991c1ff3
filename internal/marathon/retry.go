package marathon

import (
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// MaxActivationRetries caps how often a transient activation failure is
// retried before it turns terminal.
const MaxActivationRetries = 5

// ErrorClassifier decides whether a load error is worth retrying. It is kept
// separate from the scheduling logic so the heuristic can be swapped for a
// structured error code once the backend provides one.
type ErrorClassifier func(err error) bool

// IsTransientActivation matches backend errors that indicate course activation
// is still in progress. The backend offers no structured code for this state,
// so this is a substring heuristic on the error text ("Order not found" is the
// literal backend message, "400" covers the bare status line).
func IsTransientActivation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Order not found") || strings.Contains(msg, "400")
}

// RetryController schedules bounded re-loads while the load error stays
// transient. The pending timer is a scoped resource: it is cancelled when the
// request identity changes or when the owning view is torn down, so no retry
// ever fires after its owner is gone.
type RetryController struct {
	mu       sync.Mutex
	classify ErrorClassifier
	// schedule is time.AfterFunc, injectable for deterministic tests
	schedule func(d time.Duration, fn func()) *time.Timer

	attempt int
	timer   *time.Timer
	stopped bool
}

func NewRetryController(classify ErrorClassifier) *RetryController {
	if classify == nil {
		classify = IsTransientActivation
	}
	return &RetryController{
		classify: classify,
		schedule: time.AfterFunc,
	}
}

// Attempt returns the number of retries scheduled so far (0 before the first).
func (rc *RetryController) Attempt() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.attempt
}

// OnError inspects a load failure. For a transient activation error below the
// attempt cap it schedules reload after (1 + attempt) seconds and reports
// true; otherwise the error is terminal and it reports false.
func (rc *RetryController) OnError(err error, reload func()) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.stopped {
		return false
	}
	if !rc.classify(err) || rc.attempt >= MaxActivationRetries {
		return false
	}

	delay := time.Duration(1+rc.attempt) * time.Second
	rc.attempt++
	log.Debugf("activation in progress, retrying in %s (attempt %d/%d): %s",
		delay, rc.attempt, MaxActivationRetries, err)

	rc.cancelPendingLocked()
	rc.timer = rc.schedule(delay, reload)
	return true
}

// Reset prepares the controller for a new request identity: the pending retry
// (if any) is cancelled and the attempt counter starts over.
func (rc *RetryController) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cancelPendingLocked()
	rc.attempt = 0
	rc.stopped = false
}

// Stop cancels any pending retry and prevents new ones from being scheduled.
// Called on view teardown.
func (rc *RetryController) Stop() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cancelPendingLocked()
	rc.stopped = true
}

func (rc *RetryController) cancelPendingLocked() {
	if rc.timer != nil {
		rc.timer.Stop()
		rc.timer = nil
	}
}
