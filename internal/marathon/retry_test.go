package marathon

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errActivationPending = errors.New("request failed with status code 400: Order not found")

// fakeScheduler records scheduled retries instead of arming real timers.
type fakeScheduler struct {
	delays []time.Duration
	fns    []func()
}

func (fs *fakeScheduler) schedule(d time.Duration, fn func()) *time.Timer {
	fs.delays = append(fs.delays, d)
	fs.fns = append(fs.fns, fn)
	// a long-fused real timer, stopped before it can ever fire
	return time.AfterFunc(time.Hour, func() {})
}

func newTestRetryController() (*RetryController, *fakeScheduler) {
	rc := NewRetryController(nil)
	fs := &fakeScheduler{}
	rc.schedule = fs.schedule
	return rc, fs
}

func TestIsTransientActivation(t *testing.T) {
	assert.False(t, IsTransientActivation(nil))
	assert.False(t, IsTransientActivation(errors.New("internal server error")))
	assert.True(t, IsTransientActivation(errors.New("Order not found")))
	assert.True(t, IsTransientActivation(errors.New("request failed with status code 400")))
	assert.True(t, IsTransientActivation(fmt.Errorf("start marathon: %w", errActivationPending)))
}

func TestRetryController_BackoffDelays(t *testing.T) {
	rc, fs := newTestRetryController()

	reloads := 0
	for i := 0; i < MaxActivationRetries; i++ {
		scheduled := rc.OnError(errActivationPending, func() { reloads++ })
		require.True(t, scheduled, "retry %d should be scheduled", i+1)
	}

	// attempt cap reached, the next transient error is terminal
	assert.False(t, rc.OnError(errActivationPending, func() { reloads++ }))
	assert.Equal(t, MaxActivationRetries, rc.Attempt())

	// delays grow linearly: 1s, 2s, 3s, 4s, 5s
	require.Len(t, fs.delays, MaxActivationRetries)
	for i, d := range fs.delays {
		assert.Equal(t, time.Duration(i+1)*time.Second, d)
	}

	// reload functions were captured, not run
	assert.Equal(t, 0, reloads)
	for _, fn := range fs.fns {
		fn()
	}
	assert.Equal(t, MaxActivationRetries, reloads)
}

func TestRetryController_TerminalErrors(t *testing.T) {
	rc, fs := newTestRetryController()

	assert.False(t, rc.OnError(errors.New("boom"), func() {}))
	assert.False(t, rc.OnError(nil, func() {}))
	assert.Empty(t, fs.delays)
	assert.Equal(t, 0, rc.Attempt())
}

func TestRetryController_Reset(t *testing.T) {
	rc, fs := newTestRetryController()

	require.True(t, rc.OnError(errActivationPending, func() {}))
	require.True(t, rc.OnError(errActivationPending, func() {}))
	assert.Equal(t, 2, rc.Attempt())

	// identity change: counter starts over and delays restart at 1s
	rc.Reset()
	assert.Equal(t, 0, rc.Attempt())

	require.True(t, rc.OnError(errActivationPending, func() {}))
	assert.Equal(t, time.Second, fs.delays[len(fs.delays)-1])
}

func TestRetryController_Stop(t *testing.T) {
	rc, _ := newTestRetryController()

	require.True(t, rc.OnError(errActivationPending, func() {}))
	rc.Stop()

	// no retries scheduled after teardown, transient or not
	assert.False(t, rc.OnError(errActivationPending, func() {}))
	assert.Equal(t, 1, rc.Attempt())
}

func TestRetryController_StopCancelsPendingTimer(t *testing.T) {
	rc := NewRetryController(nil)

	fired := make(chan struct{})
	require.True(t, rc.OnError(errActivationPending, func() { close(fired) }))
	rc.Stop()

	select {
	case <-fired:
		t.Fatal("retry fired after Stop")
	case <-time.After(1200 * time.Millisecond):
	}
}
