package courses

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/seplitza/rejuvena-gateway/internal/events"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const rulesKeyPrefix = "rejuvena-course-rules||"

// RulesTracker records per-course terms acceptance. Activation responses feed
// it through the events bus; the value is persisted in redis so it survives
// gateway restarts.
type RulesTracker struct {
	redisClient *redis.Client
	rulesEvents <-chan events.CourseRulesAccepted
}

func NewRulesTracker(redisClient *redis.Client, bus *events.Bus) *RulesTracker {
	return &RulesTracker{
		redisClient: redisClient,
		rulesEvents: bus.SubscribeRulesAccepted("course-rules-tracker", 64),
	}
}

// Run consumes rules-accepted events until the context is done or the bus
// subscription is closed. Meant to be started as a goroutine at server setup.
func (rt *RulesTracker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Debugln("course rules tracker stopping")
			return
		case ev, ok := <-rt.rulesEvents:
			if !ok {
				log.Debugln("course rules tracker: events channel closed")
				return
			}
			if err := rt.set(ctx, ev.CourseID, ev.Accepted); err != nil {
				log.Errorf("course rules tracker, persist [%s]: %s", ev.CourseID, err)
			}
		}
	}
}

func (rt *RulesTracker) set(ctx context.Context, courseID string, accepted bool) error {
	key := rulesKeyPrefix + courseID
	if err := rt.redisClient.Set(ctx, key, strconv.FormatBool(accepted), 0).Err(); err != nil {
		return fmt.Errorf("set course rules acceptance: %w", err)
	}
	return nil
}

// Accepted reports whether the course terms were accepted; false when nothing
// was recorded for the course yet.
func (rt *RulesTracker) Accepted(ctx context.Context, courseID string) (bool, error) {
	cmd := rt.redisClient.Get(ctx, rulesKeyPrefix+courseID)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	accepted, err := strconv.ParseBool(cmd.Val())
	if err != nil {
		return false, fmt.Errorf("parse course rules acceptance: %w", err)
	}
	return accepted, nil
}
