package marathon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=dayloader_mocks_test.go -package=marathon_test

// courseAPI is the slice of the course backend the loader needs.
type courseAPI interface {
	StartMarathon(ctx context.Context, marathonID string, tzOffsetMinutes int) (*Marathon, error)
	GetDayExercises(ctx context.Context, marathonID, dayID string, tzOffsetMinutes int) (*DayExercises, error)
}

type rulesPublisher interface {
	PublishRulesAccepted(courseID string, accepted bool)
}

// DayLoadResult carries everything one successful load produced: the fresh
// activation data, the resolved backend day key and the day's exercise tree.
type DayLoadResult struct {
	Marathon      *Marathon
	ResolvedDayID string
	Exercises     *DayExercises
}

// Loader ensures a course is activated server-side, resolves symbolic day
// identifiers ("current", "day-N") to backend keys and fetches that day's
// exercises. It never retries on its own; retry policy lives in RetryController.
type Loader struct {
	api      courseAPI
	rulesBus rulesPublisher
	now      func() time.Time
}

func NewLoader(api courseAPI, rulesBus rulesPublisher) *Loader {
	return &Loader{
		api:      api,
		rulesBus: rulesBus,
		now:      time.Now,
	}
}

// Load runs the activate-then-fetch sequence. The second backend call never
// starts before the first one resolved.
func (l *Loader) Load(ctx context.Context, courseID, dayID string) (*DayLoadResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dayLoader.load")
	defer span.End()
	span.SetAttributes(
		attribute.String("course.id", courseID),
		attribute.String("day.id", dayID),
	)

	tzOffset := TimezoneOffsetMinutes(l.now())

	m, err := l.api.StartMarathon(ctx, courseID, tzOffset)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("activate: %s", err))
		return nil, err
	}

	log.Debugf("marathon [%s] activated, resolving day [%s]", courseID, dayID)

	// fire-and-forget notification for whoever tracks per-course rule acceptance
	if l.rulesBus != nil {
		l.rulesBus.PublishRulesAccepted(courseID, m.IsAcceptCourseTerm)
	}

	resolvedDayID, err := ResolveDayID(m, dayID)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("resolve day: %s", err))
		return nil, err
	}
	span.SetAttributes(attribute.String("day.resolvedId", resolvedDayID))

	exercises, err := l.api.GetDayExercises(ctx, courseID, resolvedDayID, tzOffset)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get day exercises: %s", err))
		return nil, err
	}

	return &DayLoadResult{
		Marathon:      m,
		ResolvedDayID: resolvedDayID,
		Exercises:     exercises,
	}, nil
}

// ResolveDayID maps a symbolic day identifier to a backend day key:
//   - "current" resolves to the last day of the combined ordinary+bonus list,
//   - "day-N" resolves to the first day whose ordinal equals N; a malformed
//     or non-positive N is a not-found,
//   - anything else is passed through as an already-resolved key.
func ResolveDayID(m *Marathon, dayID string) (string, error) {
	if dayID == DayCurrent {
		allDays := m.AllDays()
		if len(allDays) == 0 {
			return "", ErrNoCurrentDay
		}
		currentDay := allDays[len(allDays)-1]
		log.Debugf("current day is day %d with id %s", currentDay.Day, currentDay.ID)
		return currentDay.ID, nil
	}

	if strings.HasPrefix(dayID, DayOrdinalPrefix) {
		dayNumber, err := strconv.Atoi(strings.TrimPrefix(dayID, DayOrdinalPrefix))
		if err != nil || dayNumber <= 0 {
			return "", &DayNotFoundError{Day: dayNumber}
		}

		for _, d := range m.AllDays() {
			if d.Day == dayNumber {
				return d.ID, nil
			}
		}
		return "", &DayNotFoundError{Day: dayNumber}
	}

	return dayID, nil
}
