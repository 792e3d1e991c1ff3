package marathon

import (
	"errors"
	"fmt"
	"time"
)

// Marathon is the activation response of the course backend. It is fetched
// fresh on every activation call and kept only in transient view state.
type Marathon struct {
	ID                 string `json:"marathonId"`
	MarathonDays       []Day  `json:"marathonDays"`
	GreatExtensionDays []Day  `json:"greatExtensionDays"`
	OldGreatExtensions []Day  `json:"oldGreatExtensions"`
	Rule               string `json:"rule"`
	WelcomeMessage     string `json:"welcomeMessage"`
	IsAcceptCourseTerm bool   `json:"isAcceptCourseTerm"`
}

// AllDays returns the ordinary days followed by the bonus (great extension)
// days, in their returned order. Day resolution operates on this combined list.
func (m *Marathon) AllDays() []Day {
	all := make([]Day, 0, len(m.MarathonDays)+len(m.GreatExtensionDays))
	all = append(all, m.MarathonDays...)
	all = append(all, m.GreatExtensionDays...)
	return all
}

// Day identifiers are opaque backend keys (GUIDs); Day is the 1-based ordinal
// position within the course. Unpublished days are absent from the returned list.
type Day struct {
	ID  string `json:"id"`
	Day int    `json:"day"`
}

type DayExercises struct {
	Categories []Category `json:"categories"`
}

type Category struct {
	ID        string     `json:"id"`
	Exercises []Exercise `json:"exercises"`
}

type Exercise struct {
	ID                 string `json:"id"`
	MarathonExerciseID string `json:"marathonExerciseId"`
	// ExerciseName is the bold part of the name (e.g. "Вращения"),
	// MarathonExerciseName the regular part (e.g. "головой")
	ExerciseName         string `json:"exerciseName"`
	MarathonExerciseName string `json:"marathonExerciseName"`
	Description          string `json:"description"` // HTML from the backend
	VideoURL             string `json:"videoUrl"`
	Type                 string `json:"type"` // Video | Reading | Practice
	Duration             int    `json:"duration"` // seconds
	IsDone               bool   `json:"isDone"`
	IsNew                bool   `json:"isNew"`
	BlockExercise        bool   `json:"blockExercise"`
}

type Comment struct {
	ID         string    `json:"id"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoUrl"`
}

// DayCurrent and the DayOrdinalPrefix'ed tokens are symbolic day identifiers
// resolved against the activation response; anything else is treated as an
// already-resolved backend day key.
const (
	DayCurrent       = "current"
	DayOrdinalPrefix = "day-"
)

var (
	ErrNoCurrentDay = errors.New("no current day found in marathon")
	ErrDayNotReady  = errors.New("day view is not ready")
)

type DayNotFoundError struct {
	Day int
}

func (e *DayNotFoundError) Error() string {
	return fmt.Sprintf("day %d not found in marathon", e.Day)
}

// ExerciseKey builds the composite key used to track per-exercise in-flight and
// overlay status. The positional index disambiguates exercises that share a
// display identifier across categories or day reloads. Backend identifiers are
// GUIDs and never contain '|', so the join is unambiguous.
func ExerciseKey(index int, categoryID, exerciseID string) string {
	return fmt.Sprintf("%d|%s|%s", index, categoryID, exerciseID)
}

// TimezoneOffsetMinutes returns the calendar offset in minutes to add to local
// time to reach UTC, matching the convention of JS Date.getTimezoneOffset()
// which the course backend expects (e.g. UTC+2 yields -120).
func TimezoneOffsetMinutes(t time.Time) int {
	_, offsetSeconds := t.Zone()
	return -offsetSeconds / 60
}
