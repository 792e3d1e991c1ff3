package marathon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// APIError is a non-2xx reply of the course backend. The Error() text
// deliberately keeps both the status code and the backend message, since
// the activation retry heuristic matches on error text (see retry.go).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message)
}

// Client talks to the remote course backend REST API. The backend owns all
// course/marathon state; the gateway never persists any of it.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// StartMarathon activates the marathon for the current user and returns the
// authoritative day lists. The call is idempotent, repeated calls are safe.
func (c *Client) StartMarathon(ctx context.Context, marathonID string, tzOffsetMinutes int) (*Marathon, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.startMarathon")
	defer span.End()
	span.SetAttributes(attribute.String("marathon.id", marathonID))

	reqURL := fmt.Sprintf(
		"%s/usermarathon/startmarathon?marathonId=%s&timeZoneOffset=%d",
		c.endpoint, url.QueryEscape(marathonID), tzOffsetMinutes,
	)

	var m Marathon
	if err := c.getJSON(ctx, reqURL, &m); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("start marathon: %s", err))
		return nil, fmt.Errorf("start marathon: %w", err)
	}

	log.Debugf("marathon [%s] started: %d days, %d extension days",
		marathonID, len(m.MarathonDays), len(m.GreatExtensionDays))
	return &m, nil
}

// GetDayExercises fetches the category/exercise tree of one day. The day key
// must already be resolved to a backend identifier.
func (c *Client) GetDayExercises(ctx context.Context, marathonID, dayID string, tzOffsetMinutes int) (*DayExercises, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.getDayExercises")
	defer span.End()
	span.SetAttributes(
		attribute.String("marathon.id", marathonID),
		attribute.String("day.id", dayID),
	)

	reqURL := fmt.Sprintf(
		"%s/usermarathon/getdayexercise?marathonId=%s&dayId=%s&timeZoneOffset=%d",
		c.endpoint, url.QueryEscape(marathonID), url.QueryEscape(dayID), tzOffsetMinutes,
	)

	var de DayExercises
	if err := c.getJSON(ctx, reqURL, &de); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get day exercises: %s", err))
		return nil, fmt.Errorf("get day exercises: %w", err)
	}

	return &de, nil
}

// ChangeExerciseStatus flips the completion flag of a single exercise. Note
// that the backend keys this mutation by marathonExerciseId, not by the
// display identifier.
func (c *Client) ChangeExerciseStatus(ctx context.Context, dayID, marathonExerciseID string, status bool) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.changeExerciseStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("day.id", dayID),
		attribute.String("exercise.marathonExerciseId", marathonExerciseID),
		attribute.Bool("exercise.status", status),
	)

	reqBody := struct {
		DayID              string `json:"dayId"`
		MarathonExerciseID string `json:"marathonExerciseId"`
		Status             bool   `json:"status"`
	}{
		DayID:              dayID,
		MarathonExerciseID: marathonExerciseID,
		Status:             status,
	}

	if err := c.postJSON(ctx, c.endpoint+"/usermarathon/changeexercisestatus", reqBody, nil); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("change exercise status: %s", err))
		return fmt.Errorf("change exercise status: %w", err)
	}

	return nil
}

func (c *Client) GetComments(ctx context.Context, exerciseID, courseID string, page, size int) ([]Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.getComments")
	defer span.End()
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	reqURL := fmt.Sprintf(
		"%s/comments?exerciseId=%s&courseId=%s&page=%s&size=%s",
		c.endpoint,
		url.QueryEscape(exerciseID), url.QueryEscape(courseID),
		strconv.Itoa(page), strconv.Itoa(size),
	)

	var commentsResp struct {
		Items []Comment `json:"items"`
	}
	if err := c.getJSON(ctx, reqURL, &commentsResp); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get comments: %s", err))
		return nil, fmt.Errorf("get comments: %w", err)
	}

	return commentsResp.Items, nil
}

func (c *Client) PostComment(ctx context.Context, exerciseID, text string) (*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.postComment")
	defer span.End()
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	reqBody := struct {
		ExerciseID string `json:"exerciseId"`
		Text       string `json:"text"`
	}{
		ExerciseID: exerciseID,
		Text:       text,
	}

	var created Comment
	if err := c.postJSON(ctx, c.endpoint+"/comments", reqBody, &created); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("post comment: %s", err))
		return nil, fmt.Errorf("post comment: %w", err)
	}

	return &created, nil
}

func (c *Client) GetUserProfile(ctx context.Context) (*UserProfile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "marathonClient.getUserProfile")
	defer span.End()

	var profile UserProfile
	if err := c.getJSON(ctx, c.endpoint+"/user/profile", &profile); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get user profile: %s", err))
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	return &profile, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *Client) postJSON(ctx context.Context, reqURL string, body, dest interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("course api request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read course api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    backendErrorMessage(respBytes),
		}
	}

	if dest == nil || len(respBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBytes, dest); err != nil {
		return fmt.Errorf("unmarshal course api response: %w", err)
	}

	return nil
}

// backendErrorMessage pulls the human readable message out of a backend error
// body of the shape {"message": "..."}; empty when the body has another shape.
func backendErrorMessage(body []byte) string {
	var errBody struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil {
		return ""
	}
	return errBody.Message
}

// ErrorMessage extracts a user presentable message from a client error:
// the backend provided message when there is one, the fallback otherwise.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
