package marathon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seplitza/rejuvena-gateway/internal/marathon"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_StartMarathon(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usermarathon/startmarathon", r.URL.Path)
		assert.Equal(t, "m1", r.URL.Query().Get("marathonId"))
		assert.Equal(t, "-120", r.URL.Query().Get("timeZoneOffset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"marathonId": "m1",
			"marathonDays": [{"id": "d1", "day": 1}, {"id": "d2", "day": 2}],
			"greatExtensionDays": [{"id": "b1", "day": 3}],
			"isAcceptCourseTerm": true,
			"welcomeMessage": "Добро пожаловать!"
		}`))
	}))
	defer backend.Close()

	client := marathon.NewClient(backend.URL, backend.Client())
	m, err := client.StartMarathon(context.Background(), "m1", -120)
	require.NoError(t, err)

	assert.Equal(t, "m1", m.ID)
	assert.Len(t, m.MarathonDays, 2)
	assert.Len(t, m.GreatExtensionDays, 1)
	assert.True(t, m.IsAcceptCourseTerm)
	assert.Equal(t, "Добро пожаловать!", m.WelcomeMessage)
}

func TestClient_StartMarathon_ActivationPending(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Order not found"}`))
	}))
	defer backend.Close()

	client := marathon.NewClient(backend.URL, backend.Client())
	_, err := client.StartMarathon(context.Background(), "m1", 0)
	require.Error(t, err)

	// the backend message survives wrapping and drives the retry heuristic
	var apiErr *marathon.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Order not found", apiErr.Message)
	assert.True(t, marathon.IsTransientActivation(err))
}

func TestClient_GetDayExercises(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usermarathon/getdayexercise", r.URL.Path)
		assert.Equal(t, "m1", r.URL.Query().Get("marathonId"))
		assert.Equal(t, "d2", r.URL.Query().Get("dayId"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"categories": [
				{"id": "c1", "exercises": [
					{"id": "e1", "marathonExerciseId": "mex1", "exerciseName": "Вращения",
					 "marathonExerciseName": "головой", "type": "Video", "isDone": false}
				]}
			]
		}`))
	}))
	defer backend.Close()

	client := marathon.NewClient(backend.URL, backend.Client())
	de, err := client.GetDayExercises(context.Background(), "m1", "d2", 180)
	require.NoError(t, err)

	require.Len(t, de.Categories, 1)
	require.Len(t, de.Categories[0].Exercises, 1)
	ex := de.Categories[0].Exercises[0]
	assert.Equal(t, "mex1", ex.MarathonExerciseID)
	assert.Equal(t, "Вращения", ex.ExerciseName)
	assert.Equal(t, "головой", ex.MarathonExerciseName)
}

func TestClient_ChangeExerciseStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usermarathon/changeexercisestatus", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body struct {
			DayID              string `json:"dayId"`
			MarathonExerciseID string `json:"marathonExerciseId"`
			Status             bool   `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "d1", body.DayID)
		assert.Equal(t, "mex1", body.MarathonExerciseID)
		assert.True(t, body.Status)

		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	client := marathon.NewClient(backend.URL, backend.Client())
	require.NoError(t, client.ChangeExerciseStatus(context.Background(), "d1", "mex1", true))
}

func TestClient_GetComments(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/comments", r.URL.Path)
		assert.Equal(t, "e1", r.URL.Query().Get("exerciseId"))
		assert.Equal(t, "course1", r.URL.Query().Get("courseId"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"id": "com1", "userName": "Анна", "text": "Супер упражнение!"},
			{"id": "com2", "userName": "Мария", "text": "Сложно, но работает"}
		]}`))
	}))
	defer backend.Close()

	client := marathon.NewClient(backend.URL, backend.Client())
	comments, err := client.GetComments(context.Background(), "e1", "course1", 2, 10)
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "Анна", comments[0].UserName)
	assert.Equal(t, "Супер упражнение!", comments[0].Text)
}

func TestClient_PostComment(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/comments", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body struct {
			ExerciseID string `json:"exerciseId"`
			Text       string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "e1", body.ExerciseID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "com3", "text": "` + body.Text + `"}`))
	}))
	defer backend.Close()

	commentText := gofakeit.Sentence(6)
	client := marathon.NewClient(backend.URL, backend.Client())
	created, err := client.PostComment(context.Background(), "e1", commentText)
	require.NoError(t, err)
	assert.Equal(t, "com3", created.ID)
	assert.Equal(t, commentText, created.Text)
}
