package marathon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/seplitza/rejuvena-gateway/internal/session"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/metrics"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"
	"github.com/seplitza/rejuvena-gateway/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCommentsPage = 1
	defaultCommentsSize = 20
)

type Handler struct {
	views   *Views
	client  *Client
	metrics *metrics.Manager
}

func NewHandler(views *Views, client *Client, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		views:   views,
		client:  client,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	dayRouter := router.PathPrefix("/marathon/{courseId}/day").Subrouter()
	dayRouter.HandleFunc("/{dayId}/open", handler.handleOpenDay).Methods("POST", "OPTIONS").Name("open-day")
	dayRouter.HandleFunc("/{dayId}", handler.handleGetDay).Methods("GET", "OPTIONS").Name("get-day")
	dayRouter.HandleFunc("/{dayId}", handler.handleCloseDay).Methods("DELETE", "OPTIONS").Name("close-day")
	dayRouter.HandleFunc("/{dayId}/exercise/status", handler.handleExerciseStatus).
		Methods("POST", "OPTIONS").Name("exercise-status")

	router.HandleFunc("/exercise/{exerciseId}/comments", handler.handleGetComments).
		Methods("GET", "OPTIONS").Name("get-comments")
	router.HandleFunc("/exercise/{exerciseId}/comments", handler.handlePostComment).
		Methods("POST", "OPTIONS").Name("post-comment")
	router.HandleFunc("/profile", handler.handleGetProfile).
		Methods("GET", "OPTIONS").Name("profile")
}

func (handler *Handler) handleOpenDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.openDay")
	defer span.End()

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	courseID := vars["courseId"]
	dayID := vars["dayId"]
	span.SetAttributes(
		attribute.String("course.id", courseID),
		attribute.String("day.id", dayID),
	)

	view := handler.views.Open(sess.Token, courseID, dayID)
	handler.writeSnapshot(w, span, view.Snapshot(), http.StatusAccepted)
}

func (handler *Handler) handleGetDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.getDay")
	defer span.End()

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	courseID := vars["courseId"]
	dayID := vars["dayId"]

	view, ok := handler.views.Get(sess.Token)
	if !ok || view.courseID != courseID || view.dayID != dayID {
		span.SetStatus(codes.Error, "day-view-not-open")
		http.Error(w, "day view not open", http.StatusNotFound)
		return
	}

	handler.writeSnapshot(w, span, view.Snapshot(), http.StatusOK)
}

func (handler *Handler) handleCloseDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.closeDay")
	defer span.End()

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.views.Close(sess.Token)
	pkg.WriteTextResponseOK(w, "closed")
}

func (handler *Handler) handleExerciseStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.exerciseStatus")
	defer span.End()

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	type statusRequest struct {
		Key                string `json:"key"`
		MarathonExerciseID string `json:"marathonExerciseId"`
		Status             bool   `json:"status"`
	}
	var statusReq statusRequest
	if err := json.NewDecoder(r.Body).Decode(&statusReq); err != nil {
		log.Errorf("change exercise status, unmarshal json params: %s", err)
		http.Error(w, "change status failed", http.StatusBadRequest)
		return
	}
	if statusReq.Key == "" || statusReq.MarathonExerciseID == "" {
		http.Error(w, "error, exercise key empty", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	view, ok := handler.views.Get(sess.Token)
	if !ok || view.courseID != vars["courseId"] || view.dayID != vars["dayId"] {
		span.SetStatus(codes.Error, "day-view-not-open")
		http.Error(w, "day view not open", http.StatusNotFound)
		return
	}

	if err := view.SetExerciseStatus(ctx, statusReq.Key, statusReq.MarathonExerciseID, statusReq.Status); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("set exercise status: %s", err))
		if errors.Is(err, ErrDayNotReady) {
			http.Error(w, "day not ready", http.StatusConflict)
			return
		}
		http.Error(w, ErrorMessage(err, "change status failed"), http.StatusBadGateway)
		return
	}

	handler.writeSnapshot(w, span, view.Snapshot(), http.StatusOK)
}

func (handler *Handler) handleGetComments(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.getComments")
	defer span.End()

	exerciseID := mux.Vars(r)["exerciseId"]
	courseID := r.URL.Query().Get("courseId")
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	page := queryIntParam(r, "page", defaultCommentsPage)
	size := queryIntParam(r, "size", defaultCommentsSize)

	comments, err := handler.client.GetComments(ctx, exerciseID, courseID, page, size)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get comments: %s", err))
		log.Errorf("get comments for exercise [%s]: %s", exerciseID, err)
		http.Error(w, "get comments failed", http.StatusBadGateway)
		return
	}

	commentsBytes, err := json.Marshal(comments)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, commentsBytes)
}

func (handler *Handler) handlePostComment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.postComment")
	defer span.End()

	vars := mux.Vars(r)
	exerciseID := vars["exerciseId"]
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	type commentRequest struct {
		Text string `json:"text"`
	}
	var commentReq commentRequest
	if err := json.NewDecoder(r.Body).Decode(&commentReq); err != nil {
		log.Errorf("post comment, unmarshal json params: %s", err)
		http.Error(w, "post comment failed", http.StatusBadRequest)
		return
	}
	if commentReq.Text == "" {
		http.Error(w, "error, comment text empty", http.StatusBadRequest)
		return
	}

	created, err := handler.client.PostComment(ctx, exerciseID, commentReq.Text)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("post comment: %s", err))
		log.Errorf("post comment for exercise [%s]: %s", exerciseID, err)
		http.Error(w, "post comment failed", http.StatusBadGateway)
		return
	}

	handler.metrics.CounterCommentsPosted.Inc()

	createdBytes, err := json.Marshal(created)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, createdBytes, http.StatusCreated)
}

func (handler *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "marathonHandler.getProfile")
	defer span.End()

	profile, err := handler.client.GetUserProfile(ctx)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get user profile: %s", err))
		http.Error(w, "get profile failed", http.StatusBadGateway)
		return
	}

	profileBytes, err := json.Marshal(profile)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileBytes)
}

func (handler *Handler) writeSnapshot(w http.ResponseWriter, span trace.Span, snap DaySnapshot, statusCode int) {
	snapBytes, err := json.Marshal(snap)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("marshal day snapshot: %s", err))
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, snapBytes, statusCode)
}

func queryIntParam(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
