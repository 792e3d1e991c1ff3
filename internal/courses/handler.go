package courses

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"
	"github.com/seplitza/rejuvena-gateway/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	catalog *Catalog
	rules   *RulesTracker
}

func NewHandler(catalog *Catalog, rules *RulesTracker) *Handler {
	return &Handler{
		catalog: catalog,
		rules:   rules,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/courses", handler.handleGetCourses).Methods("GET", "OPTIONS").Name("courses")
	router.HandleFunc("/courses/{id}", handler.handleGetCourse).Methods("GET", "OPTIONS").Name("course")
	router.HandleFunc("/courses/{id}/rules", handler.handleGetCourseRules).Methods("GET", "OPTIONS").Name("course-rules")
}

func (handler *Handler) handleGetCourses(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coursesHandler.getCourses")
	defer span.End()

	courses := handler.catalog.Courses()
	if tag := r.URL.Query().Get("tag"); tag != "" {
		span.SetAttributes(attribute.String("courses.tag", tag))
		courses = handler.catalog.FindByTag(tag)
	}

	coursesBytes, err := json.Marshal(courses)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("marshal courses: %s", err))
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, coursesBytes)
}

func (handler *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coursesHandler.getCourse")
	defer span.End()

	courseID := mux.Vars(r)["id"]
	span.SetAttributes(attribute.String("course.id", courseID))

	detail, ok := handler.catalog.Detail(courseID)
	if !ok {
		span.SetStatus(codes.Error, "course-not-found")
		http.Error(w, "course not found", http.StatusNotFound)
		return
	}

	detailBytes, err := json.Marshal(detail)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("marshal course detail: %s", err))
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, detailBytes)
}

func (handler *Handler) handleGetCourseRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coursesHandler.getCourseRules")
	defer span.End()

	courseID := mux.Vars(r)["id"]
	span.SetAttributes(attribute.String("course.id", courseID))

	accepted, err := handler.rules.Accepted(ctx, courseID)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get course rules acceptance: %s", err))
		log.Errorf("get rules acceptance for course [%s]: %s", courseID, err)
		http.Error(w, "get course rules failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"courseId": "%s", "accepted": %t}`, courseID, accepted))
}
