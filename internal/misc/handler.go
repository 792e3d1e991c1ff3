package misc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/seplitza/rejuvena-gateway/internal/middleware"
	"github.com/seplitza/rejuvena-gateway/internal/session"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/metrics"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"
	"github.com/seplitza/rejuvena-gateway/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	sessions    *session.Store
	versionInfo string
	now         func() time.Time
}

func NewHandler(sessions *session.Store, versionInfo string) *Handler {
	return &Handler{
		sessions:    sessions,
		versionInfo: versionInfo,
		now:         time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginRateLimitAllowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/me", handler.handleMe).Methods("GET", "OPTIONS").Name("me")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	loginSubrouter.
		HandleFunc("/link", handler.handleGenerateLink).
		Methods("POST", "OPTIONS").Name("link")

	// rate limit the login endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginRateLimitAllowedPerMin, metricsManager))
	loginSubrouter.Use(middleware.Cors())
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.version")
	defer span.End()
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	// older deep links carry the short parameter spellings, keep accepting both
	type loginRequest struct {
		Source         string `json:"source"`
		UserID         string `json:"tg_user_id"`
		UserIDShort    string `json:"tg_id"`
		Username       string `json:"tg_username"`
		FirstName      string `json:"tg_first_name"`
		FirstNameShort string `json:"first_name"`
		LastName       string `json:"tg_last_name"`
		LastNameShort  string `json:"last_name"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		// deep links land here as a form post with the tg_* params
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Source:         r.Form.Get("source"),
			UserID:         r.Form.Get("tg_user_id"),
			UserIDShort:    r.Form.Get("tg_id"),
			Username:       r.Form.Get("tg_username"),
			FirstName:      r.Form.Get("tg_first_name"),
			FirstNameShort: r.Form.Get("first_name"),
			LastName:       r.Form.Get("tg_last_name"),
			LastNameShort:  r.Form.Get("last_name"),
		}
	}

	var user session.User
	switch loginReq.Source {
	case session.SourceTest:
		user = session.TestUser()
	case session.SourceTelegram, "":
		deepLinkParams := url.Values{}
		deepLinkParams.Set("tg_user_id", loginReq.UserID)
		deepLinkParams.Set("tg_id", loginReq.UserIDShort)
		deepLinkParams.Set("tg_username", loginReq.Username)
		deepLinkParams.Set("tg_first_name", loginReq.FirstName)
		deepLinkParams.Set("first_name", loginReq.FirstNameShort)
		deepLinkParams.Set("tg_last_name", loginReq.LastName)
		deepLinkParams.Set("last_name", loginReq.LastNameShort)

		var err error
		if user, err = session.UserFromDeepLink(deepLinkParams); err != nil {
			http.Error(w, "error, user id empty", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "error, unknown login source", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	span.SetAttributes(attribute.String("user.source", user.Source))

	now := handler.now()
	token, err := session.NewToken(user.Source, now)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("mint token: %s", err))
		log.Errorf("login failed, mint token error: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if err := handler.sessions.Add(ctx, session.Session{
		Token:     token,
		User:      user,
		CreatedAt: now,
	}); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("store session: %s", err))
		log.Errorf("login failed, store session error: %s", err)
		http.Error(w, "store session error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success for user [%s] via [%s]", user.ID, user.Source)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s"}`, token))
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(session.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	removed, err := handler.sessions.Remove(r.Context(), authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !removed {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	span.SetStatus(codes.Ok, "logged-out")
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.me")
	defer span.End()

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	respBytes, err := json.Marshal(sess.User)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("marshal me response: %s", err))
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) handleGenerateLink(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.generateLink")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	type linkRequest struct {
		NotificationConsent bool `json:"notificationConsent"`
	}
	var linkReq linkRequest
	if err := json.NewDecoder(r.Body).Decode(&linkReq); err != nil {
		log.Errorf("generate link, unmarshal json params: %s", err)
		http.Error(w, "generate link failed", http.StatusBadRequest)
		return
	}

	link, err := session.BuildDeepLink(sess.User, linkReq.NotificationConsent)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("build deep link: %s", err))
		switch {
		case errors.Is(err, session.ErrNotificationConsent):
			http.Error(w, "error, notification consent required", http.StatusBadRequest)
		case errors.Is(err, session.ErrMissingUserID):
			http.Error(w, "error, user id empty", http.StatusBadRequest)
		default:
			http.Error(w, "generate link failed", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"link": "%s"}`, link))
}
