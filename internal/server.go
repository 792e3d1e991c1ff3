package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/seplitza/rejuvena-gateway/internal/config"
	"github.com/seplitza/rejuvena-gateway/internal/courses"
	"github.com/seplitza/rejuvena-gateway/internal/events"
	"github.com/seplitza/rejuvena-gateway/internal/marathon"
	"github.com/seplitza/rejuvena-gateway/internal/middleware"
	"github.com/seplitza/rejuvena-gateway/internal/misc"
	"github.com/seplitza/rejuvena-gateway/internal/session"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/metrics"
	"github.com/seplitza/rejuvena-gateway/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	sessions *session.Store
	catalog  *courses.Catalog

	redisClient  *redis.Client
	eventsBus    *events.Bus
	rulesTracker *courses.RulesTracker

	courseClient *marathon.Client
	dayViews     *marathon.Views

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gateway", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // will be set to 1 when all is set and ran

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "rejuvena-gateway")
	if err != nil {
		return nil, err
	}
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	sessions := session.NewStore(session.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			sessions.ScanAndClean(ctx)
		}
	}()

	catalog, err := courses.LoadCatalog(
		params.Config.CoursesCatalogPath,
		params.Config.CatalogCacheSizeMegabytes,
		params.Config.CatalogCacheExpireSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("load courses catalog: %w", err)
	}
	log.Debugf("courses catalog loaded: %d courses", len(catalog.Courses()))

	eventsBus := events.NewBus()
	rulesTracker := courses.NewRulesTracker(rdb, eventsBus)
	go rulesTracker.Run(ctx)

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Minute,
	}
	courseClient := marathon.NewClient(params.Config.CourseAPIEndpoint, tracedHttpClient)

	dayLoader := marathon.NewLoader(courseClient, eventsBus)
	statusAlert := func(message string) {
		log.Warnf("exercise status alert: %s", message)
	}
	dayViews := marathon.NewViews(
		dayLoader,
		func() *marathon.StatusUpdater {
			return marathon.NewStatusUpdater(courseClient, statusAlert, metricsManager)
		},
		metricsManager,
	)

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		sessions:    sessions,
		catalog:     catalog,

		redisClient:  rdb,
		eventsBus:    eventsBus,
		rulesTracker: rulesTracker,

		courseClient: courseClient,
		dayViews:     dayViews,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gateway-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.sessions, s.versionInfo)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	coursesHandler := courses.NewHandler(s.catalog, s.rulesTracker)
	coursesHandler.SetupRoutes(r)

	marathonHandler := marathon.NewHandler(s.dayViews, s.courseClient, s.metricsManager)
	marathonHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.sessions)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("gateway service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	// open day views stop their retry timers before the process dies
	s.dayViews.CloseAll()

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.httpServer.Shutdown(ctx))
	}
	if s.metricsHttpServer != nil {
		shutdownErr = multierr.Append(shutdownErr, s.metricsHttpServer.Shutdown(ctx))
	}
	if s.redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, s.redisClient.Close())
	}
	if shutdownErr != nil {
		log.Errorf(" >>> failed to gracefully shutdown: %s", shutdownErr)
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	log.Warnln("server shut down")
}
