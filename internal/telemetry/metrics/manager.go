package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterDayLoads            *prometheus.CounterVec
	CounterActivationRetries   prometheus.Counter
	CounterStatusToggles       *prometheus.CounterVec
	CounterCommentsPosted      prometheus.Counter
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter

	// gauges
	GaugeRequests    prometheus.Gauge
	GaugeLifeSignal  prometheus.Gauge
	GaugeOpenDayView prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
	HistDayLoadDuration      prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("gateway", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gateway", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterDayLoads := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "day_loads",
		Help:      "The total number of marathon day loads, by outcome",
	}, []string{"outcome"})
	counterActivationRetries := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "activation_retries",
		Help:      "The total number of course activation retries scheduled",
	})
	counterStatusToggles := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "exercise_status_toggles",
		Help:      "The total number of exercise status toggles, by outcome",
	}, []string{"outcome"})
	counterCommentsPosted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "comments_posted",
		Help:      "The total number of exercise comments posted",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeOpenDayView := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_day_views",
		Help:      "Current number of open marathon day views",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "status_code"})
	histDayLoadDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "day_load_duration_seconds",
		Help:      "Total duration of a single day load (activation + exercises fetch) in seconds",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterDayLoads:            counterDayLoads,
		CounterActivationRetries:   counterActivationRetries,
		CounterStatusToggles:       counterStatusToggles,
		CounterCommentsPosted:      counterCommentsPosted,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugeOpenDayView:           gaugeOpenDayView,
		HistogramRequestDuration:   histogramRequestDuration,
		HistDayLoadDuration:        histDayLoadDuration,
	}
}
