package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_chat_messages_total",
			Help: "Inbound onboarding chat messages by outcome",
		},
		[]string{"outcome"},
	)

	stepEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_chat_step_entries_total",
			Help: "Number of times each onboarding step was entered",
		},
		[]string{"step"},
	)

	sideEffectFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_side_effect_failures_total",
			Help: "Failed step handlers, merchant/product writes and notifications",
		},
		[]string{"step"},
	)

	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_ai_intents_total",
			Help: "AI chat classifications by intent and source",
		},
		[]string{"intent", "source"},
	)

	sessionsCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "whatsgrapp_sessions_cleaned_total",
			Help: "Expired sessions removed by the cleanup job",
		},
	)

	authFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_auth_failures_total",
			Help: "Rejected API requests by reason",
		},
		[]string{"reason"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsgrapp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whatsgrapp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			messagesTotal,
			stepEntriesTotal,
			sideEffectFailuresTotal,
			intentsTotal,
			sessionsCleanedTotal,
			authFailuresTotal,
			httpRequestsTotal,
			httpRequestDuration,
		)
	})
}

func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

func MessageProcessed(outcome string) {
	messagesTotal.WithLabelValues(outcome).Inc()
}

func StepEntered(step string) {
	stepEntriesTotal.WithLabelValues(step).Inc()
}

func SideEffectFailed(step string) {
	sideEffectFailuresTotal.WithLabelValues(step).Inc()
}

func IntentClassified(intent, source string) {
	intentsTotal.WithLabelValues(intent, source).Inc()
}

func SessionsCleaned(n int64) {
	sessionsCleanedTotal.Add(float64(n))
}

func HTTPRequest(method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func AuthFailed(reason string) {
	authFailuresTotal.WithLabelValues(reason).Inc()
}
