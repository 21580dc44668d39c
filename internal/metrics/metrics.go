// metrics — Prometheus-метрики сервиса. Все методы безопасны для nil-получателя,
// поэтому компоненты можно собирать без метрик (например, в тестах).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "school_auth"

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authResults  *prometheus.CounterVec
	swept        prometheus.Counter
}

// New создаёт и регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_results_total",
			Help:      "Outcomes of login/authenticate/authorize/revoke operations.",
		}, []string{"op", "result"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocation_swept_total",
			Help:      "Revocation entries removed by the sweeper.",
		}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.authResults, m.swept)

	return m
}

// ObserveHTTP учитывает завершённый HTTP-запрос.
func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// AuthResult учитывает исход операции op ("login", "authenticate", ...).
func (m *Metrics) AuthResult(op, result string) {
	if m == nil {
		return
	}

	m.authResults.WithLabelValues(op, result).Inc()
}

// Swept учитывает записи, удалённые очисткой.
func (m *Metrics) Swept(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.swept.Add(float64(n))
}
