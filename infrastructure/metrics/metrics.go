package metrics

import (
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

var (
	// Запросы по маршруту и коду ответа
	RequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	ResponseTimeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_time_seconds",
			Help:    "Response time in seconds",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10), // 0.1 .. 1.0 s
		},
		[]string{"method", "route"},
	)
)

func Init() {
	prometheus.MustRegister(RequestsCounter)
	prometheus.MustRegister(ResponseTimeHistogram)
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	RequestsCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	ResponseTimeHistogram.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Log.Infof("metrics server running on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Log.Fatalf("failed to start metrics server: %v", err)
		}
	}()
}
