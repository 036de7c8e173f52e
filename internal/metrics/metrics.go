package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SERPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbsearch_serp_requests_total",
			Help: "Total number of result page requests executed",
		},
		[]string{"engine", "status"},
	)

	SERPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xbsearch_serp_request_duration_seconds",
			Help:    "Duration of result page requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"engine"},
	)

	DomainsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xbsearch_domains_total",
			Help: "Total number of unique domains collected",
		},
	)

	ChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbsearch_challenges_total",
			Help: "Total number of challenged or blocked result page requests",
		},
		[]string{"source"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xbsearch_proxy_failures_total",
			Help: "Total number of proxy failures during result page requests",
		},
		[]string{"proxy_url"},
	)
)

// RecordFetch updates the request metrics for one result page fetch.
func RecordFetch(engine string, statusCode int, errored bool, challengeSrc string, duration time.Duration) {
	statusStr := strconv.Itoa(statusCode)
	if errored {
		statusStr = "error"
	}

	SERPRequestsTotal.WithLabelValues(engine, statusStr).Inc()
	SERPRequestDuration.WithLabelValues(engine).Observe(duration.Seconds())
	if challengeSrc != "" {
		ChallengesTotal.WithLabelValues(challengeSrc).Inc()
	}
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
