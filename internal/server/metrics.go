// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "article_engine_generation_duration_seconds",
		Help:    "Duration of article generation in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2.0, 10), // 1s .. ~512s
	}, []string{"model"})

	articlesGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "article_engine_articles_generated_total",
		Help: "Number of articles generated over HTTP",
	}, []string{"model"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "article_engine_http_requests_total",
		Help: "Number of HTTP requests by method, path, and status",
	}, []string{"method", "path", "status"})
)

func observeGeneration(d time.Duration, model string) {
	generationDuration.WithLabelValues(model).Observe(d.Seconds())
	articlesGeneratedTotal.WithLabelValues(model).Inc()
}

func observeRequest(method, path string, status int) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
