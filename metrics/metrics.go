// Package metrics exposes Prometheus collectors for HTTP traffic and catalog activity.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"blockflow/catalog"
	"blockflow/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blockflow"

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ProductViewsTotal   prometheus.Counter
	StoreQueriesTotal   *prometheus.CounterVec
	StoreQueryDuration  *prometheus.HistogramVec
}

// New builds the collectors on a private registry together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ProductViewsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_views_total",
			Help:      "Product views recorded",
		}),
		StoreQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_queries_total",
			Help:      "Product store calls by operation and outcome",
		}, []string{"op", "outcome"}),
		StoreQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Product store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProductViewsTotal,
		m.StoreQueriesTotal,
		m.StoreQueryDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeStore(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	m.StoreQueriesTotal.WithLabelValues(op, outcome).Inc()
	m.StoreQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Store wraps a product store and records every call.
type Store struct {
	catalog.Store
	m *Metrics
}

func InstrumentStore(store catalog.Store, m *Metrics) *Store {
	return &Store{Store: store, m: m}
}

func (s *Store) Get(ctx context.Context, id int64) (*models.Product, error) {
	start := time.Now()
	p, err := s.Store.Get(ctx, id)
	s.m.observeStore("get", start, err)
	return p, err
}

func (s *Store) Find(ctx context.Context, q catalog.Query) ([]models.Product, int64, error) {
	start := time.Now()
	items, total, err := s.Store.Find(ctx, q)
	s.m.observeStore("find", start, err)
	return items, total, err
}

func (s *Store) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	start := time.Now()
	views, err := s.Store.IncrementViewCount(ctx, id)
	s.m.observeStore("increment_views", start, err)
	if err == nil {
		s.m.ProductViewsTotal.Inc()
	}
	return views, err
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	start := time.Now()
	cats, err := s.Store.Categories(ctx)
	s.m.observeStore("categories", start, err)
	return cats, err
}
