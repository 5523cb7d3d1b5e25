// Package cache holds fetch results for the lifetime of a process.
//
// Entries never expire on their own. A fetcher overwrites one only when the
// caller asks for an explicit refresh.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var ErrMiss = errors.New("cache: miss")

// Store is a flat byte-valued key space.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key joins fetch parameters into a cache key.
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvbox",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by namespace.",
		}, []string{"namespace"}),
		misses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvbox",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by namespace.",
		}, []string{"namespace"}),
	}
}

// Typed stores JSON-encoded values of one type under a namespace.
// Any store failure is reported as a miss.
type Typed[V any] struct {
	store     Store
	namespace string
	metrics   *Metrics
	log       log.FieldLogger
}

func NewTyped[V any](store Store, namespace string, m *Metrics, logger log.FieldLogger) *Typed[V] {
	if store == nil {
		store = NewMemoryStore()
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Typed[V]{
		store:     store,
		namespace: namespace,
		metrics:   m,
		log:       logger.WithField("cache", namespace),
	}
}

func (t *Typed[V]) key(k string) string {
	return t.namespace + "/" + k
}

func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, err := t.store.Get(ctx, t.key(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			t.log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		t.metrics.misses.WithLabelValues(t.namespace).Inc()
		return zero, false
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		t.log.WithError(err).WithField("key", key).Warn("cache entry undecodable")
		t.metrics.misses.WithLabelValues(t.namespace).Inc()
		return zero, false
	}
	t.metrics.hits.WithLabelValues(t.namespace).Inc()
	return v, true
}

func (t *Typed[V]) Set(ctx context.Context, key string, v V) {
	raw, err := json.Marshal(v)
	if err != nil {
		t.log.WithError(err).WithField("key", key).Warn("cache entry unencodable")
		return
	}
	if err := t.store.Set(ctx, t.key(key), raw); err != nil {
		t.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (t *Typed[V]) Delete(ctx context.Context, key string) {
	if err := t.store.Delete(ctx, t.key(key)); err != nil {
		t.log.WithError(err).WithField("key", key).Warn("cache delete failed")
	}
}
