// Package metrics holds the service's creation counters on a dedicated
// registry, so /metrics exposes exactly these two series.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry     *prometheus.Registry
	UsersCreated prometheus.Counter
	PostsCreated prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of users created",
		}),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		}),
	}
	m.Registry.MustRegister(m.UsersCreated, m.PostsCreated)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
