package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"userpost-service/internal/metrics"
	"userpost-service/internal/post"
	"userpost-service/internal/shared/httpx"
	"userpost-service/internal/user"
)

type Deps struct {
	Users   user.Service
	Posts   post.Service
	Metrics *metrics.Metrics
	Ping    func(ctx context.Context) error
	Logger  *slog.Logger
}

var info = map[string]any{
	"message": "User and Post API",
	"endpoints": map[string]string{
		"POST /users":     "Create a new user",
		"POST /posts":     "Create a new post",
		"GET /user/{id}":  "Get user by ID",
		"GET /posts/{id}": "Get post by ID",
		"GET /metrics":    "Prometheus metrics",
	},
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", d.Metrics.Handler())

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, info, http.StatusOK)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Ping(ctx); err != nil {
			httpx.WriteJSON(w, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
			return
		}
		httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	uh := user.NewHandler(d.Users)
	mux.Handle("POST /users", httpx.Wrap(uh.Create))
	mux.Handle("GET /user/{id}", httpx.Wrap(uh.GetByID))

	ph := post.NewHandler(d.Posts)
	mux.Handle("POST /posts", httpx.Wrap(ph.Create))
	mux.Handle("GET /posts/{id}", httpx.Wrap(ph.GetByID))

	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return httpx.RequestID(httpx.AccessLog(log, mux))
}
