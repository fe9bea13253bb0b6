package router

import (
	"context"
	"net/http"
	"time"

	mem "vet-practice-api/internal/adapters/storage/memory"
	_ "vet-practice-api/internal/docs"
	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/practice"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/middleware"
	"vet-practice-api/internal/platform/logger"
	"vet-practice-api/internal/ports/auth"
	"vet-practice-api/internal/ports/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa ese store (Postgres). Si no, in-memory.
	Store store.Store

	Log       logger.Logger
	Vets      vets.Options
	Publisher activity.Publisher // nil => sin bus de auditoría

	RateLimiter        middleware.Counter // nil => sin rate limit
	RateLimitPerMinute int

	CORSAllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	st := opts.Store
	if st == nil {
		st = mem.NewStore()
	}

	vetsSvc := vets.NewService(st.Vets(), opts.Vets)
	recorder := activity.NewRecorder(st.Activity(), opts.Publisher, log)
	svc := practice.NewService(st, vetsSvc, recorder, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))

	r.Get("/health", healthHandler(st))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(api chi.Router) {
		api.Use(middleware.AuthContext(opts.AuthVerifier, log))
		api.Use(middleware.RateLimit(opts.RateLimiter, middleware.RateLimitConfig{RequestsPerMinute: opts.RateLimitPerMinute}, log))
		practice.RegisterRoutes(api, svc)
	})

	return r
}

func healthHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
