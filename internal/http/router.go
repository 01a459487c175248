package http

import (
	"net/http"
	"time"

	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Deps struct {
	Logger         logrus.FieldLogger
	Checkout       *CheckoutHandler
	CORSOrigins    []string
	RateLimiter    *RateLimiter
	RequestTimeout time.Duration
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	if d.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(d.CORSOrigins))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/checkout", func(r chi.Router) {
		if d.RateLimiter != nil {
			r.With(d.RateLimiter.Middleware).Post("/", d.Checkout.CreateSession)
		} else {
			r.Post("/", d.Checkout.CreateSession)
		}
		r.Get("/", d.Checkout.MethodNotAllowed)
		r.Put("/", d.Checkout.MethodNotAllowed)
		r.Patch("/", d.Checkout.MethodNotAllowed)
		r.Delete("/", d.Checkout.MethodNotAllowed)
	})

	return otelhttp.NewHandler(r, "maju-api")
}
