package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/health"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/handler"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/middleware"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/response"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/security"
)

const (
	defaultBodyLimit = 1 << 20
	// multipart framing and text fields on top of the image itself
	uploadOverhead = 1 << 20

	MsgReady   = "ready"
	MsgUnready = "dependencies are not ready"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CategoryHandler   *handler.CategoryHandler
	RecipeHandler     *handler.RecipeHandler
	ImageHandler      *handler.ImageHandler
	JWTManager        *security.JWTManager
	CORSOrigins       []string
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	MaxUploadBytes    int64
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	HTTPMetrics       *observability.HTTPMetrics
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	if dep.HTTPMetrics != nil {
		r.Use(middleware.PrometheusMetrics(dep.HTTPMetrics))
	}

	globalLimiter := dep.GlobalRateLimiter
	if globalLimiter == nil {
		globalLimiter = middleware.LocalRateLimit("api", dep.APIRateLimitRPM, time.Minute)
	}
	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.LocalRateLimit("auth", dep.AuthRateLimitRPM, time.Minute)
	}
	requireAuth := middleware.AuthMiddleware(dep.JWTManager)
	uploadLimit := dep.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = 5 << 20
	}
	uploadLimit += uploadOverhead

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, r, http.StatusOK, "ok", nil)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if results == nil {
			results = []health.CheckResult{}
		}
		if ready {
			response.Message(w, r, http.StatusOK, MsgReady, response.Fields{"checks": results})
			return
		}
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"message": MsgUnready,
			"data":    map[string]any{"checks": results},
		})
	})
	if dep.HTTPMetrics != nil {
		r.Method(http.MethodGet, "/metrics", dep.HTTPMetrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(globalLimiter)

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter)
			r.Use(middleware.BodyLimit(defaultBodyLimit))
			r.Post("/register", dep.AuthHandler.Register)
			r.Get("/account-verify/{token}", dep.AuthHandler.VerifyAccount)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/forget-password", dep.AuthHandler.ForgotPassword)
			r.Get("/update-password/{token}", dep.AuthHandler.LookupResetToken)
			r.Post("/reset-password", dep.AuthHandler.ResetPassword)
			r.Get("/refresh-token", dep.AuthHandler.Refresh)
		})

		r.Route("/category", func(r chi.Router) {
			r.Use(middleware.BodyLimit(defaultBodyLimit))
			r.Get("/", dep.CategoryHandler.List)
			r.Get("/{id}", dep.CategoryHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", dep.CategoryHandler.Create)
				r.Put("/{id}", dep.CategoryHandler.Update)
				r.Delete("/{id}", dep.CategoryHandler.Delete)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", dep.RecipeHandler.List)
			r.Get("/{id}", dep.RecipeHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(middleware.BodyLimit(uploadLimit)).Post("/", dep.RecipeHandler.Create)
				r.With(middleware.BodyLimit(uploadLimit)).Put("/{id}", dep.RecipeHandler.Update)
				r.Delete("/{id}", dep.RecipeHandler.Delete)
			})
		})

		r.Get("/images/*", dep.ImageHandler.Serve)
		r.Head("/images/*", dep.ImageHandler.Serve)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
