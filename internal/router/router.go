package router

import (
	"net/http"

	mem "shelter-operations/internal/adapters/storage/memory"
	"shelter-operations/internal/docs"
	"shelter-operations/internal/domain/animals"
	"shelter-operations/internal/domain/catalog"
	"shelter-operations/internal/middleware"
	"shelter-operations/internal/platform/i18n"
	"shelter-operations/internal/platform/logger"
	"shelter-operations/internal/platform/metrics"
	"shelter-operations/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si es nil, in-memory.
	Repo animals.Repository

	Logger  logger.Logger
	Labels  i18n.LabelResolver
	Metrics *metrics.Registry

	// Escrituras por minuto por usuario en POST/PATCH /animals. 0 = sin límite.
	RateLimitWrites int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	labels := opts.Labels
	if labels == nil {
		labels = i18n.NewResolver("en")
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	repo := opts.Repo
	if repo == nil {
		repo = mem.NewAnimalsRepo()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(otelhttp.NewMiddleware(docs.SwaggerInfo.Title))
	r.Use(reg.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", reg.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	animalsSvc := animals.NewService(repo,
		animals.WithLogger(log.With(map[string]any{"component": "animals"})),
		animals.WithObserver(reg),
	)

	catalog.RegisterRoutes(r, labels)
	animals.RegisterRoutes(r, animalsSvc, animals.RouteOptions{
		Labels:          labels,
		WriteMiddleware: []func(http.Handler) http.Handler{middleware.WriteRateLimit(opts.RateLimitWrites)},
	})

	return r
}
