package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
)

type RouterOptions struct {
	Env         string
	ServiceName string
	CORSOrigins []string

	Verifier middleware.CredentialVerifier
	Ping     func(ctx context.Context) error

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	if opts.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Prom != nil {
		r.Use(opts.Prom.GinHandleMiddleware())
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	health := NewHealthHandler(opts.Ping)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/appointments", h.GetAppointments)
	r.GET("/appointments/:id", h.GetAppointment)
	r.POST("/appointments", h.CreateAppointment)
	r.PUT("/appointments/:id", h.AttachPayment)

	r.POST("/doctors", middleware.MaxBodyBytes(MaxImageBytes+1<<20), h.CreateDoctor)
	r.GET("/doctors", h.ListDoctors)

	r.POST("/user", h.CreateUser)
	r.PUT("/user", h.UpsertUser)
	r.PUT("/user/admin", middleware.TokenVerify(opts.Verifier, log), h.PromoteAdmin)
	r.GET("/user/:email", h.GetUserAdmin)

	r.POST("/create-payment-intent", h.CreatePaymentIntent)

	return r
}

// corsConfig allows any origin unless CORS_ORIGINS lists some.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
