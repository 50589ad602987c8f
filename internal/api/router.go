package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/Jose-carlos2025/App-gestor/docs"
	"github.com/Jose-carlos2025/App-gestor/internal/api/handler"
	"github.com/Jose-carlos2025/App-gestor/internal/api/middleware"
	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const defaultLoginRate = 5

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log    zerolog.Logger
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Health map[string]handler.Pinger

	// LoginRate is the sustained login requests per second allowed per IP.
	LoginRate float64

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	v := handler.NewValidator()
	e.Validator = v
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "app_gestor",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, v)
	taskHandler := handler.NewTaskHandler(deps.Tasks, v)
	dashboardHandler := handler.NewDashboardHandler(deps.Tasks)
	categoryHandler := handler.NewCategoryHandler()
	healthHandler := handler.NewHealthHandler(deps.Health)

	authRequired := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Ops (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/login", authHandler.Login, loginLimiter(deps.LoginRate))
	api.GET("/check-auth", authHandler.CheckAuth, middleware.OptionalAuth(deps.Auth))
	api.POST("/logout", authHandler.Logout, authRequired)
	api.GET("/profile", authHandler.Profile, authRequired)
	api.POST("/register", authHandler.Register, authRequired, adminOnly)

	// --- Catalog ---
	api.GET("/categories", categoryHandler.List)

	// --- Tasks ---
	tasks := api.Group("/tasks", authRequired)
	tasks.GET("", taskHandler.List)
	tasks.GET("/stats", dashboardHandler.Stats)
	tasks.GET("/:id", taskHandler.Get)
	tasks.POST("", taskHandler.Create)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Dashboard ---
	dashboard := api.Group("/dashboard", authRequired)
	dashboard.GET("/stats", dashboardHandler.Dashboard)
	dashboard.GET("/overview", dashboardHandler.Overview)

	return e
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// loginLimiter throttles login attempts per client IP.
func loginLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = defaultLoginRate
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "could not identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
}
