package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"smartpark/internal/domain/user"
	"smartpark/internal/handler/api"
	"smartpark/internal/handler/middleware"
	"smartpark/internal/infra/cache"
	"smartpark/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine           *gin.Engine
	Config           config.Config
	LocationHandler  *api.LocationHandler
	BookingHandler   *api.BookingHandler
	PaymentHandler   *api.PaymentHandler
	ViolationHandler *api.ViolationHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Cache            *cache.Store `optional:"true"`
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	engine := p.Engine
	auth := p.AuthMiddleware
	staff := auth.RequireRoleAtLeast(user.RoleOperator)

	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		locations := apiGroup.Group("/locations")
		{
			addRoutes(locations, []route{
				{Method: http.MethodGet, Path: "", Handler: p.LocationHandler.List, Mw: []gin.HandlerFunc{p.Cache.Middleware(cache.ScopeSearch)}},
				{Method: http.MethodGet, Path: "/search", Handler: p.LocationHandler.Search, Mw: []gin.HandlerFunc{p.Cache.Middleware(cache.ScopeSearch)}},
				{Method: http.MethodGet, Path: "/:id", Handler: p.LocationHandler.Get, Mw: []gin.HandlerFunc{p.Cache.Middleware(cache.ScopeLocation)}},
			})

			manage := locations.Group("")
			manage.Use(auth.RequireAuth(), staff)
			addRoutes(manage, []route{
				{Method: http.MethodPost, Path: "", Handler: p.LocationHandler.Create},
				{Method: http.MethodPatch, Path: "/:id", Handler: p.LocationHandler.Update},
				{Method: http.MethodPost, Path: "/:id/toggle", Handler: p.LocationHandler.Toggle},
				{Method: http.MethodDelete, Path: "/:id", Handler: p.LocationHandler.Delete},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(auth.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: p.BookingHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: p.BookingHandler.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: p.BookingHandler.Get},
				{Method: http.MethodPut, Path: "/:id", Handler: p.BookingHandler.Edit},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: p.BookingHandler.Cancel},
				{Method: http.MethodDelete, Path: "/:id", Handler: p.BookingHandler.Delete, Mw: []gin.HandlerFunc{staff}},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(auth.RequireAuth(), staff)
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/bookings", Handler: p.BookingHandler.ListForOperator},
			})
		}

		payments := apiGroup.Group("/payments")
		{
			addRoutes(payments, []route{
				{Method: http.MethodGet, Path: "/checkout/result", Handler: p.PaymentHandler.CheckoutResult, Mw: []gin.HandlerFunc{auth.RequireAuth()}},
				// signed by the payment processor, no user session
				{Method: http.MethodPost, Path: "/webhook", Handler: p.PaymentHandler.Webhook},
			})
		}

		violations := apiGroup.Group("/violations")
		violations.Use(auth.RequireAuth())
		{
			addRoutes(violations, []route{
				{Method: http.MethodPost, Path: "", Handler: p.ViolationHandler.Report},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

// addRoutes registers per-route middleware ahead of the handler so that
// middleware calling c.Next wraps it.
func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		handlers := make([]gin.HandlerFunc, 0, len(r.Mw)+1)
		handlers = append(handlers, r.Mw...)
		handlers = append(handlers, r.Handler)
		g.Handle(r.Method, r.Path, handlers...)
	}
}
