package router

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by the engine
type Handlers struct {
	User          *handler.UserHandler
	Category      *handler.CategoryHandler
	Product       *handler.ProductHandler
	Inventory     *handler.InventoryHandler
	Supplier      *handler.SupplierHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Sales         *handler.SalesOrderHandler
	Expense       *handler.ExpenseHandler
	Report        *handler.ReportHandler
	System        *handler.SystemHandler
}

// Deps are the collaborators of the middleware chain
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	Idempotency   shared.IdempotencyStore
	// Meter may be nil when metrics are disabled
	Meter       metric.Meter
	TraceOption []otelgin.Option
}

// NewEngine builds the Gin engine with the global middleware chain and the
// full /api/v1 route table
func NewEngine(h Handlers, deps Deps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the logger and the
	// tracer read it, and the timeout must wrap every handler.
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled, deps.TraceOption...),
		middleware.TraceRequestID(),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
		middleware.HTTPMetrics(deps.Meter),
	)

	jwt := middleware.JWTAuth(deps.Authenticator, log)

	engine.GET("/health", h.System.Health)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, jwt),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := []gin.HandlerFunc{jwt, middleware.TraceActor(), middleware.Profiling(cfg.Telemetry.ProfilingEnabled)}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		authed = append(authed, middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL, log)

	r := NewRouter(engine, WithAPIVersion("v1"))

	public := NewDomainGroup("public", "")
	public.GET("/ping", h.System.Ping)
	public.POST("/users/login", h.User.Login)
	r.Register(public)

	users := NewDomainGroup("users", "/users").Use(authed...)
	users.POST("/logout", h.User.Logout)
	users.GET("/me", h.User.Me)
	users.POST("", h.User.Create)
	users.GET("", h.User.List)
	users.PUT("/:id/deactivate", h.User.Deactivate)
	r.Register(users)

	products := NewDomainGroup("products", "/products").Use(authed...)
	products.GET("/categories", h.Category.List)
	products.POST("/categories", h.Category.Create)
	products.GET("/batches/search", h.Inventory.Search)
	products.GET("/batches/expiring", h.Inventory.Expiring)
	products.GET("/batches/expired", h.Inventory.Expired)
	products.PUT("/batches/:lotId/adjust", h.Inventory.Adjust)
	products.PUT("/batches/:lotId/retire", h.Inventory.Retire)
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.POST("/:id/add-stock", h.Inventory.AddStock)
	products.POST("/:id/deplete", idempotent, h.Inventory.Deplete)
	products.GET("/:id/batches", h.Inventory.Batches)
	r.Register(products)

	po := NewDomainGroup("purchasing", "/po").Use(authed...)
	suppliers := po.Group("suppliers", "/suppliers")
	suppliers.GET("", h.Supplier.List)
	suppliers.POST("", h.Supplier.Create)
	suppliers.GET("/:id", h.Supplier.GetByID)
	suppliers.PUT("/:id", h.Supplier.Update)
	suppliers.DELETE("/:id", h.Supplier.Delete)
	suppliers.GET("/:id/statement", h.Supplier.Statement)
	suppliers.POST("/:id/reconcile", h.Supplier.Reconcile)
	po.GET("", h.PurchaseOrder.List)
	po.POST("", h.PurchaseOrder.Create)
	po.GET("/dashboard/stats", h.PurchaseOrder.DashboardStats)
	po.GET("/export", h.PurchaseOrder.Export)
	po.GET("/:id", h.PurchaseOrder.GetByID)
	po.PUT("/:id/submit", h.PurchaseOrder.Submit)
	po.PUT("/:id/approve", h.PurchaseOrder.Approve)
	po.PUT("/:id/order", h.PurchaseOrder.MarkOrdered)
	po.PUT("/:id/receive", h.PurchaseOrder.Receive)
	po.PUT("/:id/cancel", h.PurchaseOrder.Cancel)
	po.POST("/:id/payment", idempotent, h.PurchaseOrder.AddPayment)
	po.GET("/:id/payments", h.PurchaseOrder.Payments)
	r.Register(po)

	orders := NewDomainGroup("sales", "/orders").Use(authed...)
	orders.GET("", h.Sales.List)
	orders.POST("", idempotent, h.Sales.Create)
	orders.GET("/:id", h.Sales.GetByID)
	r.Register(orders)

	expenses := NewDomainGroup("expenses", "/expenses").Use(authed...)
	expenses.GET("/types", h.Expense.ListTypes)
	expenses.POST("/types", h.Expense.CreateType)
	expenses.GET("/records", h.Expense.ListRecords)
	expenses.POST("/records", h.Expense.Record)
	expenses.GET("/suggestions", h.Expense.Suggestions)
	r.Register(expenses)

	reports := NewDomainGroup("reports", "/reports").Use(authed...)
	reports.GET("/dashboard", h.Report.Dashboard)
	reports.GET("/daily", h.Report.Daily)
	r.Register(reports)

	system := NewDomainGroup("system", "/system").Use(authed...)
	system.GET("/jobs", h.System.Jobs)
	r.Register(system)

	r.Setup()
	return engine
}
