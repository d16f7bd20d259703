package router

import (
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/config"
	"github.com/bedouifedy-oss/dima-voyage/internal/handler"
	"github.com/bedouifedy-oss/dima-voyage/internal/middleware"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"
	"github.com/bedouifedy-oss/dima-voyage/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	visaRepo := repository.NewVisaRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	clientSvc := service.NewClientService(clientRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	bookingSvc := service.NewBookingService(bookingRepo, clientRepo, paymentRepo, ledgerRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, ledgerRepo)
	expenseSvc := service.NewExpenseService(expenseRepo, supplierRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo, bookingRepo, expenseRepo)
	financeSvc := service.NewFinanceService(ledgerRepo, bookingRepo, expenseRepo)
	visaSvc := service.NewVisaService(bookingRepo, visaRepo, notificationRepo, dispatcher, cfg)
	documentSvc := service.NewDocumentService(documentRepo, bookingRepo, cfg)
	invoiceSvc := service.NewInvoiceService(bookingRepo, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	bookingsH := handler.NewBookingsHandler(bookingSvc, invoiceSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc, financeSvc)
	visaH := handler.NewVisaHandler(visaSvc, cfg.UploadStoragePath)
	documentsH := handler.NewDocumentsHandler(documentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Public visa intake: the booking ref in the link is the credential
	r.GET("/v1/visa/:ref", visaH.PublicForm)
	r.POST("/v1/visa/:ref", visaH.PublicSubmit)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole("agent", "manager", "admin")
	managers := middleware.RequireRole("manager", "admin")

	v1 := r.Group("/v1", jwtMW)
	{
		clients := v1.Group("/clients", anyStaff)
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", middleware.RequireRole("admin"), clientsH.Delete)
		}

		suppliers := v1.Group("/suppliers", anyStaff)
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PUT("/:id", suppliersH.Update)
		}

		bookings := v1.Group("/bookings", anyStaff)
		{
			bookings.POST("", bookingsH.Create)
			bookings.GET("", bookingsH.List)
			bookings.GET("/:id", bookingsH.Get)
			bookings.PATCH("/:id", bookingsH.Update)
			bookings.POST("/:id/cancel", managers, bookingsH.Cancel)
			bookings.GET("/:id/invoice.pdf", bookingsH.Invoice)
			bookings.GET("/:id/payments", paymentsH.ListForBooking)
			bookings.GET("/:id/notifications", visaH.ListNotifications)

			bookings.PUT("/:id/visa-form", visaH.ConfigureForm)
			bookings.POST("/:id/visa-form/send", visaH.SendLink)
		}

		payments := v1.Group("/payments", anyStaff)
		{
			payments.POST("", paymentsH.Record)
			payments.GET("", paymentsH.List)
			payments.GET("/:id", paymentsH.Get)
		}

		expenses := v1.Group("/expenses", anyStaff)
		{
			expenses.POST("", expensesH.Create)
			expenses.GET("", expensesH.List)
			expenses.GET("/:id", expensesH.Get)
			expenses.PUT("/:id", expensesH.Update)
			// Paying posts ledger entries, so managers only
			expenses.POST("/pay", managers, ledgerH.PayExpenses)
		}

		ledger := v1.Group("/ledger", anyStaff)
		{
			ledger.GET("", ledgerH.List)
			ledger.POST("/supplier-payments", managers, ledgerH.PaySupplier)
			ledger.POST("/consolidate", managers, ledgerH.Consolidate)
		}

		v1.GET("/finance/summary", managers, ledgerH.FinanceSummary)

		documents := v1.Group("/documents", anyStaff)
		{
			documents.POST("", documentsH.Generate)
			documents.GET("", documentsH.List)
			documents.GET("/:id/pdf", documentsH.DownloadPDF)
		}

		templates := v1.Group("/document-templates", anyStaff)
		{
			templates.GET("", documentsH.ListTemplates)
			templates.POST("", managers, documentsH.CreateTemplate)
			templates.PUT("/:id", managers, documentsH.UpdateTemplate)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI, disabled in production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
