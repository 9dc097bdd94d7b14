package router

import (
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/attachment"
	"github.com/HanjuJo/nexo-v1/internal/config"
	"github.com/HanjuJo/nexo-v1/internal/handler"
	"github.com/HanjuJo/nexo-v1/internal/infra"
	"github.com/HanjuJo/nexo-v1/internal/middleware"
	"github.com/HanjuJo/nexo-v1/internal/repository"
	"github.com/HanjuJo/nexo-v1/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter, err := middleware.RateLimiter(cfg.RateLimit, rdb)
	if err != nil {
		return nil, err
	}
	store, err := attachment.NewStore(attachment.Config{
		Root:         cfg.UploadDir,
		StagingDir:   cfg.UploadStagingDir,
		URLPrefix:    cfg.UploadURLPrefix,
		MaxBytes:     cfg.MaxUploadSize,
		AllowedTypes: cfg.UploadTypes(),
	})
	if err != nil {
		return nil, fmt.Errorf("attachment store: %w", err)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter)

	// ── Infrastructure ───────────────────────────────────────────────────────
	pdf := infra.NewPDFRenderer(cfg.PDFFontPath)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	itemRepo := repository.NewItemRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	contractRepo := repository.NewContractRepository(db)
	installationRepo := repository.NewInstallationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	accountSvc := service.NewAccountService(userRepo)
	clientSvc := service.NewClientService(clientRepo)
	itemSvc := service.NewItemService(itemRepo, rdb, cfg.CatalogCacheTTL)
	inventorySvc := service.NewInventoryService(inventoryRepo, itemRepo)
	consultationSvc := service.NewConsultationService(consultationRepo, clientRepo)
	quotationSvc := service.NewQuotationService(quotationRepo, itemRepo, clientRepo, consultationRepo, pdf)
	contractSvc := service.NewContractService(contractRepo, itemRepo, clientRepo, quotationRepo, pdf)
	installationSvc := service.NewInstallationService(installationRepo, contractRepo, clientRepo, userRepo, store)

	// ── Handlers ─────────────────────────────────────────────────────────────
	accountsH := handler.NewAccountsHandler(accountSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	consultationsH := handler.NewConsultationsHandler(consultationSvc)
	quotationsH := handler.NewQuotationsHandler(quotationSvc)
	contractsH := handler.NewContractsHandler(contractSvc)
	// two attachments plus form fields
	installationsH := handler.NewInstallationsHandler(installationSvc, 2*cfg.MaxUploadSize+(1<<20))

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	v1 := r.Group("/v1", middleware.Authenticate(cfg.JWTSecret))
	{
		acc := v1.Group("/accounts")
		{
			acc.GET("/me", accountsH.Me)
			acc.POST("", middleware.RequireAdmin(), accountsH.Create)
			acc.GET("", middleware.RequireAdmin(), accountsH.List)
			acc.GET("/:id", middleware.RequireAdmin(), accountsH.Get)
			acc.PUT("/:id", middleware.RequireAdmin(), accountsH.Update)
			acc.DELETE("/:id", middleware.RequireAdmin(), accountsH.Delete)
		}

		cl := v1.Group("/clients")
		{
			cl.POST("", clientsH.Create)
			cl.GET("", clientsH.List)
			cl.GET("/:id", clientsH.Get)
			cl.PUT("/:id", clientsH.Update)
			cl.DELETE("/:id", clientsH.Delete)
			cl.GET("/:id/installations", installationsH.ClientHistory)
		}

		it := v1.Group("/items")
		{
			it.GET("", itemsH.List)
			it.GET("/:id", itemsH.Get)
			it.POST("", itemsH.Create)
			it.PUT("/:id", itemsH.Update)
			it.DELETE("/:id", itemsH.Deactivate)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("", inventoryH.List)
			inv.GET("/alerts", inventoryH.Alerts)
			inv.GET("/:id", inventoryH.Get)
			inv.POST("", inventoryH.Create)
			inv.PUT("/:id", inventoryH.Update)
			inv.PATCH("/:id/stock", inventoryH.Adjust)
			inv.DELETE("/:id", inventoryH.Delete)
		}

		cons := v1.Group("/consultations")
		{
			cons.POST("", consultationsH.Create)
			cons.GET("", consultationsH.List)
			cons.GET("/:id", consultationsH.Get)
			cons.PUT("/:id", consultationsH.Update)
			cons.DELETE("/:id", consultationsH.Delete)
		}

		q := v1.Group("/quotations")
		{
			q.POST("", quotationsH.Create)
			q.GET("", quotationsH.List)
			q.GET("/:id", quotationsH.Get)
			q.GET("/:id/pdf", quotationsH.PDF)
			q.PUT("/:id", quotationsH.Update)
			q.DELETE("/:id", quotationsH.Delete)
		}

		ct := v1.Group("/contracts")
		{
			ct.POST("", contractsH.Create)
			ct.GET("", contractsH.List)
			ct.GET("/:id", contractsH.Get)
			ct.GET("/:id/pdf", contractsH.PDF)
			ct.PUT("/:id", contractsH.Update)
			ct.DELETE("/:id", contractsH.Delete)
		}

		ins := v1.Group("/installations")
		{
			ins.POST("", installationsH.Create)
			ins.GET("", installationsH.List)
			ins.GET("/:id", installationsH.Get)
			ins.PUT("/:id", installationsH.Update)
			ins.PUT("/:id/complete", installationsH.Complete)
			ins.DELETE("/:id", installationsH.Delete)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}

