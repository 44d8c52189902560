package router

import (
	"context"
	"time"

	"mediocusto/internal/config"
	"mediocusto/internal/handler"
	"mediocusto/internal/infra"
	"mediocusto/internal/middleware"
	"mediocusto/internal/repository"
	"mediocusto/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns the configured Gin engine.
// Handler ← Service ← Repository ← DB/Redis. rdb may be nil.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// RequestID must run before Logger
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(ctx, rdb, cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	calculoRepo := repository.NewCalculoRepository(db)
	referenciaRepo := repository.NewReferenciaRepository(db)
	historicoRepo := repository.NewHistoricoRepository(db)
	entradaRepo := repository.NewEntradaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var (
		publisher *infra.HistoricoPublisher
		notifier  service.HistoricoNotifier
	)
	if rdb != nil {
		publisher = infra.NewHistoricoPublisher(rdb)
		notifier = publisher
	}
	calculoSvc := service.NewCalculoService(calculoRepo, referenciaRepo, historicoRepo, notifier)
	entradaSvc := service.NewEntradaService(entradaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	calculoH := handler.NewCalculoHandler(calculoSvc)
	entradasH := handler.NewEntradasHandler(entradaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, publisher))

	todos := middleware.RequireRole(middleware.RolOperador, middleware.RolSupervisor, middleware.RolAdministrador)
	gestao := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		calc := v1.Group("/calculo-nfs")
		{
			calc.GET("", todos, calculoH.Listar)
			calc.GET("/historico", todos, calculoH.Historico)
			calc.PATCH("/:entrada_id", todos, calculoH.Editar)
			calc.POST("/distribuir", todos, calculoH.Distribuir)
			calc.POST("/recalcular", gestao, calculoH.Recalcular)
			calc.POST("/custo-manual", gestao, calculoH.CustoManual)
		}

		ent := v1.Group("/entradas")
		{
			ent.GET("", todos, entradasH.Listar)
			ent.POST("", todos, entradasH.Criar)
			ent.PATCH("/:id", todos, entradasH.Editar)
			ent.POST("/excluir", gestao, entradasH.Excluir)
			ent.POST("/importar", middleware.RequireRole(middleware.RolAdministrador), entradasH.Importar)
		}
	}

	// Swagger UI only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
