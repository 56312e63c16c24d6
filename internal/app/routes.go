package app

import (
	"taskdeck/internal/ai"
	"taskdeck/internal/auth"
	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/handlers"
	"taskdeck/internal/repo"
	"taskdeck/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo, cfg.Password.MinLen, cfg.Password.MaxLen)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	taskRepo := repo.NewPGTaskRepo(db)
	var taskCache *cache.TaskCache
	if rdb != nil {
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.TTL())
	}
	taskSvc := service.NewTaskService(taskRepo, taskCache)

	assistant := ai.NewAssistant(ai.NewClient(ai.Options{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		FreeURL:      cfg.AI.FreeURL,
		KeyedTimeout: cfg.AI.KeyedTimeout.Duration(),
		FreeTimeout:  cfg.AI.FreeTimeout.Duration(),
		Logger:       logger,
	}))

	protected := r.Group("", auth.RequireToken(tokens))
	registerTaskRoutes(protected, handlers.NewTaskHandler(taskSvc))
	registerAIRoutes(protected, handlers.NewAIHandler(assistant, taskSvc))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Taskdeck API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(g *gin.RouterGroup, h *handlers.TaskHandler) {
	g.POST("/tasks", h.Create)
	g.GET("/tasks", h.List)
	g.GET("/tasks/progress", h.Progress)
	g.PATCH("/tasks/:id", h.Update)
	g.DELETE("/tasks/:id", h.Delete)
	g.PATCH("/tasks/:id/complete", h.Complete)
	g.PATCH("/tasks/:id/reopen", h.Reopen)
}

func registerAIRoutes(g *gin.RouterGroup, h *handlers.AIHandler) {
	g.GET("/ai/task-summary", h.TaskSummary)
	g.GET("/ai/priorities", h.Priorities)
	g.POST("/ai/task-draft", h.TaskDraft)
	g.POST("/ai/chat", h.Chat)
	g.GET("/ai/daily-plan", h.DailyPlan)
}
