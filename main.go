package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/auth"
	"github.com/planstack-io/planstack-engine/pkg/config"
	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/handlers"
	"github.com/planstack-io/planstack-engine/pkg/llm"
	"github.com/planstack-io/planstack-engine/pkg/logging"
	"github.com/planstack-io/planstack-engine/pkg/middleware"
	"github.com/planstack-io/planstack-engine/pkg/repositories"
	"github.com/planstack-io/planstack-engine/pkg/retry"
	"github.com/planstack-io/planstack-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Host != ""))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var guard services.StreamGuard
	if redisClient != nil {
		guard = services.NewRedisStreamGuard(redisClient, cfg.Conversation.StreamGuardTTL())
		logger.Info("Using Redis stream guard")
	} else {
		guard = services.NewMemoryStreamGuard(cfg.Conversation.StreamGuardTTL())
		logger.Info("Using in-memory stream guard")
	}

	completionClient, err := llm.NewCompletionClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	documentRepo := repositories.NewDocumentRepository()
	versionRepo := repositories.NewVersionRepository()
	approvalRepo := repositories.NewApprovalRepository()
	chatRepo := repositories.NewChatRepository()
	txRunner := database.NewTxRunner()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.AI.MaxRetries

	documentService := services.NewDocumentService(documentRepo, versionRepo, approvalRepo, txRunner, logger)
	conversationService := services.NewConversationService(chatRepo, completionClient, guard, txRunner, cfg.Conversation.HistoryLimit, cfg.AI.RequestTimeout(), logger)
	generationService := services.NewGenerationService(chatRepo, documentRepo, documentService, completionClient, retryCfg, cfg.AI.RequestTimeout(), logger)
	conflictService := services.NewConflictService(documentRepo, completionClient, retryCfg, cfg.AI.RequestTimeout(), logger)

	authService := auth.NewAuthService(&cfg.Auth, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	scopeProvider := database.NewProjectScopeProvider(db)
	scopeMiddleware := handlers.NewProjectScopeMiddleware(scopeProvider, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	documentsHandler := handlers.NewDocumentsHandler(documentService, logger)
	documentsHandler.RegisterRoutes(mux, authMiddleware, scopeMiddleware)

	chatHandler := handlers.NewChatHandler(conversationService, logger)
	chatHandler.RegisterRoutes(mux, authMiddleware, scopeMiddleware)

	analysisHandler := handlers.NewAnalysisHandler(generationService, conflictService, logger)
	analysisHandler.RegisterRoutes(mux, authMiddleware, scopeMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting planstack-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
