package main

// @title           Lira Core API
// @version         1.0
// @description     Retrieval-group configuration and validation engine for the Lira literature monitoring pipeline.

// @contact.name   Lira OSS
// @contact.url    https://github.com/lira-labs/lira-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lira-labs/lira-core/internal/adapters/driven/ai"
	"github.com/lira-labs/lira-core/internal/adapters/driven/auth"
	"github.com/lira-labs/lira-core/internal/adapters/driven/memory"
	"github.com/lira-labs/lira-core/internal/adapters/driven/postgres"
	redisadapter "github.com/lira-labs/lira-core/internal/adapters/driven/redis"
	"github.com/lira-labs/lira-core/internal/adapters/driven/retrieval"
	"github.com/lira-labs/lira-core/internal/adapters/driving/http"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/services"
)

var version = "dev"

func main() {
	log.Printf("lira-core %s starting", version)

	// Configuration from environment
	jwtSecret := getEnv("JWT_SECRET", "development-secret-change-in-production")
	port := getEnvInt("PORT", 8080)
	redisURL := getEnv("REDIS_URL", "")
	databaseURL := getEnv("DATABASE_URL", "")
	openaiKey := getEnv("OPENAI_API_KEY", "")

	ctx := context.Background()

	logLevel := slog.LevelInfo
	if getEnv("LOG_LEVEL", "") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	// ===== Auth =====
	authAdapter := auth.NewAdapter(jwtSecret)
	accessKeyHash := getEnv("LIRA_ACCESS_KEY_HASH", "")
	if accessKeyHash == "" {
		// Plain key for development; hash it at startup so the service only
		// ever sees the hash.
		key := getEnv("LIRA_ACCESS_KEY", "")
		if key == "" {
			log.Fatal("LIRA_ACCESS_KEY_HASH or LIRA_ACCESS_KEY must be set")
		}
		hash, err := authAdapter.HashAccessKey(key)
		if err != nil {
			log.Fatalf("Failed to hash access key: %v", err)
		}
		accessKeyHash = hash
	}

	// ===== Session store (Redis if available, otherwise in-memory) =====
	var sessionStore driven.SessionStore
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis session store")
	} else {
		sessionStore = memory.NewSessionStore()
		log.Println("Using in-memory session store (sessions are lost on restart)")
	}

	// ===== Activation store (PostgreSQL if available, otherwise in-memory) =====
	var activationStore driven.ActivationStore
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.Config{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC", 60)) * time.Second,
		}
		db, err := postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		activationStore = postgres.NewActivationStore(db)
		log.Println("PostgreSQL connected and schema initialized")
	} else {
		activationStore = memory.NewActivationStore()
		log.Println("Using in-memory activation store (activations are lost on restart)")
	}

	// ===== Proposal service (optional) =====
	var proposer driven.ProposalService
	if openaiKey != "" {
		p, err := ai.NewOpenAIProposer(openaiKey, getEnv("OPENAI_MODEL", ""), getEnv("OPENAI_BASE_URL", ""))
		if err != nil {
			log.Fatalf("Failed to create proposal service: %v", err)
		}
		proposer = p
		log.Printf("Proposal service enabled (model=%s)", p.Model())
	} else {
		log.Println("OPENAI_API_KEY not set, group proposal and generation disabled")
	}

	// ===== Query testers =====
	registry := retrieval.NewRegistry(
		retrieval.NewPubMedTester(getEnv("PUBMED_BASE_URL", ""), getEnv("PUBMED_API_KEY", "")),
		retrieval.NewArXivTester(getEnv("ARXIV_BASE_URL", "")),
	)

	// ===== Services =====
	authService := services.NewAuthService(authAdapter, accessKeyHash)
	sessionService := services.NewSessionService(sessionStore, activationStore, logger)
	groupService := services.NewGroupService(sessionStore, proposer, registry, logger)
	phaseService := services.NewPhaseService(sessionStore, logger)
	analysisService := services.NewAnalysisService(sessionStore)

	supportedSources := func() []string {
		sources := registry.SupportedSources()
		names := make([]string, 0, len(sources))
		for _, src := range sources {
			names = append(names, src.String())
		}
		return names
	}

	cfg := http.Config{
		Host:    getEnv("HOST", "0.0.0.0"),
		Port:    port,
		Version: version,
	}
	server := http.NewServer(cfg, authService, sessionService, groupService,
		phaseService, analysisService, supportedSources, logger)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
