package di

import (
	"context"
	"fmt"

	"github.com/kiyo9w/Imacall-backend/ai"
	"github.com/kiyo9w/Imacall-backend/internal/service"
	"github.com/kiyo9w/Imacall-backend/pkg/cache"
	"github.com/kiyo9w/Imacall-backend/pkg/config"
	"github.com/kiyo9w/Imacall-backend/pkg/jwt"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"
	"github.com/kiyo9w/Imacall-backend/pkg/resilience"
	"github.com/kiyo9w/Imacall-backend/pkg/secrets"
	"github.com/kiyo9w/Imacall-backend/shared/observability"
	sharedredis "github.com/kiyo9w/Imacall-backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB                  *gorm.DB
	Logger              *logger.Logger
	JWTService          *jwt.Service
	Secrets             *secrets.Manager
	Redis               *sharedredis.RedisClient
	Cache               *cache.Cache
	Registry            *ai.Registry
	Generator           *ai.Generator
	GenerationMetrics   *observability.GenerationMetrics
	UserService         *service.UserService
	CharacterService    *service.CharacterService
	ConversationService *service.ConversationService
}

// New creates a new dependency injection container
func New(ctx context.Context, db *gorm.DB, log *logger.Logger) (*Container, error) {
	cfg := config.Get()

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	secretsManager, err := secrets.NewManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets manager: %w", err)
	}

	redisClient := sharedredis.NewRedisClient()
	if redisClient == nil {
		log.Info("Redis not configured; active provider selection is in-memory only")
	}

	var characterCache *cache.Cache
	if cfg.Cache.Enabled {
		characterCache = cache.NewCache()
	}

	metrics := observability.NewGenerationMetrics()

	adapters, err := buildAdapters(ctx, cfg, secretsManager, log)
	if err != nil {
		return nil, err
	}

	var store ai.ActiveStore
	if redisClient != nil {
		store = redisClient
	}
	registry := ai.NewRegistry(cfg.AI.DefaultProvider, store, log, adapters...)

	generator := ai.NewGenerator(registry, ai.GeneratorOptions{
		Timeout:       cfg.AI.RequestTimeout,
		HistoryWindow: cfg.AI.HistoryWindow,
	}, metrics, log)

	userService := service.NewUserService(db, jwtService)
	characterService := service.NewCharacterService(db, characterCache)
	conversationService := service.NewConversationService(db, characterService, generator)

	return &Container{
		DB:                  db,
		Logger:              log,
		JWTService:          jwtService,
		Secrets:             secretsManager,
		Redis:               redisClient,
		Cache:               characterCache,
		Registry:            registry,
		Generator:           generator,
		GenerationMetrics:   metrics,
		UserService:         userService,
		CharacterService:    characterService,
		ConversationService: conversationService,
	}, nil
}

// buildAdapters constructs one adapter per provider with usable credentials.
// API keys come through the secrets manager so Vault deployments never put
// them in the environment. Every adapter is wrapped in its own circuit
// breaker.
func buildAdapters(ctx context.Context, cfg *config.Config, sm *secrets.Manager, log *logger.Logger) ([]ai.Adapter, error) {
	var adapters []ai.Adapter

	wrap := func(a ai.Adapter) ai.Adapter {
		breaker := resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("ai-"+a.Name()), log)
		return ai.WithBreaker(a, breaker)
	}

	if key := sm.GetSecretWithDefault(ctx, "GEMINI_API_KEY", cfg.AI.GeminiAPIKey); key != "" {
		gemini, err := ai.NewGeminiAdapter(ctx, key, cfg.AI.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini adapter: %w", err)
		}
		adapters = append(adapters, wrap(gemini))
	}

	if key := sm.GetSecretWithDefault(ctx, "OPENAI_API_KEY", cfg.AI.OpenAIAPIKey); key != "" {
		adapters = append(adapters, wrap(ai.NewOpenAIAdapter(key, cfg.AI.OpenAIModel)))
	}

	if key := sm.GetSecretWithDefault(ctx, "OPENROUTER_API_KEY", cfg.AI.OpenRouterAPIKey); key != "" {
		adapters = append(adapters, wrap(ai.NewOpenRouterAdapter(key, cfg.AI.OpenRouterModel)))
	}

	return adapters, nil
}
