package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"healthdocs-backend/internal/documents"
	"healthdocs-backend/internal/extract"
	"healthdocs-backend/internal/llm"
	"healthdocs-backend/internal/llm/gemini"
	"healthdocs-backend/internal/llm/openai"
	"healthdocs-backend/internal/services/health"
	"healthdocs-backend/internal/shared/auth"
	"healthdocs-backend/internal/shared/config"
	"healthdocs-backend/internal/shared/resilience"
	"healthdocs-backend/internal/shared/server"
	"healthdocs-backend/internal/shared/server/middleware"
	"healthdocs-backend/internal/shared/storage/db"
	"healthdocs-backend/internal/shared/storage/object"
	localstore "healthdocs-backend/internal/shared/storage/object/local"
	s3store "healthdocs-backend/internal/shared/storage/object/s3"
	"healthdocs-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Mongo            *mongo.Client
	Store            object.Store
	Repo             documents.Repo
	Extractor        extract.Extractor
	Classifier       llm.Classifier
	Breakers         *resilience.Executor
	Health           *health.Service
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler

	closers []func(context.Context) error
}

// Build wires stores, adapters and routes from cfg. Callers release
// resources with Close.
func Build(cfg config.Config) (*App, error) {
	cfg = withDefaults(cfg)
	ctx := context.Background()

	app := &App{Config: cfg, Health: health.NewService()}
	if err := app.build(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func withDefaults(cfg config.Config) config.Config {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.AppID) == "" {
		cfg.AppID = "default-app-id"
	}
	if cfg.ObjectStoreType == "" {
		cfg.ObjectStoreType = "local"
	}
	if cfg.RecordStoreType == "" {
		cfg.RecordStoreType = "memory"
	}
	if cfg.OCRProvider == "" {
		cfg.OCRProvider = "pdf"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "none"
	}
	return cfg
}

func (a *App) build(ctx context.Context) error {
	var err error
	if a.Store, err = buildStore(ctx, a.Config); err != nil {
		return err
	}
	if a.Repo, err = a.buildRepo(ctx); err != nil {
		return err
	}
	if a.Extractor, err = buildExtractor(ctx, a.Config); err != nil {
		return err
	}
	if a.Classifier, err = a.buildClassifier(ctx); err != nil {
		return err
	}
	if a.Config.BreakerEnabled {
		a.guardAdapters()
	}

	var verifier *auth.Verifier
	if strings.TrimSpace(a.Config.JWTSecret) != "" {
		if verifier, err = auth.NewVerifier(a.Config.JWTSecret, a.Config.JWTIssuer); err != nil {
			return fmt.Errorf("jwt verifier: %w", err)
		}
	} else if a.Config.AuthRequired {
		return errors.New("AUTH_REQUIRED=true needs JWT_SECRET")
	}

	a.DocumentsService = documents.NewService(a.Store, a.Repo, a.Extractor, a.Classifier, a.Config.AppID)
	a.DocumentsHandler = documents.NewHandler(a.DocumentsService, a.Config.MaxUploadSize)
	a.Router = server.NewRouter(server.RouterDeps{
		Config:           a.Config,
		DocumentsHandler: a.DocumentsHandler,
		Health:           a.Health,
		Verifier:         verifier,
		Limiter:          middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          a.Config.Env,
		"object_store": a.Config.ObjectStoreType,
		"record_store": a.Config.RecordStoreType,
		"ocr":          a.Config.OCRProvider,
		"llm":          a.Config.LLMProvider,
		"breakers":     a.Config.BreakerEnabled,
		"auth":         a.Config.AuthRequired,
	})
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return store, nil
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, fmt.Errorf("OBJECT_STORE %q is not supported", cfg.ObjectStoreType)
	}
}

func (a *App) buildRepo(ctx context.Context) (documents.Repo, error) {
	switch a.Config.RecordStoreType {
	case "postgres":
		sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, err
		}
		a.DB = sqlDB
		a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.Health.Register("database", sqlDB.PingContext)
		return &documents.PGRepo{DB: sqlDB}, nil
	case "mongo":
		client, err := db.ConnectMongo(ctx, a.Config.MongoURI, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		a.closers = append(a.closers, client.Disconnect)
		repo := documents.NewMongoRepo(client.Database(a.Config.MongoDatabase).Collection(a.Config.MongoCollection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		a.Health.Register("mongo", func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
		return repo, nil
	case "memory":
		return documents.NewMemoryRepo(), nil
	default:
		return nil, fmt.Errorf("RECORD_STORE %q is not supported", a.Config.RecordStoreType)
	}
}

func buildExtractor(ctx context.Context, cfg config.Config) (extract.Extractor, error) {
	switch cfg.OCRProvider {
	case "vision":
		v, err := extract.NewVision(ctx, extract.VisionConfig{
			APIKey:          cfg.GoogleAPIKey,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("vision extractor: %w", err)
		}
		return v, nil
	case "pdf":
		return extract.PDF{}, nil
	case "none":
		return extract.Disabled{}, nil
	default:
		return nil, fmt.Errorf("OCR_PROVIDER %q is not supported", cfg.OCRProvider)
	}
}

func (a *App) buildClassifier(ctx context.Context) (llm.Classifier, error) {
	cfg := a.Config
	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("gemini classifier: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return client, nil
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("openai classifier: %w", err)
		}
		return client, nil
	case "none":
		return llm.Disabled{}, nil
	default:
		return nil, fmt.Errorf("LLM_PROVIDER %q is not supported", cfg.LLMProvider)
	}
}

// guardAdapters puts both adapters behind circuit breakers. Declined inputs
// and missing configuration do not trip a breaker.
func (a *App) guardAdapters() {
	bcfg := resilience.DefaultConfig()
	bcfg.Benign = func(err error) bool {
		return extract.IsBenign(err) || llm.IsBenign(err)
	}
	a.Breakers = resilience.NewExecutor(bcfg)
	a.Extractor = extract.Guarded{Next: a.Extractor, Exec: a.Breakers, Provider: a.Config.OCRProvider}
	a.Classifier = llm.Guarded{Next: a.Classifier, Exec: a.Breakers, Provider: a.Config.LLMProvider}
}

// Close releases clients in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
