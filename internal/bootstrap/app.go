package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kartikey004/resume-parser-ai/internal/enrich"
	"github.com/kartikey004/resume-parser-ai/internal/extract"
	"github.com/kartikey004/resume-parser-ai/internal/llm"
	"github.com/kartikey004/resume-parser-ai/internal/llm/gemini"
	"github.com/kartikey004/resume-parser-ai/internal/matches"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/resumes"
	"github.com/kartikey004/resume-parser-ai/internal/shared/config"
	"github.com/kartikey004/resume-parser-ai/internal/shared/server"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/db"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/object"
	localstore "github.com/kartikey004/resume-parser-ai/internal/shared/storage/object/local"
	s3store "github.com/kartikey004/resume-parser-ai/internal/shared/storage/object/s3"
)

// App holds shared dependencies for the api and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	LLM    llm.Client

	ResumesRepo resumes.Repo
	MatchesRepo matches.Repo

	ResumesService *resumes.Service
	MatchesService *matches.Service

	ResumesHandler *resumes.Handler
	MatchesHandler *matches.Handler
}

// Options tweaks what Build wires up per process.
type Options struct {
	// WithRouter controls whether the HTTP router is constructed; the
	// worker does not need one.
	WithRouter bool
	// DBOptions sizes the connection pool for the process.
	DBOptions db.Options
}

// Build prepares shared dependencies.
func Build(cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, opts.DBOptions)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		LLM:    llmClient,
	}
	buildServices(app)

	if opts.WithRouter {
		app.Router = server.NewRouter(server.RouterDeps{
			Config:         app.Config,
			DB:             app.DB,
			ResumesHandler: app.ResumesHandler,
			MatchesHandler: app.MatchesHandler,
		})
	}

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(opts))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.RabbitURL) == "" {
		// Direct goroutine dispatch in dev.
		return nil, nil
	}
	return queue.NewRabbitClient(cfg.RabbitURL, cfg.QueueName)
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		// A nil client drives the ai_failed path instead of blocking startup.
		log.Printf("bootstrap: GEMINI_API_KEY empty; enrichment and matching will fail")
		return nil, nil
	}
	return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var resumesRepo resumes.Repo
	var matchesRepo matches.Repo
	if app.DB != nil {
		resumesRepo = &resumes.PGRepo{DB: app.DB}
		matchesRepo = &matches.PGRepo{DB: app.DB}
	} else {
		resumesRepo = resumes.NewMemoryRepo()
		matchesRepo = matches.NewMemoryRepo()
	}

	extractor := extract.New(extract.Config{
		Tesseract:  app.Config.TesseractBin,
		Pdftoppm:   app.Config.PdftoppmBin,
		Lang:       app.Config.OCRLang,
		DPI:        app.Config.OCRDPI,
		MinTextLen: app.Config.ExtractMinTextLen,
	})

	var enricher resumes.Enricher
	if app.LLM != nil {
		enricher = &enrich.Runner{LLM: app.LLM}
	}

	resumesSvc := &resumes.Service{
		Repo:      resumesRepo,
		Store:     app.Store,
		Extractor: extractor,
		Enricher:  enricher,
		Queue:     app.Queue,
	}
	matchesSvc := &matches.Service{
		Repo:    matchesRepo,
		Resumes: resumesSvc,
		LLM:     app.LLM,
		Queue:   app.Queue,
	}

	app.ResumesRepo = resumesRepo
	app.MatchesRepo = matchesRepo
	app.ResumesService = resumesSvc
	app.MatchesService = matchesSvc
	app.ResumesHandler = resumes.NewHandler(resumesSvc)
	app.MatchesHandler = matches.NewHandler(matchesSvc)
}
