package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markdave123-py/Docsense/internal/api/handlers"
	"github.com/markdave123-py/Docsense/internal/auth"
	"github.com/markdave123-py/Docsense/internal/config"
	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/core/archive"
	db "github.com/markdave123-py/Docsense/internal/core/database"
	"github.com/markdave123-py/Docsense/internal/core/extraction"
	"github.com/markdave123-py/Docsense/internal/core/formatter"
	"github.com/markdave123-py/Docsense/internal/core/llm"
	objectclient "github.com/markdave123-py/Docsense/internal/core/object-client"
	"github.com/markdave123-py/Docsense/internal/core/textcache"
	"github.com/markdave123-py/Docsense/internal/services"
)

// App owns every long-lived component. Optional ones are nil when their
// configuration is absent.
type App struct {
	DBClient *db.DatabaseClient
	Archiver *archive.Archiver
	Cache    *textcache.Cache
	Server   *Server

	closers []func() error
}

// NewApp builds the configured provider and wires the application around it.
// Background workers run until ctx is cancelled.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, provider)
	if err != nil {
		_ = closeProvider()
		return nil, err
	}
	a.closers = append(a.closers, closeProvider)
	return a, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, func() error, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		g, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize gemini: %w", err)
		}
		slog.Info("language model ready", "provider", "gemini", "model", cfg.GenModel)
		return g, g.Close, nil
	default:
		o, err := llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize openai: %w", err)
		}
		slog.Info("language model ready", "provider", "openai", "model", cfg.OpenAIModel)
		return o, func() error { return nil }, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, provider core.LLMProvider) (*App, error) {
	a := &App{}

	if cfg.NeedsDatabase() {
		dbClient, err := db.NewDatabaseClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DBClient = dbClient
		a.closers = append(a.closers, dbClient.Close)
		slog.Info("database initialized and ready")
	}

	var dbc core.DbClient
	if a.DBClient != nil {
		dbc = a.DBClient
	}

	if cfg.ArchiveBucket != "" {
		objClient, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Archiver = archive.NewArchiver(dbc, objClient, cfg.ArchiveBucket)
		a.Archiver.Start(ctx, cfg.ArchiveWorkers)
		slog.Info("upload archive enabled", "bucket", cfg.ArchiveBucket, "workers", cfg.ArchiveWorkers)
	}

	cache, err := textcache.New(cfg.CacheSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = cache

	var archiver services.Archiver
	if a.Archiver != nil {
		archiver = a.Archiver
	}
	askService := services.NewAskService(
		extraction.NewExtractor(cfg.PDFPageMarkers),
		cache,
		llm.NewCompletionClient(provider, cfg.ConcurrentCompletions),
		formatter.New(),
		archiver,
		cfg.MaxDocumentChars,
	)

	routes := Routes{
		Ask:   handlers.NewAskHandler(askService, cfg.MaxUploadBytes),
		Cache: cache,
	}

	if cfg.AuthEnabled() {
		issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		users := services.NewUserService(a.DBClient)
		routes.Tokens = issuer
		routes.Auth = handlers.NewAuthHandler(users, issuer)

		if cfg.AuthMode == config.AuthOAuth {
			google := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
			routes.OAuth = handlers.NewOAuthHandler(google, users, issuer, cfg.FrontendURL)
		}
	}

	a.Server = NewServer(cfg, routes)
	slog.Info("application wired", "auth_mode", cfg.AuthMode, "provider", cfg.LLMProvider, "cache_size", cfg.CacheSize)
	return a, nil
}

// Close waits for archive workers (their context must already be cancelled)
// and releases the database and provider.
func (a *App) Close() error {
	if a.Archiver != nil {
		a.Archiver.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
