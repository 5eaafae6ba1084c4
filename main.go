package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/config"
	"github.com/companydb-io/companydb/pkg/database"
	"github.com/companydb-io/companydb/pkg/handlers"
	"github.com/companydb-io/companydb/pkg/ingest"
	"github.com/companydb-io/companydb/pkg/logging"
	"github.com/companydb-io/companydb/pkg/match"
	"github.com/companydb-io/companydb/pkg/middleware"
	"github.com/companydb-io/companydb/pkg/query"
	"github.com/companydb-io/companydb/pkg/repositories"
	"github.com/companydb-io/companydb/pkg/search"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("search_enabled", cfg.Search.Enabled),
		zap.String("search_url", logging.SanitizeConnectionString(cfg.Search.URL)),
		zap.String("data_directory", cfg.Import.DataDirectory))

	ctx := context.Background()

	// Connect PostgreSQL and apply pending migrations. Migrations run over a
	// plain database/sql connection; the application pool is pgx-native.
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// The search store is optional. A connection failure here is logged and
	// the service runs relational-only; the query router falls back per
	// request, so a store that comes up later is picked up automatically.
	var searchClient *search.Client
	if cfg.Search.Enabled {
		searchClient, err = search.NewClient(search.Config{
			URL:           cfg.Search.URL,
			HealthTimeout: time.Duration(cfg.Search.HealthTimeoutMS) * time.Millisecond,
		}, logger)
		if err != nil {
			logger.Warn("Failed to create search client, continuing without search", zap.Error(err))
			searchClient = nil
		} else if err := searchClient.EnsureIndices(ctx); err != nil {
			logger.Warn("Failed to ensure search indices, continuing", zap.Error(err))
		}
	}

	jobs := repositories.NewImportJobRepository(db)
	companies := repositories.NewCompanyRepository(db)
	persons := repositories.NewPersonRepository(db)
	relationships := repositories.NewRelationshipRepository(db)

	var indexer *search.Indexer
	var projector ingest.SearchProjector
	var searcher query.Searcher
	if searchClient != nil {
		indexer = search.NewIndexer(searchClient, companies, persons, relationships, cfg.Search.IndexChunkSize, logger)
		projector = indexer
		searcher = searchClient
	}

	importer := ingest.NewImporter(db, jobs, companies, persons, relationships, projector, cfg.Import.BatchSize, logger)
	router := query.NewRouter(searcher, companies, persons, logger)
	matcher := match.NewMatcher(companies, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, searchClient, logger).RegisterRoutes(mux)
	handlers.NewImportsHandler(cfg, jobs, importer, indexer, logger).RegisterRoutes(mux)
	handlers.NewCompaniesHandler(router, companies, relationships, logger).RegisterRoutes(mux)
	handlers.NewPersonsHandler(router, persons, relationships, logger).RegisterRoutes(mux)

	auth := middleware.APIKeyAuth(cfg.APIKeys, logger)
	handlers.NewMatchHandler(matcher, companies, logger).RegisterRoutes(mux, handlers.AuthMiddleware(auth))

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting companydb",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// buildLogger picks the zap preset by environment. Production gets JSON at
// info level; everything else gets the development console encoder.
func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	return cfg.Build()
}
