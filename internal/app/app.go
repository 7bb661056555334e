// Package app wires repositories, services and the HTTP handler of the
// lakehouse server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"lakehouse/internal/api"
	"lakehouse/internal/config"
	"lakehouse/internal/datasource"
	"lakehouse/internal/db"
	"lakehouse/internal/db/crypto"
	"lakehouse/internal/db/repository"
	"lakehouse/internal/middleware"
	"lakehouse/internal/objectstore"
	"lakehouse/internal/service/auth"
	"lakehouse/internal/service/catalog"
	"lakehouse/internal/service/datatable"
	"lakehouse/internal/service/query"
	"lakehouse/internal/service/storage"
	"lakehouse/internal/service/task"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Store  *db.Store
	Logger *slog.Logger
}

// Services groups the concrete services behind the API.
type Services struct {
	Query       *query.Service
	Tasks       *task.Dispatcher
	DataSources *storage.DataSourceService
	Storages    *storage.StorageService
	DataTables  *datatable.Service
	Views       *catalog.ViewService
	Auth        *auth.Service // nil when no local signing secret is configured
}

// App holds the fully wired application.
type App struct {
	Services   Services
	Handler    *api.Handler
	Validators []middleware.JWTValidator
}

// New wires all repositories and services from deps. OIDC discovery, when
// configured, happens here and fails New if the issuer is unreachable.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	repos := newRepositories(deps.Store, encryptor)

	// === External connectivity ===
	connector := datasource.NewConnector(nil, cfg.DataSource.MaxOpenConns, cfg.DataSource.ConnectTimeout).
		WithDuckDBDir(cfg.DataSource.DuckDBDir)
	resolver := datasource.NewResolver(repos.dataSourceReader, connector, logger.With("component", "datasource"))
	fetchers := objectstore.NewFactory(objectstore.Options{HTTPTimeout: cfg.Storage.HTTPTimeout})

	// === Services ===
	registry := query.DefaultRegistry()
	svcs := Services{
		Query: query.NewService(registry, resolver, repos.viewReader, logger),
		Tasks: task.NewDispatcher(
			repos.dataSourceReader, repos.storageReader,
			task.NewSQLExecutor(connector),
			task.NewExcelImportExecutor(connector, fetchers, logger),
			logger,
		),
		DataSources: storage.NewDataSourceService(repos.dataSources, logger),
		Storages:    storage.NewStorageService(repos.storages, logger),
		DataTables:  datatable.NewService(repos.tables, repos.columns, repos.usages, repos.dataSources, connector, logger),
		Views:       catalog.NewViewService(repos.views, registry, logger),
	}

	// === Authentication ===
	var validators []middleware.JWTValidator
	if cfg.Auth.JWTSecret != "" {
		svcs.Auth, err = auth.NewService(repos.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)
		if err != nil {
			return nil, fmt.Errorf("auth service: %w", err)
		}
		hs, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret, cfg.Auth.TenantClaim)
		if err != nil {
			return nil, fmt.Errorf("hs256 validator: %w", err)
		}
		validators = append(validators, hs)
	}
	switch {
	case cfg.Auth.JWKSURL != "":
		validators = append(validators, middleware.NewOIDCValidatorFromJWKS(ctx,
			cfg.Auth.JWKSURL, cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.TenantClaim, cfg.Auth.AllowedIssuers))
		logger.Info("jwks validation enabled", "jwks_url", cfg.Auth.JWKSURL)
	case cfg.Auth.IssuerURL != "":
		oidcV, err := middleware.NewOIDCValidator(ctx,
			cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.TenantClaim, cfg.Auth.AllowedIssuers)
		if err != nil {
			return nil, fmt.Errorf("oidc validator: %w", err)
		}
		validators = append(validators, oidcV)
		logger.Info("oidc validation enabled", "issuer", cfg.Auth.IssuerURL)
	}
	if len(validators) == 0 {
		return nil, fmt.Errorf("no token validator configured: set auth.jwt_secret or auth.issuer_url")
	}

	apiSvcs := api.Services{
		Query:       svcs.Query,
		Tasks:       svcs.Tasks,
		DataSources: svcs.DataSources,
		Storages:    svcs.Storages,
		DataTables:  svcs.DataTables,
		Views:       svcs.Views,
	}
	if svcs.Auth != nil {
		apiSvcs.Auth = svcs.Auth
	}

	return &App{
		Services:   svcs,
		Handler:    api.NewHandler(apiSvcs, cfg.MaxUploadBytes, logger),
		Validators: validators,
	}, nil
}

// Router builds the HTTP handler of the server. ctx bounds background work
// of the middleware chain.
func (a *App) Router(ctx context.Context, deps Deps) http.Handler {
	return api.NewRouter(ctx, a.Handler, api.RouterConfig{
		CORSAllowedOrigins: deps.Cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: deps.Cfg.RateLimit.RPS,
			Burst:             deps.Cfg.RateLimit.Burst,
		},
		Validators: a.Validators,
		Health:     deps.Store,
		Logger:     deps.Logger,
	})
}

// repositories holds the metadata repositories. CRUD services use the
// single-connection write pool; the per-request lookups of the query and task
// paths only read and go through the read pool.
type repositories struct {
	dataSources *repository.DataSourceRepo
	storages    *repository.StorageRepo
	tables      *repository.DataTableRepo
	columns     *repository.DataTableColumnRepo
	usages      *repository.DataTableUsageRepo
	views       *repository.ViewRepo
	users       *repository.UserRepo

	dataSourceReader *repository.DataSourceRepo
	storageReader    *repository.StorageRepo
	viewReader       *repository.ViewRepo
}

func newRepositories(store *db.Store, enc *crypto.Encryptor) repositories {
	// === Repositories (write-pool) ===
	r := repositories{
		dataSources: repository.NewDataSourceRepo(store.Write, enc),
		storages:    repository.NewStorageRepo(store.Write, enc),
		tables:      repository.NewDataTableRepo(store.Write),
		columns:     repository.NewDataTableColumnRepo(store.Write),
		usages:      repository.NewDataTableUsageRepo(store.Write),
		views:       repository.NewViewRepo(store.Write),
		users:       repository.NewUserRepo(store.Write),
	}

	// === Repositories (read-pool) ===
	r.dataSourceReader = repository.NewDataSourceRepo(store.Read, enc)
	r.storageReader = repository.NewStorageRepo(store.Read, enc)
	r.viewReader = repository.NewViewRepo(store.Read)
	return r
}
