package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resolution-backend/internal/assembly"
	"resolution-backend/internal/entities"
	"resolution-backend/internal/resolutions"
	"resolution-backend/internal/sequence"
	"resolution-backend/internal/services/health"
	"resolution-backend/internal/shared/config"
	"resolution-backend/internal/shared/server"
	"resolution-backend/internal/shared/server/middleware"
	"resolution-backend/internal/shared/storage/db"
	"resolution-backend/internal/shared/storage/object"
	localstore "resolution-backend/internal/shared/storage/object/local"
	s3store "resolution-backend/internal/shared/storage/object/s3"
	"resolution-backend/internal/shared/telemetry"
	"resolution-backend/internal/templates"
)

// registerObjectKey is where REGISTER_STORE=object keeps the counters.
const registerObjectKey = "register/resolution_register.json"

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             object.ObjectStore
	Templates         *templates.Registry
	TemplateWatcher   *templates.Watcher
	EntitiesRepo      entities.Repo
	RegisterStore     sequence.Store
	Sequence          *sequence.Service
	Assembler         *assembly.Assembler
	ResolutionsRepo   resolutions.Repo
	ResolutionService *resolutions.Service
	ResolutionHandler *resolutions.Handler
}

// Build wires configuration into a ready-to-serve App.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.RegisterStore) == "" {
		cfg.RegisterStore = config.RegisterStoreFile
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := templates.LoadDir(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	telemetry.Info("bootstrap.templates_loaded", map[string]any{
		"dir":   cfg.TemplatesDir,
		"count": len(registry.List()),
	})

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Templates: registry,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	if cfg.TemplatesWatch {
		w, err := templates.Watch(context.Background(), cfg.TemplatesDir, registry, templates.DefaultDebounce)
		if err != nil {
			return nil, fmt.Errorf("watch templates: %w", err)
		}
		app.TemplateWatcher = w
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		ResolutionHandler: app.ResolutionHandler,
		Health:            health.NewService(app.DB, func() int { return len(registry.List()) }),
		Limiter:           middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close stops the template watcher and releases the database pool.
func (a *App) Close() error {
	var errs []error
	if a.TemplateWatcher != nil {
		errs = append(errs, a.TemplateWatcher.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildRegisterStore selects where the resolution register lives. Lambda
// runs many containers at once, so it only accepts the postgres store.
func BuildRegisterStore(cfg config.Config, sqlDB *sql.DB, store object.ObjectStore) (sequence.Store, error) {
	if db.IsLambdaRuntime() && cfg.RegisterStore != config.RegisterStorePostgres {
		return nil, fmt.Errorf("REGISTER_STORE=%s cannot mint unique ids across Lambda containers; use postgres", cfg.RegisterStore)
	}
	switch cfg.RegisterStore {
	case config.RegisterStorePostgres:
		if sqlDB == nil {
			return nil, fmt.Errorf("REGISTER_STORE=postgres requires a database")
		}
		return sequence.NewPGStore(sqlDB), nil
	case config.RegisterStoreObject:
		if store == nil {
			return nil, fmt.Errorf("REGISTER_STORE=object requires an object store")
		}
		return sequence.NewObjectStore(store, registerObjectKey), nil
	default:
		if strings.TrimSpace(cfg.RegisterPath) == "" {
			return nil, fmt.Errorf("REGISTER_PATH is required")
		}
		return sequence.NewFileStore(cfg.RegisterPath), nil
	}
}

// BuildEntities loads the entity directory: Postgres when available,
// otherwise the seed file held in memory. A seed file is also upserted into
// Postgres so both sources agree.
func BuildEntities(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (entities.Repo, error) {
	seed, err := entities.LoadFile(cfg.EntitiesFile)
	if err != nil {
		return nil, err
	}
	if sqlDB == nil {
		return entities.NewMemoryRepo(seed...), nil
	}
	repo := &entities.PGRepo{DB: sqlDB}
	for _, e := range seed {
		if err := repo.Upsert(ctx, e); err != nil {
			return nil, fmt.Errorf("seed entity %s: %w", e.ID, err)
		}
	}
	return repo, nil
}

func buildServices(ctx context.Context, app *App) error {
	regStore, err := BuildRegisterStore(app.Config, app.DB, app.Store)
	if err != nil {
		return err
	}
	entityRepo, err := BuildEntities(ctx, app.Config, app.DB)
	if err != nil {
		return err
	}

	var resRepo resolutions.Repo
	if app.DB != nil {
		resRepo = &resolutions.PGRepo{DB: app.DB}
	} else {
		resRepo = resolutions.NewMemoryRepo()
	}

	seq := sequence.NewService(ctx, regStore)
	asm := assembly.New(seq, entityRepo)
	svc := &resolutions.Service{
		Templates:       app.Templates,
		Entities:        entityRepo,
		Assembler:       asm,
		Sequence:        seq,
		Store:           app.Store,
		Repo:            resRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}

	app.RegisterStore = regStore
	app.EntitiesRepo = entityRepo
	app.Sequence = seq
	app.Assembler = asm
	app.ResolutionsRepo = resRepo
	app.ResolutionService = svc
	app.ResolutionHandler = resolutions.NewHandler(svc)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
