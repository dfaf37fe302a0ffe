package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tasklist/internal/cache"
	"tasklist/internal/config"
	"tasklist/internal/middleware"
	"tasklist/internal/repo"
	"tasklist/internal/service"
	"tasklist/migrations"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type App struct {
	cfg    config.Config
	log    *log.Logger
	mongo  *mongo.Client
	pg     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
}

// New connects the configured store (and Redis, if enabled) and builds the router.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger}

	taskRepo, err := a.openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	var taskCache *cache.TaskCache
	if cfg.Redis.Enabled() {
		rdb, err := a.connectRedis(cfg.Redis)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.redis = rdb
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}

	svc := service.NewTaskService(taskRepo, taskCache)
	a.router = newRouter(cfg, logger, svc)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			return fmt.Errorf("mongo disconnect: %w", err)
		}
	}
	return nil
}

func (a *App) openStore(cfg config.StoreConfig) (repo.TaskRepo, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := newMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		r := repo.NewMongoTaskRepo(client.Database(cfg.MongoDatabase))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		a.log.Info("mongo connected", "database", cfg.MongoDatabase)
		return r, nil

	case config.DriverPostgres:
		if err := runMigrations(cfg.PGDSN); err != nil {
			return nil, err
		}
		pool, err := a.connectPostgres(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		return repo.NewPGTaskRepo(pool), nil

	case config.DriverMemory:
		a.log.Warn("using in-memory store; tasks are lost on restart")
		return repo.NewMemoryTaskRepo(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func newMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// connectPostgres opens the pool the task repository runs on. The API does one
// short statement per request, so a small pool is enough.
func (a *App) connectPostgres(dsn string) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = 10
	pcfg.MinConns = 1
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	a.log.Info("postgres connected",
		"host", pcfg.ConnConfig.Host, "database", pcfg.ConnConfig.Database, "max_conns", pcfg.MaxConns)
	return pool, nil
}

// connectRedis opens the client backing the task list cache.
func (a *App) connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	a.log.Info("task list cache enabled", "addr", cfg.Addr, "db", cfg.DB, "ttl", cfg.DefaultTTL.Duration())
	return rdb, nil
}

func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	return migrate(db)
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, logger *log.Logger, svc *service.TaskService) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc)
	return r
}
