package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockflow/accounts"
	"blockflow/catalog"
	"blockflow/config"
	"blockflow/database"
	"blockflow/events"
	"blockflow/logger"
	"blockflow/metrics"
	"blockflow/middleware"
	"blockflow/orders"
	"blockflow/repository/gormdb"
	"blockflow/repository/memory"
	"blockflow/repository/mongodb"
	"blockflow/repository/redisstore"
	"blockflow/routes"
	"blockflow/seed"
	"blockflow/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// productStore is what both the catalog and order services need from product persistence.
type productStore interface {
	catalog.Store
	orders.Stock
}

type stores struct {
	products  productStore
	users     accounts.Store
	orders    orders.Store
	blacklist accounts.Blacklist
	// purge drops expired revoked tokens on backends without native expiry.
	purge func(ctx context.Context) (int64, error)
	close func()
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error(context.Background(), "service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info(ctx, "starting service", "service", cfg.ServiceName, "driver", cfg.Database.Driver)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Error(ctx, "failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "failed to shut down tracer", "error", err)
				}
			}()
		}
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	blacklist := st.blacklist
	if cfg.Redis.Addr != "" {
		client, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		blacklist = redisstore.NewBlacklist(client)
		st.purge = nil
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		k := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := k.Close(); err != nil {
				logger.Error(ctx, "failed to close kafka writer", "error", err)
			}
		}()
		publisher = k
		logger.Info(ctx, "publishing events to kafka", "topic", cfg.Kafka.Topic)
	}

	m := metrics.New()
	svc := routes.Services{
		Catalog:  catalog.NewService(metrics.InstrumentStore(st.products, m), publisher),
		Accounts: accounts.NewService(st.users, blacklist, accounts.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)),
		Orders:   orders.NewService(st.orders, st.products, publisher),
	}

	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, svc.Catalog, svc.Accounts); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	if st.purge != nil {
		go purgeRevoked(ctx, st.purge, time.Hour)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      newRouter(cfg, svc, m),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, svc routes.Services, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		logger.Warn(context.Background(), "invalid trusted proxies", "error", err)
	}

	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(m))
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	routes.RegisterRoutes(r, svc)
	return r
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg.Database.Mongo)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			products:  mongodb.NewProductStore(db),
			users:     mongodb.NewUserStore(db),
			orders:    mongodb.NewOrderStore(db),
			blacklist: mongodb.NewBlacklist(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error(ctx, "failed to disconnect mongodb", "error", err)
				}
			},
		}, nil

	case "mysql", "postgres", "sqlite":
		db, err := database.OpenGorm(ctx, cfg.Database.SQL())
		if err != nil {
			return nil, err
		}
		if err := gormdb.Migrate(db); err != nil {
			_ = database.CloseGorm(db)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		blacklist := gormdb.NewBlacklist(db)
		return &stores{
			products:  gormdb.NewProductStore(db),
			users:     gormdb.NewUserStore(db),
			orders:    gormdb.NewOrderStore(db),
			blacklist: blacklist,
			purge:     blacklist.Purge,
			close: func() {
				if err := database.CloseGorm(db); err != nil {
					logger.Error(ctx, "failed to close database", "error", err)
				}
			},
		}, nil

	default:
		logger.Warn(ctx, "using in-memory stores, data is lost on restart")
		return &stores{
			products:  memory.NewProductStore(),
			users:     memory.NewUserStore(),
			orders:    memory.NewOrderStore(),
			blacklist: memory.NewBlacklist(),
			close:     func() {},
		}, nil
	}
}

// purgeRevoked periodically deletes revoked tokens that have expired anyway.
func purgeRevoked(ctx context.Context, purge func(context.Context) (int64, error), every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Error(ctx, "failed to purge revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "purged revoked tokens", "count", n)
			}
		}
	}
}
