package app

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/order"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/memory"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/mongo"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/postgres"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/seed"
	"github.com/shubham90-developer/Total-Health-sub003/pkg/health"
)

// stores bundles the repositories of one storage driver.
type stores struct {
	Menu    menu.Repository
	Carts   cart.Repository
	Coupons coupon.Repository
	Orders  order.Repository
	APIKeys auth.Repository

	// Ping backs the readiness probe. Nil for the memory driver.
	Ping  health.CheckFunc
	Close func()
}

func openStores(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (*stores, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	case DriverMongo:
		return openMongo(ctx, cfg)
	case DriverMemory:
		return openMemory(ctx, lg, cfg)
	}
	return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
}

func openPostgres(ctx context.Context, cfg StorageConfig) (*stores, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &stores{
		Menu:    postgres.NewMenuRepository(pool),
		Carts:   postgres.NewCartRepository(pool),
		Coupons: postgres.NewCouponRepository(pool),
		Orders:  postgres.NewOrderRepository(pool),
		APIKeys: postgres.NewAPIKeyRepository(pool),
		Ping:    health.PingCheck(pool),
		Close:   pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg StorageConfig) (*stores, error) {
	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ensure indexes")
	}
	return &stores{
		Menu:    mongo.NewMenuRepository(db),
		Carts:   mongo.NewCartRepository(db),
		Coupons: mongo.NewCouponRepository(db),
		Orders:  mongo.NewOrderRepository(db),
		APIKeys: mongo.NewAPIKeyRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func openMemory(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (*stores, error) {
	catalog := memory.NewMenu()
	coupons := memory.NewCoupons()
	if cfg.Seed {
		if err := seed.Load(ctx, catalog, coupons, time.Now()); err != nil {
			return nil, errors.Wrap(err, "seed memory store")
		}
		lg.Info("Loaded demo catalog", zap.Int("hotels", len(seed.Hotels())), zap.Int("items", len(seed.Items())))
	}
	return &stores{
		Menu:    catalog,
		Carts:   memory.NewCarts(),
		Coupons: coupons,
		Orders:  memory.NewOrders(),
		APIKeys: memory.NewAPIKeys(),
		Close:   func() {},
	}, nil
}
