// Command seed-db loads the demo restaurants, menu and coupons into a
// database and registers a vendor API key.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/auth"
	"github.com/shubham90-developer/Total-Health-sub003/internal/handler"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/mongo"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/postgres"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/seed"
)

type options struct {
	driver        string
	databaseURL   string
	mongoURI      string
	mongoDatabase string
	apiKey        string
	apiKeyPepper  string
}

// targets are the repositories a seed run writes to.
type targets struct {
	menus   seed.MenuWriter
	coupons seed.CouponWriter
	keys    auth.Repository
	close   func()
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.driver, "driver", "postgres", "storage driver: postgres or mongo")
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI (or MONGODB_URI env)")
	flag.StringVar(&opts.mongoDatabase, "mongo-database", "restro", "MongoDB database name")
	flag.StringVar(&opts.apiKey, "api-key", "", "vendor API key to register (or RESTRO_SEED_API_KEY env)")
	flag.StringVar(&opts.apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or RESTRO_AUTH_API_KEY_PEPPER env)")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.mongoURI == "" {
		opts.mongoURI = os.Getenv("MONGODB_URI")
	}
	if opts.apiKey == "" {
		opts.apiKey = os.Getenv("RESTRO_SEED_API_KEY")
	}
	if opts.apiKeyPepper == "" {
		opts.apiKeyPepper = os.Getenv("RESTRO_AUTH_API_KEY_PEPPER")
	}
	if opts.apiKey == "" {
		lg.Fatal("API key is required: set --api-key or RESTRO_SEED_API_KEY")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, opts); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	t, err := open(ctx, lg, opts)
	if err != nil {
		return err
	}
	defer t.close()

	if err := seed.Load(ctx, t.menus, t.coupons, time.Now()); err != nil {
		return errors.Wrap(err, "load catalog")
	}
	lg.Info("Upserted catalog",
		zap.Int("hotels", len(seed.Hotels())),
		zap.Int("items", len(seed.Items())),
	)

	key := &auth.APIKeyInfo{
		ID:       "default",
		KeyHash:  hex.EncodeToString(handler.HashAPIKey([]byte(opts.apiKeyPepper), opts.apiKey)),
		Name:     "Default vendor key",
		VendorID: seed.VendorID,
		Scopes:   []string{auth.ScopeCouponsRead, auth.ScopeCouponsWrite},
	}
	if err := t.keys.Create(ctx, key); err != nil {
		return errors.Wrap(err, "store api key")
	}
	lg.Info("Registered API key", zap.String("id", key.ID), zap.String("vendor", key.VendorID))
	return nil
}

func open(ctx context.Context, lg *zap.Logger, opts options) (*targets, error) {
	switch opts.driver {
	case "postgres":
		if opts.databaseURL == "" {
			return nil, errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		lg.Info("Connecting to PostgreSQL")
		pool, err := postgres.NewPool(ctx, opts.databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect to database")
		}
		lg.Info("Running migrations")
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &targets{
			menus:   postgres.NewMenuRepository(pool),
			coupons: postgres.NewCouponRepository(pool),
			keys:    postgres.NewAPIKeyRepository(pool),
			close:   pool.Close,
		}, nil
	case "mongo":
		if opts.mongoURI == "" {
			return nil, errors.New("mongo URI is required: set --mongo-uri or MONGODB_URI")
		}
		lg.Info("Connecting to MongoDB")
		client, err := mongo.Connect(ctx, opts.mongoURI)
		if err != nil {
			return nil, errors.Wrap(err, "connect to mongo")
		}
		db := client.Database(opts.mongoDatabase)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, errors.Wrap(err, "ensure indexes")
		}
		return &targets{
			menus:   mongo.NewMenuRepository(db),
			coupons: mongo.NewCouponRepository(db),
			keys:    mongo.NewAPIKeyRepository(db),
			close:   func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
	return nil, errors.Errorf("unknown driver %q", opts.driver)
}
