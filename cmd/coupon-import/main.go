// Command coupon-import bulk loads vendor coupons from gzip-compressed CSV
// files. Files are parsed concurrently; when the same restaurant and code
// appear more than once, the first occurrence in argument order wins.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/postgres"
)

const progressEvery = 1000

type couponUpserter interface {
	Upsert(ctx context.Context, c *coupon.Coupon) error
}

type hotelGetter interface {
	GetHotel(ctx context.Context, id string) (*menu.Hotel, error)
}

func main() {
	_ = godotenv.Load()

	var (
		dataDir     string
		databaseURL string
		dryRun      bool
	)
	flag.StringVar(&dataDir, "data-dir", "data", "directory searched for *.csv.gz when no files are given")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and validate without writing")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("database URL is required: set --database-url or DATABASE_URL")
	}

	files := flag.Args()
	if len(files) == 0 {
		files, err = filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
		if err != nil {
			lg.Fatal("List data files", zap.Error(err))
		}
	}
	if len(files) == 0 {
		lg.Fatal("No input files", zap.String("data_dir", dataDir))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, files, databaseURL, dryRun); err != nil {
		lg.Fatal("Coupon import failed", zap.Error(err))
	}
	lg.Info("Coupon import completed")
}

func run(ctx context.Context, lg *zap.Logger, files []string, databaseURL string, dryRun bool) error {
	lg.Info("Parsing files", zap.Int("files", len(files)))
	parsed, err := readAll(ctx, lg, files)
	if err != nil {
		return errors.Wrap(err, "read files")
	}

	rows, dropped := dedupe(parsed)
	for _, r := range dropped {
		lg.Warn("Duplicate coupon skipped",
			zap.String("file", files[r.file]),
			zap.Int("line", r.line),
			zap.String("code", coupon.NormalizeCode(r.req.Code)),
		)
	}
	lg.Info("Coupons ready", zap.Int("count", len(rows)), zap.Int("duplicates", len(dropped)))
	if dryRun || len(rows) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return write(ctx, lg, postgres.NewMenuRepository(pool), postgres.NewCouponRepository(pool), rows, time.Now())
}

// readAll parses every file concurrently. Results keep argument order.
func readAll(ctx context.Context, lg *zap.Logger, files []string) ([][]row, error) {
	results := make([][]row, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			rows, failed, err := readFile(ctx, i, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			for _, f := range failed {
				lg.Warn("Invalid coupon row",
					zap.String("file", path),
					zap.Int("line", f.line),
					zap.Error(f.err),
				)
			}
			lg.Info("Parsed file",
				zap.String("file", path),
				zap.Int("rows", len(rows)),
				zap.Int("invalid", len(failed)),
			)
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// write resolves each row's vendor from its restaurant and upserts it.
// Rows naming an unknown restaurant are skipped, as are later rows repeating
// a code the vendor already received in this run.
func write(ctx context.Context, lg *zap.Logger, hotels hotelGetter, coupons couponUpserter, rows []row, now time.Time) error {
	var (
		vendors = make(map[string]string)
		issued  = make(map[string]struct{})

		written, skipped int
	)
	for i, r := range rows {
		vendor, ok := vendors[r.req.RestaurantID]
		if !ok {
			h, err := hotels.GetHotel(ctx, r.req.RestaurantID)
			switch {
			case errors.Is(err, menu.ErrHotelNotFound):
			case err != nil:
				return errors.Wrapf(err, "get restaurant %s", r.req.RestaurantID)
			default:
				vendor = h.VendorID
			}
			vendors[r.req.RestaurantID] = vendor
		}
		if vendor == "" {
			skipped++
			lg.Warn("Unknown restaurant", zap.String("restaurant", r.req.RestaurantID), zap.Int("line", r.line))
			continue
		}
		code := coupon.NormalizeCode(r.req.Code)
		if _, dup := issued[vendor+"\x00"+code]; dup {
			skipped++
			lg.Warn("Code already issued by vendor", zap.String("code", code), zap.String("vendor", vendor), zap.Int("line", r.line))
			continue
		}
		issued[vendor+"\x00"+code] = struct{}{}

		c := &coupon.Coupon{
			ID:                 uuid.New().String(),
			Code:               code,
			Description:        r.req.Description,
			DiscountPercentage: r.req.DiscountPercentage,
			MaxDiscountAmount:  r.req.MaxDiscountAmount,
			MinOrderAmount:     r.req.MinOrderAmount,
			ValidFrom:          r.req.ValidFrom.UTC(),
			ValidUntil:         r.req.ValidUntil.UTC(),
			UsageLimit:         r.req.UsageLimit,
			UsagePerUser:       r.req.UsagePerUser,
			IsActive:           true,
			VendorID:           vendor,
			RestaurantID:       r.req.RestaurantID,
			CreatedAt:          now.UTC(),
		}
		if err := coupons.Upsert(ctx, c); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}
		written++

		if (i+1)%progressEvery == 0 || i+1 == len(rows) {
			lg.Info("Write progress", zap.Int("processed", i+1), zap.Int("total", len(rows)))
		}
	}
	lg.Info("Coupons written", zap.Int("written", written), zap.Int("skipped", skipped))
	return nil
}
