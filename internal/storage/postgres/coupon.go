package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
)

const (
	couponSelect = `SELECT c.id, c.code, c.description, c.discount_percentage, c.max_discount_amount,
		c.min_order_amount, c.valid_from, c.valid_until, c.usage_limit, c.usage_per_user,
		c.total_uses, c.is_active, c.vendor_id, c.restaurant_id, c.created_at,
		COALESCE(array_agg(r.user_id ORDER BY r.redeemed_at) FILTER (WHERE r.user_id IS NOT NULL), '{}')
		FROM coupons c LEFT JOIN coupon_redemptions r ON r.coupon_id = c.id`

	findActiveCouponsSQL = couponSelect + ` WHERE c.code = $1 AND c.is_active GROUP BY c.id`

	listCouponsSQL = couponSelect + ` WHERE c.restaurant_id = $1 GROUP BY c.id ORDER BY c.created_at`

	couponColumns = `id, code, description, discount_percentage, max_discount_amount, min_order_amount,
		valid_from, valid_until, usage_limit, usage_per_user, is_active, vendor_id, restaurant_id, created_at`

	insertCouponSQL = `INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	upsertCouponSQL = insertCouponSQL + `
		ON CONFLICT (vendor_id, code) DO UPDATE SET description = EXCLUDED.description,
			discount_percentage = EXCLUDED.discount_percentage,
			max_discount_amount = EXCLUDED.max_discount_amount,
			min_order_amount = EXCLUDED.min_order_amount,
			valid_from = EXCLUDED.valid_from, valid_until = EXCLUDED.valid_until,
			usage_limit = EXCLUDED.usage_limit, usage_per_user = EXCLUDED.usage_per_user,
			is_active = EXCLUDED.is_active, restaurant_id = EXCLUDED.restaurant_id`

	lockCouponSQL = `SELECT usage_limit, usage_per_user, total_uses FROM coupons WHERE id = $1 FOR UPDATE`

	countUserRedemptionsSQL = `SELECT count(*) FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2`

	incrementCouponUsesSQL = `UPDATE coupons SET total_uses = total_uses + 1 WHERE id = $1`

	insertRedemptionSQL = `INSERT INTO coupon_redemptions (coupon_id, user_id) VALUES ($1, $2)`

	deleteRedemptionSQL = `DELETE FROM coupon_redemptions WHERE ctid = (
		SELECT ctid FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2
		ORDER BY redeemed_at DESC LIMIT 1)`

	decrementCouponUsesSQL = `UPDATE coupons SET total_uses = total_uses - 1 WHERE id = $1 AND total_uses > 0`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindActiveByCode returns the active coupons with the given code.
func (r *CouponRepository) FindActiveByCode(ctx context.Context, code string) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, findActiveCouponsSQL, coupon.NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// ListByRestaurant returns every coupon issued for a restaurant.
func (r *CouponRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing coupons of %q: %w", restaurantID, err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Create inserts a coupon, failing with coupon.ErrDuplicateCode when the
// vendor already uses the code.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if _, err := r.pool.Exec(ctx, insertCouponSQL, couponArgs(c)...); err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrDuplicateCode
		}
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// Upsert inserts a coupon or updates the terms of the vendor's coupon with
// the same code. Usage counters are kept.
func (r *CouponRepository) Upsert(ctx context.Context, c *coupon.Coupon) error {
	if _, err := r.pool.Exec(ctx, upsertCouponSQL, couponArgs(c)...); err != nil {
		return fmt.Errorf("upserting coupon %q: %w", c.Code, err)
	}
	return nil
}

// Redeem counts one use of the coupon by userID. The coupon row is locked
// for the duration of the check so concurrent redemptions cannot overshoot
// the caps.
func (r *CouponRepository) Redeem(ctx context.Context, couponID, userID string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var limit, perUser, uses int
		if err := tx.QueryRow(ctx, lockCouponSQL, couponID).Scan(&limit, &perUser, &uses); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return coupon.ErrCouponNotFound
			}
			return err
		}
		if uses >= limit {
			return coupon.ErrUsageLimitReached
		}

		var byUser int
		if err := tx.QueryRow(ctx, countUserRedemptionsSQL, couponID, userID).Scan(&byUser); err != nil {
			return err
		}
		if byUser >= perUser {
			return coupon.ErrPerUserLimitReached
		}

		if _, err := tx.Exec(ctx, incrementCouponUsesSQL, couponID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertRedemptionSQL, couponID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, coupon.ErrCouponNotFound) ||
			errors.Is(err, coupon.ErrUsageLimitReached) ||
			errors.Is(err, coupon.ErrPerUserLimitReached) {
			return err
		}
		return fmt.Errorf("redeeming coupon %q: %w", couponID, err)
	}
	return nil
}

// Release drops the latest redemption of the coupon by userID and gives the
// use back to the coupon's total.
func (r *CouponRepository) Release(ctx context.Context, couponID, userID string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteRedemptionSQL, couponID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, decrementCouponUsesSQL, couponID)
		return err
	})
	if err != nil {
		return fmt.Errorf("releasing coupon %q: %w", couponID, err)
	}
	return nil
}

func couponArgs(c *coupon.Coupon) []any {
	return []any{
		c.ID, c.Code, c.Description, c.DiscountPercentage, c.MaxDiscountAmount, c.MinOrderAmount,
		nullTime(c.ValidFrom), nullTime(c.ValidUntil), c.UsageLimit, c.UsagePerUser,
		c.IsActive, c.VendorID, c.RestaurantID, c.CreatedAt,
	}
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c          coupon.Coupon
		validFrom  *time.Time
		validUntil *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.DiscountPercentage, &c.MaxDiscountAmount,
		&c.MinOrderAmount, &validFrom, &validUntil, &c.UsageLimit, &c.UsagePerUser,
		&c.TotalUses, &c.IsActive, &c.VendorID, &c.RestaurantID, &c.CreatedAt, &c.UsedBy,
	)
	if validFrom != nil {
		c.ValidFrom = *validFrom
	}
	if validUntil != nil {
		c.ValidUntil = *validUntil
	}
	return c, err
}
