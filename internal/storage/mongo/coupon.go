package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

type couponDoc struct {
	ID                 string     `bson:"_id"`
	Code               string     `bson:"code"`
	Description        string     `bson:"description,omitempty"`
	DiscountPercentage string     `bson:"discountPercentage"`
	MaxDiscountAmount  string     `bson:"maxDiscountAmount"`
	MinOrderAmount     string     `bson:"minOrderAmount"`
	ValidFrom          *time.Time `bson:"validFrom,omitempty"`
	ValidUntil         *time.Time `bson:"validUntil,omitempty"`
	UsageLimit         int        `bson:"usageLimit"`
	UsagePerUser       int        `bson:"usagePerUser"`
	TotalUses          int        `bson:"totalUses"`
	UsedBy             []string   `bson:"usedBy"`
	IsActive           bool       `bson:"isActive"`
	VendorID           string     `bson:"vendorId"`
	RestaurantID       string     `bson:"restaurantId"`
	CreatedAt          time.Time  `bson:"createdAt"`
}

func fromCoupon(c *coupon.Coupon) couponDoc {
	usedBy := c.UsedBy
	if usedBy == nil {
		usedBy = []string{}
	}
	return couponDoc{
		ID:                 c.ID,
		Code:               c.Code,
		Description:        c.Description,
		DiscountPercentage: c.DiscountPercentage.String(),
		MaxDiscountAmount:  c.MaxDiscountAmount.String(),
		MinOrderAmount:     c.MinOrderAmount.String(),
		ValidFrom:          optionalTime(c.ValidFrom),
		ValidUntil:         optionalTime(c.ValidUntil),
		UsageLimit:         c.UsageLimit,
		UsagePerUser:       c.UsagePerUser,
		TotalUses:          c.TotalUses,
		UsedBy:             usedBy,
		IsActive:           c.IsActive,
		VendorID:           c.VendorID,
		RestaurantID:       c.RestaurantID,
		CreatedAt:          c.CreatedAt,
	}
}

func (d couponDoc) toCoupon() (coupon.Coupon, error) {
	pct, err := document.ParseMoney(d.DiscountPercentage)
	if err != nil {
		return coupon.Coupon{}, errors.Wrapf(err, "coupon %s percentage", d.ID)
	}
	maxDiscount, err := document.ParseMoney(d.MaxDiscountAmount)
	if err != nil {
		return coupon.Coupon{}, errors.Wrapf(err, "coupon %s max discount", d.ID)
	}
	minOrder, err := document.ParseMoney(d.MinOrderAmount)
	if err != nil {
		return coupon.Coupon{}, errors.Wrapf(err, "coupon %s min order", d.ID)
	}
	c := coupon.Coupon{
		ID:                 d.ID,
		Code:               d.Code,
		Description:        d.Description,
		DiscountPercentage: pct,
		MaxDiscountAmount:  maxDiscount,
		MinOrderAmount:     minOrder,
		UsageLimit:         d.UsageLimit,
		UsagePerUser:       d.UsagePerUser,
		TotalUses:          d.TotalUses,
		UsedBy:             d.UsedBy,
		IsActive:           d.IsActive,
		VendorID:           d.VendorID,
		RestaurantID:       d.RestaurantID,
		CreatedAt:          d.CreatedAt,
	}
	if d.ValidFrom != nil {
		c.ValidFrom = *d.ValidFrom
	}
	if d.ValidUntil != nil {
		c.ValidUntil = *d.ValidUntil
	}
	return c, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository on the coupons collection.
type CouponRepository struct {
	coupons *mongo.Collection
}

// NewCouponRepository returns a CouponRepository for db.
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{coupons: db.Collection(couponsCollection)}
}

func (r *CouponRepository) FindActiveByCode(ctx context.Context, code string) ([]coupon.Coupon, error) {
	return r.find(ctx, bson.M{"code": coupon.NormalizeCode(code), "isActive": true})
}

func (r *CouponRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]coupon.Coupon, error) {
	return r.find(ctx, bson.M{"restaurantId": restaurantID})
}

func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if _, err := r.coupons.InsertOne(ctx, fromCoupon(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return coupon.ErrDuplicateCode
		}
		return errors.Wrapf(err, "insert coupon %s", c.Code)
	}
	return nil
}

// Upsert inserts a coupon or updates the terms of the vendor's coupon with
// the same code. Usage counters are kept.
func (r *CouponRepository) Upsert(ctx context.Context, c *coupon.Coupon) error {
	d := fromCoupon(c)
	update := bson.M{
		"$set": bson.M{
			"description":        d.Description,
			"discountPercentage": d.DiscountPercentage,
			"maxDiscountAmount":  d.MaxDiscountAmount,
			"minOrderAmount":     d.MinOrderAmount,
			"validFrom":          d.ValidFrom,
			"validUntil":         d.ValidUntil,
			"usageLimit":         d.UsageLimit,
			"usagePerUser":       d.UsagePerUser,
			"isActive":           d.IsActive,
			"restaurantId":       d.RestaurantID,
		},
		"$setOnInsert": bson.M{
			"_id":       d.ID,
			"totalUses": 0,
			"usedBy":    []string{},
			"createdAt": d.CreatedAt,
		},
	}
	_, err := r.coupons.UpdateOne(ctx,
		bson.M{"vendorId": d.VendorID, "code": d.Code},
		update, options.Update().SetUpsert(true))
	return errors.Wrapf(err, "upsert coupon %s", c.Code)
}

// Redeem increments totalUses and records userID in one conditional update,
// so concurrent redemptions cannot overshoot either cap.
func (r *CouponRepository) Redeem(ctx context.Context, couponID, userID string) error {
	usesByUser := bson.M{"$size": bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$usedBy", bson.A{}}},
		"cond":  bson.M{"$eq": bson.A{"$$this", userID}},
	}}}
	filter := bson.M{
		"_id": couponID,
		"$expr": bson.M{"$and": bson.A{
			bson.M{"$lt": bson.A{"$totalUses", "$usageLimit"}},
			bson.M{"$lt": bson.A{usesByUser, "$usagePerUser"}},
		}},
	}
	update := bson.M{
		"$inc":  bson.M{"totalUses": 1},
		"$push": bson.M{"usedBy": userID},
	}

	res, err := r.coupons.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrapf(err, "redeem coupon %s", couponID)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Nothing matched: find out which condition failed.
	var d couponDoc
	if err := r.coupons.FindOne(ctx, bson.M{"_id": couponID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return coupon.ErrCouponNotFound
		}
		return errors.Wrapf(err, "find coupon %s", couponID)
	}
	c, err := d.toCoupon()
	if err != nil {
		return err
	}
	if c.TotalUses >= c.UsageLimit {
		return coupon.ErrUsageLimitReached
	}
	return coupon.ErrPerUserLimitReached
}

// Release decrements totalUses and removes one occurrence of userID from
// usedBy in a single pipeline update.
func (r *CouponRepository) Release(ctx context.Context, couponID, userID string) error {
	at := bson.M{"$indexOfArray": bson.A{"$usedBy", userID}}
	remaining := bson.M{"$map": bson.M{
		"input": bson.M{"$filter": bson.M{
			"input": bson.M{"$range": bson.A{0, bson.M{"$size": "$usedBy"}}},
			"cond":  bson.M{"$ne": bson.A{"$$this", at}},
		}},
		"in": bson.M{"$arrayElemAt": bson.A{"$usedBy", "$$this"}},
	}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "totalUses", Value: bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$totalUses", 1}}}}},
		{Key: "usedBy", Value: remaining},
	}}}}

	_, err := r.coupons.UpdateOne(ctx, bson.M{"_id": couponID, "usedBy": userID}, update)
	return errors.Wrapf(err, "release coupon %s", couponID)
}

func (r *CouponRepository) find(ctx context.Context, filter bson.M) ([]coupon.Coupon, error) {
	cur, err := r.coupons.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find coupons")
	}
	var docs []couponDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode coupons")
	}
	out := make([]coupon.Coupon, 0, len(docs))
	for _, d := range docs {
		c, err := d.toCoupon()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
