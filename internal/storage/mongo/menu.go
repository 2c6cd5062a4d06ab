package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
	"github.com/shubham90-developer/Total-Health-sub003/internal/storage/document"
)

type hotelDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	VendorID string `bson:"vendorId"`
}

type menuItemDoc struct {
	ID        string               `bson:"_id"`
	HotelID   string               `bson:"hotelId"`
	Title     string               `bson:"title"`
	Image     string               `bson:"image,omitempty"`
	Price     string               `bson:"price"`
	Sizes     []document.Size      `bson:"sizes,omitempty"`
	Addons    []document.MenuAddon `bson:"addons,omitempty"`
	Available bool                 `bson:"available"`
}

func (d menuItemDoc) toItem() (menu.Item, error) {
	price, err := document.ParseMoney(d.Price)
	if err != nil {
		return menu.Item{}, errors.Wrapf(err, "item %s price", d.ID)
	}
	sizes, err := document.ToSizes(d.Sizes)
	if err != nil {
		return menu.Item{}, err
	}
	addons, err := document.ToAddons(d.Addons)
	if err != nil {
		return menu.Item{}, err
	}
	return menu.Item{
		ID:        d.ID,
		HotelID:   d.HotelID,
		Title:     d.Title,
		Image:     d.Image,
		Price:     price,
		Sizes:     sizes,
		Addons:    addons,
		Available: d.Available,
	}, nil
}

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository on the hotels and menu_items
// collections.
type MenuRepository struct {
	hotels *mongo.Collection
	items  *mongo.Collection
}

// NewMenuRepository returns a MenuRepository for db.
func NewMenuRepository(db *mongo.Database) *MenuRepository {
	return &MenuRepository{
		hotels: db.Collection(hotelsCollection),
		items:  db.Collection(menuCollection),
	}
}

func (r *MenuRepository) GetHotel(ctx context.Context, id string) (*menu.Hotel, error) {
	var d hotelDoc
	if err := r.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, menu.ErrHotelNotFound
		}
		return nil, errors.Wrapf(err, "find hotel %s", id)
	}
	return &menu.Hotel{ID: d.ID, Name: d.Name, VendorID: d.VendorID}, nil
}

func (r *MenuRepository) GetItem(ctx context.Context, id string) (*menu.Item, error) {
	var d menuItemDoc
	if err := r.items.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, menu.ErrItemNotFound
		}
		return nil, errors.Wrapf(err, "find menu item %s", id)
	}
	it, err := d.toItem()
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *MenuRepository) GetItems(ctx context.Context, ids []string) ([]menu.Item, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MenuRepository) ListByHotel(ctx context.Context, hotelID string) ([]menu.Item, error) {
	if _, err := r.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"hotelId": hotelID})
}

func (r *MenuRepository) find(ctx context.Context, filter bson.M) ([]menu.Item, error) {
	cur, err := r.items.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find menu items")
	}
	var docs []menuItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode menu items")
	}
	out := make([]menu.Item, 0, len(docs))
	for _, d := range docs {
		it, err := d.toItem()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// UpsertHotel inserts or replaces a hotel.
func (r *MenuRepository) UpsertHotel(ctx context.Context, h menu.Hotel) error {
	_, err := r.hotels.ReplaceOne(ctx, bson.M{"_id": h.ID},
		hotelDoc{ID: h.ID, Name: h.Name, VendorID: h.VendorID},
		options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "upsert hotel %s", h.ID)
}

// UpsertItem inserts or replaces a menu item.
func (r *MenuRepository) UpsertItem(ctx context.Context, it menu.Item) error {
	d := menuItemDoc{
		ID:        it.ID,
		HotelID:   it.HotelID,
		Title:     it.Title,
		Image:     it.Image,
		Price:     it.Price.String(),
		Sizes:     document.FromSizes(it.Sizes),
		Addons:    document.FromAddons(it.Addons),
		Available: it.Available,
	}
	_, err := r.items.ReplaceOne(ctx, bson.M{"_id": it.ID}, d, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "upsert menu item %s", it.ID)
}
