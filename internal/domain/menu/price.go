package menu

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// BasePrice returns the price for the given size label. Items without sizes
// are priced by Price and ignore the label.
func (it *Item) BasePrice(size string) (decimal.Decimal, error) {
	if len(it.Sizes) == 0 {
		return it.Price, nil
	}
	for _, s := range it.Sizes {
		if s.Label == size {
			return s.Price, nil
		}
	}
	return decimal.Zero, errors.Wrapf(ErrSizeUnavailable, "size %q", size)
}

// Addon returns the addon with the given key.
func (it *Item) Addon(key string) (Addon, bool) {
	for _, a := range it.Addons {
		if a.Key == key {
			return a, true
		}
	}
	return Addon{}, false
}

// UnitPrice computes the price of one unit of the item in the given size with
// the given addons: base price plus addon.price × addon.quantity for every
// selection. A selection quantity below 1 counts as 1.
func (it *Item) UnitPrice(size string, addons []AddonSelection) (decimal.Decimal, error) {
	price, err := it.BasePrice(size)
	if err != nil {
		return decimal.Zero, err
	}
	for _, sel := range addons {
		a, ok := it.Addon(sel.Key)
		if !ok {
			return decimal.Zero, errors.Wrapf(ErrAddonUnavailable, "addon %q", sel.Key)
		}
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		price = price.Add(a.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return price, nil
}

// LinePrice is UnitPrice × quantity.
func (it *Item) LinePrice(size string, addons []AddonSelection, quantity int) (decimal.Decimal, error) {
	unit, err := it.UnitPrice(size, addons)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}
