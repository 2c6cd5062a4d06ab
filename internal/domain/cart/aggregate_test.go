package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func personalCart() *Cart {
	return &Cart{ID: "c1", Key: "user:u1", UserID: "u1"}
}

func sharedCart() *Cart {
	return &Cart{ID: "c2", Key: "h1_7", HotelID: "h1", TableNumber: "7"}
}

func line(id, menuItem, size string, qty int, price string, by string) Line {
	return Line{
		ID:         id,
		MenuItemID: menuItem,
		HotelID:    "h1",
		Quantity:   qty,
		Size:       size,
		Price:      d(price),
		OrderedBy:  by,
	}
}

// assertTotal checks that the total equals the sum of line prices.
func assertTotal(t *testing.T, c *Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, l := range c.Items {
		sum = sum.Add(l.Price)
	}
	assert.True(t, sum.Equal(c.TotalAmount), "total %s != sum of lines %s", c.TotalAmount, sum)
}

func TestAddLine_PersonalMergesSameItemAndSize(t *testing.T) {
	c := personalCart()

	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "u1"))
	require.NoError(t, err)
	got, err := c.AddLine(line("l2", "m1", "large", 2, "200", "u1"))
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, d("300").Equal(c.Items[0].Price))
	assertTotal(t, c)
}

func TestAddLine_PersonalDifferentSizeOrAddons(t *testing.T) {
	c := personalCart()

	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "u1"))
	require.NoError(t, err)
	_, err = c.AddLine(line("l2", "m1", "small", 1, "60", "u1"))
	require.NoError(t, err)

	withCheese := line("l3", "m1", "large", 1, "140", "u1")
	withCheese.Addons = []menu.AddonSelection{{Key: "cheese", Quantity: 1}}
	_, err = c.AddLine(withCheese)
	require.NoError(t, err)

	assert.Len(t, c.Items, 3)
	assert.True(t, d("300").Equal(c.TotalAmount))
	assertTotal(t, c)
}

func TestAddLine_AddonOrderDoesNotMatter(t *testing.T) {
	c := personalCart()

	a := line("l1", "m1", "large", 1, "150", "u1")
	a.Addons = []menu.AddonSelection{{Key: "cheese", Quantity: 1}, {Key: "olives", Quantity: 2}}
	b := line("l2", "m1", "large", 1, "150", "u1")
	b.Addons = []menu.AddonSelection{{Key: "olives", Quantity: 2}, {Key: "cheese"}}

	_, err := c.AddLine(a)
	require.NoError(t, err)
	_, err = c.AddLine(b)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddLine_SharedKeepsDinersApart(t *testing.T) {
	c := sharedCart()

	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "alice"))
	require.NoError(t, err)
	_, err = c.AddLine(line("l2", "m1", "large", 1, "100", "bob"))
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "alice", c.Items[0].OrderedBy)
	assert.Equal(t, "bob", c.Items[1].OrderedBy)
	assertTotal(t, c)
}

func TestAddLine_SharedMergesOwnIdenticalOrder(t *testing.T) {
	c := sharedCart()

	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "alice"))
	require.NoError(t, err)
	_, err = c.AddLine(line("l2", "m1", "large", 1, "100", "alice"))
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddLine_SharedDifferentInstructionsSplit(t *testing.T) {
	c := sharedCart()

	first := line("l1", "m1", "large", 1, "100", "alice")
	second := line("l2", "m1", "large", 1, "100", "alice")
	second.SpecialInstructions = "no onions"

	_, err := c.AddLine(first)
	require.NoError(t, err)
	_, err = c.AddLine(second)
	require.NoError(t, err)

	assert.Len(t, c.Items, 2)
}

func TestAddLine_RestaurantMismatch(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "u1"))
	require.NoError(t, err)

	other := line("l2", "m9", "large", 1, "50", "u1")
	other.HotelID = "h2"
	_, err = c.AddLine(other)
	require.ErrorIs(t, err, ErrRestaurantMismatch)
	assert.Len(t, c.Items, 1)
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 0, "0", "u1"))
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateLine_RescalesByUnitPrice(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 2, "100", "u1"))
	require.NoError(t, err)
	assert.True(t, d("100").Equal(c.TotalAmount))

	got, err := c.UpdateLine("l1", intPtr(3), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.True(t, d("150").Equal(got.Price), "got %s", got.Price)
	assert.True(t, d("150").Equal(c.TotalAmount))

	require.NoError(t, c.RemoveLine("l1"))
	assert.True(t, decimal.Zero.Equal(c.TotalAmount))
	assert.Empty(t, c.Items)
}

func TestUpdateLine_InstructionsOnly(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 2, "100", "u1"))
	require.NoError(t, err)

	got, err := c.UpdateLine("l1", nil, strPtr("extra spicy"))
	require.NoError(t, err)
	assert.Equal(t, "extra spicy", got.SpecialInstructions)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, d("100").Equal(got.Price))
}

func TestUpdateLine_FractionalUnitPrice(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 3, "31.50", "u1"))
	require.NoError(t, err)

	got, err := c.UpdateLine("l1", intPtr(2), nil)
	require.NoError(t, err)
	assert.True(t, d("21").Equal(got.Price), "got %s", got.Price)
	assertTotal(t, c)
}

func TestUpdateLine_Errors(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "u1"))
	require.NoError(t, err)

	_, err = c.UpdateLine("missing", intPtr(2), nil)
	require.ErrorIs(t, err, ErrItemNotFound)

	_, err = c.UpdateLine("l1", intPtr(0), nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRemoveLine_NotFound(t *testing.T) {
	c := personalCart()
	require.ErrorIs(t, c.RemoveLine("nope"), ErrItemNotFound)
}

func TestClear_DropsCoupon(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 1, "100", "u1"))
	require.NoError(t, err)
	c.ApplyCoupon("SAVE10", d("10"))

	c.Clear()

	assert.Empty(t, c.Items)
	assert.True(t, decimal.Zero.Equal(c.TotalAmount))
	assert.Empty(t, c.AppliedCouponCode)
	assert.True(t, decimal.Zero.Equal(c.DiscountAmount))
}

func TestRecompute_CapsDiscountAtTotal(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 4, "100", "u1"))
	require.NoError(t, err)
	c.ApplyCoupon("SAVE", d("60"))

	qty := 1
	_, err = c.UpdateLine("l1", &qty, nil)
	require.NoError(t, err)

	assert.True(t, d("25").Equal(c.TotalAmount), "got %s", c.TotalAmount)
	assert.True(t, d("25").Equal(c.DiscountAmount), "got %s", c.DiscountAmount)
	assert.Equal(t, "SAVE", c.AppliedCouponCode)

	require.NoError(t, c.RemoveLine("l1"))
	assert.Empty(t, c.AppliedCouponCode)
	assert.True(t, decimal.Zero.Equal(c.DiscountAmount))
}

func TestRestore_BypassesRestaurantGuard(t *testing.T) {
	claimed := []Line{
		line("l1", "m1", "large", 1, "100", "alice"),
		line("l2", "m2", "", 1, "50", "bob"),
	}
	c := sharedCart()
	other := line("l9", "m9", "", 1, "30", "carol")
	other.HotelID = "h2"
	_, err := c.AddLine(other)
	require.NoError(t, err)

	c.Restore(claimed, []string{"alice", "bob"})
	c.Restore(claimed, nil)

	require.Len(t, c.Items, 3)
	assert.Equal(t, "l1", c.Items[0].ID)
	assert.Equal(t, "l9", c.Items[2].ID)
	assert.True(t, d("180").Equal(c.TotalAmount))
	assert.Equal(t, []string{"alice", "bob"}, c.Users)
}

func TestRemoveCoupon_AlwaysResets(t *testing.T) {
	c := personalCart()
	c.RemoveCoupon()
	assert.Empty(t, c.AppliedCouponCode)
	assert.True(t, decimal.Zero.Equal(c.DiscountAmount))

	c.ApplyCoupon("X", d("5"))
	c.RemoveCoupon()
	assert.Empty(t, c.AppliedCouponCode)
	assert.True(t, decimal.Zero.Equal(c.DiscountAmount))
}

func TestJoin_OnlySharedAndIdempotent(t *testing.T) {
	p := personalCart()
	assert.False(t, p.Join("u2"))
	assert.Empty(t, p.Users)

	s := sharedCart()
	assert.True(t, s.Join("alice"))
	assert.False(t, s.Join("alice"))
	assert.True(t, s.Join("bob"))
	assert.Equal(t, []string{"alice", "bob"}, s.Users)
}

func TestClone_IsDeep(t *testing.T) {
	c := sharedCart()
	l := line("l1", "m1", "large", 1, "100", "alice")
	l.Addons = []menu.AddonSelection{{Key: "cheese", Quantity: 1}}
	_, err := c.AddLine(l)
	require.NoError(t, err)
	c.Join("alice")

	cp := c.Clone()
	cp.Items[0].Quantity = 9
	cp.Items[0].Addons[0].Key = "olives"
	cp.Users[0] = "mallory"

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "cheese", c.Items[0].Addons[0].Key)
	assert.Equal(t, "alice", c.Users[0])
}

func TestFinalAmount_FlooredAtZero(t *testing.T) {
	c := personalCart()
	_, err := c.AddLine(line("l1", "m1", "large", 1, "10", "u1"))
	require.NoError(t, err)
	c.ApplyCoupon("BIG", d("25"))
	assert.True(t, decimal.Zero.Equal(c.FinalAmount()))

	c.ApplyCoupon("SMALL", d("2.5"))
	assert.True(t, d("7.5").Equal(c.FinalAmount()))
}

func TestResolveIdentity(t *testing.T) {
	shared := ResolveIdentity("u1", "h1", "12")
	assert.True(t, shared.Shared())
	assert.Equal(t, "h1_12", shared.Key())
	assert.Equal(t, "u1", shared.UserID)

	personal := ResolveIdentity("u1", "h1", "")
	assert.False(t, personal.Shared())
	assert.Equal(t, "user:u1", personal.Key())

	blank := ResolveIdentity("u1", "  ", "12")
	assert.False(t, blank.Shared())
}
