package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/cart"
	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/menu"
)

// identity resolves the cart a diner request addresses.
func identity(r *http.Request, scope cartScope) cart.Identity {
	d, _ := dinerFrom(r.Context())
	scope = scope.orQuery(r)
	return cart.ResolveIdentity(d.UserID, scope.HotelID, scope.TableNumber)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	addons := make([]menu.AddonSelection, 0, len(req.Addons))
	for _, a := range req.Addons {
		addons = append(addons, menu.AddonSelection{Key: a.Key, Quantity: a.Quantity})
	}
	// hotelId doubles as the table selector when tableNumber is present.
	id := identity(r, cartScope{HotelID: req.HotelID, TableNumber: req.TableNumber})

	c, err := h.carts.AddItem(r.Context(), id, cart.AddItemRequest{
		MenuItemID:          req.MenuItemID,
		HotelID:             req.HotelID,
		Quantity:            req.Quantity,
		Size:                req.Size,
		Addons:              addons,
		SpecialInstructions: req.SpecialInstructions,
	})
	h.metrics.cartMutation(r.Context(), "add", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Item added to cart", cartDTO{cart: c})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Get(r.Context(), identity(r, cartScope{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Cart fetched", cartDTO{cart: view.Cart, items: view.Items})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := identity(r, cartScope{HotelID: req.HotelID, TableNumber: req.TableNumber})
	c, err := h.carts.UpdateItem(r.Context(), id, cart.UpdateItemRequest{
		ItemID:              req.ItemID,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	h.metrics.cartMutation(r.Context(), "update", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Cart item updated", cartDTO{cart: c})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]

	c, err := h.carts.RemoveItem(r.Context(), identity(r, cartScope{}), itemID)
	h.metrics.cartMutation(r.Context(), "remove", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Item removed from cart", cartDTO{cart: c})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), identity(r, cartScope{}))
	h.metrics.cartMutation(r.Context(), "clear", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var data encoder
	if c != nil {
		data = cartDTO{cart: c}
	}
	writeJSON(w, http.StatusOK, "Cart cleared", data)
}
