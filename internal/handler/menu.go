package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
)

func (h *Handler) getHotelMenu(w http.ResponseWriter, r *http.Request) {
	hotelID := mux.Vars(r)["hotelId"]

	hotel, err := h.menu.GetHotel(r.Context(), hotelID)
	if err != nil {
		writeError(w, r, errors.Wrap(err, "get hotel"))
		return
	}
	items, err := h.menu.ListByHotel(r.Context(), hotelID)
	if err != nil {
		writeError(w, r, errors.Wrap(err, "list menu"))
		return
	}
	writeJSON(w, http.StatusOK, "Menu fetched", menuDTO{hotel: hotel, items: items})
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.menu.GetItem(r.Context(), mux.Vars(r)["menuItemId"])
	if err != nil {
		writeError(w, r, errors.Wrap(err, "get menu item"))
		return
	}
	writeJSON(w, http.StatusOK, "Menu item fetched", menuItemDTO{item})
}
