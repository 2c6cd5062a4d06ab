package handler

import (
	"net/http"
)

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var scope cartScope
	if r.ContentLength != 0 {
		if err := h.decode(r, &scope); err != nil {
			writeError(w, r, err)
			return
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), identity(r, scope))
	h.metrics.orderPlaced(r.Context(), err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Order placed", orderDTO{o})
}
