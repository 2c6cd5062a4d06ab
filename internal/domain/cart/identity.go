package cart

import "strings"

// Identity tells which cart a request addresses and who is asking.
type Identity struct {
	// UserID is the authenticated requester.
	UserID      string
	HotelID     string
	TableNumber string
}

// ResolveIdentity selects the shared table cart when both hotelID and
// tableNumber are present and the requester's personal cart otherwise.
func ResolveIdentity(userID, hotelID, tableNumber string) Identity {
	hotelID = strings.TrimSpace(hotelID)
	tableNumber = strings.TrimSpace(tableNumber)
	if hotelID == "" || tableNumber == "" {
		return Identity{UserID: userID}
	}
	return Identity{UserID: userID, HotelID: hotelID, TableNumber: tableNumber}
}

// Shared reports whether the identity addresses a table cart.
func (id Identity) Shared() bool {
	return id.HotelID != "" && id.TableNumber != ""
}

// Key is the storage key of the addressed cart.
func (id Identity) Key() string {
	if id.Shared() {
		return id.HotelID + "_" + id.TableNumber
	}
	return "user:" + id.UserID
}
