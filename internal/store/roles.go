package store

import "parkdeck/internal/entities"

// collection names the five datasets the store owns.
type collection string

const (
	collectionSlots        collection = "slots"
	collectionVehicleLogs  collection = "vehicle_logs"
	collectionReservations collection = "reservations"
	collectionInvoices     collection = "invoices"
	collectionUsers        collection = "users"
)

// roleCollections is the closed table of what each role gets to load.
// Slots are public to every authenticated role; the user directory is
// admin-only.
var roleCollections = map[entities.Role][]collection{
	entities.RoleAdmin: {
		collectionSlots, collectionVehicleLogs, collectionReservations,
		collectionInvoices, collectionUsers,
	},
	entities.RoleStaff: {
		collectionSlots, collectionVehicleLogs, collectionReservations,
		collectionInvoices,
	},
	entities.RoleCustomer: {
		collectionSlots, collectionVehicleLogs, collectionReservations,
		collectionInvoices,
	},
}

// collectionsFor resolves the load set for a role. Unknown roles get the
// customer set, which is also the most restrictive scoping.
func collectionsFor(role entities.Role) []collection {
	if cols, ok := roleCollections[role]; ok {
		return cols
	}
	return roleCollections[entities.RoleCustomer]
}

// scopedToUser reports whether list queries must be restricted to the
// caller's own records.
func scopedToUser(role entities.Role) bool {
	return role != entities.RoleAdmin && role != entities.RoleStaff
}
