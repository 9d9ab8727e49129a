// Package sync implements the offline-first reconciliation engine: the
// collection registry, the parent-dependency resolver, the attachment
// lifecycle, the push and pull engines, and the orchestrator that ties one
// reconciliation pass together.
package sync

import "github.com/josepatrial/studioapviagem-sub000/internal/models"

// Link describes a secondary foreign key living inside a collection's
// payload: the local ParentRef stored under RefKey is resolved and replaced
// by the parent's remote id under IDKey before the payload leaves the
// device. RefKey never reaches the remote store.
type Link struct {
	Parent string
	RefKey string
	IDKey  string
}

// Descriptor is one row of the static collection registry: how a collection
// is named, whether its records carry an owner, where its primary parent
// reference goes in the outgoing payload, any secondary links, and the blob
// folder of its attachment (empty for collections without attachments).
type Descriptor struct {
	Name             string
	Owned            bool
	Parent           string
	ParentIDKey      string
	Links            []Link
	AttachmentFolder string
}

// HasAttachment reports whether records of this collection may carry a
// binary attachment.
func (d Descriptor) HasAttachment() bool { return d.AttachmentFolder != "" }

// DefaultRegistry returns the collection registry in push order. The order
// is the dependency order: taxonomy lists and the driver profile first, then
// vehicles, trips, and finally the trip children. A child whose parent has
// not landed yet is simply deferred to a future pass, so no topological sort
// is needed beyond this fixed sequence.
func DefaultRegistry() []Descriptor {
	return []Descriptor{
		{Name: models.CollectionExpenseTypes},
		{Name: models.CollectionFuelTypes},
		{Name: models.CollectionDrivers, Owned: true},
		{Name: models.CollectionVehicles, Owned: true},
		{
			Name:        models.CollectionTrips,
			Owned:       true,
			Parent:      models.CollectionVehicles,
			ParentIDKey: "vehicleId",
		},
		{
			Name:        models.CollectionVisits,
			Owned:       true,
			Parent:      models.CollectionTrips,
			ParentIDKey: "tripId",
		},
		{
			Name:             models.CollectionExpenses,
			Owned:            true,
			Parent:           models.CollectionTrips,
			ParentIDKey:      "tripId",
			AttachmentFolder: "receipts",
		},
		{
			Name:        models.CollectionFuelPurchases,
			Owned:       true,
			Parent:      models.CollectionTrips,
			ParentIDKey: "tripId",
			Links: []Link{
				{Parent: models.CollectionVehicles, RefKey: "vehicleRef", IDKey: "vehicleId"},
			},
			AttachmentFolder: "fuel-receipts",
		},
	}
}
