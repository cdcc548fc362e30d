// Package store persists the unit board. Implementations must keep every
// transition a single conditional write: the stored status is matched at
// the moment of the update, so at most one caller wins a race.
package store

import (
	"context"

	"visuplant/internal/inventory/models"
)

// UnitStore is the persistence port for the unit registry.
//
// Transition methods return sentinel.ErrNotFound when the code does not
// exist and sentinel.ErrConflict when the status precondition did not hold
// at write time (the caller lost the race or the unit moved on).
type UnitStore interface {
	// List returns all units ordered by code. Read-only snapshot, no locking.
	List(ctx context.Context) ([]models.Unit, error)

	// GetByCode returns the current snapshot of one unit.
	GetByCode(ctx context.Context, code string) (*models.Unit, error)

	// Reserve moves an available unit to negotiating. No buyer data.
	Reserve(ctx context.Context, code string) error

	// ConfirmSale moves a negotiating unit to reserved and stores the buyer
	// snapshot. buyer.TaxID must already be normalized.
	ConfirmSale(ctx context.Context, code string, buyer models.Buyer, agentName string) error

	// Release moves a negotiating unit back to available, clearing the
	// buyer snapshot.
	Release(ctx context.Context, code string) error

	// FastTrackSale moves an available or negotiating unit straight to
	// reserved with no buyer snapshot. Administrative override.
	FastTrackSale(ctx context.Context, code string) error

	// RestockAvailable sets every listed code to available with buyer data
	// cleared, creating units that do not yet exist. The whole batch
	// succeeds or fails together. Returns the number of rows written.
	RestockAvailable(ctx context.Context, codes []string) (int, error)

	// CountActiveByTaxID counts units whose stored buyer tax id equals
	// taxID and whose status is negotiating or reserved.
	CountActiveByTaxID(ctx context.Context, taxID string) (int, error)
}
