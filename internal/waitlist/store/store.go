// Package store persists the per-unit waiting queues.
package store

import (
	"context"

	"visuplant/internal/waitlist/models"
)

// WaitlistStore is the persistence port for the waiting queues.
//
// Join must run its duplicate check and position computation against a
// consistent prior state: implementations serialize joins per unit so two
// concurrent joiners can never compute the same position.
type WaitlistStore interface {
	// Join inserts the entry with position MAX(existing)+1 (1 if empty) and
	// returns the assigned position. Returns sentinel.ErrDuplicate when the
	// (unit, tax id) pair is already queued and sentinel.ErrNotFound when
	// the unit does not exist.
	Join(ctx context.Context, entry models.Entry) (int, error)

	// ListForUnit returns the unit's queue ascending by position.
	ListForUnit(ctx context.Context, unitCode string) ([]models.Entry, error)

	// SizeForUnit returns the number of queued entries for the unit.
	SizeForUnit(ctx context.Context, unitCode string) (int, error)

	// FindEntry returns the entry for (unit, tax id), or sentinel.ErrNotFound.
	FindEntry(ctx context.Context, unitCode, taxID string) (*models.Entry, error)

	// ListAll returns every queue, ordered by unit code then position.
	ListAll(ctx context.Context) ([]models.Entry, error)
}
