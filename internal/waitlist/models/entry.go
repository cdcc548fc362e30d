package models

import "time"

// Entry is one prospective buyer queued behind a unit. The (UnitCode,
// TaxID) pair is unique per queue; TaxID holds the normalized digits-only
// CPF.
//
// Position is 1-based, assigned densely at insertion time and never
// renumbered afterwards: removing an earlier entry leaves a gap, and no
// resequencing ever heals it.
type Entry struct {
	UnitCode  string
	Position  int
	Name      string
	Phone     string
	Email     string
	TaxID     string
	AgentName string
	CreatedAt time.Time
	UpdatedAt time.Time
}
