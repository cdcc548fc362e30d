package models

import (
	"time"

	dErrors "visuplant/pkg/domain-errors"
)

// Status is the sale status of a unit.
// Invariant: mutated only through the registry's transition operations,
// never by direct overwrite.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusNegotiating Status = "negotiating"
	StatusReserved    Status = "reserved"
	StatusSold        Status = "sold"
)

var validStatuses = map[Status]bool{
	StatusAvailable:   true,
	StatusNegotiating: true,
	StatusReserved:    true,
	StatusSold:        true,
}

// ParseStatus constructs a Status from external input (database rows,
// seed data). Direct casting bypasses validation.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid unit status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Active reports whether the status counts toward the per-buyer cap.
func (s Status) Active() bool {
	return s == StatusNegotiating || s == StatusReserved
}

// Buyer is the snapshot captured when a sale is confirmed. TaxID holds the
// normalized digits-only CPF.
type Buyer struct {
	Name  string
	Phone string
	Email string
	TaxID string
}

// Empty reports whether no buyer data is present.
func (b Buyer) Empty() bool {
	return b == Buyer{}
}

// Unit is one sellable unit on the board. Code is the human-assigned
// identifier ("203", "L01", "VG02") and is immutable once created.
//
// Invariant: an available unit never carries buyer data; the snapshot is
// written by ConfirmSale and cleared whenever the unit leaves a held state.
type Unit struct {
	Code      string
	Status    Status
	Buyer     Buyer
	AgentName string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClearBuyer wipes the buyer snapshot and agent assignment.
func (u *Unit) ClearBuyer() {
	u.Buyer = Buyer{}
	u.AgentName = ""
}
