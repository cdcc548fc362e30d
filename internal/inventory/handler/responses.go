package handler

import (
	"time"

	"visuplant/internal/inventory/models"
	"visuplant/internal/inventory/service"
	"visuplant/pkg/cpf"
)

// UnitResponse is the JSON shape of one unit on the board.
type UnitResponse struct {
	Code      string         `json:"code"`
	Status    string         `json:"status"`
	Buyer     *BuyerResponse `json:"buyer,omitempty"`
	AgentName string         `json:"agent_name,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BuyerResponse exposes the buyer snapshot with the CPF formatted for
// display.
type BuyerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

// BoardResponse wraps the full unit list.
type BoardResponse struct {
	Units []UnitResponse `json:"units"`
}

// ReserveOutcomeResponse is one unit of a batch reserve result.
type ReserveOutcomeResponse struct {
	Code     string `json:"code"`
	Reserved bool   `json:"reserved"`
	Reason   string `json:"reason,omitempty"`
}

// BatchReserveResponse is the result of POST /api/units/reserve-batch.
type BatchReserveResponse struct {
	Results []ReserveOutcomeResponse `json:"results"`
}

// RestockResponse reports how many units a restock touched.
type RestockResponse struct {
	Restocked int `json:"restocked"`
}

func fromUnit(u models.Unit) UnitResponse {
	resp := UnitResponse{
		Code:      u.Code,
		Status:    u.Status.String(),
		AgentName: u.AgentName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if !u.Buyer.Empty() {
		resp.Buyer = &BuyerResponse{
			Name:  u.Buyer.Name,
			Phone: u.Buyer.Phone,
			Email: u.Buyer.Email,
			CPF:   cpf.Format(u.Buyer.TaxID),
		}
	}
	return resp
}

func fromUnits(units []models.Unit) BoardResponse {
	resp := BoardResponse{Units: make([]UnitResponse, 0, len(units))}
	for _, u := range units {
		resp.Units = append(resp.Units, fromUnit(u))
	}
	return resp
}

func fromOutcomes(outcomes []service.ReserveOutcome) BatchReserveResponse {
	resp := BatchReserveResponse{Results: make([]ReserveOutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		resp.Results = append(resp.Results, ReserveOutcomeResponse{
			Code:     o.Code,
			Reserved: o.Reserved,
			Reason:   o.Reason,
		})
	}
	return resp
}
