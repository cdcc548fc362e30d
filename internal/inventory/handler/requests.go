package handler

import (
	"github.com/go-playground/validator/v10"

	dErrors "visuplant/pkg/domain-errors"
)

var validate = validator.New()

// SaleRequest is the HTTP request body for POST /api/units/{code}/confirm-sale.
type SaleRequest struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	CPF       string `json:"cpf" validate:"required"`
	AgentName string `json:"agent_name"`
}

// BatchReserveRequest is the HTTP request body for POST /api/units/reserve-batch.
type BatchReserveRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,dive,required"`
}

// RestockRequest is the HTTP request body for POST /admin/units/restock.
type RestockRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,dive,required"`
}

// checkStruct runs tag validation and folds failures into one coded error.
// Field-level CPF semantics stay in the service; tags only gate shape.
func checkStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid request: "+err.Error())
	}
	return nil
}
