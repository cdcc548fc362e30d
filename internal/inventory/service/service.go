// Package service implements the unit registry: the status state machine,
// the per-buyer eligibility cap, and the board queries. All transitions
// delegate the race to the store's conditional writes; the service owns
// validation, error translation and event selection.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"visuplant/internal/inventory/metrics"
	"visuplant/internal/inventory/models"
	"visuplant/internal/inventory/store"
	"visuplant/internal/notify"
	"visuplant/pkg/cpf"
	dErrors "visuplant/pkg/domain-errors"
	"visuplant/pkg/platform/sentinel"
)

// maxActiveUnitsPerBuyer caps holds in {negotiating, reserved} per CPF.
const maxActiveUnitsPerBuyer = 2

// BoardCache caches the full unit list. Implementations must be safe for
// concurrent use; a nil cache disables caching.
type BoardCache interface {
	Get(ctx context.Context) ([]models.Unit, bool)
	Set(ctx context.Context, units []models.Unit)
	Invalidate(ctx context.Context)
}

// SaleInput is the buyer data submitted with a confirm-sale request.
type SaleInput struct {
	Name      string
	Phone     string
	Email     string
	TaxID     string
	AgentName string
}

// Eligibility is the outcome of the per-buyer cap check.
type Eligibility struct {
	Eligible    bool
	ActiveCount int
}

// ReserveOutcome reports one unit of a batch reserve. Failed units carry
// the reason; the batch itself is not atomic.
type ReserveOutcome struct {
	Code     string
	Reserved bool
	Reason   string
}

// Service orchestrates unit registry operations.
type Service struct {
	units   store.UnitStore
	cache   BoardCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithBoardCache(cache BoardCache) Option {
	return func(s *Service) { s.cache = cache }
}

func New(units store.UnitStore, opts ...Option) *Service {
	s := &Service{
		units:  units,
		logger: slog.Default(),
		tracer: otel.Tracer("visuplant/internal/inventory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUnits returns the board ordered by code, served from cache when warm.
func (s *Service) ListUnits(ctx context.Context) ([]models.Unit, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ListUnits")
	defer span.End()

	if s.cache != nil {
		if units, ok := s.cache.Get(ctx); ok {
			s.metrics.RecordCacheHit()
			return units, nil
		}
		s.metrics.RecordCacheMiss()
	}

	units, err := s.units.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list units")
	}
	if s.cache != nil {
		s.cache.Set(ctx, units)
	}
	return units, nil
}

// GetUnit returns the current snapshot of one unit.
func (s *Service) GetUnit(ctx context.Context, code string) (*models.Unit, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetUnit")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}
	unit, err := s.units.GetByCode(ctx, code)
	if err != nil {
		return nil, s.translateUnitErr(err, code)
	}
	return unit, nil
}

// Reserve places a soft hold: available -> negotiating, no buyer data.
// On success returns the event the edge layer should broadcast.
func (s *Service) Reserve(ctx context.Context, code string) (notify.EventType, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Reserve")
	defer span.End()
	start := time.Now()

	code = strings.TrimSpace(code)
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}

	if err := s.units.Reserve(ctx, code); err != nil {
		s.metrics.RecordTransition("reserve", outcomeOf(err), start)
		return "", s.translateUnitErr(err, code)
	}

	s.metrics.RecordTransition("reserve", "success", start)
	s.invalidateBoard(ctx)
	s.logger.InfoContext(ctx, "unit reserved", "unit_code", code)
	return notify.EventUnitReserved, nil
}

// ReserveMany attempts a soft hold on every listed code. Each unit is its
// own conditional write; partial success is expected and reported per code.
func (s *Service) ReserveMany(ctx context.Context, codes []string) ([]ReserveOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ReserveMany")
	defer span.End()

	if len(codes) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one unit code is required")
	}

	outcomes := make([]ReserveOutcome, 0, len(codes))
	for _, code := range codes {
		_, err := s.Reserve(ctx, code)
		switch {
		case err == nil:
			outcomes = append(outcomes, ReserveOutcome{Code: code, Reserved: true})
		case dErrors.HasCode(err, dErrors.CodeInternal):
			return nil, err
		default:
			outcomes = append(outcomes, ReserveOutcome{
				Code:   code,
				Reason: dErrors.MessageOf(err),
			})
		}
	}
	return outcomes, nil
}

// CheckLimit counts the buyer's active holds. Eligible iff strictly fewer
// than the cap. The check is deliberately not fused with the subsequent
// conditional write (§ benign race, original behavior).
func (s *Service) CheckLimit(ctx context.Context, taxID string) (Eligibility, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CheckLimit")
	defer span.End()

	normalized := cpf.Normalize(taxID)
	count, err := s.units.CountActiveByTaxID(ctx, normalized)
	if err != nil {
		return Eligibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check buyer limit")
	}
	return Eligibility{
		Eligible:    count < maxActiveUnitsPerBuyer,
		ActiveCount: count,
	}, nil
}

// ConfirmSale moves a negotiating unit to reserved with the buyer snapshot.
// Gated on CPF validity and the per-buyer cap; the soft hold (Reserve) is not.
func (s *Service) ConfirmSale(ctx context.Context, code string, input SaleInput) (notify.EventType, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ConfirmSale")
	defer span.End()
	start := time.Now()

	code = strings.TrimSpace(code)
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}
	if err := validateSaleInput(input); err != nil {
		return "", err
	}

	eligibility, err := s.CheckLimit(ctx, input.TaxID)
	if err != nil {
		return "", err
	}
	if !eligibility.Eligible {
		s.metrics.RecordTransition("confirm_sale", "limit_exceeded", start)
		return "", dErrors.New(dErrors.CodeLimitExceeded, "buyer already holds the maximum of 2 active units")
	}

	buyer := models.Buyer{
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
		Email: strings.TrimSpace(input.Email),
		TaxID: cpf.Normalize(input.TaxID),
	}
	if err := s.units.ConfirmSale(ctx, code, buyer, strings.TrimSpace(input.AgentName)); err != nil {
		s.metrics.RecordTransition("confirm_sale", outcomeOf(err), start)
		return "", s.translateUnitErr(err, code)
	}

	s.metrics.RecordTransition("confirm_sale", "success", start)
	s.invalidateBoard(ctx)
	s.logger.InfoContext(ctx, "sale confirmed",
		"unit_code", code,
		"buyer_tax_id", cpf.Format(buyer.TaxID),
		"agent", input.AgentName,
	)
	return notify.EventUnitSold, nil
}

// Release returns a negotiating unit to available, clearing the snapshot.
func (s *Service) Release(ctx context.Context, code string) (notify.EventType, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Release")
	defer span.End()
	start := time.Now()

	code = strings.TrimSpace(code)
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}

	if err := s.units.Release(ctx, code); err != nil {
		s.metrics.RecordTransition("release", outcomeOf(err), start)
		return "", s.translateUnitErr(err, code)
	}

	s.metrics.RecordTransition("release", "success", start)
	s.invalidateBoard(ctx)
	s.logger.InfoContext(ctx, "unit released", "unit_code", code)
	return notify.EventUnitReleased, nil
}

// FastTrackSale is the administrative override: available or negotiating
// straight to reserved, buyer snapshot cleared, no eligibility gate.
func (s *Service) FastTrackSale(ctx context.Context, code string) (notify.EventType, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.FastTrackSale")
	defer span.End()
	start := time.Now()

	code = strings.TrimSpace(code)
	if code == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}

	if err := s.units.FastTrackSale(ctx, code); err != nil {
		s.metrics.RecordTransition("fast_track_sale", outcomeOf(err), start)
		return "", s.translateUnitErr(err, code)
	}

	s.metrics.RecordTransition("fast_track_sale", "success", start)
	s.invalidateBoard(ctx)
	s.logger.InfoContext(ctx, "fast-track sale", "unit_code", code)
	return notify.EventUnitSold, nil
}

// RestockAvailable resets the listed codes to available (creating missing
// units) in one atomic batch. Returns the number of units written.
func (s *Service) RestockAvailable(ctx context.Context, codes []string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.RestockAvailable")
	defer span.End()
	start := time.Now()

	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			cleaned = append(cleaned, code)
		}
	}
	if len(cleaned) == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "at least one unit code is required")
	}

	n, err := s.units.RestockAvailable(ctx, cleaned)
	if err != nil {
		s.metrics.RecordTransition("restock", "error", start)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to restock units")
	}

	s.metrics.RecordTransition("restock", "success", start)
	s.invalidateBoard(ctx)
	s.logger.InfoContext(ctx, "units restocked", "count", n)
	return n, nil
}

func (s *Service) invalidateBoard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *Service) translateUnitErr(err error, code string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "unit "+code+" does not exist")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "unit "+code+" is no longer available")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "unit registry storage failure")
	}
}

func validateSaleInput(input SaleInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return dErrors.New(dErrors.CodeValidation, "buyer name is required")
	case strings.TrimSpace(input.Phone) == "":
		return dErrors.New(dErrors.CodeValidation, "buyer phone is required")
	case strings.TrimSpace(input.Email) == "":
		return dErrors.New(dErrors.CodeValidation, "buyer email is required")
	case !cpf.Validate(input.TaxID):
		return dErrors.New(dErrors.CodeValidation, "invalid CPF")
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, sentinel.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
