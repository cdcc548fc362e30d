// Package service implements the waiting queues: per-unit FIFO lists of
// prospective buyers. Joining computes a dense 1-based position; removal
// and notification when a unit frees up are staff follow-up actions, never
// automatic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"visuplant/internal/waitlist/metrics"
	"visuplant/internal/waitlist/models"
	"visuplant/internal/waitlist/store"
	"visuplant/pkg/cpf"
	dErrors "visuplant/pkg/domain-errors"
	"visuplant/pkg/platform/sentinel"
)

// JoinInput is the buyer data submitted with a join request.
type JoinInput struct {
	Name      string
	Phone     string
	Email     string
	TaxID     string
	AgentName string
}

// Placement reports where a join landed, or where an existing entry sits.
type Placement struct {
	UnitCode string
	Position int
}

// Service orchestrates waiting-queue operations.
type Service struct {
	entries store.WaitlistStore
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

func New(entries store.WaitlistStore, opts ...Option) *Service {
	s := &Service{
		entries: entries,
		logger:  slog.Default(),
		tracer:  otel.Tracer("visuplant/internal/waitlist"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join queues a buyer behind a unit. The assigned position is
// MAX(existing)+1, or 1 for an empty queue; a (unit, CPF) pair may appear
// at most once per queue.
func (s *Service) Join(ctx context.Context, unitCode string, input JoinInput) (Placement, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.Join")
	defer span.End()
	start := time.Now()

	unitCode = strings.TrimSpace(unitCode)
	if unitCode == "" {
		return Placement{}, dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}
	if err := validateJoinInput(input); err != nil {
		return Placement{}, err
	}

	entry := models.Entry{
		UnitCode:  unitCode,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		TaxID:     cpf.Normalize(input.TaxID),
		AgentName: strings.TrimSpace(input.AgentName),
	}

	position, err := s.entries.Join(ctx, entry)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrDuplicate):
			s.metrics.RecordJoin("duplicate", start)
			return Placement{}, dErrors.New(dErrors.CodeDuplicateEntry, "buyer is already on the waitlist for unit "+unitCode)
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.RecordJoin("not_found", start)
			return Placement{}, dErrors.New(dErrors.CodeNotFound, "unit "+unitCode+" does not exist")
		default:
			s.metrics.RecordJoin("error", start)
			return Placement{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to join waitlist")
		}
	}

	s.metrics.RecordJoin("success", start)
	s.logger.InfoContext(ctx, "waitlist joined",
		"unit_code", unitCode,
		"position", position,
		"buyer_tax_id", cpf.Format(entry.TaxID),
	)
	return Placement{UnitCode: unitCode, Position: position}, nil
}

// ListForUnit returns the unit's queue ascending by position.
func (s *Service) ListForUnit(ctx context.Context, unitCode string) ([]models.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.ListForUnit")
	defer span.End()

	unitCode = strings.TrimSpace(unitCode)
	if unitCode == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}
	entries, err := s.entries.ListForUnit(ctx, unitCode)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list waitlist")
	}
	return entries, nil
}

// SizeForUnit returns the number of buyers queued behind the unit.
func (s *Service) SizeForUnit(ctx context.Context, unitCode string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.SizeForUnit")
	defer span.End()

	unitCode = strings.TrimSpace(unitCode)
	if unitCode == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}
	size, err := s.entries.SizeForUnit(ctx, unitCode)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read waitlist size")
	}
	return size, nil
}

// FindEntry reports whether the buyer is queued for the unit and at which
// position. Absence is a result, not an error.
func (s *Service) FindEntry(ctx context.Context, unitCode, taxID string) (*Placement, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.FindEntry")
	defer span.End()

	unitCode = strings.TrimSpace(unitCode)
	if unitCode == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unit code is required")
	}

	entry, err := s.entries.FindEntry(ctx, unitCode, cpf.Normalize(taxID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find waitlist entry")
	}
	return &Placement{UnitCode: entry.UnitCode, Position: entry.Position}, nil
}

// ListAll returns every queue ordered by unit code then position.
// Administrative view.
func (s *Service) ListAll(ctx context.Context) ([]models.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.ListAll")
	defer span.End()

	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list waitlists")
	}
	return entries, nil
}

func validateJoinInput(input JoinInput) error {
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
