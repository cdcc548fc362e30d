package store

import (
	"context"
	"sort"
	"sync"

	"visuplant/internal/inventory/models"
	"visuplant/pkg/platform/sentinel"
	"visuplant/pkg/requestcontext"
)

// InMemory is a map-backed unit store with the same transition semantics
// as the PostgreSQL store. Used by service unit tests and local runs.
type InMemory struct {
	mu    sync.Mutex
	units map[string]*models.Unit
}

func NewInMemory() *InMemory {
	return &InMemory{units: make(map[string]*models.Unit)}
}

// Put inserts or replaces a unit directly. Test seeding only; production
// code mutates status through the transition methods.
func (s *InMemory) Put(unit models.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[unit.Code] = &unit
}

func (s *InMemory) List(_ context.Context) ([]models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	units := make([]models.Unit, 0, len(s.units))
	for _, u := range s.units {
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Code < units[j].Code })
	return units, nil
}

func (s *InMemory) GetByCode(_ context.Context, code string) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *u
	return &snapshot, nil
}

func (s *InMemory) Reserve(ctx context.Context, code string) error {
	return s.transition(ctx, code, func(u *models.Unit) bool {
		if u.Status != models.StatusAvailable {
			return false
		}
		u.Status = models.StatusNegotiating
		return true
	})
}

func (s *InMemory) ConfirmSale(ctx context.Context, code string, buyer models.Buyer, agentName string) error {
	return s.transition(ctx, code, func(u *models.Unit) bool {
		if u.Status != models.StatusNegotiating {
			return false
		}
		u.Status = models.StatusReserved
		u.Buyer = buyer
		u.AgentName = agentName
		return true
	})
}

func (s *InMemory) Release(ctx context.Context, code string) error {
	return s.transition(ctx, code, func(u *models.Unit) bool {
		if u.Status != models.StatusNegotiating {
			return false
		}
		u.Status = models.StatusAvailable
		u.ClearBuyer()
		return true
	})
}

func (s *InMemory) FastTrackSale(ctx context.Context, code string) error {
	return s.transition(ctx, code, func(u *models.Unit) bool {
		if u.Status != models.StatusAvailable && u.Status != models.StatusNegotiating {
			return false
		}
		u.Status = models.StatusReserved
		u.ClearBuyer()
		return true
	})
}

func (s *InMemory) RestockAvailable(ctx context.Context, codes []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := requestcontext.Now(ctx)
	for _, code := range codes {
		if u, ok := s.units[code]; ok {
			u.Status = models.StatusAvailable
			u.ClearBuyer()
			u.UpdatedAt = now
			continue
		}
		s.units[code] = &models.Unit{
			Code:      code,
			Status:    models.StatusAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return len(codes), nil
}

func (s *InMemory) CountActiveByTaxID(_ context.Context, taxID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, u := range s.units {
		if u.Buyer.TaxID == taxID && u.Status.Active() {
			count++
		}
	}
	return count, nil
}

// transition applies apply under the lock; a false return means the status
// precondition did not hold, mirroring a zero-row conditional update.
func (s *InMemory) transition(ctx context.Context, code string, apply func(*models.Unit) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[code]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !apply(u) {
		return sentinel.ErrConflict
	}
	u.UpdatedAt = requestcontext.Now(ctx)
	return nil
}
