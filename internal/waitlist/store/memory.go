package store

import (
	"context"
	"sort"
	"sync"

	"visuplant/internal/waitlist/models"
	"visuplant/pkg/platform/sentinel"
	"visuplant/pkg/requestcontext"
)

// InMemory is a map-backed waitlist store. The store mutex serializes
// joins, giving the same per-unit ordering guarantee the PostgreSQL store
// gets from its transaction.
type InMemory struct {
	mu      sync.Mutex
	entries map[string][]models.Entry // unit code -> queue, insertion order
	units   map[string]struct{}       // known unit codes; nil accepts any
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string][]models.Entry)}
}

// RequireUnits restricts joins to the given unit codes, mirroring the
// foreign key in PostgreSQL. Without it any unit code is accepted.
func (s *InMemory) RequireUnits(codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.units == nil {
		s.units = make(map[string]struct{})
	}
	for _, code := range codes {
		s.units[code] = struct{}{}
	}
}

func (s *InMemory) Join(ctx context.Context, entry models.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.units != nil {
		if _, ok := s.units[entry.UnitCode]; !ok {
			return 0, sentinel.ErrNotFound
		}
	}

	queue := s.entries[entry.UnitCode]
	maxPosition := 0
	for _, e := range queue {
		if e.TaxID == entry.TaxID {
			return 0, sentinel.ErrDuplicate
		}
		if e.Position > maxPosition {
			maxPosition = e.Position
		}
	}

	now := requestcontext.Now(ctx)
	entry.Position = maxPosition + 1
	entry.CreatedAt = now
	entry.UpdatedAt = now
	s.entries[entry.UnitCode] = append(queue, entry)
	return entry.Position, nil
}

func (s *InMemory) ListForUnit(_ context.Context, unitCode string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.entries[unitCode]
	out := make([]models.Entry, len(queue))
	copy(out, queue)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *InMemory) SizeForUnit(_ context.Context, unitCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[unitCode]), nil
}

func (s *InMemory) FindEntry(_ context.Context, unitCode, taxID string) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries[unitCode] {
		if e.TaxID == taxID {
			entry := e
			return &entry, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListAll(_ context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Entry
	for _, queue := range s.entries {
		out = append(out, queue...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitCode != out[j].UnitCode {
			return out[i].UnitCode < out[j].UnitCode
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// Remove deletes one entry without touching the positions of the others.
// Staff follow-up only; gaps left behind are intentional and never healed.
func (s *InMemory) Remove(_ context.Context, unitCode, taxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.entries[unitCode]
	for i, e := range queue {
		if e.TaxID == taxID {
			s.entries[unitCode] = append(queue[:i], queue[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}
