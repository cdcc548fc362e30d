//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"visuplant/internal/inventory/models"
	"visuplant/internal/inventory/store"
	"visuplant/pkg/platform/sentinel"
	"visuplant/pkg/testutil/containers"
)

type PostgresUnitStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresUnitStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUnitStoreSuite))
}

func (s *PostgresUnitStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresUnitStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "waitlist", "units"))
}

func (s *PostgresUnitStoreSuite) seedUnit(code, status string) {
	_, err := s.postgres.DB.Exec(
		`INSERT INTO units (code, status) VALUES ($1, $2)`, code, status)
	s.Require().NoError(err)
}

// TestConcurrentReserve verifies that many racing reserves on one unit
// produce exactly one winner.
func (s *PostgresUnitStoreSuite) TestConcurrentReserve() {
	ctx := context.Background()
	s.seedUnit("101", "available")
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Reserve(ctx, "101")
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one reserve should win")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")

	unit, err := s.store.GetByCode(ctx, "101")
	s.Require().NoError(err)
	s.Equal(models.StatusNegotiating, unit.Status)
}

func (s *PostgresUnitStoreSuite) TestSaleLifecycle() {
	ctx := context.Background()
	s.seedUnit("201", "available")

	s.Require().NoError(s.store.Reserve(ctx, "201"))

	buyer := models.Buyer{
		Name: "Maria Souza", Phone: "11 99999-0000",
		Email: "maria@example.com", TaxID: "52998224725",
	}
	s.Require().NoError(s.store.ConfirmSale(ctx, "201", buyer, "Carlos"))

	unit, err := s.store.GetByCode(ctx, "201")
	s.Require().NoError(err)
	s.Equal(models.StatusReserved, unit.Status)
	s.Equal(buyer, unit.Buyer)
	s.Equal("Carlos", unit.AgentName)

	// Reserved units cannot be reserved or released.
	s.Require().ErrorIs(s.store.Reserve(ctx, "201"), sentinel.ErrConflict)
	s.Require().ErrorIs(s.store.Release(ctx, "201"), sentinel.ErrConflict)

	count, err := s.store.CountActiveByTaxID(ctx, "52998224725")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresUnitStoreSuite) TestReleaseClearsBuyer() {
	ctx := context.Background()
	s.seedUnit("301", "available")
	s.Require().NoError(s.store.Reserve(ctx, "301"))
	s.Require().NoError(s.store.Release(ctx, "301"))

	unit, err := s.store.GetByCode(ctx, "301")
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, unit.Status)
	s.True(unit.Buyer.Empty())
}

func (s *PostgresUnitStoreSuite) TestNotFoundClassification() {
	ctx := context.Background()
	s.Require().ErrorIs(s.store.Reserve(ctx, "999"), sentinel.ErrNotFound)

	_, err := s.store.GetByCode(ctx, "999")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresUnitStoreSuite) TestRestockAvailable() {
	ctx := context.Background()
	s.seedUnit("401", "sold")
	s.seedUnit("402", "reserved")

	n, err := s.store.RestockAvailable(ctx, []string{"401", "402", "NEW1"})
	s.Require().NoError(err)
	s.Equal(3, n)

	for _, code := range []string{"401", "402", "NEW1"} {
		unit, err := s.store.GetByCode(ctx, code)
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, unit.Status, "unit %s", code)
		s.True(unit.Buyer.Empty())
	}
}

func (s *PostgresUnitStoreSuite) TestListOrdering() {
	ctx := context.Background()
	for _, code := range []string{"B2", "A1", "C3"} {
		s.seedUnit(code, "available")
	}

	units, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(units, 3)
	s.Equal("A1", units[0].Code)
	s.Equal("C3", units[2].Code)
}
