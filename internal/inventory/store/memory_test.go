package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"visuplant/internal/inventory/models"
	"visuplant/pkg/platform/sentinel"
)

type UnitStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UnitStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.store.Put(models.Unit{Code: "101", Status: models.StatusAvailable})
	s.store.Put(models.Unit{Code: "201", Status: models.StatusNegotiating})
	s.store.Put(models.Unit{Code: "301", Status: models.StatusReserved, Buyer: models.Buyer{
		Name: "Maria Souza", Phone: "11 99999-0000", Email: "maria@example.com", TaxID: "52998224725",
	}})
}

// SetupSubTest re-seeds the store so each s.Run block starts from the
// SetupTest fixture.
func (s *UnitStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestUnitStoreSuite(t *testing.T) {
	suite.Run(t, new(UnitStoreSuite))
}

// TestTransitions verifies conditional status writes succeed only from the
// expected prior status.
func (s *UnitStoreSuite) TestTransitions() {
	s.Run("reserve requires available", func() {
		s.Require().NoError(s.store.Reserve(s.ctx, "101"))
		s.Require().ErrorIs(s.store.Reserve(s.ctx, "101"), sentinel.ErrConflict)
	})

	s.Run("confirm sale requires negotiating and writes the buyer", func() {
		buyer := models.Buyer{Name: "Ana", Phone: "11 1", Email: "ana@example.com", TaxID: "12345678909"}
		s.Require().NoError(s.store.ConfirmSale(s.ctx, "201", buyer, "Carlos"))

		unit, err := s.store.GetByCode(s.ctx, "201")
		s.Require().NoError(err)
		s.Equal(models.StatusReserved, unit.Status)
		s.Equal(buyer, unit.Buyer)
		s.Equal("Carlos", unit.AgentName)

		s.Require().ErrorIs(s.store.ConfirmSale(s.ctx, "201", buyer, ""), sentinel.ErrConflict)
	})

	s.Run("release requires negotiating and clears the buyer", func() {
		s.Require().NoError(s.store.Reserve(s.ctx, "101"))
		s.Require().NoError(s.store.Release(s.ctx, "101"))

		unit, err := s.store.GetByCode(s.ctx, "101")
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, unit.Status)
		s.True(unit.Buyer.Empty())

		s.Require().ErrorIs(s.store.Release(s.ctx, "101"), sentinel.ErrConflict)
	})

	s.Run("fast track accepts available or negotiating only", func() {
		s.Require().NoError(s.store.FastTrackSale(s.ctx, "101"))
		s.Require().ErrorIs(s.store.FastTrackSale(s.ctx, "101"), sentinel.ErrConflict)
		s.Require().NoError(s.store.FastTrackSale(s.ctx, "201"))
	})

	s.Run("unknown code is ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Reserve(s.ctx, "999"), sentinel.ErrNotFound)
		s.Require().ErrorIs(s.store.Release(s.ctx, "999"), sentinel.ErrNotFound)
	})
}

func (s *UnitStoreSuite) TestRestockAvailable() {
	n, err := s.store.RestockAvailable(s.ctx, []string{"301", "NEW1"})
	s.Require().NoError(err)
	s.Equal(2, n)

	unit, err := s.store.GetByCode(s.ctx, "301")
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, unit.Status)
	s.True(unit.Buyer.Empty())

	unit, err = s.store.GetByCode(s.ctx, "NEW1")
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, unit.Status)
}

func (s *UnitStoreSuite) TestCountActiveByTaxID() {
	s.Run("reserved and negotiating count, sold and available do not", func() {
		count, err := s.store.CountActiveByTaxID(s.ctx, "52998224725")
		s.Require().NoError(err)
		s.Equal(1, count)

		buyer := models.Buyer{Name: "Maria", Phone: "11 0", Email: "m@example.com", TaxID: "52998224725"}
		s.Require().NoError(s.store.ConfirmSale(s.ctx, "201", buyer, ""))

		count, err = s.store.CountActiveByTaxID(s.ctx, "52998224725")
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("unknown tax id counts zero", func() {
		count, err := s.store.CountActiveByTaxID(s.ctx, "12345678909")
		s.Require().NoError(err)
		s.Equal(0, count)
	})
}

func (s *UnitStoreSuite) TestList() {
	units, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(units, 3)
	s.Equal("101", units[0].Code)
	s.Equal("301", units[2].Code)
}
