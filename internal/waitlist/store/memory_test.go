package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"visuplant/internal/waitlist/models"
	"visuplant/pkg/platform/sentinel"
)

type WaitlistStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *WaitlistStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.store.RequireUnits("101", "102")
	s.ctx = context.Background()
}

func TestWaitlistStoreSuite(t *testing.T) {
	suite.Run(t, new(WaitlistStoreSuite))
}

func (s *WaitlistStoreSuite) entry(unitCode, taxID string) models.Entry {
	return models.Entry{
		UnitCode: unitCode,
		Name:     "Ana Lima",
		Phone:    "11 98888-1111",
		Email:    "ana@example.com",
		TaxID:    taxID,
	}
}

func (s *WaitlistStoreSuite) TestJoin() {
	s.Run("positions grow densely per unit", func() {
		pos, err := s.store.Join(s.ctx, s.entry("101", "52998224725"))
		s.Require().NoError(err)
		s.Equal(1, pos)

		pos, err = s.store.Join(s.ctx, s.entry("101", "12345678909"))
		s.Require().NoError(err)
		s.Equal(2, pos)

		pos, err = s.store.Join(s.ctx, s.entry("101", "98765432100"))
		s.Require().NoError(err)
		s.Equal(3, pos)

		pos, err = s.store.Join(s.ctx, s.entry("102", "52998224725"))
		s.Require().NoError(err)
		s.Equal(1, pos)
	})

	s.Run("duplicate buyer per queue is rejected", func() {
		_, err := s.store.Join(s.ctx, s.entry("102", "11144477735"))
		s.Require().NoError(err)

		_, err = s.store.Join(s.ctx, s.entry("102", "11144477735"))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("unknown unit is rejected when units are required", func() {
		_, err := s.store.Join(s.ctx, s.entry("999", "52998224725"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WaitlistStoreSuite) TestRemoveLeavesGaps() {
	for _, taxID := range []string{"52998224725", "12345678909", "98765432100"} {
		_, err := s.store.Join(s.ctx, s.entry("101", taxID))
		s.Require().NoError(err)
	}

	s.Require().NoError(s.store.Remove(s.ctx, "101", "12345678909"))

	entries, err := s.store.ListForUnit(s.ctx, "101")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(1, entries[0].Position)
	s.Equal(3, entries[1].Position)

	// A later join still extends past the highest position ever used.
	pos, err := s.store.Join(s.ctx, s.entry("101", "11144477735"))
	s.Require().NoError(err)
	s.Equal(4, pos)

	s.Require().ErrorIs(s.store.Remove(s.ctx, "101", "00000000000"), sentinel.ErrNotFound)
}

func (s *WaitlistStoreSuite) TestLookups() {
	_, err := s.store.Join(s.ctx, s.entry("101", "52998224725"))
	s.Require().NoError(err)
	_, err = s.store.Join(s.ctx, s.entry("102", "52998224725"))
	s.Require().NoError(err)

	s.Run("find entry by unit and tax id", func() {
		entry, err := s.store.FindEntry(s.ctx, "101", "52998224725")
		s.Require().NoError(err)
		s.Equal(1, entry.Position)

		_, err = s.store.FindEntry(s.ctx, "101", "12345678909")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("size and list all", func() {
		size, err := s.store.SizeForUnit(s.ctx, "101")
		s.Require().NoError(err)
		s.Equal(1, size)

		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal("101", all[0].UnitCode)
		s.Equal("102", all[1].UnitCode)
	})
}
