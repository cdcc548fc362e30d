package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"visuplant/internal/waitlist/store"
	dErrors "visuplant/pkg/domain-errors"
)

// =============================================================================
// Waitlist Service Test Suite
// =============================================================================

const (
	validCPF       = "529.982.247-25"
	secondValidCPF = "123.456.789-09"
	thirdValidCPF  = "111.444.777-35"
)

type WaitlistServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
}

func TestWaitlistServiceSuite(t *testing.T) {
	suite.Run(t, new(WaitlistServiceSuite))
}

func (s *WaitlistServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.store.RequireUnits("101", "102")
	s.service = New(s.store)
}

func (s *WaitlistServiceSuite) joinInput(taxID string) JoinInput {
	return JoinInput{
		Name:      "Ana Lima",
		Phone:     "11 98888-1111",
		Email:     "ana@example.com",
		TaxID:     taxID,
		AgentName: "Carlos",
	}
}

func (s *WaitlistServiceSuite) TestJoin() {
	ctx := context.Background()

	s.Run("positions are assigned first come first served", func() {
		first, err := s.service.Join(ctx, "101", s.joinInput(validCPF))
		s.Require().NoError(err)
		s.Equal(1, first.Position)

		second, err := s.service.Join(ctx, "101", s.joinInput(secondValidCPF))
		s.Require().NoError(err)
		s.Equal(2, second.Position)

		// Queues are independent per unit.
		other, err := s.service.Join(ctx, "102", s.joinInput(thirdValidCPF))
		s.Require().NoError(err)
		s.Equal(1, other.Position)
	})

	s.Run("same buyer cannot join the same queue twice", func() {
		_, err := s.service.Join(ctx, "102", s.joinInput(validCPF))
		s.Require().NoError(err)

		_, err = s.service.Join(ctx, "102", s.joinInput(validCPF))
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntry))
	})

	s.Run("unknown unit is not found", func() {
		_, err := s.service.Join(ctx, "999", s.joinInput(validCPF))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid CPF fails validation", func() {
		_, err := s.service.Join(ctx, "101", s.joinInput("123.456.789-00"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing buyer fields fail validation", func() {
		input := s.joinInput(validCPF)
		input.Email = ""
		_, err := s.service.Join(ctx, "101", input)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank unit code is a bad request", func() {
		_, err := s.service.Join(ctx, " ", s.joinInput(validCPF))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *WaitlistServiceSuite) TestQueries() {
	ctx := context.Background()

	_, err := s.service.Join(ctx, "101", s.joinInput(validCPF))
	s.Require().NoError(err)
	_, err = s.service.Join(ctx, "101", s.joinInput(secondValidCPF))
	s.Require().NoError(err)
	_, err = s.service.Join(ctx, "102", s.joinInput(validCPF))
	s.Require().NoError(err)

	s.Run("list for unit is ordered by position", func() {
		entries, err := s.service.ListForUnit(ctx, "101")
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(1, entries[0].Position)
		s.Equal("52998224725", entries[0].TaxID)
		s.Equal(2, entries[1].Position)
	})

	s.Run("size reflects queue length", func() {
		size, err := s.service.SizeForUnit(ctx, "101")
		s.Require().NoError(err)
		s.Equal(2, size)

		size, err = s.service.SizeForUnit(ctx, "102")
		s.Require().NoError(err)
		s.Equal(1, size)
	})

	s.Run("find entry accepts formatted CPF", func() {
		placement, err := s.service.FindEntry(ctx, "101", "529.982.247-25")
		s.Require().NoError(err)
		s.Require().NotNil(placement)
		s.Equal(1, placement.Position)
	})

	s.Run("absent buyer is a nil placement, not an error", func() {
		placement, err := s.service.FindEntry(ctx, "101", thirdValidCPF)
		s.NoError(err)
		s.Nil(placement)
	})

	s.Run("list all spans every queue ordered by unit then position", func() {
		entries, err := s.service.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 3)
		s.Equal("101", entries[0].UnitCode)
		s.Equal("101", entries[1].UnitCode)
		s.Equal("102", entries[2].UnitCode)
	})
}
