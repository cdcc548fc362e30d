//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visuplant/internal/inventory/cache"
	"visuplant/internal/inventory/models"
	"visuplant/internal/platform/redis"
	"visuplant/pkg/testutil/containers"
)

type BoardCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	board *cache.Board
}

func TestBoardCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(BoardCacheSuite))
}

func (s *BoardCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	client := &redis.Client{Client: s.redis.Client}
	s.board = cache.NewBoard(client, 2*time.Second, slog.New(slog.DiscardHandler))
}

func (s *BoardCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *BoardCacheSuite) TestRoundTrip() {
	ctx := context.Background()

	_, ok := s.board.Get(ctx)
	s.False(ok, "empty cache should miss")

	units := []models.Unit{
		{Code: "101", Status: models.StatusAvailable},
		{Code: "201", Status: models.StatusNegotiating},
	}
	s.board.Set(ctx, units)

	got, ok := s.board.Get(ctx)
	s.Require().True(ok)
	s.Require().Len(got, 2)
	s.Equal("101", got[0].Code)
	s.Equal(models.StatusNegotiating, got[1].Status)
}

func (s *BoardCacheSuite) TestInvalidate() {
	ctx := context.Background()

	s.board.Set(ctx, []models.Unit{{Code: "101", Status: models.StatusAvailable}})
	s.board.Invalidate(ctx)

	_, ok := s.board.Get(ctx)
	s.False(ok, "invalidated cache should miss")
}

func (s *BoardCacheSuite) TestCorruptPayloadDegradesToMiss() {
	ctx := context.Background()

	s.Require().NoError(s.redis.Client.Set(ctx, "visuplant:board", "{not json", 0).Err())

	_, ok := s.board.Get(ctx)
	s.False(ok, "corrupt payload should miss")

	// The corrupt key is dropped so the next fill starts clean.
	exists, err := s.redis.Client.Exists(ctx, "visuplant:board").Result()
	s.Require().NoError(err)
	s.Equal(int64(0), exists)
}
