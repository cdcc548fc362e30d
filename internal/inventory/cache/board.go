// Package cache keeps a short-lived Redis copy of the unit board so list
// requests from many concurrent viewers don't all hit Postgres. Any
// successful transition invalidates it; correctness never depends on it.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"visuplant/internal/inventory/models"
	"visuplant/internal/platform/redis"
)

const boardKey = "visuplant:board"

// Board is a TTL'd read-through cache of the full unit list.
type Board struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewBoard(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Board {
	return &Board{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached board if present. Cache errors degrade to a miss.
func (b *Board) Get(ctx context.Context) ([]models.Unit, bool) {
	payload, err := b.client.Get(ctx, boardKey).Bytes()
	if err != nil {
		return nil, false
	}
	var units []models.Unit
	if err := json.Unmarshal(payload, &units); err != nil {
		b.logger.WarnContext(ctx, "board cache corrupt, dropping", "error", err)
		b.Invalidate(ctx)
		return nil, false
	}
	return units, true
}

// Set stores the board with the configured TTL. Best effort.
func (b *Board) Set(ctx context.Context, units []models.Unit) {
	payload, err := json.Marshal(units)
	if err != nil {
		return
	}
	if err := b.client.Set(ctx, boardKey, payload, b.ttl).Err(); err != nil {
		b.logger.WarnContext(ctx, "board cache write failed", "error", err)
	}
}

// Invalidate drops the cached board.
func (b *Board) Invalidate(ctx context.Context) {
	if err := b.client.Del(ctx, boardKey).Err(); err != nil {
		b.logger.WarnContext(ctx, "board cache invalidation failed", "error", err)
	}
}
