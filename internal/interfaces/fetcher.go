package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"go-market-cache/internal/models"
)

//go:generate mockgen -package=mock -source=fetcher.go -destination=mock/fetcher.go

// Fetcher returns validated upstream payloads through a cache
type Fetcher interface {
	Get(ctx context.Context, query models.Query, ttl time.Duration) (json.RawMessage, error)
	Clear()
	Size() int
	Pending() int
}
