package interfaces

import "go-market-cache/internal/models"

//go:generate mockgen -package=mock -source=keybuilder.go -destination=mock/keybuilder.go

// KeyBuilder canonizes queries into deterministic cache keys
type KeyBuilder interface {
	Build(query *models.Query) (string, error)
}
