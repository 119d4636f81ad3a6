package cache

import (
	"errors"
	"net/url"
	"strings"

	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Ensure KeyBuilderImpl implements interfaces.KeyBuilder
var _ interfaces.KeyBuilder = (*KeyBuilderImpl)(nil)

// KeyBuilderImpl implements the KeyBuilder interface
type KeyBuilderImpl struct{}

// NewKeyBuilder creates a new KeyBuilder instance
func NewKeyBuilder() interfaces.KeyBuilder {
	return &KeyBuilderImpl{}
}

// Build creates a cache key for a query: the normalized endpoint followed by
// the parameters as a query string sorted by name, e.g.
// "coins/markets?order=market_cap_desc&per_page=25&vs_currency=usd".
func (kb *KeyBuilderImpl) Build(query *models.Query) (string, error) {
	if query == nil {
		return "", errors.New("query cannot be nil")
	}

	endpoint := strings.Trim(strings.TrimSpace(query.Endpoint), "/")
	if endpoint == "" {
		return "", errors.New("query endpoint cannot be empty")
	}

	if len(query.Params) == 0 {
		return endpoint, nil
	}

	values := make(url.Values, len(query.Params))
	for name, value := range query.Params {
		if name == "" {
			return "", errors.New("query parameter name cannot be empty")
		}
		values.Set(name, value)
	}

	// url.Values.Encode sorts by parameter name
	return endpoint + "?" + values.Encode(), nil
}
