package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-market-cache/internal/models"
)

var (
	ErrEmptyBody     = errors.New("response body is empty or null")
	ErrInvalidJSON   = errors.New("response body is not valid JSON")
	ErrShapeMismatch = errors.New("response body does not match expected shape")
	ErrMissingData   = errors.New("response envelope has no data")
)

// IsNullPayload reports whether raw is empty or the JSON literal null
func IsNullPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// ExtractPayload checks body against the expected shape and returns the part
// that should be cached. Envelope bodies are unwrapped to their data member.
func ExtractPayload(body []byte, shape models.Shape) (json.RawMessage, error) {
	if IsNullPayload(body) {
		return nil, ErrEmptyBody
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, ErrInvalidJSON
	}

	switch shape {
	case models.ShapeArray:
		if trimmed[0] != '[' {
			return nil, fmt.Errorf("%w: want array", ErrShapeMismatch)
		}
	case models.ShapeObject:
		if trimmed[0] != '{' {
			return nil, fmt.Errorf("%w: want object", ErrShapeMismatch)
		}
	case models.ShapeEnvelope:
		if trimmed[0] != '{' {
			return nil, fmt.Errorf("%w: want envelope object", ErrShapeMismatch)
		}
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
		}
		if IsNullPayload(envelope.Data) {
			return nil, ErrMissingData
		}
		return envelope.Data, nil
	default:
		return nil, fmt.Errorf("unknown response shape %q", shape)
	}

	return json.RawMessage(trimmed), nil
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unparsable.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Truncate(time.Second)
		}
	}

	return 0
}
