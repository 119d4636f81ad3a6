package utils

import (
	"errors"
	"testing"
	"time"

	"go-market-cache/internal/models"
)

func TestIsNullPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected bool
	}{
		{"empty", "", true},
		{"whitespace", "  \n\t", true},
		{"null literal", "null", true},
		{"padded null", "  null \n", true},
		{"empty object", "{}", false},
		{"empty array", "[]", false},
		{"zero", "0", false},
		{"string null", `"null"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNullPayload([]byte(tt.payload)); got != tt.expected {
				t.Errorf("IsNullPayload(%q) = %v, want %v", tt.payload, got, tt.expected)
			}
		})
	}
}

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		shape       models.Shape
		wantPayload string
		wantErr     error
	}{
		{
			name:        "array",
			body:        `[{"id":"bitcoin"}]`,
			shape:       models.ShapeArray,
			wantPayload: `[{"id":"bitcoin"}]`,
		},
		{
			name:        "empty array is valid",
			body:        ` [] `,
			shape:       models.ShapeArray,
			wantPayload: `[]`,
		},
		{
			name:        "object",
			body:        `{"id":"bitcoin"}`,
			shape:       models.ShapeObject,
			wantPayload: `{"id":"bitcoin"}`,
		},
		{
			name:        "envelope is unwrapped",
			body:        `{"data":{"active_cryptocurrencies":100}}`,
			shape:       models.ShapeEnvelope,
			wantPayload: `{"active_cryptocurrencies":100}`,
		},
		{
			name:    "null body",
			body:    `null`,
			shape:   models.ShapeObject,
			wantErr: ErrEmptyBody,
		},
		{
			name:    "absent body",
			body:    ``,
			shape:   models.ShapeArray,
			wantErr: ErrEmptyBody,
		},
		{
			name:    "malformed json",
			body:    `{"id":`,
			shape:   models.ShapeObject,
			wantErr: ErrInvalidJSON,
		},
		{
			name:    "object where array expected",
			body:    `{"error":"oops"}`,
			shape:   models.ShapeArray,
			wantErr: ErrShapeMismatch,
		},
		{
			name:    "array where object expected",
			body:    `[]`,
			shape:   models.ShapeObject,
			wantErr: ErrShapeMismatch,
		},
		{
			name:    "envelope without data",
			body:    `{"status":"ok"}`,
			shape:   models.ShapeEnvelope,
			wantErr: ErrMissingData,
		},
		{
			name:    "envelope with null data",
			body:    `{"data":null}`,
			shape:   models.ShapeEnvelope,
			wantErr: ErrMissingData,
		},
		{
			name:    "envelope that is an array",
			body:    `[{"data":1}]`,
			shape:   models.ShapeEnvelope,
			wantErr: ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ExtractPayload([]byte(tt.body), tt.shape)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExtractPayload() error = %v, want %v", err, tt.wantErr)
				}
				if payload != nil {
					t.Errorf("ExtractPayload() payload = %s, want nil", payload)
				}
				return
			}

			if err != nil {
				t.Fatalf("ExtractPayload() unexpected error: %v", err)
			}
			if string(payload) != tt.wantPayload {
				t.Errorf("ExtractPayload() = %s, want %s", payload, tt.wantPayload)
			}
		})
	}
}

func TestExtractPayload_UnknownShape(t *testing.T) {
	if _, err := ExtractPayload([]byte(`{}`), models.Shape("table")); err == nil {
		t.Fatal("ExtractPayload() expected error for unknown shape")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		header   string
		expected time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"padded seconds", " 5 ", 5 * time.Second},
		{"negative", "-10", 0},
		{"garbage", "soon", 0},
		{"http date", "Mon, 01 Jan 2024 12:01:30 GMT", 90 * time.Second},
		{"date in the past", "Mon, 01 Jan 2024 11:00:00 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.header, now); got != tt.expected {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.header, got, tt.expected)
			}
		})
	}
}

func BenchmarkExtractPayload(b *testing.B) {
	body := []byte(`{"data":{"active_cryptocurrencies":100,"markets":900}}`)

	for i := 0; i < b.N; i++ {
		_, _ = ExtractPayload(body, models.ShapeEnvelope)
	}
}
