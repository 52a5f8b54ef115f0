package store

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PaginationParams are cursor pagination request parameters.
type PaginationParams struct {
	Limit  int
	Cursor string // opaque; empty for the first page
}

// PaginatedResult is one page of items.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Validate clamps the limit into [1, MaxPageSize].
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// EncodeCursor builds an opaque cursor from the sort key parts of the last
// item on a page.
func EncodeCursor(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, "\x1f")))
}

// DecodeCursor splits a cursor back into n sort key parts.
func DecodeCursor(cursor string, n int) ([]string, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("invalid cursor").WithCause(err)
	}

	parts := strings.Split(string(decoded), "\x1f")
	if len(parts) != n {
		return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("invalid cursor: want %d parts, got %d", n, len(parts)))
	}
	return parts, nil
}
