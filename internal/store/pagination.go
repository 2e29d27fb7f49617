package store

import (
	"encoding/base64"
	"strconv"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // The number of items per page (defaults to 100 with a maximum of 1000)
	Cursor string // Opaque cursor for next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Limit:  100,
		Cursor: "",
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 100
	}

	if p.Limit > 1000 {
		p.Limit = 1000
	}
}

// After decodes the cursor into the last id of the previous page, or 0.
func (p PaginationParams) After() (int64, error) {
	return DecodeCursor(p.Cursor)
}

// EncodeCursor creates an opaque cursor from the last id on a page.
func EncodeCursor(lastID int64) string {
	if lastID <= 0 {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(strconv.FormatInt(lastID, 10)))
}

// DecodeCursor decodes a cursor back to an id.
func DecodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, domainerrors.Validation("invalid cursor").WithCause(err)
	}
	id, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil || id < 0 {
		return 0, domainerrors.Validation("invalid cursor")
	}
	return id, nil
}

// Page trims items fetched with limit+1 to a page and fills in the cursor.
func Page[T any](items []T, limit int, idOf func(T) int64) *PaginatedResult[T] {
	result := &PaginatedResult[T]{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		result.HasMore = true
		result.NextCursor = EncodeCursor(idOf(result.Items[limit-1]))
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result
}
