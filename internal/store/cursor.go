package store

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor represents a decoded pagination cursor.
// Pages are keyed on (created_at, id) so inserts never shift results.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// EncodeCursor encodes a pagination cursor to base64.
func EncodeCursor(cursor *Cursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor decodes a base64 pagination cursor.
// Returns ErrInvalidCursor on malformed input.
func DecodeCursor(s string) (*Cursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, ErrInvalidCursor
	}

	return &cursor, nil
}
