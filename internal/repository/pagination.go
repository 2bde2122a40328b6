// Package repository implements the data access layer for the application.
package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"waverider/internal/models"
)

// Cursor marks a position in a feed ordered by (created_at DESC, id DESC).
// The id component breaks ties between posts created in the same instant,
// so a page boundary never skips or repeats rows.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// EncodeCursor renders a cursor as an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token
// yields a nil cursor, meaning "start from the newest row".
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, models.NewValidationError("invalid pagination cursor")
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, models.NewValidationError("invalid pagination cursor")
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, models.NewValidationError("invalid pagination cursor")
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, models.NewValidationError("invalid pagination cursor")
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos), ID: uint(id)}, nil
}
