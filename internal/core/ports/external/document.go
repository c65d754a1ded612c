package external

import (
	"context"
	"errors"
)

// ErrNoText is returned when a document parses but yields no text.
var ErrNoText = errors.New("document contains no extractable text")

// TextExtractor converts an uploaded document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
