// Package pdf extracts plain text from uploaded PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	"github.com/ledongthuc/pdf"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var _ external.TextExtractor = (*Extractor)(nil)

// ExtractText returns the concatenated text of every page.
// The parser panics on some malformed inputs, so panics are converted into errors.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", external.ErrNoText
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", external.ErrNoText
	}
	return text, nil
}
