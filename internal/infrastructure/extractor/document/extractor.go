// Package document turns stored loan documents into plain text. The format
// is chosen by file extension.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

const maxDocumentBytes = 64 << 20

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.LoanDocument) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, maxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if len(raw) > maxDocumentBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s exceeds %d bytes", doc.Filename, maxDocumentBytes))
	}

	text, err := ExtractBytes(doc.Filename, raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ExtractBytes extracts text from an in-memory file.
func ExtractBytes(filename string, raw []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return pdfText(raw)
	case ".docx":
		return docxText(raw)
	case ".xlsx", ".xlsm":
		return xlsxText(raw)
	case ".md", ".markdown":
		return markdownText(raw)
	case ".html", ".htm":
		return htmlText(bytes.NewReader(raw), nil)
	default:
		if !utf8.Valid(raw) {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported binary format: %s", filename))
		}
		return string(raw), nil
	}
}

// Supported reports whether a filename has a dedicated extractor or is
// treated as plain text.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".xlsx", ".xlsm", ".md", ".markdown", ".html", ".htm", ".txt", ".csv", ".json", "":
		return true
	default:
		return false
	}
}
