package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal converts a catalog to indented JSON bytes.
func Marshal(c *catalog.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a catalog as a JSON document.
// The file is created with 0644 permissions.
func WriteFile(c *catalog.Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(c, f)
}

// Write writes a catalog as a JSON document to w.
func Write(c *catalog.Catalog, w io.Writer) error {
	return writeTo(c, w)
}

// ReadFile reads a JSON document and rebuilds its catalog.
func ReadFile(path string, opts ...catalog.Option) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.Wrap(herrors.ErrCodeCatalogNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f, opts...)
}

// Read decodes a JSON document from r and rebuilds its catalog.
func Read(r io.Reader, opts ...catalog.Option) (*catalog.Catalog, error) {
	return readFrom(r, opts...)
}

// Unmarshal decodes JSON bytes to a Document without rebuilding the catalog.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode document")
	}
	return doc, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(c *catalog.Catalog, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromCatalog(c)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader, opts ...catalog.Option) (*catalog.Catalog, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode document")
	}
	return ToCatalog(doc, opts...)
}
