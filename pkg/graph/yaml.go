package graph

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// WriteYAML writes the same [Document] as [Write], rendered as YAML with
// the JSON key names.
func WriteYAML(c *catalog.Catalog, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromCatalog(c)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a YAML document from r and rebuilds its catalog.
func ReadYAML(r io.Reader, opts ...catalog.Option) (*catalog.Catalog, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode yaml document")
	}
	return ToCatalog(doc, opts...)
}
