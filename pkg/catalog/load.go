package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// document is the TOML layout of a catalog file:
//
//	[[feature]]
//	id = "nfs"
//	name = "NFS"
//	layer = "layer1"
//	depends_on = ["btrfs-raids"]
//
//	  [[feature.link]]
//	  label = "View Architecture"
//	  href = "/architecture"
type document struct {
	Features []Feature `toml:"feature"`
}

// Decode reads a TOML catalog from r and builds a validated [Catalog].
// Unknown keys are rejected so that typos in hand-written files surface
// as errors instead of silently dropped fields.
func Decode(r io.Reader, opts ...Option) (*Catalog, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, herrors.New(herrors.ErrCodeInvalidCatalog,
			"unknown keys in catalog: %s", strings.Join(keys, ", "))
	}
	return New(doc.Features, opts...)
}

// Parse is like [Decode] for in-memory data.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// LoadFile reads a TOML catalog from disk.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.Wrap(herrors.ErrCodeCatalogNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Encode writes c as a TOML catalog that [Decode] reads back unchanged.
func Encode(w io.Writer, c *Catalog) error {
	if err := toml.NewEncoder(w).Encode(document{Features: c.Features()}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}
