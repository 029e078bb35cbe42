// Package hyperhive embeds the built-in HyperHive feature catalog.
package hyperhive

import (
	_ "embed"

	"github.com/hyperhive/hivegraph/pkg/catalog"
)

//go:embed hyperhive.toml
var source []byte

// Load parses the embedded catalog.
func Load(opts ...catalog.Option) (*catalog.Catalog, error) {
	return catalog.Parse(source, opts...)
}

// MustLoad is like [Load] but panics on error. The embedded data is checked
// by the package tests, so a panic here means the binary was built from a
// broken tree.
func MustLoad(opts ...catalog.Option) *catalog.Catalog {
	c, err := Load(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Source returns a copy of the embedded TOML document.
func Source() []byte {
	return append([]byte(nil), source...)
}
