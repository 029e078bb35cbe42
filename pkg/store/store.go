// Package store persists named catalogs so that a catalog edited on one
// machine can be published and pulled elsewhere.
//
// Every backend stores the same record: the catalog's [graph.Document]
// plus the time it was saved. Loading always rebuilds the catalog through
// [catalog.New], so a record that was tampered with (or written by a newer
// version with different rules) fails validation instead of being served.
//
// Backends:
//
//   - [FileStore]: one JSON file per catalog in a directory
//   - [BadgerStore]: embedded key-value database, for a single host
//   - [MongoStore]: shared MongoDB collection, one document per catalog
package store

import (
	"context"
	"time"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/graph"
)

// Store saves and loads catalogs by name.
type Store interface {
	// Save stores c under name, replacing any previous catalog of that name.
	Save(ctx context.Context, name string, c *catalog.Catalog) (Info, error)

	// Load rebuilds the catalog stored under name. A missing name is a
	// CATALOG_NOT_FOUND error.
	Load(ctx context.Context, name string, opts ...catalog.Option) (*catalog.Catalog, error)

	// List describes every stored catalog, sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	Close() error
}

// Info describes a stored catalog without loading it.
type Info struct {
	Name     string    `json:"name" bson:"_id"`
	Digest   string    `json:"digest" bson:"digest"`
	Features int       `json:"features" bson:"features"`
	SavedAt  time.Time `json:"saved_at" bson:"saved_at"`
}

// record is the stored form shared by all backends.
type record struct {
	Name     string         `json:"name" bson:"_id"`
	Digest   string         `json:"digest" bson:"digest"`
	Features int            `json:"features" bson:"features"`
	SavedAt  time.Time      `json:"saved_at" bson:"saved_at"`
	Document graph.Document `json:"document" bson:"document"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func newRecord(name string, c *catalog.Catalog) (record, error) {
	if err := herrors.ValidateName(name); err != nil {
		return record{}, err
	}
	return record{
		Name:     name,
		Digest:   c.Digest(),
		Features: c.Len(),
		SavedAt:  now(),
		Document: graph.FromCatalog(c),
	}, nil
}

func (r record) info() Info {
	return Info{Name: r.Name, Digest: r.Digest, Features: r.Features, SavedAt: r.SavedAt}
}

func (r record) catalog(opts ...catalog.Option) (*catalog.Catalog, error) {
	c, err := graph.ToCatalog(r.Document, opts...)
	if err != nil {
		return nil, herrors.Wrap(herrors.GetCode(err), err, "stored catalog %q", r.Name)
	}
	return c, nil
}

func notFound(name string) error {
	return herrors.New(herrors.ErrCodeCatalogNotFound, "no stored catalog named %q", name)
}
