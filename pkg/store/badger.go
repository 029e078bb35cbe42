package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

const badgerPrefix = "catalog/"

// BadgerStore keeps catalogs in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures [OpenBadger].
type BadgerOptions struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// Logger receives Badger's own log lines. Nil silences them.
	Logger *log.Logger
}

// OpenBadger opens (or creates) a Badger database.
func OpenBadger(o BadgerOptions) (*BadgerStore, error) {
	if !o.InMemory && o.Dir == "" {
		return nil, herrors.New(herrors.ErrCodeInvalidConfig, "badger store needs a directory")
	}
	opts := badger.DefaultOptions(o.Dir).
		WithInMemory(o.InMemory).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if o.Logger != nil {
		opts = opts.WithLogger(badgerLogger{o.Logger})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// badgerLogger routes Badger's printf-style logging into charmbracelet/log.
type badgerLogger struct{ l *log.Logger }

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...any)    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...any)   { b.l.Debugf(format, args...) }

func (s *BadgerStore) Save(ctx context.Context, name string, c *catalog.Catalog) (Info, error) {
	rec, err := newRecord(name, c)
	if err != nil {
		return Info{}, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Info{}, fmt.Errorf("encode %s: %w", name, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+name), data)
	})
	if err != nil {
		return Info{}, fmt.Errorf("save %s: %w", name, err)
	}
	return rec.info(), nil
}

func (s *BadgerStore) Load(ctx context.Context, name string, opts ...catalog.Option) (*catalog.Catalog, error) {
	if err := herrors.ValidateName(name); err != nil {
		return nil, err
	}
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return rec.catalog(opts...)
}

// List iterates keys in byte order, which is name order.
func (s *BadgerStore) List(ctx context.Context) ([]Info, error) {
	var out []Info
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(badgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec.info())
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := herrors.ValidateName(name); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerPrefix + name))
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }

var _ Store = (*BadgerStore)(nil)
