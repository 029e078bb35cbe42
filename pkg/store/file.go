package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// FileStore keeps one <name>.json file per catalog in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, c *catalog.Catalog) (Info, error) {
	rec, err := newRecord(name, c)
	if err != nil {
		return Info{}, err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("encode %s: %w", name, err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return Info{}, err
	}
	return rec.info(), nil
}

func (s *FileStore) read(name string) (record, error) {
	if err := herrors.ValidateName(name); err != nil {
		return record{}, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return record{}, notFound(name)
	}
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, herrors.Wrap(herrors.ErrCodeInvalidFormat, err, "decode stored catalog %q", name)
	}
	return rec, nil
}

func (s *FileStore) Load(ctx context.Context, name string, opts ...catalog.Option) (*catalog.Catalog, error) {
	rec, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return rec.catalog(opts...)
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		rec, err := s.read(name)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.info())
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := herrors.ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
