package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

const sampleTOML = `
[[feature]]
id = "disk"
name = "Disk"
layer = "layer0"
icon = "hard-drive"
short_description = "Local disks"
keywords = ["raid"]
feeds_into = ["share"]

  [[feature.link]]
  label = "Architecture"
  href = "/architecture"

[[feature]]
id = "share"
name = "Share"
layer = "layer1"
depends_on = ["disk"]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	disk, _ := c.Get("disk")
	if disk.Icon != IconHardDrive || disk.Layer != LayerStorage {
		t.Errorf("disk = %+v", disk)
	}
	if len(disk.Links) != 1 || disk.Links[0].Href != "/architecture" {
		t.Errorf("disk.Links = %+v", disk.Links)
	}
	share, _ := c.Get("share")
	if share.Icon != IconNone {
		t.Errorf("share.Icon = %q, want empty", share.Icon)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code herrors.Code
	}{
		{"syntax", "[[feature]\nid = ", herrors.ErrCodeInvalidCatalog},
		{"unknown key", "[[feature]]\nid = \"a\"\nname = \"A\"\nlayer = \"layer0\"\ncolour = \"red\"\n", herrors.ErrCodeInvalidCatalog},
		{"invalid feature", "[[feature]]\nid = \"a\"\nname = \"A\"\nlayer = \"basement\"\n", herrors.ErrCodeInvalidLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !herrors.Is(err, tt.code) {
				t.Errorf("error %v does not carry %s", err, tt.code)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !c.Has("share") {
		t.Error("share not loaded")
	}

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	if !herrors.Is(err, herrors.ErrCodeCatalogNotFound) {
		t.Errorf("LoadFile(missing) error = %v, want CATALOG_NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := MustNew(testFeatures())

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "[[feature]]") {
		t.Errorf("encoded catalog has no feature tables:\n%s", buf.String())
	}

	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(Encode(c)): %v\n%s", err, buf.String())
	}
	if back.Digest() != c.Digest() {
		t.Errorf("Digest changed after round trip")
	}
}
