package hyperhive

import (
	"slices"
	"testing"

	"github.com/hyperhive/hivegraph/pkg/catalog"
)

func names(features []catalog.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Name
	}
	return out
}

func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 20 {
		t.Errorf("Len = %d, want 20", c.Len())
	}
	if cycles := c.Cycles(); cycles != nil {
		t.Errorf("built-in catalog has cycles: %v", cycles)
	}
	if w := c.Warnings(); len(w) != 0 {
		t.Errorf("built-in catalog has warnings: %v", w)
	}
	for _, f := range c.Features() {
		if f.ShortDescription == "" || f.WhatItIs == "" || f.WhyExists == "" || f.HowItFits == "" {
			t.Errorf("%s: narrative fields must be filled in", f.ID)
		}
		if f.Icon == catalog.IconNone {
			t.Errorf("%s: missing icon", f.ID)
		}
		if len(f.Keywords) == 0 || len(f.Capabilities) == 0 {
			t.Errorf("%s: missing keywords or capabilities", f.ID)
		}
	}
}

func TestFoundationLayer(t *testing.T) {
	c := MustLoad()
	got := names(c.ByLayer(catalog.LayerStorage))
	want := []string{"BTRFS / RAIDs", "Auto-Mounts", "SmartDisk"}
	if !slices.Equal(got, want) {
		t.Errorf("ByLayer(layer0) = %v, want %v", got, want)
	}
}

func TestLayersPartitionCatalog(t *testing.T) {
	c := MustLoad()
	seen := map[string]catalog.Layer{}
	for _, id := range c.LayerIDs() {
		features := c.ByLayer(id)
		if len(features) == 0 {
			t.Errorf("layer %s has no features", id)
		}
		for _, f := range features {
			if prev, dup := seen[f.ID]; dup {
				t.Errorf("%s listed under both %s and %s", f.ID, prev, id)
			}
			seen[f.ID] = id
		}
	}
	for _, f := range c.Features() {
		if got, ok := seen[f.ID]; !ok {
			t.Errorf("%s is in no layer", f.ID)
		} else if got != f.Layer {
			t.Errorf("%s listed under %s, declared %s", f.ID, got, f.Layer)
		}
	}
	if len(seen) != c.Len() {
		t.Errorf("layers hold %d features, catalog has %d", len(seen), c.Len())
	}
}

func TestRootsAndLeaves(t *testing.T) {
	c := MustLoad()
	ids := func(fs []catalog.Feature) []string {
		out := make([]string, len(fs))
		for i, f := range fs {
			out[i] = f.ID
		}
		return out
	}
	if got, want := ids(c.Roots()), []string{"btrfs-raids", "spa"}; !slices.Equal(got, want) {
		t.Errorf("Roots = %v, want %v", got, want)
	}
	want := []string{"nginx-certificates", "nginx-streams", "nginx-redirection", "logs"}
	if got := ids(c.Leaves()); !slices.Equal(got, want) {
		t.Errorf("Leaves = %v, want %v", got, want)
	}
}

func TestSearch(t *testing.T) {
	c := MustLoad()

	res := c.Filter(catalog.Query{Text: "nfs"})
	if !slices.Contains(names(res.Features), "NFS") {
		t.Errorf("search nfs = %v, want NFS included", names(res.Features))
	}

	res = c.Filter(catalog.Query{Text: "nfs", Layers: []catalog.Layer{catalog.LayerOperations}})
	if len(res.Features) != 0 || !res.Filtered {
		t.Errorf("nfs in operations = %v, want empty filtered result", names(res.Features))
	}

	res = c.Filter(catalog.Query{Text: "zzz-no-match"})
	if len(res.Features) != 0 || res.Total != 20 {
		t.Errorf("no-match result = %+v", res)
	}
}

func TestChains(t *testing.T) {
	c := MustLoad()

	up := c.Chain("k8-cluster", catalog.Upstream)
	for _, id := range []string{"nfs", "docker-images", "btrfs-raids", "auto-mounts"} {
		if !slices.ContainsFunc(up, func(f catalog.Feature) bool { return f.ID == id }) {
			t.Errorf("k8-cluster upstream is missing %s", id)
		}
	}

	// Everything except the foundation itself and the access layer.
	down := c.Chain("btrfs-raids", catalog.Downstream)
	if len(down) != c.Len()-3 {
		t.Errorf("btrfs-raids downstream has %d features, want %d", len(down), c.Len()-3)
	}
}

func TestInstallOrder(t *testing.T) {
	c := MustLoad()
	order, err := c.InstallOrder()
	if err != nil {
		t.Fatalf("InstallOrder: %v", err)
	}
	pos := map[string]int{}
	for i, f := range order {
		pos[f.ID] = i
	}
	for _, f := range order {
		for _, dep := range f.DependsOn {
			if pos[dep] >= pos[f.ID] {
				t.Errorf("%s installed before its dependency %s", f.ID, dep)
			}
		}
	}
}

func TestSourceIsCopy(t *testing.T) {
	a := Source()
	a[0] = 'X'
	if Source()[0] == 'X' {
		t.Error("Source returned shared storage")
	}
}
