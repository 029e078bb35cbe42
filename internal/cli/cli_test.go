package cli

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// sandbox points every XDG directory at a fresh temp dir and returns it.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

// run executes the root command with args and returns its stdout.
// HIVEGRAPH_* variables come from env only, never from the real
// environment.
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, log.InfoLevel)
	c.Env = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, nil, args...)
	require.NoError(t, err, "hivegraph %s", strings.Join(args, " "))
	return out
}

func TestLayersCommand(t *testing.T) {
	sandbox(t)
	out := mustRun(t, "layers")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "layer0"))
	assert.True(t, strings.HasSuffix(lines[0], "  3"), "layer0 line %q", lines[0])
}

func TestSearchCommand(t *testing.T) {
	sandbox(t)

	out := mustRun(t, "search", "nfs")
	assert.Contains(t, out, "1 of 20 features")
	assert.Contains(t, out, "NFS")

	out = mustRun(t, "search", "--layer", "edge")
	assert.Contains(t, out, "5 of 20 features")

	out = mustRun(t, "search")
	assert.Contains(t, out, "all 20 features")

	out = mustRun(t, "search", "zzz-no-such-thing")
	assert.Contains(t, out, "no match among 20 features")

	_, err := run(t, nil, "search", "--layer", "layer9")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidLayer), "got %v", err)
}

func TestSearchJSON(t *testing.T) {
	sandbox(t)
	out := mustRun(t, "search", "-l", "layer0", "--json")

	var res catalog.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Filtered)
	assert.Equal(t, 20, res.Total)
	assert.Len(t, res.Features, 3)
}

func TestShowCommand(t *testing.T) {
	sandbox(t)

	out := mustRun(t, "show", "nfs")
	assert.Contains(t, out, "NFS (nfs)")
	assert.Contains(t, out, "Depends on")
	assert.Contains(t, out, "btrfs-raids")

	out = mustRun(t, "show", "nfs", "--json")
	var detail struct {
		Feature   catalog.Feature   `json:"feature"`
		DependsOn []catalog.Feature `json:"dependsOn"`
		FeedsInto []catalog.Feature `json:"feedsInto"`
		Stale     []string          `json:"stale"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "nfs", detail.Feature.ID)
	assert.Len(t, detail.DependsOn, 2)
	assert.Len(t, detail.FeedsInto, 5)
	assert.Empty(t, detail.Stale)

	_, err := run(t, nil, "show", "ghost")
	assert.True(t, herrors.Is(err, herrors.ErrCodeFeatureNotFound), "got %v", err)
}

func TestChainCommand(t *testing.T) {
	sandbox(t)

	out := mustRun(t, "chain", "btrfs-raids", "-d", "downstream", "--json")
	var chain []catalog.Feature
	require.NoError(t, json.Unmarshal([]byte(out), &chain))
	assert.Len(t, chain, 17)

	out = mustRun(t, "chain", "nfs")
	assert.Contains(t, out, "NFS needs 2 feature(s)")

	_, err := run(t, nil, "chain", "nfs", "-d", "sideways")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidDirection), "got %v", err)
}

func TestOrderCommand(t *testing.T) {
	sandbox(t)
	out := mustRun(t, "order", "--json")

	var order []catalog.Feature
	require.NoError(t, json.Unmarshal([]byte(out), &order))
	require.Len(t, order, 20)

	pos := func(id string) int {
		return slices.IndexFunc(order, func(f catalog.Feature) bool { return f.ID == id })
	}
	assert.Less(t, pos("btrfs-raids"), pos("nfs"))
	assert.Less(t, pos("nfs"), pos("docker"))
}

func TestValidateCommand(t *testing.T) {
	dir := sandbox(t)

	out := mustRun(t, "validate")
	assert.Contains(t, out, "builtin: 20 features")
	assert.Contains(t, out, "no warnings")
	assert.Contains(t, out, "btrfs-raids, spa")
	assert.Contains(t, out, "nginx-certificates, nginx-streams, nginx-redirection, logs")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`
[[feature]]
id = "nfs"
name = "NFS"
layer = "layer1"
depends_on = ["ghost"]
`), 0o644))

	out, err := run(t, nil, "validate", bad)
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidCatalog), "got %v", err)
	assert.Contains(t, out, "ghost")

	_, err = run(t, nil, "validate", filepath.Join(dir, "missing.toml"))
	assert.True(t, herrors.Is(err, herrors.ErrCodeCatalogNotFound), "got %v", err)
}

func TestExportRoundTrip(t *testing.T) {
	dir := sandbox(t)

	for _, name := range []string{"catalog.json", "catalog.yaml", "catalog.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			out := mustRun(t, "export", "-o", path)
			assert.Contains(t, out, "Exported 20 features")

			out = mustRun(t, "validate", path)
			assert.Contains(t, out, path+": 20 features")

			out = mustRun(t, "--catalog", path, "search", "nfs")
			assert.Contains(t, out, "1 of 20 features")
		})
	}

	_, err := run(t, nil, "export", "-f", "xml")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidFormat), "got %v", err)
}

func TestRenderDOTIsCached(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "graph.dot")

	out := mustRun(t, "render", "-f", "dot", "-o", path)
	assert.Contains(t, out, "fresh")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("digraph")), "dot output starts with %q", data[:min(len(data), 20)])

	out = mustRun(t, "render", "-f", "dot", "-o", path)
	assert.Contains(t, out, "cached")

	out = mustRun(t, "--no-cache", "render", "-f", "dot", "-o", path)
	assert.Contains(t, out, "fresh")

	out = mustRun(t, "render", "-f", "dot", "-o", "-", "--layer", "layer0")
	assert.Contains(t, out, "btrfs-raids")
	assert.NotContains(t, out, "wireguard")
}

func TestStoreCommands(t *testing.T) {
	dir := sandbox(t)

	out := mustRun(t, "catalogs", "list")
	assert.Contains(t, out, "No catalogs")

	out = mustRun(t, "publish", "staging")
	assert.Contains(t, out, "Published staging (20 features)")

	out = mustRun(t, "catalogs", "list")
	assert.Contains(t, out, "staging")

	pulled := filepath.Join(dir, "pulled.json")
	out = mustRun(t, "pull", "staging", "-o", pulled)
	assert.Contains(t, out, "Pulled staging")
	out = mustRun(t, "validate", pulled)
	assert.Contains(t, out, "20 features")

	mustRun(t, "catalogs", "delete", "staging")
	out = mustRun(t, "catalogs", "list")
	assert.Contains(t, out, "No catalogs")

	_, err := run(t, nil, "pull", "staging")
	assert.True(t, herrors.Is(err, herrors.ErrCodeCatalogNotFound), "got %v", err)
}

func TestCacheCommands(t *testing.T) {
	dir := sandbox(t)

	out := mustRun(t, "cache", "path")
	assert.Equal(t, filepath.Join(dir, "cache", appName), strings.TrimSpace(out))

	mustRun(t, "render", "-f", "dot", "-o", filepath.Join(dir, "g.dot"))
	out = mustRun(t, "cache", "clear")
	assert.Contains(t, out, "Cleared file cache")

	out = mustRun(t, "render", "-f", "dot", "-o", filepath.Join(dir, "g.dot"))
	assert.Contains(t, out, "fresh")
}

func TestEnvOverridesConfig(t *testing.T) {
	dir := sandbox(t)
	cfgDir := filepath.Join(dir, "config", appName)
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(`
[cache]
dir = "`+filepath.ToSlash(filepath.Join(dir, "from-file"))+`"
`), 0o644))

	out := mustRun(t, "cache", "path")
	assert.Equal(t, filepath.Join(dir, "from-file"), strings.TrimSpace(out))

	out, err := run(t, map[string]string{"HIVEGRAPH_CACHE_BACKEND": "none"}, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, "(disabled)", strings.TrimSpace(out))
}

func TestBadConfig(t *testing.T) {
	dir := sandbox(t)

	_, err := run(t, nil, "--config", filepath.Join(dir, "nope.toml"), "layers")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig), "got %v", err)

	_, err = run(t, map[string]string{"HIVEGRAPH_CACHE_BACKEND": "memcached"}, "layers")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig), "got %v", err)
}

func TestServeWatchNeedsCatalogFile(t *testing.T) {
	sandbox(t)
	_, err := run(t, nil, "serve", "--watch")
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidConfig), "got %v", err)
}

func TestServeListenFailure(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "catalog.toml")
	mustRun(t, "export", "-o", path)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	_, err = run(t, nil, "--catalog", path, "--no-cache", "serve", "--watch", "--addr", busy.Addr().String())
	require.Error(t, err, "a taken address fails before serving")
}

func TestExploreNeedsTerminal(t *testing.T) {
	sandbox(t)
	_, err := run(t, nil, "explore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}
