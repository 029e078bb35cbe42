package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperhive/hivegraph/pkg/api"
)

var servingAddr = regexp.MustCompile(`addr="?(http://[0-9.:]+)`)

// servedFeatures returns the feature count reported by /healthz, or -1.
// It runs inside Eventually conditions, so it never fails t.
func servedFeatures(base string) int {
	resp, err := http.Get(base + "/healthz")
	if err != nil {
		return -1
	}
	defer resp.Body.Close()
	var h api.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return -1
	}
	return h.Features
}

func TestServeWatchReloads(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an HTTP server and a file watcher")
	}
	dir := sandbox(t)
	path := filepath.Join(dir, "catalog.toml")
	mustRun(t, "export", "-o", path)

	var logs syncBuffer
	c := New(&logs, log.InfoLevel)
	c.Env = func(string) (string, bool) { return "", false }
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--catalog", path, "--no-cache", "serve", "--addr", "127.0.0.1:0", "--watch"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	var base string
	require.Eventually(t, func() bool {
		m := servingAddr.FindStringSubmatch(logs.String())
		if m == nil {
			return false
		}
		base = m[1]
		return true
	}, 5*time.Second, 20*time.Millisecond, "server never logged its address:\n%s", logs.String())

	assert.Equal(t, 20, servedFeatures(base))

	require.NoError(t, os.WriteFile(path, []byte(`
[[feature]]
id = "nfs"
name = "NFS"
layer = "layer1"
`), 0o644))
	require.Eventually(t, func() bool { return servedFeatures(base) == 1 },
		5*time.Second, 50*time.Millisecond, "catalog was not reloaded")

	require.NoError(t, os.WriteFile(path, []byte("[[feature]\nbroken"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "reload failed")
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 1, servedFeatures(base), "a broken file must not replace the served catalog")

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `hivegraph_http_requests_total{method="GET",route="/healthz",status="200"}`)
	assert.Contains(t, string(body), `hivegraph_catalog_loads_total`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
