package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateCarriesBuildInfo(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.4.0", "abc123", "2026-01-02T03:04:05Z"

	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version v1.4.0\n") {
		t.Errorf("Template() = %q", tmpl)
	}
	for _, want := range []string{"commit: abc123", "built: 2026-01-02T03:04:05Z"} {
		if !strings.Contains(tmpl, want) || !strings.Contains(String(), want) {
			t.Errorf("build info lacks %q", want)
		}
	}
}
