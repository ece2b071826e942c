package buildinfo

import (
	"strings"
	"testing"
)

func TestStrings(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
	Version, Commit, Date = "v1.2.3", "abc123", "2026-12-01"

	if got, want := String(), "krampus v1.2.3 (abc123, 2026-12-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	tmpl := Template()
	for _, s := range []string{"{{.Name}} v1.2.3", "commit: abc123", "built: 2026-12-01"} {
		if !strings.Contains(tmpl, s) {
			t.Errorf("Template() = %q, missing %q", tmpl, s)
		}
	}
}
