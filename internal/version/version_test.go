package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if got := Current().Version; got != Version {
		t.Errorf("Current().Version = %q, want %q", got, Version)
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "1.2.3"
	GitCommit = "abc123def456"
	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" {
		t.Errorf("Current() = %+v", info)
	}
}

func TestColored(t *testing.T) {
	orig := Version
	origNoColor := color.NoColor
	t.Cleanup(func() { Version, color.NoColor = orig, origNoColor })
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev": "0.1.0-dev",
		"2.0.1":     "2.0.1",
		"weird":     "weird",
	}
	for in, want := range cases {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}
