package buildinfo

import "testing"

func TestShortPrefersVersion(t *testing.T) {
	v, c := Version, Commit
	defer func() { Version, Commit = v, c }()

	Version, Commit = "v0.3.0", "abcdef1"
	if got := Short(); got != "v0.3.0" {
		t.Fatalf("Short() = %q, want v0.3.0", got)
	}

	Version = "dev"
	if got := Short(); got != "abcdef1" {
		t.Fatalf("Short() = %q, want abcdef1", got)
	}

	Commit = "unknown"
	if got := Short(); got == "" {
		t.Fatal("Short() is empty")
	}
}
