package main

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestCacheCmd tests the cache subcommands against a real cache.
func TestCacheCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing cache is reported", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "none")
		stdout, _, err := execute(t, "", "cache", "stats", "--cache-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No render cache in") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("stats, prune and clear", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cacheDir := filepath.Join(dir, "cache")
		cfgPath := writeConfig(t, dir, "defaults: {}\n")

		if _, _, err := execute(t, "A^[one].\n", "render", "--cache-dir", cacheDir, "-c", cfgPath); err != nil {
			t.Fatalf("render: %v", err)
		}
		if _, _, err := execute(t, "B^[two].\n", "render", "--cache-dir", cacheDir, "-c", cfgPath); err != nil {
			t.Fatalf("render: %v", err)
		}

		stdout, _, err := execute(t, "", "cache", "stats", "--cache-dir", cacheDir)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if !strings.Contains(stdout, "Entries: 2") {
			t.Errorf("expected 2 entries, got %q", stdout)
		}

		stdout, _, err = execute(t, "", "cache", "prune", "--older-than", "24h", "--cache-dir", cacheDir)
		if err != nil {
			t.Fatalf("prune: %v", err)
		}
		if !strings.Contains(stdout, "Removed 0 cached render(s)") {
			t.Errorf("fresh entries must survive prune, got %q", stdout)
		}

		stdout, _, err = execute(t, "", "cache", "clear", "--cache-dir", cacheDir)
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		if !strings.Contains(stdout, "Removed 2 cached render(s)") {
			t.Errorf("unexpected clear output %q", stdout)
		}
	})

	t.Run("prune rejects non-positive age", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "", "cache", "prune", "--older-than", "0s", "--cache-dir", t.TempDir())
		if err == nil {
			t.Error("expected error")
		}
	})
}
