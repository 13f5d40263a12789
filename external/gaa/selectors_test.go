package gaa

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSelectors_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	selectors, err := LoadSelectors("")
	if err != nil {
		t.Fatalf("LoadSelectors: %v", err)
	}
	if selectors.Item != ".gar-match-item" || selectors.LoadMore != ".gar-matches-list__btn.btn-secondary.-next" {
		t.Fatalf("unexpected defaults %+v", selectors)
	}
}

func TestLoadSelectors_OverlaysFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "selectors.yaml")
	content := "item: \".fixture-card\"\nload_more: \"button.load-more\"\noverlays:\n  - \".cookie-wall\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write selectors file: %v", err)
	}

	selectors, err := LoadSelectors(path)
	if err != nil {
		t.Fatalf("LoadSelectors: %v", err)
	}
	if selectors.Item != ".fixture-card" || selectors.LoadMore != "button.load-more" {
		t.Fatalf("expected overrides applied, got %+v", selectors)
	}
	if selectors.Day != ".gar-matches-list__day" {
		t.Fatalf("expected untouched selectors to keep defaults, got %q", selectors.Day)
	}
	if len(selectors.Overlays) != 1 || selectors.Overlays[0] != ".cookie-wall" {
		t.Fatalf("unexpected overlays %v", selectors.Overlays)
	}
}

func TestLoadSelectors_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadSelectors(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("item: [unterminated"), 0o600); err != nil {
		t.Fatalf("write selectors file: %v", err)
	}
	if _, err := LoadSelectors(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
