package instanceio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAutoDetectsLiLim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.txt")
	if err := os.WriteFile(path, []byte(sampleLiLim), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	in, format, err := LoadAuto(path)
	if err != nil {
		t.Fatalf("LoadAuto returned error: %v", err)
	}
	if format != "lilim" {
		t.Fatalf("expected format lilim, got %q", format)
	}
	if in.NumVehicles() != 2 {
		t.Fatalf("expected 2 vehicles, got %d", in.NumVehicles())
	}
}

func TestLoadAutoReturnsErrorForGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.txt")
	if err := os.WriteFile(path, []byte("not an instance at all\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, _, err := LoadAuto(path); err == nil {
		t.Fatalf("expected an error for unparseable input")
	}
}
