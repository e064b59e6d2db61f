package bootstrap

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"akara-desktop/internal/domain"
)

// TestFixOutputDirCreatesDirectory ensures output dir fix creates missing directories.
func TestFixOutputDirCreatesDirectory(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "nested", "translations")

	fixed, changed, err := fixOutputDir(domain.Settings{OutputDir: outputDir})
	if err != nil {
		t.Fatalf("fix output dir: %v", err)
	}
	if changed {
		t.Fatal("expected settings to remain unchanged")
	}
	if fixed.OutputDir != outputDir {
		t.Fatalf("OutputDir = %s, want %s", fixed.OutputDir, outputDir)
	}
	if _, err := os.Stat(outputDir); err != nil {
		t.Fatalf("stat output dir: %v", err)
	}
}

// TestFixOutputDirDefaultsWhenEmpty ensures an empty directory is replaced and saved.
func TestFixOutputDirDefaultsWhenEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	fixed, changed, err := fixOutputDir(domain.Settings{})
	if err != nil {
		t.Fatalf("fix output dir: %v", err)
	}
	if !changed || fixed.OutputDir == "" {
		t.Fatalf("expected default output dir, got %+v", fixed)
	}
}

// TestFixDiagnosticPersistsOutputDir checks the fix flows through the store and report.
func TestFixDiagnosticPersistsOutputDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	app := newTestApp(t, http.NotFoundHandler())
	store := app.Store.(*fakeStore)
	store.settings.OutputDir = ""

	report, err := app.FixDiagnostic("output_dir")
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if store.saved != 1 || store.settings.OutputDir == "" {
		t.Fatalf("store = %+v (saved %d)", store.settings, store.saved)
	}
	for _, item := range report.Items {
		if item.ID == "output_dir" && item.Status != domain.DiagnosticStatusPass {
			t.Fatalf("output_dir = %s: %s", item.Status, item.Message)
		}
	}
	if app.GetDiagnostics().GeneratedAt.IsZero() {
		t.Fatal("expected cached report")
	}
}

// TestFixDiagnosticRejectsUnknownItem checks unknown IDs are refused.
func TestFixDiagnosticRejectsUnknownItem(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	if _, err := app.FixDiagnostic("tool_ffmpeg"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := app.FixDiagnostic("  "); err == nil {
		t.Fatal("expected error for empty id")
	}
}
