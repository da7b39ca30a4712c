package workdir_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pangolin/internal/frontmatter"
	"pangolin/internal/report"
	"pangolin/internal/workdir"
)

func TestEnsure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	if err := workdir.Ensure(dir); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("run dir not created: %v", err)
	}
	// Idempotent.
	if err := workdir.Ensure(dir); err != nil {
		t.Fatalf("Ensure on existing dir: %v", err)
	}
}

func TestFilenames(t *testing.T) {
	created := time.Date(2026, 2, 11, 9, 30, 15, 0, time.UTC)
	id := "0b5c2f31-aaaa-bbbb-cccc-000000000000"
	if got, want := workdir.RunFilename(created, id), "run-20260211-093015-0b5c2f31.md"; got != want {
		t.Fatalf("RunFilename = %q, want %q", got, want)
	}
	if got, want := workdir.BundleFilename(created, id), "run-20260211-093015-0b5c2f31.yaml"; got != want {
		t.Fatalf("BundleFilename = %q, want %q", got, want)
	}
}

func writeReport(t *testing.T, dir, name, created string) {
	t.Helper()
	doc, err := frontmatter.Write(report.Meta{RunID: name, Created: created, Target: "y"}, "body\n")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".md"), doc, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "older", "2026-02-10T08:00:00Z")
	writeReport(t, dir, "newer", "2026-02-11T08:00:00Z")

	// Junk the scanner must skip.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	runs, err := workdir.ListRuns(dir)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].Meta.RunID != "newer" || runs[1].Meta.RunID != "older" {
		t.Fatalf("runs not newest-first: %s, %s", runs[0].Meta.RunID, runs[1].Meta.RunID)
	}
}

func TestListRunsMissingDir(t *testing.T) {
	runs, err := workdir.ListRuns(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListRuns on a missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("listed %d runs from a missing dir", len(runs))
	}
}
