// Package workdir manages the directory importance runs write their
// artifacts into: one markdown report plus one yaml bundle per run, named by
// creation time so a directory listing reads as a timeline.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pangolin/internal/frontmatter"
	"pangolin/internal/report"
)

// Ensure creates dir when it does not exist yet.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	return nil
}

// RunFilename names a run report after its creation time and run id.
func RunFilename(created time.Time, runID string) string {
	return "run-" + stamp(created, runID) + ".md"
}

// BundleFilename pairs RunFilename's stem with a yaml extension.
func BundleFilename(created time.Time, runID string) string {
	return "run-" + stamp(created, runID) + ".yaml"
}

func stamp(created time.Time, runID string) string {
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	return created.UTC().Format("20060102-150405") + "-" + id
}

// Run is one discovered report.
type Run struct {
	Path string
	Meta report.Meta
}

// ListRuns scans dir for run reports, newest first. A missing directory is
// an empty listing; unreadable files and files without parseable
// frontmatter are skipped.
func ListRuns(dir string) ([]Run, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run dir: %w", err)
	}
	var runs []Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var meta report.Meta
		if _, err := frontmatter.ParseInto(data, &meta); err != nil {
			continue
		}
		runs = append(runs, Run{Path: path, Meta: meta})
	}
	// RFC 3339 strings order chronologically.
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Meta.Created > runs[j].Meta.Created
	})
	return runs, nil
}
