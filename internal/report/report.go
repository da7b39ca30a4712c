// Package report renders one importance run as a markdown document with
// yaml frontmatter: machine-readable run metadata up top, the importance
// table and the coalition value table below.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"pangolin"
	"pangolin/internal/frontmatter"
)

// Meta is the frontmatter every run report carries. Created is RFC 3339 so
// reports sort chronologically by string compare.
type Meta struct {
	RunID         string   `yaml:"run_id"`
	Created       string   `yaml:"created"`
	Dataset       string   `yaml:"dataset,omitempty"`
	Target        string   `yaml:"target"`
	ValueFunction string   `yaml:"value_function"`
	Permutations  int      `yaml:"permutations"`
	Coalitions    int      `yaml:"coalitions"`
	Measures      []string `yaml:"measures"`
	Local         bool     `yaml:"local,omitempty"`
}

// Build renders the full report document. No files are touched; writing is
// the caller's business or Write's.
func Build(meta Meta, res *pangolin.Result) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# Shapley feature importance\n\n")
	fmt.Fprintf(&b, "- **Value function**: %s\n", res.ValueFunction)
	fmt.Fprintf(&b, "- **Target**: %s\n", res.Target)
	fmt.Fprintf(&b, "- **Permutations**: %d\n", len(res.Permutations))
	fmt.Fprintf(&b, "- **Unique coalitions**: %d\n", len(res.Coalitions))
	if res.Clamped {
		b.WriteString("- **Note**: requested permutation count was clamped to the cap\n")
	}
	b.WriteString("\n")
	buildImportanceSection(&b, res)
	buildValueSection(&b, res)
	return frontmatter.Write(meta, b.String())
}

// Write builds the report and writes it to path, creating the directory as
// needed.
func Write(path string, meta Meta, res *pangolin.Result) error {
	doc, err := Build(meta, res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Section builders
// ---------------------------------------------------------------------------

// buildImportanceSection renders the per-feature estimates, one row per
// feature, one estimate/stderr pair per measure.
func buildImportanceSection(b *strings.Builder, res *pangolin.Result) {
	b.WriteString("## Importance\n\n")
	b.WriteString("| feature |")
	for _, m := range res.Measures {
		fmt.Fprintf(b, " %s | se(%s) |", m, m)
	}
	b.WriteString("\n|---|")
	for range res.Measures {
		b.WriteString("---|---|")
	}
	b.WriteString("\n")
	for _, f := range res.Features {
		imp := res.Importance[f]
		fmt.Fprintf(b, "| %s |", f)
		for _, m := range res.Measures {
			fmt.Fprintf(b, " %s | %s |", num(imp.Estimate[m]), num(imp.StdErr[m]))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// buildValueSection renders the deduplicated coalition value table in
// worklist order.
func buildValueSection(b *strings.Builder, res *pangolin.Result) {
	b.WriteString("## Coalition values\n\n")
	b.WriteString("| coalition |")
	for _, m := range res.Measures {
		fmt.Fprintf(b, " %s |", m)
	}
	b.WriteString("\n|---|")
	for range res.Measures {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, c := range res.Coalitions {
		row := res.Table[c.Key()]
		fmt.Fprintf(b, "| %s |", c)
		for _, m := range res.Measures {
			fmt.Fprintf(b, " %s |", num(row[m].Aggregate))
		}
		b.WriteString("\n")
	}
}

// num formats a float for a markdown cell; NaN renders as a dash.
func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6g", v)
}
