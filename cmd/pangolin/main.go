package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"pangolin"
	"pangolin/internal/bundle"
	"pangolin/internal/report"
	"pangolin/internal/workdir"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "init",
		short: "Write a starter run config",
		usage: "pangolin init [path]",
		long: `Write a commented starter config to path (default pangolin.yaml).

Errors if the file already exists.
`,
		run: runInit,
	},
	{
		name:  "run",
		short: "Compute Shapley feature importance",
		usage: "pangolin run [-v] <config.yaml>",
		long: `Run one importance computation described by the config.

Loads the dataset and model, samples feature orderings, evaluates the
configured value function per distinct coalition, and prints the
per-feature estimates. A markdown report and a yaml bundle land in the
config's out directory. Prompts for the dataset, target or model when
the config leaves them blank.

-v turns on debug logging.
`,
		run: runRun,
	},
	{
		name:  "compare",
		short: "Run both value functions side by side",
		usage: "pangolin compare [-v] <config.yaml>",
		long: `Run the ge and pfi value functions over the same sampled
orderings and print their estimates next to each other. When the config
carries no seed, one is drawn and shared so both runs see identical
orderings.
`,
		run: runCompare,
	},
	{
		name:  "runs",
		short: "List past runs",
		usage: "pangolin runs [dir]",
		long: `List the run reports found in dir (default pangolin-runs),
newest first.
`,
		run: runRuns,
	},
}

// valueFunctions is the registry of available coalition value strategies.
var valueFunctions = map[string]pangolin.ValueFunction{
	"ge":  pangolin.GEValue{},
	"pfi": pangolin.PFIValue{},
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "pangolin — Shapley feature importance for fitted models\n\n")
	fmt.Fprintf(w, "Usage:\n  pangolin <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'pangolin help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "pangolin: unknown command %q\n\nRun 'pangolin help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'pangolin help' for usage.", args[0])
}

// splitVerbose strips -v / --verbose from args.
func splitVerbose(args []string) (bool, []string) {
	verbose := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		rest = append(rest, a)
	}
	return verbose, rest
}

// newLogger builds a console logger: warnings only by default, everything
// with -v.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zap.Must(cfg.Build())
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

const starterConfig = `# pangolin run configuration
dataset: data.csv   # CSV with a header row; empty cells, NA and NaN are missing
target: y           # ground-truth column
model: model.yaml   # yaml linear model: intercept plus coefficients
value: ge           # ge or pfi
measures: [mse]     # mse, mae, accuracy
permutations: 120   # sampled feature orderings, hard cap 8192
# all_permutations: true   # enumerate every ordering when feasible
# bound: 3                 # cap coalition sizes
# features: [x1, x2]       # explain a subset only
# local: true              # per-observation estimates
# seed: 42                 # reproducible sampling
# workers: 4               # parallel coalition evaluations
out: pangolin-runs  # artifact directory
`

func runInit(args []string) error {
	path := "pangolin.yaml"
	if len(args) >= 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("wrote starter config to %s\n", path)
	return nil
}

// ---------------------------------------------------------------------------
// run
// ---------------------------------------------------------------------------

func runRun(args []string) error {
	verbose, rest := splitVerbose(args)
	if len(rest) < 1 {
		return fmt.Errorf("usage: pangolin run [-v] <config.yaml>")
	}
	logger := newLogger(verbose)
	defer logger.Sync()

	cfg, err := loadConfig(rest[0])
	if err != nil {
		return err
	}
	vf, ok := valueFunctions[cfg.Value]
	if !ok {
		return fmt.Errorf("unknown value function %q", cfg.Value)
	}
	task, err := cfg.BuildTask()
	if err != nil {
		return err
	}
	res, err := pangolin.Shapley(context.Background(), task, vf,
		append(cfg.Options(), pangolin.WithLogger(logger))...)
	if err != nil {
		return err
	}
	fmt.Println(renderImportance(res))
	return writeArtifacts(cfg, res)
}

// loadConfig reads the config, prompts for any missing required inputs and
// validates the result.
func loadConfig(path string) (*pangolin.RunConfig, error) {
	cfg, err := pangolin.LoadRunConfig(path)
	if err != nil {
		return nil, err
	}
	if err := fillMissing(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeArtifacts persists the run as a markdown report plus a yaml bundle.
func writeArtifacts(cfg *pangolin.RunConfig, res *pangolin.Result) error {
	created := time.Now().UTC()
	if err := workdir.Ensure(cfg.Out); err != nil {
		return err
	}
	meta := report.Meta{
		RunID:         res.RunID,
		Created:       created.Format(time.RFC3339),
		Dataset:       cfg.Dataset,
		Target:        res.Target,
		ValueFunction: res.ValueFunction,
		Permutations:  len(res.Permutations),
		Coalitions:    len(res.Coalitions),
		Measures:      res.Measures,
		Local:         cfg.Local,
	}
	reportPath := filepath.Join(cfg.Out, workdir.RunFilename(created, res.RunID))
	if err := report.Write(reportPath, meta, res); err != nil {
		return err
	}
	bundlePath := filepath.Join(cfg.Out, workdir.BundleFilename(created, res.RunID))
	if err := bundle.FromResult(res, meta.Created).Save(bundlePath); err != nil {
		return err
	}
	fmt.Printf("report → %s\nbundle → %s\n", reportPath, bundlePath)
	return nil
}

func featureWidth(feats []string) int {
	width := len("feature")
	for _, f := range feats {
		if len(f) > width {
			width = len(f)
		}
	}
	return width
}

func renderImportance(res *pangolin.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Shapley importance via %s for target %q", res.ValueFunction, res.Target)))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d permutations, %d unique coalitions", len(res.Permutations), len(res.Coalitions))))
	b.WriteString("\n\n")

	width := featureWidth(res.Features)
	header := fmt.Sprintf("%-*s", width, "feature")
	for _, m := range res.Measures {
		header += fmt.Sprintf("  %-26s", m+" (se)")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	for _, f := range res.Features {
		imp := res.Importance[f]
		fmt.Fprintf(&b, "%-*s", width, f)
		for _, m := range res.Measures {
			fmt.Fprintf(&b, "  %-26s", fmt.Sprintf("%.6g (%.3g)", imp.Estimate[m], imp.StdErr[m]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// compare
// ---------------------------------------------------------------------------

func runCompare(args []string) error {
	verbose, rest := splitVerbose(args)
	if len(rest) < 1 {
		return fmt.Errorf("usage: pangolin compare [-v] <config.yaml>")
	}
	logger := newLogger(verbose)
	defer logger.Sync()

	cfg, err := loadConfig(rest[0])
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		// Shared orderings keep the two strategies comparable.
		cfg.Seed = time.Now().UnixNano()
	}
	task, err := cfg.BuildTask()
	if err != nil {
		return err
	}
	results := make(map[string]*pangolin.Result, 2)
	for _, name := range []string{"ge", "pfi"} {
		res, err := pangolin.Shapley(context.Background(), task, valueFunctions[name],
			append(cfg.Options(), pangolin.WithLogger(logger))...)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		results[name] = res
	}
	fmt.Println(renderComparison(results["ge"], results["pfi"]))
	return nil
}

func renderComparison(ge, pfi *pangolin.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Value-function comparison for target %q", ge.Target)))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d shared permutations", len(ge.Permutations))))
	b.WriteString("\n")

	width := featureWidth(ge.Features)
	for _, m := range ge.Measures {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %-26s  %-26s", width, "feature ("+m+")", "ge (se)", "pfi (se)")))
		b.WriteString("\n")
		for _, f := range ge.Features {
			g := ge.Importance[f]
			p := pfi.Importance[f]
			fmt.Fprintf(&b, "%-*s  %-26s  %-26s\n", width, f,
				fmt.Sprintf("%.6g (%.3g)", g.Estimate[m], g.StdErr[m]),
				fmt.Sprintf("%.6g (%.3g)", p.Estimate[m], p.StdErr[m]))
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// runs
// ---------------------------------------------------------------------------

func runRuns(args []string) error {
	dir := "pangolin-runs"
	if len(args) >= 1 {
		dir = args[0]
	}
	runs, err := workdir.ListRuns(dir)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", dir)
		return nil
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-20s  %-5s  %-10s  %-6s  %s",
		"created", "value", "target", "perms", "report")))
	for _, r := range runs {
		fmt.Printf("%-20s  %-5s  %-10s  %-6d  %s\n",
			r.Meta.Created, r.Meta.ValueFunction, r.Meta.Target, r.Meta.Permutations,
			faintStyle.Render(r.Path))
	}
	return nil
}

// ---------------------------------------------------------------------------
// TUI prompt helpers
// ---------------------------------------------------------------------------

// promptQuestion is one blank a config left for the user to fill.
type promptQuestion struct {
	key    string
	prompt string
}

// fillMissing prompts for required config fields that are blank.
func fillMissing(cfg *pangolin.RunConfig) error {
	var questions []promptQuestion
	if cfg.Dataset == "" {
		questions = append(questions, promptQuestion{key: "dataset", prompt: "Dataset CSV path"})
	}
	if cfg.Target == "" {
		questions = append(questions, promptQuestion{key: "target", prompt: "Target column"})
	}
	if cfg.Model == "" {
		questions = append(questions, promptQuestion{key: "model", prompt: "Model yaml path"})
	}
	if len(questions) == 0 {
		return nil
	}
	answers, err := promptQuestions(questions)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if v := answers["dataset"]; v != "" {
		cfg.Dataset = v
	}
	if v := answers["target"]; v != "" {
		cfg.Target = v
	}
	if v := answers["model"]; v != "" {
		cfg.Model = v
	}
	return nil
}

// promptModel is a bubbletea model that asks one question at a time.
type promptModel struct {
	questions []promptQuestion
	idx       int
	inputs    []textinput.Model
	done      bool
}

func newPromptModel(questions []promptQuestion) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.prompt
		ti.CharLimit = 512
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s\n", m.questions[m.idx].prompt, m.inputs[m.idx].View())
}

// promptQuestions runs the TUI and returns answers keyed by question key.
func promptQuestions(questions []promptQuestion) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	m := newPromptModel(questions)
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, fmt.Errorf("prompt cancelled")
	}
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		answers[q.key] = final.inputs[i].Value()
	}
	return answers, nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
