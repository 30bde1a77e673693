package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/gridedit/pkg/config"
	"github.com/vanderheijden86/gridedit/pkg/disable"
	"github.com/vanderheijden86/gridedit/pkg/edit"
	"github.com/vanderheijden86/gridedit/pkg/footer"
	"github.com/vanderheijden86/gridedit/pkg/loader"
	"github.com/vanderheijden86/gridedit/pkg/model"
	"github.com/vanderheijden86/gridedit/pkg/rows"
	"github.com/vanderheijden86/gridedit/pkg/schema"
	"github.com/vanderheijden86/gridedit/pkg/sheet"
	"github.com/vanderheijden86/gridedit/pkg/ui"
	"github.com/vanderheijden86/gridedit/pkg/validate"
	"github.com/vanderheijden86/gridedit/pkg/watcher"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Grid config file (default: nearest .gridedit/grid.yaml)")
	dataPath := flag.String("data", "", "Records file, overrides the config's data path")
	watch := flag.Bool("watch", false, "Reload records when the data file changes")
	robotValidate := flag.Bool("robot-validate", false, "Validate every cell and output the issues as JSON (exit 1 on issues)")
	robotFooter := flag.Bool("robot-footer", false, "Output the footer row as JSON")
	stats := flag.Bool("stats", false, "Print edit counters to stderr on exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: gridedit [options]")
		fmt.Println("\nA terminal grid editor with per-cell validation.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("gridedit %s\n", Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	source := cfg.DataPath()
	if *dataPath != "" {
		source = *dataPath
	}

	reg, err := cfg.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building columns: %v\n", err)
		os.Exit(1)
	}

	records, err := loader.LoadRecords(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		os.Exit(1)
	}
	sh, err := sheet.FromRecords(records, sheet.Options{
		AllowAdd:    cfg.AllowAdd,
		AllowRemove: cfg.AllowRemove,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		os.Exit(1)
	}

	if *robotValidate {
		report := buildValidationReport(sh.Snapshot(), reg.Columns(), cfg.Policy())
		if err := writeJSON(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
		if len(report.Issues) > 0 {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *robotFooter {
		cells := footer.Row(reg.Columns(), cfg.Footer.Values, cfg.Footer.Label)
		if err := writeJSON(os.Stdout, buildFooterOutput(cells)); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding footer: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "gridedit needs a terminal; use --robot-validate or --robot-footer for headless output")
		os.Exit(1)
	}

	if err := loader.EnsureStateIgnored(cfg.Root()); err != nil {
		log.Printf("warning: %v", err)
	}
	expansion := rows.NewExpansionState(cfg.StatePath(), cfg.Depth())
	expansion.Load()

	promReg := prometheus.NewRegistry()
	metrics, err := edit.NewMetrics(promReg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error registering metrics: %v\n", err)
		os.Exit(1)
	}

	opts := ui.Options{
		Title:     cfg.Title,
		Sheet:     sh,
		Columns:   reg,
		Policy:    cfg.Policy(),
		Expansion: expansion,
		Metrics:   metrics,
		Theme:     ui.DefaultTheme(lipgloss.DefaultRenderer()),
	}
	if cfg.Footer.Label != "" || len(cfg.Footer.Values) > 0 {
		opts.Footer = &ui.FooterSpec{Label: cfg.Footer.Label, Values: cfg.Footer.Values}
	}

	// Bubble Tea owns the terminal; route stray log output away from it.
	log.SetOutput(io.Discard)
	if logPath := os.Getenv("GRIDEDIT_LOG"); logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			defer f.Close()
			log.SetOutput(f)
		}
	}

	runErr := run(ui.NewGridModel(opts), source, *watch)

	log.SetOutput(os.Stderr)
	if *stats {
		printStats(os.Stderr, promReg)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running gridedit: %v\n", runErr)
		os.Exit(1)
	}
}

// loadConfig loads the explicit path, or discovers the nearest grid file
// from the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := config.FindConfig(cwd)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError(cwd, config.ScanConfigs(cwd, 0))
		}
		return nil, err
	}
	return config.LoadConfig(found)
}

// notFoundError reports a failed upward search, listing grid files found
// below dir so the user can pass one with --config.
func notFoundError(dir string, below []string) error {
	msg := fmt.Sprintf("no %s found above %s", filepath.Join(".gridedit", "grid.yaml"), dir)
	if len(below) == 0 {
		return errors.New(msg)
	}
	return fmt.Errorf("%s; use --config with one of:\n  %s", msg, strings.Join(below, "\n  "))
}

// run drives the program and, when watching, the file watcher. Reloads reach
// the model as messages so state only changes on the event loop.
func run(m ui.GridModel, source string, watch bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	g, gctx := errgroup.WithContext(ctx)

	if watch {
		w, err := watcher.New(source)
		if err != nil {
			return fmt.Errorf("watching %s: %w", source, err)
		}
		g.Go(func() error {
			return w.Run(gctx, func() {
				records, err := loader.LoadRecords(source)
				p.Send(ui.ReloadMsg{Records: records, Err: err})
			})
		})
	}

	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// CellIssue is one failing cell in the validation report.
type CellIssue struct {
	Group   string `json:"group"`
	RowID   string `json:"row_id"`
	Index   int    `json:"index"`
	Depth   int    `json:"depth"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationReport is the --robot-validate output.
type ValidationReport struct {
	Rows            int         `json:"rows"`
	Cells           int         `json:"cells_checked"`
	Skipped         int         `json:"cells_disabled"`
	DisabledRows    string      `json:"disabled_rows"`
	DisabledColumns []string    `json:"disabled_columns"`
	Issues          []CellIssue `json:"issues"`
}

// buildValidationReport runs every enabled cell's stored value through its
// column's validator, the same way a committed edit is checked.
func buildValidationReport(snap *rows.Snapshot, cols []schema.Column, policy disable.Policy) ValidationReport {
	report := ValidationReport{
		Rows:            rows.Count(snap.Tree()),
		DisabledRows:    disable.Describe(policy.Rows),
		DisabledColumns: append([]string{}, policy.Columns...),
		Issues:          []CellIssue{},
	}
	for _, g := range snap.Groups() {
		var walk func(nodes []*model.RowNode, depth int)
		walk = func(nodes []*model.RowNode, depth int) {
			for i, n := range nodes {
				if n == nil {
					continue
				}
				for _, col := range cols {
					key := schema.KeyOf(col)
					if policy.IsCellDisabled(g.Key, i, key) {
						report.Skipped++
						continue
					}
					report.Cells++
					text := model.FormatValue(n.Field(key))
					res := validate.ParseAndValidate(text, col)
					if res.Valid() {
						continue
					}
					report.Issues = append(report.Issues, CellIssue{
						Group:   g.Key,
						RowID:   n.ID,
						Index:   i,
						Depth:   depth,
						Column:  key,
						Value:   text,
						Message: res.Message,
					})
				}
				walk(n.Children, depth+1)
			}
		}
		walk(g.Rows, 0)
	}
	return report
}

// FooterOutput is the --robot-footer output.
type FooterOutput struct {
	Cells []FooterCell `json:"cells"`
}

// FooterCell is one footer column.
type FooterCell struct {
	Column  string `json:"column"`
	Display string `json:"display"`
	Label   bool   `json:"label,omitempty"`
}

func buildFooterOutput(cells []footer.Cell) FooterOutput {
	out := FooterOutput{Cells: make([]FooterCell, len(cells))}
	display := footer.Values(cells)
	for i, c := range cells {
		out.Cells[i] = FooterCell{Column: c.Column, Display: display[i], Label: c.Label}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printStats writes every gathered counter as "name value", sorted by name.
func printStats(w io.Writer, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		fmt.Fprintf(w, "warning: gathering stats: %v\n", err)
		return
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
