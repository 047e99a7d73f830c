package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/layout"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/util"
)

// checkCmd validates a layout document without opening the dashboard.
var checkCmd = &cobra.Command{
	Use:   "check [profile|file]",
	Short: "Validate a layout profile",
	Long: `Validate a layout profile and report its panels.

Accepts a profile name from the profiles directory or a path to a layout
file. Each panel is checked against the registered source and displayer
types, the compatibility rules, and the grid bounds. Exits non-zero when
any panel fails, which makes it usable in scripts.

Examples:
  gridsens check
  gridsens check work
  gridsens check ./layouts/bench.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return checkCommand(os.Stdout, target)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCommand loads the target document and reports per-panel findings.
func checkCommand(w io.Writer, target string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	reg, err := buildRegistry()
	if err != nil {
		return err
	}

	doc, name, err := resolveDocument(settings.Profiles.Dir, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: format v%d, %dx%d grid, %d %s\n",
		name, doc.Version, doc.Grid.Columns, doc.Grid.Rows,
		len(doc.Panels), util.Pluralize(len(doc.Panels), "panel", "panels"))

	g := grid.New(doc.Grid.Columns, doc.Grid.Rows)
	bad := 0
	for _, pd := range doc.Panels {
		if problem := checkPanel(reg, g, pd); problem != "" {
			bad++
			fmt.Fprintf(w, "  ✗ %-16s %s\n", pd.ID, problem)
			continue
		}
		fmt.Fprintf(w, "  ✓ %-16s %s -> %s at %dx%d+%d+%d\n",
			pd.ID, pd.Source, pd.Display, pd.W, pd.H, pd.X, pd.Y)
	}

	if bad > 0 {
		return errors.New(errors.ErrSettings,
			fmt.Sprintf("%d of %d panels failed validation", bad, len(doc.Panels)),
			"Fix the reported panels or delete them from the file")
	}
	return nil
}

// resolveDocument loads a document by profile name, or by file path when
// the target points at an existing file. An empty target means the
// default profile.
func resolveDocument(profilesDir, target string) (*layout.Document, string, error) {
	dir := profilesDir
	name := target

	if target == "" {
		settings, err := loadSettings()
		if err != nil {
			return nil, "", err
		}
		name = settings.Profiles.Default
	} else if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
		name = strings.TrimSuffix(filepath.Base(target), ".yaml")
	}

	store := layout.NewStore(dir, layout.StoreOptions{})
	defer store.Close()

	doc, err := store.Load(name)
	if err != nil {
		return nil, "", err
	}
	return doc, name, nil
}

// checkPanel validates one stored panel against the registry and the
// grid, claiming its cells so later overlaps are caught. Returns an empty
// string when the panel is sound.
func checkPanel(reg *plugin.Registry, g *grid.Model, pd layout.PanelDoc) string {
	srcInfo, ok := reg.Source(pd.Source)
	if !ok {
		names := make([]string, 0, len(reg.Sources()))
		for _, s := range reg.Sources() {
			names = append(names, s.Type)
		}
		if sug := util.SuggestSimilar(pd.Source, names, 3); len(sug) > 0 {
			return fmt.Sprintf("unknown source type %q (did you mean %s?)", pd.Source, util.JoinOrNone(sug))
		}
		return fmt.Sprintf("unknown source type %q", pd.Source)
	}
	dispInfo, ok := reg.Displayer(pd.Display)
	if !ok {
		names := make([]string, 0, len(reg.Displayers()))
		for _, d := range reg.Displayers() {
			names = append(names, d.Type)
		}
		if sug := util.SuggestSimilar(pd.Display, names, 3); len(sug) > 0 {
			return fmt.Sprintf("unknown displayer type %q (did you mean %s?)", pd.Display, util.JoinOrNone(sug))
		}
		return fmt.Sprintf("unknown displayer type %q", pd.Display)
	}
	if !dispInfo.CanRender(srcInfo.Shape) {
		accepts := make([]string, 0, len(dispInfo.Accepts))
		for _, sh := range dispInfo.Accepts {
			accepts = append(accepts, string(sh))
		}
		return fmt.Sprintf("displayer %q cannot render %s data (accepts %s)",
			pd.Display, srcInfo.Shape, util.JoinOrNone(accepts))
	}
	if err := srcInfo.Schema.Validate(pd.SourceOptions); err != nil {
		return fmt.Sprintf("source options: %s", firstErrLine(err))
	}
	if err := dispInfo.Schema.Validate(pd.DisplayOptions); err != nil {
		return fmt.Sprintf("displayer options: %s", firstErrLine(err))
	}
	if _, err := pd.PollInterval(); err != nil {
		return fmt.Sprintf("bad interval %q", pd.Interval)
	}
	if err := g.Place(pd.ID, grid.Rect{X: pd.X, Y: pd.Y, W: pd.W, H: pd.H}); err != nil {
		return firstErrLine(err)
	}
	return ""
}

// firstErrLine flattens a structured error to its headline for table rows.
func firstErrLine(err error) string {
	var gsErr *errors.Error
	if stderrors.As(err, &gsErr) {
		return gsErr.Summary()
	}
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.TrimPrefix(s, "✗ "))
}
