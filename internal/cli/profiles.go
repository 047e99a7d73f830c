package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridsens/gridsens/internal/layout"
	"github.com/gridsens/gridsens/internal/util"
)

// profilesCmd lists the saved layout profiles.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved layout profiles",
	Long: `List every layout profile in the profiles directory.

The default profile (opened when no --profile is given) is marked with an
asterisk. Profiles that fail to parse are listed as corrupt rather than
hidden, so a broken file is visible before it bites.

Examples:
  gridsens profiles
  gridsens --config ./dev.yaml profiles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return profilesCommand(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

// profilesCommand prints one line per profile: marker, name, panel count.
func profilesCommand(w io.Writer) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store := layout.NewStore(settings.Profiles.Dir, layout.StoreOptions{})
	defer store.Close()

	names, err := store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "No profiles in %s\n", store.Dir())
		fmt.Fprintln(w, "Run 'gridsens' to create one.")
		return nil
	}

	for _, name := range names {
		marker := " "
		if name == settings.Profiles.Default {
			marker = "*"
		}
		doc, err := store.Load(name)
		if err != nil {
			fmt.Fprintf(w, "%s %-20s (corrupt: cannot parse)\n", marker, name)
			continue
		}
		fmt.Fprintf(w, "%s %-20s %d %s, %dx%d grid\n",
			marker, name, len(doc.Panels), util.Pluralize(len(doc.Panels), "panel", "panels"),
			doc.Grid.Columns, doc.Grid.Rows)
	}
	return nil
}
