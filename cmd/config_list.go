package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/crunchymanga/internal/config"

	"github.com/spf13/cobra"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the answers remembered from previous runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.OpenPreferences(config.PreferencesPath())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tVALUE")

		for _, k := range prefs.Keys() {
			v, _ := prefs.Lookup(k)
			if k == config.PrefPassword {
				v = "********"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", k, v)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
