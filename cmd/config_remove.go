package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/ui"

	"github.com/spf13/cobra"
)

var forceRemove bool

var configRemoveCmd = &cobra.Command{
	Use:   "remove [key...]",
	Short: "Forget remembered answers (all of them when no key is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.OpenPreferences(config.PreferencesPath())
		if err != nil {
			return err
		}

		what := "all remembered answers"
		if len(args) > 0 {
			what = strings.Join(args, ", ")
		}

		if !forceRemove && !ui.Confirm(fmt.Sprintf("Forget %s", what)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := prefs.Forget(args...); err != nil {
			return err
		}

		fmt.Printf("Forgot %s\n", what)
		return nil
	},
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "do not ask for confirmation")
	configCmd.AddCommand(configRemoveCmd)
}
