package cmd

import (
	"fmt"

	"github.com/brogergvhs/crunchymanga/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the config and the remembered answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()

		prefs, err := config.OpenPreferences(config.PreferencesPath())
		if err != nil {
			return err
		}
		if len(prefs.Keys()) > 0 {
			fmt.Printf("\nRemembered answers (%s):\n", config.PreferencesPath())
			prefs.Print()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
