package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/ui"

	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigPath()
		if existing, err := config.ExistingConfigPath(); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", existing)
			fmt.Println("Use `crunchymanga config reset` to recreate it.")
			return nil
		}

		fmt.Println("Configuration file will be saved at:")
		fmt.Println("  ", path)
		fmt.Println()

		fmt.Println("Default configuration:")
		config.DefaultConfig().Print()
		fmt.Println()

		if !ui.Confirm("Create config") {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := config.InitDefaultConfig()
		if errors.Is(err, os.ErrExist) {
			fmt.Println("Config appeared at", path, "in the meantime, left untouched.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
