package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
	Long: `Settings are read from config.toml in the config directory and can be
overridden by GEOCAT_* environment variables, e.g. GEOCAT_HARVEST_PAGE_SIZE.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List setting keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, key := range services.SettingKeys() {
			cmd.Printf("%-34s %s\n", key, services.EnvName(key))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Persist a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.ConfigPath())
		return nil
	},
}

func init() {
	configListCmd.Annotations = map[string]string{needs: needsNothing}
	configSetCmd.Annotations = map[string]string{needs: needsSettings}
	configPathCmd.Annotations = map[string]string{needs: needsSettings}
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := strings.TrimSpace(args[0])
	if err := settingsService.Set(key, args[1]); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, args[1])
	return nil
}
