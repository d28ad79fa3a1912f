package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the previous catalog",
	Long: `Replaces the published catalog with the generation it replaced.
Only one previous generation is kept.`,
	Args: cobra.NoArgs,
	RunE: runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	if err := pipeline.Rollback(cmd.Context()); err != nil {
		if errors.Is(err, domain.ErrNoBackup) {
			return errors.New("no previous catalog to restore")
		}
		return fmt.Errorf("rollback failed: %w", err)
	}

	cmd.Println("Previous catalog restored.")
	return nil
}
