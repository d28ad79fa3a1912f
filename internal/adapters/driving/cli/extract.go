package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/normalisers/iso19139"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the normalised form of one metadata document",
	Long: `Reads a single ISO 19139 document from disk and prints the record
that would be stored for it, as indented JSON.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{needs: needsNothing},
	RunE:        runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	record, err := iso19139.New().ExtractFile(args[0])
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
