package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geocat/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

// plainText drops highlight markers for terminal output.
var plainText = strings.NewReplacer(sqlite.HighlightOpen, "", sqlite.HighlightClose, "")

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Performs a full-text search over titles, abstracts, keywords,
publishers and the other indexed fields of the published catalog.
Records with open access rank slightly higher.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	opts := domain.SearchOptions{
		Limit:  searchLimit,
		Offset: searchOffset,
	}

	results, err := queryService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchSummary) error {
	if results == nil {
		results = []domain.SearchSummary{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchSummary) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := plainText.Replace(r.Title)
		if title == "" {
			title = r.UUID
		}

		cmd.Printf("  [%d] %s\n", searchOffset+i+1, title)
		cmd.Printf("      %s\n", describe(r.UUID, r.Type, r.Publisher, r.IsOpen))
		if r.Abstract != "" {
			cmd.Printf("      %s\n", plainText.Replace(r.Abstract))
		}
		cmd.Println()
	}

	return nil
}

// describe renders the one-line summary shared by search and show output.
func describe(uuid, recordType string, publisher *string, isOpen bool) string {
	parts := []string{uuid}
	if recordType != "" {
		parts = append(parts, recordType)
	}
	if publisher != nil && *publisher != "" {
		parts = append(parts, *publisher)
	}
	if isOpen {
		parts = append(parts, "open")
	}
	return strings.Join(parts, " | ")
}
