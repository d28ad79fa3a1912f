package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [uuid]",
	Short: "Show a record and its relations",
	Long: `Displays one catalog record together with its parent, its children,
the datasets it operates on and the services operating on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the record as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	detail, err := queryService.GetDetail(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("record %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("show failed: %w", err)
	}

	if showJSON {
		data, err := json.MarshalIndent(detail.View(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printDetail(cmd, detail)
	return nil
}

func printDetail(cmd *cobra.Command, d *domain.DetailRecord) {
	r := &d.Record

	cmd.Println(r.Title)
	cmd.Printf("  %s\n", describe(r.UUID, r.Type, r.Publisher, r.IsOpen()))
	if r.Abstract != "" {
		cmd.Println()
		cmd.Println(r.Abstract)
	}
	cmd.Println()

	printField(cmd, "Owner", r.Owner)
	printField(cmd, "Access", r.Constraints.AccessConstraints)
	printField(cmd, "Use", r.Constraints.UseConstraints)
	printField(cmd, "Created", r.DateCreated)
	printField(cmd, "Updated", r.DateUpdated)
	printField(cmd, "Published", r.DatePublished)
	if r.URL != "" {
		cmd.Printf("  %-10s %s (%s)\n", "URL:", r.URL, r.Protocol)
	}
	if r.BBox != nil {
		cmd.Printf("  %-10s %.4f %.4f %.4f %.4f\n", "BBox:", r.BBox.West(), r.BBox.South(), r.BBox.East(), r.BBox.North())
	}

	if d.Parent != nil {
		printRelations(cmd, "Parent", []domain.RecordSummary{*d.Parent})
	}
	printRelations(cmd, "Children", d.Children)
	printRelations(cmd, "Operates on", d.OperatesOn)
	printRelations(cmd, "Operated on by", d.OperatedOnBy)
}

func printField(cmd *cobra.Command, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	cmd.Printf("  %-10s %s\n", label+":", *value)
}

func printRelations(cmd *cobra.Command, label string, summaries []domain.RecordSummary) {
	if len(summaries) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%s:\n", label)
	for i := range summaries {
		s := &summaries[i]
		cmd.Printf("  - %s (%s)\n", s.Title, describe(s.UUID, s.Type, s.Publisher, s.IsOpen))
	}
}
