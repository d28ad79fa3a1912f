package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/connectors/filesystem"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
)

// progressInterval is how often a running pipeline is polled for status.
var progressInterval = 500 * time.Millisecond

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest the registry and publish a new catalog",
	Long: `Walks the CSW registry page by page, stages every record, extracts
them and publishes a freshly built catalog.

A failed or interrupted harvest discards what it staged and leaves the
published catalog untouched.

With --from-dir the records are read from *.xml files below a local
directory instead, such as an export of the registry.`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog from staged records",
	Long: `Extracts every committed staged record and publishes a new catalog
without contacting the registry.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

var harvestFromDir string

func init() {
	harvestCmd.Flags().StringVar(&harvestFromDir, "from-dir", "", "import ISO 19139 files from a directory instead of the registry")

	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(rebuildCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	p := pipeline
	source := "registry"
	if harvestFromDir != "" {
		if pipelineFor == nil {
			return errors.New("pipeline not configured")
		}
		connector := filesystem.New(harvestFromDir)
		defer connector.Close()
		p = pipelineFor(connector)
		source = harvestFromDir
	}
	if p == nil {
		return errors.New("pipeline not configured")
	}

	cmd.Printf("Harvesting %s...\n", source)
	report, err := runWithProgress(cmd, p, p.Harvest)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	cmd.Println("Rebuilding catalog from staged records...")
	report, err := runWithProgress(cmd, pipeline, pipeline.Rebuild)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// runWithProgress runs a pipeline operation while reporting stage changes.
func runWithProgress(
	cmd *cobra.Command,
	p driving.Pipeline,
	run func(context.Context) (*driving.RunReport, error),
) (*driving.RunReport, error) {
	ctx := cmd.Context()

	type result struct {
		report *driving.RunReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := run(ctx)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastStage := ""
	for {
		select {
		case r := <-done:
			return r.report, r.err
		case <-ticker.C:
			status := p.Status()
			if status.Running && status.Stage != lastStage {
				cmd.Printf("  %s...\n", status.Stage)
				lastStage = status.Stage
			}
		}
	}
}

func printReport(cmd *cobra.Command, r *driving.RunReport) {
	if r.RunID != "" {
		cmd.Printf("Run %s\n", r.RunID)
		cmd.Printf("  Harvested: %d\n", r.Harvested)
	}
	cmd.Printf("  Extracted: %d\n", r.Extracted)
	if r.Dropped > 0 {
		cmd.Printf("  Dropped:   %d\n", r.Dropped)
	}
	cmd.Printf("  Published: %d records to %s\n", r.Published, r.CatalogPath)
	cmd.Printf("  Took %s\n", r.Duration.Round(time.Millisecond))
}
