package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the published catalog and settings",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Registry:  %s\n", cfg.Harvest.Endpoint)
	cmd.Printf("Staging:   %s\n", stagingLocation(cfg.Staging))
	cmd.Printf("Data dir:  %s\n", cfg.DataDir)

	stats, err := queryService.Stats(cmd.Context())
	switch {
	case errors.Is(err, domain.ErrNoCatalog):
		cmd.Println("Catalog:   none published yet (run 'geocat harvest')")
	case err != nil:
		return err
	default:
		cmd.Printf("Catalog:   %d records, published %s\n",
			stats.Records, stats.PublishedAt.Local().Format(time.DateTime))
	}

	if pipeline != nil {
		if st := pipeline.Status(); st.Running {
			cmd.Printf("Running:   %s (%d processed, %d errors)\n", st.Stage, st.DocumentsProcessed, st.ErrorCount)
		}
	}
	return nil
}

func stagingLocation(s domain.StagingSettings) string {
	if s.Backend == domain.StagingBackendS3 {
		return "s3://" + s.Bucket + "/" + s.Prefix
	}
	return s.Dir
}
