// Package cli provides the geocat command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/geocat/internal/adapters/driven/config/file"
	stagingfile "github.com/custodia-labs/geocat/internal/adapters/driven/staging/file"
	stagings3 "github.com/custodia-labs/geocat/internal/adapters/driven/staging/s3"
	"github.com/custodia-labs/geocat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geocat/internal/connectors/csw"
	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
	"github.com/custodia-labs/geocat/internal/core/services"
	"github.com/custodia-labs/geocat/internal/logger"
	"github.com/custodia-labs/geocat/internal/normalisers/iso19139"
)

// needs is the command annotation selecting which services setup wires.
const needs = "needs"

// Values of the needs annotation. Commands without one get every service.
const (
	needsNothing  = "nothing"
	needsSettings = "settings"
)

var version = "dev"

var (
	verbose     bool
	configDir   string
	dataDirFlag string
)

// Services used by the commands. Tests replace them with mocks.
var (
	settingsService driving.SettingsService
	pipeline        driving.Pipeline
	queryService    driving.QueryService
)

// pipelineFor builds a pipeline around another harvester sharing the wired
// staging store and publisher. Set by initServices.
var pipelineFor func(driven.Harvester) driving.Pipeline

// closers release resources opened by initServices.
var closers []func() error

// wireServices builds the full service graph. Tests replace it.
var wireServices = initServices

var rootCmd = &cobra.Command{
	Use:   "geocat",
	Short: "Local search over a CSW metadata registry",
	Long: `geocat harvests ISO 19139 metadata records from a CSW 2.0.2 registry,
normalises them into a local SQLite full-text catalog and serves searches
over it from the command line, HTTP and MCP.

A new catalog is built from scratch on each run and swapped in atomically,
so running servers never see a partial index.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.geocat)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "catalog directory (overrides data_dir)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Annotations[needs] {
	case needsNothing:
		return nil
	case needsSettings:
		return initSettings()
	default:
		return wireServices(cmd.Context())
	}
}

// initSettings opens the config file. Settings stay unvalidated so that
// config commands can repair a broken file.
func initSettings() error {
	// Already wired (tests inject mocks).
	if settingsService != nil {
		return nil
	}

	dir := configDir
	if dir == "" {
		var err error
		if dir, err = configfile.DefaultDir(); err != nil {
			return fmt.Errorf("resolving config directory: %w", err)
		}
	}

	store, err := configfile.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(store, dir)
	return nil
}

// initServices wires the adapters selected by the effective settings.
func initServices(ctx context.Context) error {
	if err := initSettings(); err != nil {
		return err
	}
	if queryService != nil && pipeline != nil {
		return nil
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger.Debug("Config %s, data dir %s", settingsService.ConfigPath(), cfg.DataDir)

	catalog, err := sqlite.NewLiveCatalog(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	closers = append(closers, catalog.Close)

	publisher := sqlite.NewPublisher(cfg.DataDir, cfg.Ingest.LockStaleAfter)
	if err := publisher.Cleanup(); err != nil {
		logger.Warn("Removing stale builds: %v", err)
	}

	staging, err := newStagingStore(ctx, cfg.Staging)
	if err != nil {
		return err
	}

	var harvester driven.Harvester
	if cswCfg, err := csw.ConfigFromSettings(cfg.Harvest); err != nil {
		// Harvest reports the error; rebuild and queries still work.
		logger.Warn("Harvester disabled: %v", err)
	} else {
		connector := csw.New(cswCfg)
		closers = append(closers, connector.Close)
		harvester = connector
	}

	pipelineFor = func(h driven.Harvester) driving.Pipeline {
		return services.NewPipelineService(h, staging, iso19139.New(), publisher, cfg.Ingest.Workers)
	}
	pipeline = pipelineFor(harvester)
	queryService = services.NewQueryService(catalog, cfg.Server.DefaultLimit, cfg.Server.MaxLimit)
	return nil
}

func newStagingStore(ctx context.Context, cfg domain.StagingSettings) (driven.StagingStore, error) {
	switch cfg.Backend {
	case domain.StagingBackendS3:
		store, err := stagings3.NewFromSettings(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("opening s3 staging: %w", err)
		}
		logger.Debug("Staging in %s", store.Location())
		return store, nil
	case domain.StagingBackendFile, "":
		store, err := stagingfile.New(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening staging directory: %w", err)
		}
		logger.Debug("Staging in %s", store.Root())
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown staging backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

// loadSettings resolves the effective settings, applying --data-dir.
func loadSettings() (*domain.Settings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	cfg, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg, nil
}

func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Debug("Closing service: %v", err)
		}
	}
	closers = nil
}
