package domain

import (
	"runtime"
	"time"
)

// Staging backends.
const (
	StagingBackendFile = "file"
	StagingBackendS3   = "s3"
)

// Settings holds all runtime configuration.
type Settings struct {
	// DataDir holds the published catalog, its backup and the lock file.
	DataDir string

	Harvest HarvestSettings
	Staging StagingSettings
	Ingest  IngestSettings
	Server  ServerSettings
}

// HarvestSettings configures the registry client.
type HarvestSettings struct {
	// Endpoint is the CSW service URL.
	Endpoint string

	// PageSize is the number of records requested per GetRecords call.
	PageSize int

	// OutputSchema is the requested record schema.
	OutputSchema string

	// MaxAttempts bounds fetch attempts per page.
	MaxAttempts int

	// RequestTimeout bounds a single attempt.
	RequestTimeout time.Duration

	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration

	// RequestsPerSecond throttles page requests.
	RequestsPerSecond float64
}

// StagingSettings selects where raw documents are staged.
type StagingSettings struct {
	// Backend is StagingBackendFile or StagingBackendS3.
	Backend string

	// Dir is the staging root for the file backend.
	Dir string

	// Bucket and Prefix locate staged objects for the S3 backend.
	Bucket string
	Prefix string

	// Region and Endpoint override AWS defaults (Endpoint for S3-compatible stores).
	Region   string
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials.
	// When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// IngestSettings configures extraction and publishing.
type IngestSettings struct {
	// Workers is the extraction parallelism.
	Workers int

	// LockStaleAfter is the age at which an abandoned publish lock is reclaimed.
	LockStaleAfter time.Duration
}

// ServerSettings configures the HTTP query API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// DefaultLimit and MaxLimit bound search page sizes.
	DefaultLimit int
	MaxLimit     int
}

// DefaultSettings returns settings with all defaults applied.
// Directories are left empty and resolved against the home directory by callers.
func DefaultSettings() Settings {
	return Settings{
		Harvest: HarvestSettings{
			Endpoint:          "https://www.geonorge.no/geonetwork/srv/nor/csw",
			PageSize:          20,
			OutputSchema:      "http://www.isotc211.org/2005/gmd",
			MaxAttempts:       3,
			RequestTimeout:    60 * time.Second,
			RetryDelay:        time.Second,
			RequestsPerSecond: 2,
		},
		Staging: StagingSettings{
			Backend: StagingBackendFile,
			Prefix:  "geocat",
		},
		Ingest: IngestSettings{
			Workers:        runtime.NumCPU(),
			LockStaleAfter: time.Hour,
		},
		Server: ServerSettings{
			Addr:         "127.0.0.1:3000",
			DefaultLimit: 10,
			MaxLimit:     100,
		},
	}
}
