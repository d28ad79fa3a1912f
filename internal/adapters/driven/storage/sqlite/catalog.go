package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/geocat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/geocat/internal/core/domain"
)

// File names within the data directory.
const (
	PublishedName = "catalog.db"
	BackupName    = PublishedName + ".bak"
	LockName      = "catalog.lock"
	tempPrefix    = PublishedName + ".tmp-"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// recordColumns lists the records table columns in scan order.
const recordColumns = `uuid, parent, title, abstract, purpose, owner, publisher, keywords, is_open,
	constraints, graphics, type, protocol, url, layer, spatial_type, bbox, crs, spec, distributions,
	created, updated, published`

// summaryColumns lists the columns of a record summary in scan order.
const summaryColumns = `uuid, title, publisher, type, protocol, is_open, graphics`

// migrate runs all pending migrations.
func migrate(ctx context.Context, db execQuerier, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_records.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// schema is the embedded migration set.
var schema fs.FS = migrations.FS

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// recordArgs returns the insert arguments for a record in recordColumns order.
func recordArgs(r *domain.Record) ([]any, error) {
	keywords, err := marshalJSON(r.Keywords, "[]")
	if err != nil {
		return nil, fmt.Errorf("marshalling keywords: %w", err)
	}
	constraints, err := json.Marshal(r.Constraints)
	if err != nil {
		return nil, fmt.Errorf("marshalling constraints: %w", err)
	}
	graphics, err := marshalJSON(r.Graphics, "[]")
	if err != nil {
		return nil, fmt.Errorf("marshalling graphics: %w", err)
	}
	crs, err := marshalJSON(r.CRS, "[]")
	if err != nil {
		return nil, fmt.Errorf("marshalling crs: %w", err)
	}
	distributions, err := marshalJSON(r.DistributionFormats, "[]")
	if err != nil {
		return nil, fmt.Errorf("marshalling distributions: %w", err)
	}
	bbox, err := marshalNullable(r.BBox)
	if err != nil {
		return nil, fmt.Errorf("marshalling bbox: %w", err)
	}
	spec, err := marshalNullable(r.Spec)
	if err != nil {
		return nil, fmt.Errorf("marshalling spec: %w", err)
	}

	return []any{
		r.UUID, nullPtr(r.ParentUUID), nullString(r.Title), nullString(r.Abstract),
		nullPtr(r.Purpose), nullPtr(r.Owner), nullPtr(r.Publisher), keywords, boolToInt(r.IsOpen()),
		string(constraints), graphics, nullString(r.Type), nullString(r.Protocol), nullString(r.URL),
		nullString(r.Layer), nullPtr(r.SpatialRepresentationType), bbox, crs, spec, distributions,
		nullPtr(r.DateCreated), nullPtr(r.DateUpdated), nullPtr(r.DatePublished),
	}, nil
}

// scanRecord scans a full record row.
func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		r                                           domain.Record
		parent, title, abstract, purpose, owner     sql.NullString
		publisher, typ, protocol, url, layer        sql.NullString
		spatialType, bbox, spec                     sql.NullString
		created, updated, published                 sql.NullString
		keywords, constraints, graphics, crs, dists string
		isOpen                                      int
	)

	if err := row.Scan(&r.UUID, &parent, &title, &abstract, &purpose, &owner, &publisher,
		&keywords, &isOpen, &constraints, &graphics, &typ, &protocol, &url, &layer, &spatialType,
		&bbox, &crs, &spec, &dists, &created, &updated, &published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	r.ParentUUID = ptrOf(parent)
	r.Title = title.String
	r.Abstract = abstract.String
	r.Purpose = ptrOf(purpose)
	r.Owner = ptrOf(owner)
	r.Publisher = ptrOf(publisher)
	r.Type = typ.String
	r.Protocol = protocol.String
	r.URL = url.String
	r.Layer = layer.String
	r.SpatialRepresentationType = ptrOf(spatialType)
	r.DateCreated = ptrOf(created)
	r.DateUpdated = ptrOf(updated)
	r.DatePublished = ptrOf(published)

	for _, f := range []struct {
		name string
		data string
		dest any
	}{
		{"keywords", keywords, &r.Keywords},
		{"constraints", constraints, &r.Constraints},
		{"graphics", graphics, &r.Graphics},
		{"crs", crs, &r.CRS},
		{"distributions", dists, &r.DistributionFormats},
		{"bbox", bbox.String, &r.BBox},
		{"spec", spec.String, &r.Spec},
	} {
		if f.data == "" || f.data == jsonNull {
			continue
		}
		if err := json.Unmarshal([]byte(f.data), f.dest); err != nil {
			return nil, fmt.Errorf("unmarshalling %s: %w", f.name, err)
		}
	}

	return &r, nil
}

// scanSummary scans a summaryColumns row.
func scanSummary(row rowScanner) (domain.RecordSummary, error) {
	var (
		s                               domain.RecordSummary
		title, publisher, typ, protocol sql.NullString
		graphics                        sql.NullString
		isOpen                          int
	)
	if err := row.Scan(&s.UUID, &title, &publisher, &typ, &protocol, &isOpen, &graphics); err != nil {
		return s, fmt.Errorf("scanning summary: %w", err)
	}
	s.Title = title.String
	s.Publisher = ptrOf(publisher)
	s.Type = typ.String
	s.Protocol = protocol.String
	s.IsOpen = isOpen == 1
	s.Thumbnail = thumbnail(graphics.String)
	return s, nil
}

// thumbnail picks the thumbnail URL from a graphics JSON column.
func thumbnail(graphicsJSON string) *string {
	if graphicsJSON == "" {
		return nil
	}
	var graphics []domain.Graphic
	if err := json.Unmarshal([]byte(graphicsJSON), &graphics); err != nil {
		return nil
	}
	if url := domain.ThumbnailOf(graphics); url != "" {
		return &url
	}
	return nil
}

func marshalJSON[T any](v []T, empty string) (string, error) {
	if len(v) == 0 {
		return empty, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func ptrOf(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
