package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CatalogBuild = (*Builder)(nil)

// ErrBuildClosed indicates a build was used after Finish or Abort.
var ErrBuildClosed = errors.New("sqlite: build already finished or aborted")

// Builder writes one catalog generation into a temporary file next to the
// published one. All inserts share a single transaction.
type Builder struct {
	mu     sync.Mutex
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
	path   string
	count  int
	closed bool
}

// NewBuilder creates an empty shadow catalog in dir.
func NewBuilder(ctx context.Context, dir string) (*Builder, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, tempPrefix+uuid.New().String())
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening build database: %w", err)
	}
	// One connection keeps the transaction and the FTS fill on the same handle.
	db.SetMaxOpenConns(1)

	b := &Builder{db: db, path: path}
	if err := b.init(ctx); err != nil {
		_ = b.Abort()
		return nil, err
	}
	return b, nil
}

func (b *Builder) init(ctx context.Context) error {
	if err := migrate(ctx, b.db, schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning build transaction: %w", err)
	}
	b.tx = tx

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, json(?), ?, json(?), json(?), ?, ?, ?, ?, ?, json(?), json(?), json(?), json(?), ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	b.insert = stmt
	return nil
}

// Insert adds a record to the build. A failed insert leaves the build
// unusable; the caller must Abort.
func (b *Builder) Insert(ctx context.Context, record *domain.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBuildClosed
	}
	if record == nil || record.UUID == "" {
		return fmt.Errorf("%w: record without uuid", domain.ErrInvalidInput)
	}

	args, err := recordArgs(record)
	if err != nil {
		return fmt.Errorf("record %s: %w", record.UUID, err)
	}
	if _, err := b.insert.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("inserting record %s: %w", record.UUID, err)
	}
	b.count++
	return nil
}

// Count returns the number of inserted records.
func (b *Builder) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Path returns the shadow file location.
func (b *Builder) Path() string {
	return b.path
}

// Finish fills the search index, commits and closes the shadow file.
// After Finish the file is complete and ready to publish.
func (b *Builder) Finish(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBuildClosed
	}

	if err := b.insert.Close(); err != nil {
		return fmt.Errorf("closing insert statement: %w", err)
	}
	if _, err := b.tx.ExecContext(ctx, `
		INSERT INTO records_fts (uuid, parent, title, abstract, purpose, owner, publisher, keywords,
			type, protocol, layer, graphics, created, updated, published, is_open)
		SELECT uuid, parent, title, abstract, purpose, owner, publisher, keywords,
			type, protocol, layer, graphics, created, updated, published, is_open
		FROM records
	`); err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	if _, err := b.tx.ExecContext(ctx, `INSERT INTO records_fts (records_fts) VALUES ('optimize')`); err != nil {
		return fmt.Errorf("optimising search index: %w", err)
	}
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("committing build: %w", err)
	}
	b.tx = nil

	b.closed = true
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing build database: %w", err)
	}
	return nil
}

// Abort discards the shadow file. It is safe to call more than once and
// after Finish.
func (b *Builder) Abort() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tx != nil {
		_ = b.tx.Rollback()
		b.tx = nil
	}
	if !b.closed {
		b.closed = true
		_ = b.db.Close()
	}

	var errs []error
	for _, p := range []string{b.path, b.path + "-journal"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
