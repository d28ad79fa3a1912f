// Package filesystem harvests ISO 19139 documents from a local directory.
//
// Each *.xml file may hold a single gmd:MD_Metadata document or a saved CSW
// GetRecords response; every metadata record found becomes one raw document.
// Hidden files and directories are skipped.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/logger"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

// Ensure Connector implements the interface.
var _ driven.Harvester = (*Connector)(nil)

// Extension selects the files that are read.
const Extension = ".xml"

// ErrClosed indicates the connector has been closed.
var ErrClosed = errors.New("filesystem: connector closed")

// Connector reads metadata documents below a root directory.
type Connector struct {
	rootPath string
	mu       sync.Mutex
	closed   bool
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Endpoint returns the root directory as a file URI.
func (c *Connector) Endpoint() string {
	return "file://" + filepath.ToSlash(c.rootPath)
}

// Validate checks that the root is an existing directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkRoot(c.rootPath)
}

// Harvest reads every metadata record below the root in path order.
// Unreadable or unparseable files are skipped with a warning.
func (c *Connector) Harvest(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsChan := make(chan domain.RawDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		if c.isClosed() {
			errsChan <- ErrClosed
			return
		}

		if err := c.walk(ctx, docsChan); err != nil {
			if ctx.Err() != nil {
				err = fmt.Errorf("%w: %w", domain.ErrHarvestAborted, ctx.Err())
			}
			errsChan <- err
		}
	}()

	return docsChan, errsChan
}

func (c *Connector) walk(ctx context.Context, docs chan<- domain.RawDocument) error {
	if err := checkRoot(c.rootPath); err != nil {
		return err
	}

	files, err := c.listFiles()
	if err != nil {
		return err
	}
	logger.Info("Reading %d files from %s", len(files), c.rootPath)

	skipped := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, err := readRecords(path)
		if err != nil {
			logger.Warn("filesystem: skipping %s: %v", path, err)
			skipped++
			continue
		}
		if len(records) == 0 {
			logger.Warn("filesystem: no identified records in %s", path)
			skipped++
			continue
		}

		for _, doc := range records {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docs <- doc:
			}
		}
	}

	if skipped > 0 {
		logger.Warn("filesystem: skipped %d of %d files", skipped, len(files))
	}
	return nil
}

// listFiles returns the visible *.xml files below the root, sorted.
func (c *Connector) listFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(c.rootPath, path)
		if relErr == nil && rel != "." && isHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", c.rootPath, err)
	}
	sort.Strings(files)
	return files, nil
}

// readRecords parses one file into raw documents keyed by file identifier.
// Records without an identifier are dropped.
func readRecords(path string) ([]domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	doc, err := xmltree.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}

	var records []domain.RawDocument
	for _, rec := range doc.FindAll("gmd:MD_Metadata") {
		id := rec.FindText("gmd:fileIdentifier > gco:CharacterString")
		if id == "" {
			continue
		}
		records = append(records, domain.RawDocument{
			UUID:      id,
			Content:   rec.OuterXML(),
			FetchedAt: info.ModTime().UTC().Truncate(time.Second),
		})
	}
	return records, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: directory %s does not exist", domain.ErrInvalidInput, root)
	}
	if err != nil {
		return fmt.Errorf("accessing %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	return nil
}

// isHidden reports whether any element of a relative path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
