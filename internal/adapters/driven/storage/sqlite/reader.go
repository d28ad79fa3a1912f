package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CatalogReader = (*Reader)(nil)

// ReaderConns is the number of connections each reader holds on its
// generation, and so the number of queries it runs at once.
const ReaderConns = 4

// Highlight markers wrapped around matched terms.
const (
	HighlightOpen  = "<b>"
	HighlightClose = "</b>"
)

// searchQuery ranks with per-column bm25 weights in records_fts column order:
// uuid, parent, title, abstract, purpose, owner, publisher, keywords, type, protocol, layer.
// bm25 scores are negative, so the 1.05 factor moves open records earlier.
const searchQuery = `
	SELECT uuid,
		snippet(records_fts, 2, '` + HighlightOpen + `', '` + HighlightClose + `', '...', 64) AS title_hl,
		title,
		snippet(records_fts, 3, '` + HighlightOpen + `', '` + HighlightClose + `', '...', 12) AS abstract_hl,
		abstract,
		publisher, type, protocol, is_open, graphics,
		bm25(records_fts, 10, 1, 10, 5, 1, 2, 2, 3, 1, 10, 1) *
			CASE CAST(is_open AS INTEGER) WHEN 1 THEN 1.05 ELSE 1.0 END AS score
	FROM records_fts
	WHERE records_fts MATCH ?
	ORDER BY score, uuid
	LIMIT ? OFFSET ?
`

// Reader is a read-only handle on one catalog file.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens the catalog at path read-only.
// Returns domain.ErrNoCatalog if the file does not exist.
func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoCatalog
		}
		return nil, fmt.Errorf("checking catalog: %w", err)
	}

	// Published files are never written in place, only replaced by rename.
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&immutable=1"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// Every connection is opened here, while path still names this
	// generation, and kept for the reader's lifetime. A connection opened
	// later could land on a newer file.
	db.SetMaxOpenConns(ReaderConns)
	db.SetMaxIdleConns(ReaderConns)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := pinConns(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to catalog: %w", err)
	}
	return &Reader{db: db, path: path}, nil
}

// pinConns opens the whole pool at once and returns it to the idle list.
func pinConns(db *sql.DB) error {
	ctx := context.Background()
	conns := make([]*sql.Conn, 0, ReaderConns)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for range ReaderConns {
		c, err := db.Conn(ctx)
		if err != nil {
			return err
		}
		conns = append(conns, c)
		if err := c.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the file this reader was opened on.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Search returns records matching all terms exactly or as prefixes.
func (r *Reader) Search(ctx context.Context, terms []string, limit, offset int) ([]domain.SearchSummary, error) {
	if len(terms) == 0 {
		return []domain.SearchSummary{}, nil
	}

	rows, err := r.db.QueryContext(ctx, searchQuery, MatchExpression(terms), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	results := []domain.SearchSummary{}
	for rows.Next() {
		var (
			s                                    domain.SearchSummary
			titleHL, title, abstractHL, abstract sql.NullString
			publisher, typ, protocol, graphics   sql.NullString
			isOpen                               sql.NullInt64
		)
		if err := rows.Scan(&s.UUID, &titleHL, &title, &abstractHL, &abstract,
			&publisher, &typ, &protocol, &isOpen, &graphics, &s.Score); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		s.Title = firstNonEmpty(titleHL.String, title.String)
		s.Abstract = firstNonEmpty(abstractHL.String, abstract.String)
		s.Publisher = ptrOf(publisher)
		s.Type = typ.String
		s.Protocol = protocol.String
		s.IsOpen = isOpen.Int64 == 1
		s.Thumbnail = thumbnail(graphics.String)
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// MatchExpression builds an FTS5 query requiring every term, matched either
// exactly or as a prefix. Terms are quoted so FTS operators are literal.
func MatchExpression(terms []string) string {
	exact := make([]string, len(terms))
	prefix := make([]string, len(terms))
	for i, t := range terms {
		q := `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
		exact[i] = q
		prefix[i] = q + "*"
	}
	return "(" + strings.Join(exact, " ") + ") OR (" + strings.Join(prefix, " ") + ")"
}

// Get returns the full record.
func (r *Reader) Get(ctx context.Context, uuid string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE uuid = ?", uuid)
	return scanRecord(row)
}

// Summaries returns summaries of the given UUIDs that exist.
func (r *Reader) Summaries(ctx context.Context, uuids []string) ([]domain.RecordSummary, error) {
	if len(uuids) == 0 {
		return []domain.RecordSummary{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(uuids)), ", ")
	args := make([]any, len(uuids))
	for i, id := range uuids {
		args[i] = id
	}
	return r.summaries(ctx, "SELECT "+summaryColumns+" FROM records WHERE uuid IN ("+placeholders+") ORDER BY uuid", args...)
}

// Children returns summaries of records whose parent is uuid.
func (r *Reader) Children(ctx context.Context, uuid string) ([]domain.RecordSummary, error) {
	return r.summaries(ctx, "SELECT "+summaryColumns+" FROM records WHERE parent = ? ORDER BY uuid", uuid)
}

// OperatedOnBy returns summaries of records whose service spec names uuid.
func (r *Reader) OperatedOnBy(ctx context.Context, uuid string) ([]domain.RecordSummary, error) {
	return r.summaries(ctx, `
		SELECT DISTINCT r.uuid, r.title, r.publisher, r.type, r.protocol, r.is_open, r.graphics
		FROM records AS r, json_each(r.spec, '$.operatesOn') AS j
		WHERE r.spec IS NOT NULL AND j.value = ?
		ORDER BY r.uuid
	`, uuid)
}

// Stats returns the record count and modification time of this catalog.
func (r *Reader) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats := &domain.CatalogStats{Path: r.path}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&stats.Records); err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	if info, err := os.Stat(r.path); err == nil {
		stats.PublishedAt = info.ModTime()
	}
	return stats, nil
}

func (r *Reader) summaries(ctx context.Context, query string, args ...any) ([]domain.RecordSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	results := []domain.RecordSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return results, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
