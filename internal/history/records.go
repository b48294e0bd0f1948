package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipfetch/internal/services"
)

// Kind identifies what a download produced.
type Kind string

const (
	KindVideo      Kind = "video"
	KindAudio      Kind = "audio"
	KindTranscript Kind = "transcript"
)

// Status records the outcome of a download.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ParseStatus accepts succeeded or failed (case-insensitive). Blank means any.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case StatusSucceeded:
		return StatusSucceeded, nil
	case StatusFailed:
		return StatusFailed, nil
	}
	return "", services.Wrap(services.ErrValidation, "history", "parse status",
		fmt.Sprintf("unsupported status %q (expected succeeded or failed)", value), nil)
}

// Record is one row of download history.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       Kind      `json:"kind" yaml:"kind"`
	URL        string    `json:"url" yaml:"url"`
	Resolution string    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Path       string    `json:"path,omitempty" yaml:"path,omitempty"`
	SizeBytes  int64     `json:"size_bytes" yaml:"size_bytes"`
	Status     Status    `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	ArchiveKey string    `json:"archive_key,omitempty" yaml:"archive_key,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// ListOptions filters List results.
type ListOptions struct {
	// Limit caps the number of rows; zero or less returns everything.
	Limit  int
	Status Status
}

const recordColumns = "id, kind, url, resolution, path, size_bytes, status, error_message, archive_key, created_at"

// minPrefixLength is the shortest ID prefix Get accepts.
const minPrefixLength = 4

// Add inserts rec, assigning an ID and creation time when they are unset.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("history: record required")
	}
	if strings.TrimSpace(rec.URL) == "" {
		return services.Wrap(services.ErrValidation, "history", "add", "record URL required", nil)
	}
	if rec.Kind == "" {
		rec.Kind = KindVideo
	}
	if rec.Status == "" {
		rec.Status = StatusSucceeded
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.execWithRetry(ctx,
		`INSERT INTO downloads (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.Kind),
		rec.URL,
		nullString(rec.Resolution),
		nullString(rec.Path),
		rec.SizeBytes,
		string(rec.Status),
		nullString(rec.Error),
		nullString(rec.ArchiveKey),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// SetArchiveKey records where a download was archived.
func (s *Store) SetArchiveKey(ctx context.Context, id, key string) error {
	res, err := s.execWithRetry(ctx, "UPDATE downloads SET archive_key = ? WHERE id = ?", nullString(key), id)
	if err != nil {
		return fmt.Errorf("update archive key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "history", "set archive key", fmt.Sprintf("no record %q", id), nil)
	}
	return nil
}

// Get returns the record with the given ID. A unique prefix of at least four
// characters is accepted too.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "history", "get", "record ID required", nil)
	}

	rec, err := scanRecord(s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM downloads WHERE id = ?", id))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get history record: %w", err)
	}
	if len(id) < minPrefixLength {
		return nil, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("no record %q", id), nil)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM downloads WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query history prefix: %w", err)
	}
	records, err := collect(rows)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("no record %q", id), nil)
	case 1:
		return records[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "history", "get", fmt.Sprintf("ID prefix %q is ambiguous", id), nil)
	}
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + recordColumns + " FROM downloads"
	var args []any
	if opts.Status != "" {
		query += " WHERE status = ?"
		args = append(args, string(opts.Status))
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return collect(rows)
}

// Prune deletes records created before olderThan and reports how many went.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM downloads WHERE created_at < ?", formatTime(olderThan.UTC()))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every record and reports how many went.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM downloads")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func collect(rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec        Record
		kind       string
		status     string
		resolution sql.NullString
		path       sql.NullString
		errMsg     sql.NullString
		archiveKey sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&rec.ID, &kind, &rec.URL, &resolution, &path, &rec.SizeBytes, &status, &errMsg, &archiveKey, &createdRaw); err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	rec.Status = Status(status)
	rec.Resolution = resolution.String
	rec.Path = path.String
	rec.Error = errMsg.String
	rec.ArchiveKey = archiveKey.String
	created, err := time.Parse(timeLayout, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	rec.CreatedAt = created
	return &rec, nil
}

// timeLayout has a fixed width so text comparison orders rows chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
