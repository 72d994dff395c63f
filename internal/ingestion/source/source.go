// Package source seeds the index from a SQL table and writes documents back
// to it. Rows hold id, text, status and ratings, the latter as
// space-separated integers.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/database"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Stats summarises one Load.
type Stats struct {
	Loaded   int
	Rejected int
}

type Source struct {
	db     *database.Client
	table  string
	logger *slog.Logger
}

func New(db *database.Client, table string) (*Source, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid source table name %q", table)
	}
	return &Source{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "source", "table", table),
	}, nil
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Source) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id      INTEGER PRIMARY KEY,
	text    TEXT    NOT NULL,
	status  TEXT    NOT NULL DEFAULT 'ACTUAL',
	ratings TEXT    NOT NULL DEFAULT ''
)`, s.table))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// Load adds every row to index in ascending id order. Rows that cannot be
// parsed or that the index rejects are logged and counted; only read and
// infrastructure failures abort the load.
func (s *Source) Load(ctx context.Context, index consumer.DocumentAdder) (Stats, error) {
	var stats Stats
	rows, err := s.db.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, text, status, ratings FROM %s ORDER BY id`, s.table))
	if err != nil {
		return stats, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ev      ingestion.DocumentEvent
			ratings string
		)
		if err := rows.Scan(&ev.ID, &ev.Text, &ev.Status, &ratings); err != nil {
			return stats, fmt.Errorf("scanning %s row: %w", s.table, err)
		}
		if ev.Ratings, err = ParseRatings(ratings); err != nil {
			s.logger.Warn("row rejected", "doc_id", ev.ID, "error", err)
			stats.Rejected++
			continue
		}
		if err := validator.ValidateDocumentEvent(&ev); err != nil {
			s.logger.Warn("row rejected", "doc_id", ev.ID, "error", err)
			stats.Rejected++
			continue
		}
		status, _ := ev.DocumentStatus()
		if err := index.AddDocument(ctx, ev.ID, ev.Text, status, ev.Ratings); err != nil {
			if !apperrors.IsRejection(err) {
				return stats, fmt.Errorf("indexing row %d: %w", ev.ID, err)
			}
			s.logger.Warn("row rejected", "doc_id", ev.ID, "error", err)
			stats.Rejected++
			continue
		}
		stats.Loaded++
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	s.logger.Info("documents loaded", "loaded", stats.Loaded, "rejected", stats.Rejected)
	return stats, nil
}

// Save inserts events in one transaction. Events are validated first and
// nothing is written if any is invalid.
func (s *Source) Save(ctx context.Context, events ...ingestion.DocumentEvent) error {
	for i := range events {
		if err := validator.ValidateDocumentEvent(&events[i]); err != nil {
			return fmt.Errorf("document %d: %w", events[i].ID, err)
		}
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, text, status, ratings) VALUES (%s, %s, %s, %s)`,
		s.table, s.db.Placeholder(1), s.db.Placeholder(2), s.db.Placeholder(3), s.db.Placeholder(4))
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range events {
			status, _ := ev.DocumentStatus()
			if _, err := tx.ExecContext(ctx, query, ev.ID, ev.Text, status.String(), FormatRatings(ev.Ratings)); err != nil {
				return fmt.Errorf("inserting document %d: %w", ev.ID, err)
			}
		}
		return nil
	})
}

// ParseRatings parses a space-separated list of integers.
func ParseRatings(s string) ([]int, error) {
	fields := strings.Fields(s)
	ratings := make([]int, 0, len(fields))
	for _, f := range fields {
		r, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parsing rating %q: %w", f, err)
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

func FormatRatings(ratings []int) string {
	parts := make([]string, len(ratings))
	for i, r := range ratings {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, " ")
}
