package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

// PostgresArchive keeps an audit trail of processed posts. The pipeline
// only ever writes to it; failures here never affect a run.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ArchiveRepository = (*PostgresArchive)(nil)

// NewPostgresArchive wires an open sql.DB handle.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenPostgresArchive connects using the given DSN and verifies the
// connection before handing the archive back.
func OpenPostgresArchive(ctx context.Context, dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresArchive(db), nil
}

// RecordProcessed upserts the audit row for a processed post.
func (r *PostgresArchive) RecordProcessed(ctx context.Context, post domain.ProcessedPost) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("processed_posts").
		Columns("post_id", "title", "score", "num_comments", "analyzed", "analysis").
		Values(post.PostID, post.Title, post.Score, post.NumComments, post.Analyzed, post.Analysis).
		Suffix(`ON CONFLICT (post_id) DO UPDATE
                SET title = EXCLUDED.title,
                    score = EXCLUDED.score,
                    num_comments = EXCLUDED.num_comments,
                    analyzed = EXCLUDED.analyzed,
                    analysis = EXCLUDED.analysis,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed post: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (r *PostgresArchive) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
