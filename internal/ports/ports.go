package ports

import (
	"context"
	"errors"

	"SoccerTrends/internal/domain"
)

// ErrNotFound reports that no record exists for the requested id. It is
// distinct from a read error on a corrupt stored document.
var ErrNotFound = errors.New("record not found")

// PostSource pulls hot posts and their comments from the subreddit.
type PostSource interface {
	// FetchHotPosts returns up to limit hot posts, most popular first,
	// with stickied posts excluded.
	FetchHotPosts(ctx context.Context, limit int) ([]domain.Post, error)
	// FetchComments returns up to limit comments for a post, top-sorted,
	// flattened to a single sequence.
	FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
}

// Analyzer produces a natural-language sentiment analysis for a post and
// its comments. The returned text is non-empty on success.
type Analyzer interface {
	Analyze(ctx context.Context, post domain.Post, comments []domain.Comment) (string, error)
}

// PostStore persists post and analysis records with whole-document
// overwrite semantics, keyed by post id.
type PostStore interface {
	SavePostRecord(ctx context.Context, post domain.Post, comments []domain.Comment) error
	SaveAnalysisRecord(ctx context.Context, postID, analysis string) error
	GetPostRecord(ctx context.Context, id string) (domain.PostRecord, error)
	GetAnalysisRecord(ctx context.Context, id string) (domain.AnalysisRecord, error)
	// ListPostRecords returns at most limit records; limit <= 0 means all.
	// With sortByDate set, records are ordered by saved_at descending with
	// ties broken by ascending id.
	ListPostRecords(ctx context.Context, limit int, sortByDate bool) ([]domain.PostRecord, error)
}

// ArchiveRepository records processed posts for audit/history. Writes are
// best-effort; the pipeline never reads them back.
type ArchiveRepository interface {
	RecordProcessed(ctx context.Context, post domain.ProcessedPost) error
}

// Notifier publishes run digests to an outbound channel (Telegram, etc.).
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}
