package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

// PipelineDeps wires all driven adapters into one run of the workflow.
// Archive and Notifier are optional.
type PipelineDeps struct {
	Source   ports.PostSource
	Analyzer ports.Analyzer
	Store    ports.PostStore
	Archive  ports.ArchiveRepository
	Notifier ports.Notifier
	Logger   *slog.Logger

	PostLimit    int
	CommentLimit int
}

// Pipeline executes one fetch-analyze-persist pass over the subreddit's
// hot posts.
type Pipeline struct {
	source       ports.PostSource
	analyzer     ports.Analyzer
	store        ports.PostStore
	archive      ports.ArchiveRepository
	notifier     ports.Notifier
	logger       *slog.Logger
	postLimit    int
	commentLimit int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		source:       deps.Source,
		analyzer:     deps.Analyzer,
		store:        deps.Store,
		archive:      deps.Archive,
		notifier:     deps.Notifier,
		logger:       logger,
		postLimit:    deps.PostLimit,
		commentLimit: deps.CommentLimit,
	}
}

// Run processes each hot post strictly in sequence. A failure on one post
// is logged and never aborts the run; only a failed top-level fetch is a
// run-level error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("run started", "post_limit", p.postLimit)

	posts, err := p.source.FetchHotPosts(ctx, p.postLimit)
	if err != nil {
		return fmt.Errorf("fetch hot posts: %w", err)
	}

	if len(posts) == 0 {
		p.logger.Warn("no hot posts fetched, ending run")
		return nil
	}

	p.logger.Info("fetched hot posts", "count", len(posts))

	var saved, analyzed int
	for _, post := range posts {
		comments, err := p.source.FetchComments(ctx, post.ID, p.commentLimit)
		if err != nil {
			p.logger.Error("fetch comments failed", "post_id", post.ID, "error", err)
			continue
		}

		// A post without comments is not analyzable; never overwrite an
		// existing record with an empty-comments variant.
		if len(comments) == 0 {
			p.logger.Warn("post has no comments, skipping", "post_id", post.ID)
			continue
		}

		if err := p.store.SavePostRecord(ctx, post, comments); err != nil {
			p.logger.Error("save post record failed", "post_id", post.ID, "error", err)
			continue
		}
		saved++

		analysis, err := p.analyzer.Analyze(ctx, post, comments)
		if err != nil {
			p.logger.Error("analysis failed", "post_id", post.ID, "error", err)
			p.recordProcessed(ctx, post, "", false)
			continue
		}

		if err := p.store.SaveAnalysisRecord(ctx, post.ID, analysis); err != nil {
			p.logger.Error("save analysis record failed", "post_id", post.ID, "error", err)
			p.recordProcessed(ctx, post, "", false)
			continue
		}
		analyzed++

		p.recordProcessed(ctx, post, analysis, true)
		p.logger.Info("post processed", "post_id", post.ID)
	}

	p.logger.Info("run finished", "saved", saved, "analyzed", analyzed)

	if p.notifier != nil && saved > 0 {
		digest := fmt.Sprintf("Trend refresh complete: %d posts saved, %d analyzed.", saved, analyzed)
		if err := p.notifier.PublishDigest(ctx, digest); err != nil {
			p.logger.Error("publish digest failed", "error", err)
		}
	}

	return nil
}

func (p *Pipeline) recordProcessed(ctx context.Context, post domain.Post, analysis string, analyzed bool) {
	if p.archive == nil {
		return
	}

	err := p.archive.RecordProcessed(ctx, domain.ProcessedPost{
		PostID:      post.ID,
		Title:       post.Title,
		Score:       post.Score,
		NumComments: post.NumComments,
		Analyzed:    analyzed,
		Analysis:    analysis,
	})
	if err != nil {
		p.logger.Error("archive write failed", "post_id", post.ID, "error", err)
	}
}
