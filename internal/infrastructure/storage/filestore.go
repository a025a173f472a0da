package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

// Post ids come from an external source; only this shape is allowed to
// become a file name.
var idExpr = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileStore keeps one JSON document per post id under
// <dataDirectory>/posts and <dataDirectory>/analyses. Writes replace the
// whole document; there are no partial updates.
type FileStore struct {
	postsDir    string
	analysesDir string
	logger      *slog.Logger
}

var _ ports.PostStore = (*FileStore)(nil)

// NewFileStore creates the backing directories if needed.
func NewFileStore(dataDir string, logger *slog.Logger) (*FileStore, error) {
	store := &FileStore{
		postsDir:    filepath.Join(dataDir, "posts"),
		analysesDir: filepath.Join(dataDir, "analyses"),
		logger:      logger,
	}

	for _, dir := range []string{store.postsDir, store.analysesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	return store, nil
}

// SavePostRecord overwrites the record for post.ID, stamping saved_at at
// write time.
func (s *FileStore) SavePostRecord(ctx context.Context, post domain.Post, comments []domain.Comment) error {
	record := domain.PostRecord{
		Post:     post,
		Comments: comments,
		SavedAt:  domain.Now(),
	}
	return s.writeDocument(s.postsDir, post.ID, record)
}

// SaveAnalysisRecord overwrites the analysis for postID, stamping
// analyzed_at at write time.
func (s *FileStore) SaveAnalysisRecord(ctx context.Context, postID, analysis string) error {
	record := domain.AnalysisRecord{
		PostID:     postID,
		Analysis:   analysis,
		AnalyzedAt: domain.Now(),
	}
	return s.writeDocument(s.analysesDir, postID, record)
}

// GetPostRecord returns ports.ErrNotFound when no record exists; a stored
// document that fails to decode is reported as an error, never as absent.
func (s *FileStore) GetPostRecord(ctx context.Context, id string) (domain.PostRecord, error) {
	var record domain.PostRecord
	if err := s.readDocument(s.postsDir, id, &record); err != nil {
		return domain.PostRecord{}, err
	}
	return record, nil
}

// GetAnalysisRecord is symmetric to GetPostRecord.
func (s *FileStore) GetAnalysisRecord(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	var record domain.AnalysisRecord
	if err := s.readDocument(s.analysesDir, id, &record); err != nil {
		return domain.AnalysisRecord{}, err
	}
	return record, nil
}

// ListPostRecords loads every stored post record. Files that fail to decode
// are skipped with a warning so one corrupt document cannot hide the rest.
func (s *FileStore) ListPostRecords(ctx context.Context, limit int, sortByDate bool) ([]domain.PostRecord, error) {
	entries, err := os.ReadDir(s.postsDir)
	if err != nil {
		return nil, fmt.Errorf("read posts directory: %w", err)
	}

	records := make([]domain.PostRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		var record domain.PostRecord
		if err := s.readDocument(s.postsDir, id, &record); err != nil {
			s.warn("skipping unreadable post record", "id", id, "error", err)
			continue
		}
		records = append(records, record)
	}

	if sortByDate {
		sort.Slice(records, func(i, j int) bool {
			ti, tj := records[i].SavedAt.Time(), records[j].SavedAt.Time()
			if ti.Equal(tj) {
				return records[i].Post.ID < records[j].Post.ID
			}
			return ti.After(tj)
		})
	} else {
		sort.Slice(records, func(i, j int) bool {
			return records[i].Post.ID < records[j].Post.ID
		})
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (s *FileStore) writeDocument(dir, id string, document any) error {
	if err := validateID(id); err != nil {
		return err
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", id, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record %s: %w", id, err)
	}

	final := filepath.Join(dir, id+".json")
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace record %s: %w", id, err)
	}

	return nil
}

func (s *FileStore) readDocument(dir, id string, document any) error {
	if err := validateID(id); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if os.IsNotExist(err) {
		return ports.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read record %s: %w", id, err)
	}

	if err := json.Unmarshal(data, document); err != nil {
		return fmt.Errorf("decode record %s: %w", id, err)
	}

	return nil
}

func validateID(id string) error {
	if !idExpr.MatchString(id) {
		return fmt.Errorf("invalid record id %q", id)
	}
	return nil
}

func (s *FileStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
