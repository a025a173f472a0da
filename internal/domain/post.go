package domain

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is the format the data directory has always used for every
// timestamp field; readers of the persisted JSON depend on it.
const timeLayout = "2006-01-02 15:04:05"

// Timestamp serializes as "YYYY-MM-DD HH:MM:SS" in local time.
type Timestamp time.Time

// Now captures the current moment as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now())
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string {
	return time.Time(t).Local().Format(timeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*t = Timestamp(time.Time{})
		return nil
	}

	parsed, err := time.ParseInLocation(timeLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}

	*t = Timestamp(parsed)
	return nil
}

// Post is a hot submission fetched from the subreddit. JSON keys match the
// layout the presentation layer reads from the data directory.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Selftext    string    `json:"selftext"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	CreatedUTC  Timestamp `json:"created_utc"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
}

// Comment is a top-sorted reply belonging to exactly one Post.
type Comment struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	Score      int       `json:"score"`
	CreatedUTC Timestamp `json:"created_utc"`
	Author     string    `json:"author"`
}

// PostRecord is the persisted union of a post and its comments, keyed by
// post id. A new record fully replaces any previous one for the same id.
type PostRecord struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
	SavedAt  Timestamp `json:"saved_at"`
}

// AnalysisRecord holds the LLM analysis for one post. It exists only when
// analysis succeeded in some run; absence means "not yet analyzed".
type AnalysisRecord struct {
	PostID     string    `json:"post_id"`
	Analysis   string    `json:"analysis"`
	AnalyzedAt Timestamp `json:"analyzed_at"`
}

// ProcessedPost is the audit row written to the optional Postgres archive.
type ProcessedPost struct {
	PostID      string
	Title       string
	Score       int
	NumComments int
	Analyzed    bool
	Analysis    string
}
