package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"SoccerTrends/internal/config"
	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

const deletedAuthor = "[deleted]"

// Client reads the public Reddit JSON API. All requests share one rate
// limiter; read-only GETs are retried with exponential backoff on transport
// errors, 429 and 5xx responses.
type Client struct {
	baseURL        string
	subreddit      string
	userAgent      string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

var _ ports.PostSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 20s timeout default.
func NewClient(cfg config.RedditConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		subreddit:      cfg.Subreddit,
		userAgent:      cfg.UserAgent,
		client:         client,
		limiter:        rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: 2 * time.Second,
	}
}

// FetchHotPosts returns the subreddit's hot posts with stickied entries
// filtered out, so fewer than limit posts may come back.
func (c *Client) FetchHotPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?%s", c.baseURL, url.PathEscape(c.subreddit), listingQuery(limit))

	var listing listingEnvelope
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, fmt.Errorf("fetch hot posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" || child.Data.Stickied {
			continue
		}
		posts = append(posts, child.Data.toPost())
	}

	return posts, nil
}

// FetchComments returns up to limit top-sorted comments for a post. The
// listing is flattened: only comment entries count, "load more" stubs are
// dropped.
func (c *Client) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s.json?sort=top&%s", c.baseURL, url.PathEscape(postID), listingQuery(limit))

	var listings []listingEnvelope
	if err := c.getJSON(ctx, endpoint, &listings); err != nil {
		return nil, fmt.Errorf("fetch comments for %s: %w", postID, err)
	}

	// The endpoint returns two listings: the post itself, then the tree.
	if len(listings) < 2 {
		return nil, nil
	}

	comments := make([]domain.Comment, 0, limit)
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		comments = append(comments, child.Data.toComment())
		if limit > 0 && len(comments) >= limit {
			break
		}
	}

	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request %s: %w", endpoint, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			lastErr = fmt.Errorf("reddit returned %s", resp.Status)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("reddit returned %s", resp.Status)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func listingQuery(limit int) string {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	values.Set("raw_json", "1")
	return values.Encode()
}

type listingEnvelope struct {
	Data struct {
		Children []struct {
			Kind string    `json:"kind"`
			Data thingData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// thingData covers the fields used from both t3 (post) and t1 (comment)
// entries.
type thingData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Stickied    bool    `json:"stickied"`
}

func (d thingData) toPost() domain.Post {
	return domain.Post{
		ID:          d.ID,
		Title:       d.Title,
		Selftext:    d.Selftext,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedUTC:  domain.Timestamp(time.Unix(int64(d.CreatedUTC), 0)),
		Author:      authorOrDeleted(d.Author),
		URL:         d.URL,
		Permalink:   "https://www.reddit.com" + d.Permalink,
	}
}

func (d thingData) toComment() domain.Comment {
	return domain.Comment{
		ID:         d.ID,
		Body:       d.Body,
		Score:      d.Score,
		CreatedUTC: domain.Timestamp(time.Unix(int64(d.CreatedUTC), 0)),
		Author:     authorOrDeleted(d.Author),
	}
}

func authorOrDeleted(author string) string {
	if author == "" {
		return deletedAuthor
	}
	return author
}
