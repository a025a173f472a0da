package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SoccerTrends/internal/config"
	"SoccerTrends/internal/domain"
	"SoccerTrends/internal/ports"
)

// HTMLScraper extracts hot posts from old.reddit.com listing markup. It is
// the fallback strategy for deployments where the JSON listing endpoint is
// blocked; comment fetching still goes through the JSON API because the
// listing page carries no comment bodies.
type HTMLScraper struct {
	listingURL string
	subreddit  string
	userAgent  string
	client     *http.Client
	api        *Client
}

var _ ports.PostSource = (*HTMLScraper)(nil)

// NewHTMLScraper wires the listing scraper on top of the JSON client.
func NewHTMLScraper(cfg config.RedditConfig, api *Client, client *http.Client) *HTMLScraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScraper{
		listingURL: cfg.ListingURL,
		subreddit:  cfg.Subreddit,
		userAgent:  cfg.UserAgent,
		client:     client,
		api:        api,
	}
}

// FetchHotPosts scrapes the subreddit's front listing page.
func (s *HTMLScraper) FetchHotPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	pageURL := fmt.Sprintf("%s/r/%s/", s.listingURL, s.subreddit)

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch hot listing: %w", err)
	}

	var posts []domain.Post
	doc.Find("div.thing.link").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if sel.HasClass("stickied") || sel.HasClass("promoted") {
			return true
		}

		post, err := parseListingEntry(sel)
		if err != nil {
			return true
		}

		posts = append(posts, post)
		return limit <= 0 || len(posts) < limit
	})

	return posts, nil
}

// FetchComments delegates to the JSON API client.
func (s *HTMLScraper) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	return s.api.FetchComments(ctx, postID, limit)
}

func (s *HTMLScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func parseListingEntry(sel *goquery.Selection) (domain.Post, error) {
	id := strings.TrimPrefix(sel.AttrOr("data-fullname", ""), "t3_")
	if id == "" {
		return domain.Post{}, fmt.Errorf("listing entry without data-fullname")
	}

	titleLink := sel.Find("a.title").First()
	title := strings.TrimSpace(titleLink.Text())

	href := titleLink.AttrOr("href", "")
	if strings.HasPrefix(href, "/") {
		href = "https://www.reddit.com" + href
	}

	permalink := sel.AttrOr("data-permalink", "")
	if permalink != "" {
		permalink = "https://www.reddit.com" + permalink
	}

	score, _ := strconv.Atoi(sel.Find("div.score.unvoted").First().AttrOr("title", ""))
	numComments, _ := strconv.Atoi(sel.AttrOr("data-comments-count", ""))

	author := strings.TrimSpace(sel.Find("a.author").First().Text())

	createdAt := time.Now()
	if raw := sel.Find("time").First().AttrOr("datetime", ""); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			createdAt = parsed
		}
	}

	return domain.Post{
		ID:          id,
		Title:       title,
		Score:       score,
		NumComments: numComments,
		CreatedUTC:  domain.Timestamp(createdAt),
		Author:      authorOrDeleted(author),
		URL:         href,
		Permalink:   permalink,
	}, nil
}
