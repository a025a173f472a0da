package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"SoccerTrends/internal/config"
)

const hotListing = `{
  "data": {
    "children": [
      {"kind": "t3", "data": {"id": "sticky1", "title": "Daily Discussion", "stickied": true, "score": 50}},
      {"kind": "t3", "data": {
        "id": "p1", "title": "Transfer confirmed", "selftext": "Here we go",
        "score": 1200, "num_comments": 340, "created_utc": 1736500000,
        "author": "tifo_watch", "url": "https://example.com/story",
        "permalink": "/r/soccer/comments/p1/transfer_confirmed/"
      }},
      {"kind": "t3", "data": {"id": "p2", "title": "Match thread", "score": 800, "author": ""}}
    ]
  }
}`

const commentListing = `[
  {"data": {"children": [{"kind": "t3", "data": {"id": "p1"}}]}},
  {"data": {"children": [
    {"kind": "t1", "data": {"id": "c1", "body": "Great signing", "score": 90, "created_utc": 1736500100, "author": "fan_a"}},
    {"kind": "t1", "data": {"id": "c2", "body": "Overpriced", "score": 44, "author": ""}},
    {"kind": "more", "data": {"id": "m1"}},
    {"kind": "t1", "data": {"id": "c3", "body": "Wait and see", "score": 12, "author": "fan_c"}}
  ]}}
]`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.RedditConfig{
		Subreddit:         "soccer",
		BaseURL:           server.URL,
		UserAgent:         "soccer-trends-app test",
		RequestsPerMinute: 6000,
		Burst:             100,
		MaxRetries:        2,
	}

	client := NewClient(cfg, server.Client())
	client.retryBaseDelay = time.Millisecond
	return client, server
}

func TestFetchHotPostsSkipsStickied(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/soccer/hot.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "soccer-trends-app test" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(hotListing))
	}))

	posts, err := client.FetchHotPosts(context.Background(), 5)
	if err != nil {
		t.Fatalf("FetchHotPosts: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected 2 posts after stickied filter, got %d", len(posts))
	}

	first := posts[0]
	if first.ID != "p1" || first.Title != "Transfer confirmed" {
		t.Fatalf("unexpected first post: %+v", first)
	}
	if first.Permalink != "https://www.reddit.com/r/soccer/comments/p1/transfer_confirmed/" {
		t.Fatalf("unexpected permalink: %s", first.Permalink)
	}
	if posts[1].Author != "[deleted]" {
		t.Fatalf("empty author must map to [deleted], got %q", posts[1].Author)
	}
}

func TestFetchCommentsFlattensListing(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comments/p1.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("sort") != "top" {
			t.Errorf("expected top sort, got %s", r.URL.Query().Get("sort"))
		}
		w.Write([]byte(commentListing))
	}))

	comments, err := client.FetchComments(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}

	if len(comments) != 2 {
		t.Fatalf("expected limit of 2 comments, got %d", len(comments))
	}
	if comments[0].ID != "c1" || comments[0].Body != "Great signing" {
		t.Fatalf("unexpected first comment: %+v", comments[0])
	}
	if comments[1].Author != "[deleted]" {
		t.Fatalf("empty comment author must map to [deleted], got %q", comments[1].Author)
	}
}

func TestGetJSONRetriesOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(hotListing))
	}))

	posts, err := client.FetchHotPosts(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", calls.Load())
	}
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	if _, err := client.FetchHotPosts(context.Background(), 5); err == nil {
		t.Fatal("expected error on 403")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d requests", calls.Load())
	}
}

func TestGetJSONGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := client.FetchHotPosts(context.Background(), 5); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", calls.Load())
	}
}
