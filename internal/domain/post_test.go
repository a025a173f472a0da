package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampMarshalFormat(t *testing.T) {
	t.Parallel()

	ts := Timestamp(time.Date(2025, time.March, 9, 18, 4, 5, 0, time.Local))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal timestamp: %v", err)
	}

	if string(data) != `"2025-03-09 18:04:05"` {
		t.Fatalf("unexpected timestamp encoding: %s", data)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	t.Parallel()

	original := Timestamp(time.Date(2025, time.June, 1, 9, 30, 0, 0, time.Local))

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal timestamp: %v", err)
	}

	var decoded Timestamp
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}

	if !decoded.Time().Equal(original.Time()) {
		t.Fatalf("round trip changed value: %v != %v", decoded.Time(), original.Time())
	}
}

func TestTimestampUnmarshalRejectsGarbage(t *testing.T) {
	t.Parallel()

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"not-a-date"`), &ts); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestPostRecordWireFormat(t *testing.T) {
	t.Parallel()

	record := PostRecord{
		Post: Post{
			ID:          "abc123",
			Title:       "Late winner at the derby",
			Selftext:    "",
			Score:       4821,
			NumComments: 913,
			Author:      "matchday_fan",
			URL:         "https://example.com/clip",
			Permalink:   "https://www.reddit.com/r/soccer/comments/abc123/",
		},
		Comments: []Comment{
			{ID: "c1", Body: "What a strike", Score: 120, Author: "[deleted]"},
		},
		SavedAt: Timestamp(time.Date(2025, time.May, 2, 20, 0, 0, 0, time.Local)),
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	for _, key := range []string{"post", "comments", "saved_at"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing top-level key %q in %s", key, data)
		}
	}

	var post map[string]json.RawMessage
	if err := json.Unmarshal(decoded["post"], &post); err != nil {
		t.Fatalf("unmarshal post: %v", err)
	}

	for _, key := range []string{"id", "title", "selftext", "score", "num_comments", "created_utc", "author", "url", "permalink"} {
		if _, ok := post[key]; !ok {
			t.Fatalf("missing post key %q", key)
		}
	}
}
