package llm

import (
	"fmt"
	"strings"

	"SoccerTrends/internal/domain"
)

// Only the highest-ranked comments go into the prompt; more adds token cost
// without changing the verdict much.
const maxPromptComments = 10

const systemPrompt = "You are a football punditry analyst who summarizes fan discussions objectively and insightfully."

// buildSentimentPrompt renders the post and its top comments into the
// analysis request.
func buildSentimentPrompt(post domain.Post, comments []domain.Comment) string {
	if len(comments) > maxPromptComments {
		comments = comments[:maxPromptComments]
	}

	var commentsText strings.Builder
	for i, comment := range comments {
		if i > 0 {
			commentsText.WriteString("\n\n")
		}
		fmt.Fprintf(&commentsText, "Comment %d (score: %d):\n%s", i+1, comment.Score, comment.Body)
	}

	body := post.Selftext
	if body == "" {
		body = "(no body text)"
	}

	return fmt.Sprintf(`Analyze the following post from Reddit r/soccer together with its comments and summarize where the discussion is heading.

Post title: %s
Post body: %s
Post score: %d
Comment count: %d

Top comments:
%s

Provide the following analysis:
1. Topic overview (briefly state what the post is about)
2. Main opinions (list 3-5 recurring viewpoints from the comments)
3. Sentiment (positive, negative or neutral, with reasoning)
4. Points of controversy, if any
5. Overall summary of the discussion (under 200 words)

Keep the analysis objective, comprehensive and insightful.`,
		post.Title, body, post.Score, post.NumComments, commentsText.String())
}
