// apps/go-server/internal/trivia/client.go
//
// Question source backed by a jService-style HTTP API.
//
// Wire format (GET <baseURL>):
//   [ { "category": { "title": "..." }, "question": "...", "answer": "..." }, ... ]
//
// Only the first element is used. Text fields are HTML-unescaped and
// stripped of inline markup (answers often arrive as "<i>Moby Dick</i>").

package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
)

// DefaultURL is the public random-clue endpoint.
const DefaultURL = "https://jservice.io/api/random"

var ErrNoQuestion = errors.New("no usable question in response")

// clue mirrors one element of the API response.
type clue struct {
	Category struct {
		Title string `json:"title"`
	} `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Client fetches one random question per call.
type Client struct {
	url  string
	http *http.Client
}

// New returns a Client for url. A nil hc uses http.DefaultClient.
func New(url string, hc *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

// FetchQuestion performs a single GET and returns the first clue.
func (c *Client) FetchQuestion(ctx context.Context) (game.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return game.Question{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return game.Question{}, fmt.Errorf("get question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return game.Question{}, fmt.Errorf("get question: status %d", resp.StatusCode)
	}

	var clues []clue
	if err := json.NewDecoder(resp.Body).Decode(&clues); err != nil {
		return game.Question{}, fmt.Errorf("decode question: %w", err)
	}
	if len(clues) == 0 {
		return game.Question{}, ErrNoQuestion
	}

	q := game.Question{
		Category: clean(clues[0].Category.Title),
		Prompt:   clean(clues[0].Question),
		Answer:   clean(clues[0].Answer),
	}
	if q.Prompt == "" || q.Answer == "" {
		return game.Question{}, ErrNoQuestion
	}
	return q, nil
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// clean strips tags, unescapes entities and collapses whitespace.
func clean(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
