// apps/go-server/internal/words/words.go
//
// Decoy source backed by a random-word HTTP API.
//
// Responsibilities:
//   - Fetch a single random word per call (GET <url>, response ["word"]).
//   - Mask every failure behind game.Placeholder so a round always gets
//     four options.
//
// Failures that are masked:
//   • transport errors and context cancellation
//   • non-2xx status
//   • undecodable body, empty array, or a blank first element

package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
)

// DefaultURL is the public random-word endpoint.
const DefaultURL = "https://random-word-api.herokuapp.com/word"

var errNoWord = errors.New("no word in response")

// Client fetches random words to serve as decoy answers.
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

// FetchDecoy returns one random word, or game.Placeholder on any failure.
func (c *Client) FetchDecoy(ctx context.Context) string {
	w, err := c.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", c.url).Msg("random word fetch failed, using placeholder")
		return game.Placeholder
	}
	return w
}

// fetch performs the request and decodes the first array element.
func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var list []string
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(list) == 0 {
		return "", errNoWord
	}
	w := strings.TrimSpace(list[0])
	if w == "" {
		return "", errNoWord
	}
	return w, nil
}
