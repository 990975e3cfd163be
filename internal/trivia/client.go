// Package trivia is the HTTP client for the Open Trivia DB question provider.
// Question and answer text may carry inline HTML entities; it is passed
// through verbatim so the presentation layer can render it as-is.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/knowledge-challenge/quiz-platform/internal/quiz"
)

const DefaultBaseURL = "https://opentdb.com"

// ErrUnavailable distinguishes "provider down" from a malformed or short
// response, so the boundary can tell the user the server is unreachable.
var ErrUnavailable = errors.New("trivia provider unreachable")

type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient builds a provider client. A nil http.Client gets a sane timeout:
// the fetch is a one-shot request with no retry, so a hung connection must not
// hold the session start hostage.
func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, hc: hc}
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Type             string   `json:"type"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// Fetch requests amount multiple-choice questions. Anything short of a full
// batch is an error; the caller never builds a session from a partial one.
func (c *Client) Fetch(ctx context.Context, amount int) ([]quiz.Question, error) {
	u := c.baseURL + "/api.php?" + url.Values{
		"amount": {strconv.Itoa(amount)},
		"type":   {"multiple"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia response code %d", body.ResponseCode)
	}
	if len(body.Results) < amount {
		return nil, fmt.Errorf("trivia returned %d of %d questions", len(body.Results), amount)
	}

	questions := make([]quiz.Question, len(body.Results))
	for i, r := range body.Results {
		questions[i] = quiz.Question{
			Text:          r.Question,
			CorrectAnswer: r.CorrectAnswer,
			Distractors:   r.IncorrectAnswers,
		}
	}
	return questions, nil
}
