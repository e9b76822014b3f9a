// trivia/client.go
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUpstream means the provider is unreachable or returned a malformed
	// or insufficient response.
	ErrUpstream = errors.New("trivia provider error")
	// ErrInvalidParameter means the request itself was rejected.
	ErrInvalidParameter = errors.New("invalid trivia parameter")
)

const (
	MinAmount = 1
	MaxAmount = 50
)

// Client fetches question batches from an Open Trivia DB compatible API.
type Client struct {
	baseURL       string
	categoriesURL string
	httpClient    *http.Client
}

func NewClient(baseURL, categoriesURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:       baseURL,
		categoriesURL: categoriesURL,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// FetchQuestions requests amount questions filtered by category id and
// difficulty. Zero categoryID / empty difficulty mean no filter. Text is
// HTML-entity decoded and the answer order is shuffled here, once.
func (c *Client) FetchQuestions(ctx context.Context, amount int, categoryID int, difficulty string) ([]Question, error) {
	if amount < MinAmount || amount > MaxAmount {
		return nil, fmt.Errorf("%w: amount must be %d-%d, got %d", ErrInvalidParameter, MinAmount, MaxAmount, amount)
	}
	if !ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameter, difficulty)
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", "multiple")
	if categoryID > 0 {
		params.Set("category", strconv.Itoa(categoryID))
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := responseCodeError(body.ResponseCode); err != nil {
		return nil, err
	}
	if len(body.Results) < amount {
		return nil, fmt.Errorf("%w: got %d questions, wanted %d", ErrUpstream, len(body.Results), amount)
	}

	questions := make([]Question, 0, len(body.Results))
	for _, r := range body.Results {
		correct := html.UnescapeString(r.CorrectAnswer)
		incorrect := make([]string, 0, len(r.IncorrectAnswers))
		all := make([]string, 0, len(r.IncorrectAnswers)+1)
		all = append(all, correct)
		for _, a := range r.IncorrectAnswers {
			decoded := html.UnescapeString(a)
			incorrect = append(incorrect, decoded)
			all = append(all, decoded)
		}
		shuffle(all)

		questions = append(questions, Question{
			ID:               "q_" + uuid.NewString(),
			Category:         html.UnescapeString(r.Category),
			Difficulty:       r.Difficulty,
			Prompt:           html.UnescapeString(r.Question),
			CorrectAnswer:    correct,
			IncorrectAnswers: incorrect,
			AllAnswers:       all,
		})
	}
	return questions, nil
}

// FetchCategories returns the provider's full category catalog.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.categoriesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	var body struct {
		TriviaCategories []Category `json:"trivia_categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body.TriviaCategories, nil
}

// Open Trivia DB response codes.
func responseCodeError(code int) error {
	switch code {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%w: not enough questions available", ErrUpstream)
	case 2:
		return fmt.Errorf("%w: provider rejected a parameter", ErrInvalidParameter)
	case 3, 4:
		return fmt.Errorf("%w: session token error (code %d)", ErrUpstream, code)
	default:
		return fmt.Errorf("%w: response code %d", ErrUpstream, code)
	}
}

func shuffle(answers []string) {
	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
}
