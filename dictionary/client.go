// Package dictionary resolves unknown words against the Wiktionary opensearch
// API, one edition per enabled language.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LookupResult is the tri-state outcome of a single dictionary lookup.
type LookupResult int

const (
	// WordError covers timeouts, malformed responses, non-2xx statuses and
	// transport failures. It never surfaces as a fatal error.
	WordError LookupResult = iota - 1
	// WordDoesNotExist means the dictionary definitively has no entry.
	WordDoesNotExist
	// WordExists means the dictionary confirmed the word.
	WordExists
)

func (r LookupResult) String() string {
	switch r {
	case WordExists:
		return "exists"
	case WordDoesNotExist:
		return "does_not_exist"
	default:
		return "error"
	}
}

// Client queries one Wiktionary language edition per lookup.
type Client struct {
	// BaseURL is a format string taking the ISO 639-1 language code.
	BaseURL    string
	HTTPClient *http.Client
}

// LookupTimeout bounds a single dictionary query.
const LookupTimeout = 5 * time.Second

func NewClient() *Client {
	return &Client{
		BaseURL: "https://%s.wiktionary.org/w/api.php",
		HTTPClient: &http.Client{
			Timeout: LookupTimeout,
		},
	}
}

func (c *Client) endpoint(code string) string {
	if strings.Contains(c.BaseURL, "%s") {
		return fmt.Sprintf(c.BaseURL, code)
	}
	return c.BaseURL
}

// Lookup checks a single language edition for the word. The returned error is
// diagnostic only; callers branch on the LookupResult.
func (c *Client) Lookup(ctx context.Context, word, code string) (LookupResult, error) {
	if word == "" {
		return WordError, fmt.Errorf("word cannot be empty")
	}

	u, err := url.Parse(c.endpoint(code))
	if err != nil {
		return WordError, fmt.Errorf("invalid base URL: %w", err)
	}

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("namespace", "0")
	params.Set("search", word)
	params.Set("limit", "2")
	params.Set("format", "json")
	params.Set("profile", "strict")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return WordError, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "word-chain-bot/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return WordError, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return WordError, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	// opensearch responds with [queryWord, [matches...], [descriptions...], [urls...]]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return WordError, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload) < 2 {
		return WordError, fmt.Errorf("unexpected response shape: %d elements", len(payload))
	}

	var query string
	if err := json.Unmarshal(payload[0], &query); err != nil {
		return WordError, fmt.Errorf("failed to decode query echo: %w", err)
	}
	var matches []string
	if err := json.Unmarshal(payload[1], &matches); err != nil {
		return WordError, fmt.Errorf("failed to decode match list: %w", err)
	}

	if len(matches) == 0 {
		return WordDoesNotExist, nil
	}
	if strings.EqualFold(matches[0], query) {
		return WordExists, nil
	}
	return WordDoesNotExist, nil
}

// MatchLanguage derives the language code of a match from the subdomain of a
// result URL.
func MatchLanguage(resultURL string) (string, error) {
	u, err := url.Parse(resultURL)
	if err != nil {
		return "", fmt.Errorf("invalid result URL: %w", err)
	}
	host, _, found := strings.Cut(u.Hostname(), ".")
	if !found || host == "" {
		return "", fmt.Errorf("no subdomain in result URL %q", resultURL)
	}
	return host, nil
}
