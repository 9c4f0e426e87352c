package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wordgym/wordgym-api/internal/domain"
)

// Client is the remote API surface the Syncer talks to. The HTTP
// implementation is HTTPClient; tests substitute a fake.
type Client interface {
	// FetchDecks retrieves the remote deck set.
	FetchDecks(ctx context.Context) ([]domain.Deck, error)

	// PushDecks sends the local deck set for server-side merging and
	// returns the merged result.
	PushDecks(ctx context.Context, decks []domain.Deck) ([]domain.Deck, error)

	// FetchStreak retrieves the remote streak, zero-valued when the user
	// has never synced one.
	FetchStreak(ctx context.Context) (domain.StreakData, error)

	// PushStreak sends the local streak for server-side merging and
	// returns the merged result.
	PushStreak(ctx context.Context, streak domain.StreakData) (domain.StreakData, error)

	// SyncUser pushes the user's profile details.
	SyncUser(ctx context.Context, user domain.User) error

	// DeleteAccount removes the remote account together with all decks
	// and streak data.
	DeleteAccount(ctx context.Context) error
}

// TokenProvider supplies the bearer token attached to every request.
// Returning an error aborts the request before it is sent.
type TokenProvider func() (string, error)

// HTTPClient implements Client against the remote HTTP API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenProvider
}

// DefaultRequestTimeout bounds each individual remote call.
const DefaultRequestTimeout = 15 * time.Second

// NewHTTPClient creates a Client for the API at baseURL (no trailing
// slash). httpClient may be nil, in which case a client with
// DefaultRequestTimeout is used.
func NewHTTPClient(baseURL string, token TokenProvider, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    httpClient,
		token:   token,
	}
}

var _ Client = (*HTTPClient)(nil)

type decksEnvelope struct {
	Decks []domain.Deck `json:"decks"`
}

type streakEnvelope struct {
	Streak domain.StreakData `json:"streak"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// FetchDecks implements Client.FetchDecks
func (c *HTTPClient) FetchDecks(ctx context.Context) ([]domain.Deck, error) {
	var out decksEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/decks", nil, &out); err != nil {
		return nil, err
	}
	return out.Decks, nil
}

// PushDecks implements Client.PushDecks
func (c *HTTPClient) PushDecks(ctx context.Context, decks []domain.Deck) ([]domain.Deck, error) {
	var out decksEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/decks/sync", decksEnvelope{Decks: decks}, &out); err != nil {
		return nil, err
	}
	return out.Decks, nil
}

// FetchStreak implements Client.FetchStreak
func (c *HTTPClient) FetchStreak(ctx context.Context) (domain.StreakData, error) {
	var out streakEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/streak", nil, &out); err != nil {
		return domain.StreakData{}, err
	}
	return out.Streak, nil
}

// PushStreak implements Client.PushStreak
func (c *HTTPClient) PushStreak(ctx context.Context, streak domain.StreakData) (domain.StreakData, error) {
	var out streakEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/streak/sync", streakEnvelope{Streak: streak}, &out); err != nil {
		return domain.StreakData{}, err
	}
	return out.Streak, nil
}

// SyncUser implements Client.SyncUser
func (c *HTTPClient) SyncUser(ctx context.Context, user domain.User) error {
	body := map[string]string{
		"email":    user.Email,
		"name":     user.Name,
		"imageUrl": user.ImageURL,
	}
	return c.do(ctx, http.MethodPost, "/api/user/sync", body, nil)
}

// DeleteAccount implements Client.DeleteAccount
func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/user/me", nil, nil)
}

// do performs one JSON request/response cycle. Non-2xx responses are
// turned into errors carrying the server's {error} message when present.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token()
	if err != nil {
		return fmt.Errorf("resolving auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}
