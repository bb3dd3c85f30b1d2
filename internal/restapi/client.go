// Package restapi is the client for the platform's REST collaborators:
// the topic catalog, the task inventory, the auth profile and pvp
// stats. Everything here is read-only from the duel's point of view.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TokenProvider hands out the bearer token owned by the external auth
// collaborator.
type TokenProvider interface {
	Token() (string, error)
}

// StaticToken is the trivial provider used when the token arrives via
// configuration.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

type Topic struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TopicPage struct {
	Items []Topic `json:"items"`
	Total int     `json:"total"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type PvPStats struct {
	Rating int `json:"rating"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

type Client struct {
	baseURL string
	tokens  TokenProvider
	http    *http.Client
}

func New(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Topics returns one page of the topic catalog.
func (c *Client) Topics(ctx context.Context, limit int) ([]Topic, error) {
	var page TopicPage
	if err := c.get(ctx, "/api/v1/topics?limit="+strconv.Itoa(limit), &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TaskCount reports how many tasks the inventory holds, optionally
// scoped to one topic.
func (c *Client) TaskCount(ctx context.Context, topicID *int) (int, error) {
	path := "/api/v1/tasks/count"
	if topicID != nil {
		path += "?topic_id=" + strconv.Itoa(*topicID)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := c.get(ctx, path, &body); err != nil {
		return 0, err
	}
	return body.Total, nil
}

// Me resolves the authenticated player, which is where the local
// player id for result classification comes from.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.get(ctx, "/api/v1/auth/me", &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Stats fetches the player's pvp record for the lobby header.
func (c *Client) Stats(ctx context.Context) (PvPStats, error) {
	var s PvPStats
	if err := c.get(ctx, "/api/v1/pvp/stats", &s); err != nil {
		return PvPStats{}, err
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("restapi: %w", err)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("restapi: token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("restapi: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("restapi: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("restapi: GET %s: decode: %w", path, err)
	}
	return nil
}
