// Package music wraps the external track catalog. The game treats it
// as an opaque lookup/playback provider; nothing in here affects room
// state.
package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   Album    `json:"album"`
	URI     string   `json:"uri"`
}

// Provider is the catalog surface the rest of the app consumes.
type Provider interface {
	Search(ctx context.Context, query string) ([]Track, error)
	Play(ctx context.Context, uri string) error
	Pause(ctx context.Context) error
}

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com"
	searchLimit        = 10
	// Refresh slightly before the reported expiry so a token never
	// dies mid-request.
	expiryMargin = 30 * time.Second
)

// SpotifyClient talks to the Spotify Web API with a client-credentials
// token that it caches until shortly before expiry.
type SpotifyClient struct {
	httpc        *http.Client
	clientID     string
	clientSecret string
	accountsURL  string
	apiURL       string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		httpc:        &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
	}
}

func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}

	c.token = body.AccessToken
	c.expiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - expiryMargin)
	return c.token, nil
}

func (c *SpotifyClient) Search(ctx context.Context, query string) ([]Track, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprint(searchLimit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var body struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album Album  `json:"album"`
				URI   string `json:"uri"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search response: %w", err)
	}

	tracks := make([]Track, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			artists = append(artists, a.Name)
		}
		tracks = append(tracks, Track{
			ID:      item.ID,
			Name:    item.Name,
			Artists: artists,
			Album:   item.Album,
			URI:     item.URI,
		})
	}
	return tracks, nil
}

func (c *SpotifyClient) Play(ctx context.Context, uri string) error {
	body := fmt.Sprintf(`{"uris":[%q]}`, uri)
	return c.playerRequest(ctx, "/v1/me/player/play", strings.NewReader(body))
}

func (c *SpotifyClient) Pause(ctx context.Context) error {
	return c.playerRequest(ctx, "/v1/me/player/pause", nil)
}

func (c *SpotifyClient) playerRequest(ctx context.Context, path string, body *strings.Reader) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+path, nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("player request failed: status %d", resp.StatusCode)
	}
	return nil
}
