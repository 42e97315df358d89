package music

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, search http.HandlerFunc) (*SpotifyClient, *int32) {
	t.Helper()
	var tokenRequests int32

	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "id", user)
		require.Equal(t, "secret", pass)
		atomic.AddInt32(&tokenRequests, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","expires_in":3600}`))
	}))
	t.Cleanup(accounts.Close)

	api := httptest.NewServer(search)
	t.Cleanup(api.Close)

	c := NewSpotifyClient("id", "secret")
	c.accountsURL = accounts.URL
	c.apiURL = api.URL
	return c, &tokenRequests
}

func TestSpotifyClient_Search(t *testing.T) {
	t.Parallel()

	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Equal(t, "never gonna", r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tracks":{"items":[
			{"id":"t1","name":"Never Gonna Give You Up","uri":"spotify:track:t1",
			 "artists":[{"name":"Rick Astley"}],
			 "album":{"name":"Whenever You Need Somebody","images":[{"url":"http://img","height":640,"width":640}]}}
		]}}`))
	})

	tracks, err := c.Search(context.Background(), "never gonna")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, []string{"Rick Astley"}, tracks[0].Artists)
	assert.Equal(t, "http://img", tracks[0].Album.Images[0].URL)
	assert.Equal(t, "spotify:track:t1", tracks[0].URI)

	// Second search reuses the cached token.
	_, err = c.Search(context.Background(), "never gonna")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenRequests))
}

func TestSpotifyClient_SearchErrorStatus(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), "q")
	assert.ErrorContains(t, err, "status 429")
}

func TestSpotifyClient_PlayAndPause(t *testing.T) {
	t.Parallel()

	var gotPaths []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPaths = append(gotPaths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Play(context.Background(), "spotify:track:t1"))
	require.NoError(t, c.Pause(context.Background()))
	assert.Equal(t, []string{"/v1/me/player/play", "/v1/me/player/pause"}, gotPaths)
}
