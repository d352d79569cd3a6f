package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// redirectServer answers /hop/N with a redirect to /hop/N-1 and /hop/0 with
// a 200 carrying Content-Length.
func redirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/hop/%d", &n); err != nil {
			http.NotFound(w, r)
			return
		}
		if n == 0 {
			w.Header().Set("Content-Length", "4096")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func noKeepAlive() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

func TestRemoteChecker_RedirectsWithinBound(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	srv := redirectServer(t)
	defer srv.Close()

	c := NewRemoteChecker(noKeepAlive(), 3)
	resp, err := c.Head(context.Background(), srv.URL+"/hop/3")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.OK())
	assert.Equal(t, int64(4096), resp.ContentLength)
	assert.Equal(t, 3, resp.Redirects)
	assert.Equal(t, srv.URL+"/hop/0", resp.URL)
}

func TestRemoteChecker_TooManyRedirects(t *testing.T) {
	srv := redirectServer(t)

	c := NewRemoteChecker(noKeepAlive(), 3)
	resp, err := c.Head(context.Background(), srv.URL+"/hop/4")
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
}

func TestRemoteChecker_ZeroRedirectsAllowed(t *testing.T) {
	srv := redirectServer(t)

	c := NewRemoteChecker(noKeepAlive(), 0)
	_, err := c.Head(context.Background(), srv.URL+"/hop/1")
	assert.ErrorIs(t, err, ErrTooManyRedirects)

	resp, err := c.Head(context.Background(), srv.URL+"/hop/0")
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestRemoteChecker_AbsoluteRedirectAcrossHosts(t *testing.T) {
	target := redirectServer(t)
	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/hop/0", http.StatusMovedPermanently)
	}))
	defer front.Close()

	resp, err := NewRemoteChecker(noKeepAlive(), 10).Head(context.Background(), front.URL+"/movie.mp4")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.Redirects)
}

func TestRemoteChecker_NotFound(t *testing.T) {
	srv := redirectServer(t)

	resp, err := NewRemoteChecker(noKeepAlive(), 10).Head(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestRemoteChecker_ConnectionRefusedIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	resp, err := NewRemoteChecker(noKeepAlive(), 10).Head(context.Background(), addr+"/movie.mp4")
	assert.NoError(t, err)
	assert.Nil(t, resp)
	assert.False(t, resp.OK())
}

func TestRemoteChecker_RedirectWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	resp, err := NewRemoteChecker(noKeepAlive(), 10).Head(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"http://example.com/a.mp4":  true,
		"HTTPS://example.com/a.mp4": true,
		"ftp://example.com/a.mp4":   false,
		"/var/media/a.mp4":          false,
		"a.mp4":                     false,
		"http:/broken":              false,
		`C:\media\a.mp4`:            false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsRemote(in), in)
	}
}
