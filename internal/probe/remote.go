package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxRedirects bounds the redirect chain followed by RemoteChecker.
const DefaultMaxRedirects = 10

// RemoteResponse is the final, non-redirect answer to a HEAD request.
type RemoteResponse struct {
	URL           string // URL that produced this response.
	StatusCode    int
	ContentLength int64 // -1 when the server did not say.
	Redirects     int   // Hops followed to get here.
}

// OK reports a 2xx status.
func (r *RemoteResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// RemoteChecker confirms that a URL exists and reports its size.
type RemoteChecker struct {
	client       *http.Client
	maxRedirects int
}

// NewRemoteChecker returns a checker using client (http.DefaultClient when
// nil) that follows at most maxRedirects hops. The client's own redirect
// policy is replaced so hops can be counted here.
func NewRemoteChecker(client *http.Client, maxRedirects int) *RemoteChecker {
	if client == nil {
		client = http.DefaultClient
	}
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if maxRedirects < 0 {
		maxRedirects = 0
	}
	return &RemoteChecker{client: &c, maxRedirects: maxRedirects}
}

// Head issues HEAD requests starting at rawURL, following redirects. It
// returns ErrTooManyRedirects when the chain is longer than the bound.
// Transport failures (refused connection, DNS failure, timeouts) are
// reported as a nil response with a nil error.
func (c *RemoteChecker) Head(ctx context.Context, rawURL string) (*RemoteResponse, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil
	}

	for hops := 0; ; hops++ {
		resp, ok := c.do(ctx, u)
		if !ok {
			return nil, nil
		}

		loc := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || loc == "" {
			return &RemoteResponse{
				URL:           u.String(),
				StatusCode:    resp.StatusCode,
				ContentLength: resp.ContentLength,
				Redirects:     hops,
			}, nil
		}

		if hops >= c.maxRedirects {
			return nil, fmt.Errorf("%w: more than %d following %s", ErrTooManyRedirects, c.maxRedirects, rawURL)
		}
		next, err := u.Parse(loc)
		if err != nil {
			return nil, nil
		}
		u = next
	}
}

func (c *RemoteChecker) do(ctx context.Context, u *url.URL) (*http.Response, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp, true
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	u, err := url.Parse(path)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	}
	return false
}
