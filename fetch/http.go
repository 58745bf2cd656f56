package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
)

// HTTP fetches assets from an origin server over HTTP. Assets are
// requested as GET <host>/asset/<id>?kind=<name>, with the priority
// passed along as a header so the origin may use it for its own
// scheduling.
type HTTP struct {
	// HostURL is the origin base, e.g. "https://assets.example.org".
	// No trailing slash.
	HostURL string

	client *http.Client
}

var _ cache.Fetcher = &HTTP{}

// NewHTTP returns a fetcher for the given origin base URL.
func NewHTTP(hostURL string) *HTTP {
	return &HTTP{
		HostURL: hostURL,
		client: &http.Client{
			Timeout: 10 * time.Minute, // arbitrary, so we never hang forever
		},
	}
}

// FetchRemote requests the asset and returns its bytes. A 404 comes
// back as ErrNotFound; other non-200 responses come back as an error
// carrying the origin's reason when the body offers one.
func (h *HTTP) FetchRemote(ctx context.Context, id uuid.UUID, kind asset.Kind, priority cache.Priority) ([]byte, error) {
	path := fmt.Sprintf("%s/asset/%s?kind=%s", h.HostURL, id, kind)
	req, err := http.NewRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("X-Asset-Priority", priority.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return ioutil.ReadAll(resp.Body)
	case 404:
		return nil, ErrNotFound
	default:
		return nil, responseError(resp)
	}
}

// responseError digs a human-readable reason out of an error response.
// Origins reply with a JSON body {"error": "..."} when they have one.
func responseError(resp *http.Response) error {
	body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
	v, err := jason.NewObjectFromReader(bytes.NewReader(body))
	if err == nil {
		if reason, err := v.GetString("error"); err == nil && reason != "" {
			return fmt.Errorf("origin returned status %d: %s", resp.StatusCode, reason)
		}
	}
	return fmt.Errorf("origin returned status %d", resp.StatusCode)
}
