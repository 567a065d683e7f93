package firebase

import (
	"bytes"
	"chatcal/app/config"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/do"
)

// Client talks to a Firebase Realtime Database over its REST interface.
// Values are raw JSON documents addressed by slash-separated keys.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		baseURL: strings.TrimRight(cfg.Firebase.URL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) keyURL(key string) string {
	return c.baseURL + "/" + key + ".json"
}

// Get fetches the JSON document at key. A missing key yields (nil, nil).
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.keyURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create get request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %q failed with status %d", key, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}

	// the REST API reports an absent key as the JSON literal null
	if string(bytes.TrimSpace(data)) == "null" {
		return nil, nil
	}

	return data, nil
}

// Put stores the JSON document at key, replacing any previous value.
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.keyURL(key), bytes.NewReader(value))
	if err != nil {
		return fmt.Errorf("failed to create put request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("put %q failed with status %d", key, res.StatusCode)
	}

	return nil
}

// Delete removes the document at key. Deleting an absent key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.keyURL(key), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("delete %q failed with status %d", key, res.StatusCode)
	}

	return nil
}
