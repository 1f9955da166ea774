// Package github fetches repository metadata for the projects page and
// caches it on disk so the site never blocks on (or breaks with) the
// GitHub API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

const DefaultBaseURL = "https://api.github.com"

// Client is a minimal GitHub REST v3 client covering the two endpoints
// the project directory needs.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func NewClient(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) doJSON(ctx context.Context, p string, out any) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %s: %s", p, resp.Status, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Repo fetches repository metadata for an "owner/repo" slug.
func (c *Client) Repo(ctx context.Context, slug string) (*RepoInfo, error) {
	var info RepoInfo
	if err := c.doJSON(ctx, "/repos/"+slug, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Languages fetches the language byte counts for an "owner/repo" slug.
func (c *Client) Languages(ctx context.Context, slug string) (map[string]int64, error) {
	var langs map[string]int64
	if err := c.doJSON(ctx, "/repos/"+slug+"/languages", &langs); err != nil {
		return nil, err
	}
	return langs, nil
}
