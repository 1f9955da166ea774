// Package flickr fetches the public photostream and albums behind the
// art gallery page, cached on disk so a flaky upstream never blanks
// the page.
package flickr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultBaseURL = "https://api.flickr.com/services/rest/"
	DefaultFeedURL = "https://www.flickr.com/services/feeds/photos_public.gne"
)

// Client is a minimal Flickr REST client covering the calls the
// gallery needs plus the unauthenticated public feed.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	feedURL *url.URL
	apiKey  string
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

func WithFeedURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.feedURL = u
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	base, _ := url.Parse(DefaultBaseURL)
	feed, _ := url.Parse(DefaultFeedURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: base,
		feedURL: feed,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// doJSON calls one REST method. Every response carries a stat field;
// stat=fail becomes an error.
func (c *Client) doJSON(ctx context.Context, method string, params map[string]string, out any) error {
	u := *c.baseURL
	q := u.Query()
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s: %s", method, resp.Status, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var stat struct {
		Stat    string `json:"stat"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &stat); err != nil {
		return fmt.Errorf("%s: decode: %w", method, err)
	}
	if stat.Stat != "ok" {
		return fmt.Errorf("%s: stat=%s code=%d: %s", method, stat.Stat, stat.Code, stat.Message)
	}
	return json.Unmarshal(body, out)
}

// FindByUsername resolves a username to the numeric user id (NSID).
func (c *Client) FindByUsername(ctx context.Context, username string) (string, error) {
	var resp struct {
		User struct {
			NSID string `json:"nsid"`
			ID   string `json:"id"`
		} `json:"user"`
	}
	err := c.doJSON(ctx, "flickr.people.findByUsername", map[string]string{"username": username}, &resp)
	if err != nil {
		return "", err
	}
	if resp.User.NSID != "" {
		return resp.User.NSID, nil
	}
	return resp.User.ID, nil
}

// PublicPhotos fetches one page of a user's public photostream.
func (c *Client) PublicPhotos(ctx context.Context, userID string, page, perPage int) (*PhotoPage, error) {
	var resp struct {
		Photos PhotoPage `json:"photos"`
	}
	err := c.doJSON(ctx, "flickr.people.getPublicPhotos", map[string]string{
		"user_id":  userID,
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"extras":   "description,url_m,url_z,url_l,url_o",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Photos, nil
}

// Photosets fetches the user's album list (single page).
func (c *Client) Photosets(ctx context.Context, userID string, perPage int) ([]PhotosetJSON, error) {
	var resp struct {
		Photosets struct {
			Photoset []PhotosetJSON `json:"photoset"`
		} `json:"photosets"`
	}
	err := c.doJSON(ctx, "flickr.photosets.getList", map[string]string{
		"user_id":  userID,
		"per_page": strconv.Itoa(perPage),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Photosets.Photoset, nil
}

// PublicFeed fetches the unauthenticated public feed for a user id.
// The feed needs no API key and survives key revocation, which is why
// it exists as a last resort.
func (c *Client) PublicFeed(ctx context.Context, userID string) ([]FeedItem, error) {
	u := *c.feedURL
	q := u.Query()
	q.Set("id", userID)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("public feed: %s: %s", resp.Status, string(b))
	}

	var feed struct {
		Items []FeedItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("public feed: decode: %w", err)
	}
	return feed.Items, nil
}
