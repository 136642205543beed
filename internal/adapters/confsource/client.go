// Package confsource fetches the raw TOML config document an operator
// points the bot at. Gist links get special handling so people can paste
// the pretty gist URL instead of the raw one.
package confsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	defaultGithubAPI = "https://api.github.com"
	gistPrefix       = "https://gist.github.com"

	maxDocumentBytes = 1 << 20 // a guild config has no business being >1MiB
)

type Client struct {
	http      *http.Client
	githubAPI string
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		githubAPI: defaultGithubAPI,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the config document body for a URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, gistPrefix) {
		return c.fetchGist(ctx, rawURL)
	}
	return c.fetchText(ctx, rawURL)
}

func (c *Client) fetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ex: https://gist.github.com/dragonpaw/ed69fa12e38de27199d21bd7dde4768e
func (c *Client) fetchGist(ctx context.Context, rawURL string) (string, error) {
	parts := strings.Split(strings.TrimRight(rawURL, "/"), "/")
	gistID := parts[len(parts)-1]

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.githubAPI+"/gists/"+gistID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var dto gistDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return "", fmt.Errorf("gist %s: %w", gistID, err)
	}
	if len(dto.Files) == 0 {
		return "", fmt.Errorf("gist %s has no files", gistID)
	}

	names := make([]string, 0, len(dto.Files))
	for name := range dto.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	// Prefer a TOML file if there is one.
	for _, name := range names {
		f := dto.Files[name]
		if strings.HasSuffix(strings.ToLower(f.Filename), ".toml") ||
			strings.EqualFold(f.Language, "toml") {
			return f.Content, nil
		}
	}
	// Ok, then whatever the first file is.
	return dto.Files[names[0]].Content, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxDocumentBytes))
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, &APIError{Status: res.StatusCode, Body: string(body)}
	}
	return body, nil
}

type gistDTO struct {
	Files map[string]gistFileDTO `json:"files"`
}

type gistFileDTO struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Content  string `json:"content"`
}
