package confsource

import "net/http"

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithGithubAPI(base string) Option {
	return func(c *Client) { c.githubAPI = base }
}
