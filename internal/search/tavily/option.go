package tavily

import "net/http"

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithMaxResults(n int) Option {
	return func(c *Client) {
		c.maxResults = n
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Client) {
		c.httpClient = clt
	}
}
