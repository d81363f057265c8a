package api

import (
	"context"
	"net/url"

	"github.com/Veraticus/kantoor/internal/model"
)

// maxPages stops runaway pagination against a misbehaving backend.
const maxPages = 500

// collect walks every page of a list endpoint.
func collect[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}

		var p model.Page[T]
		if err := c.get(ctx, path, pageQuery(q, page), &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if !p.HasNext() {
			break
		}
	}
	return all, nil
}
