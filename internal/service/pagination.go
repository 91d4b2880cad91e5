package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Page is the DRF paginated envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// DecodeList accepts either a bare JSON array or a Page and returns the items.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	items, _, err := decodePage[T](raw)
	return items, err
}

func decodePage[T any](raw json.RawMessage) ([]T, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, "", nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", fmt.Errorf("decode list: %w", err)
		}
		return items, "", nil
	}

	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, "", fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	next := ""
	if page.Next != nil {
		next = *page.Next
	}
	return page.Results, next, nil
}

// CollectAll walks every page starting at path. A bare array response ends
// the walk; so does a next link that cannot be turned into a request path.
func CollectAll[T any](ctx context.Context, api API, path string, query url.Values) ([]T, error) {
	all := []T{}
	seen := make(map[string]bool)

	for path != "" && !seen[path] {
		seen[path] = true

		var raw json.RawMessage
		if err := api.Get(ctx, path, query, &raw); err != nil {
			return nil, err
		}
		items, next, err := decodePage[T](raw)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", path, err)
		}
		all = append(all, items...)

		// The next link already carries the query.
		query = nil
		path = nextPath(next, api.BaseURL())
	}
	return all, nil
}

// nextPath turns DRF's absolute next URL into a path relative to base,
// dropping base's path prefix (for example "/api") and keeping the query.
func nextPath(next string, base *url.URL) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || !u.IsAbs() {
		return ""
	}

	p := u.Path
	prefix := strings.TrimSuffix(base.Path, "/")
	if prefix != "" && strings.HasPrefix(p, prefix+"/") {
		p = strings.TrimPrefix(p, prefix)
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
