package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// List is the one shape list endpoints are normalized into.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// envelopeKeys are the collection fields the backend uses in list envelopes.
var envelopeKeys = []string{"items", "meals", "orders", "requests", "users", "reviews", "favorites"}

// DecodeList accepts a bare array, null, or an envelope object holding the
// items under one of envelopeKeys and an optional total. A missing total
// defaults to the number of items.
func DecodeList[T any](raw []byte) (List[T], error) {
	out := List[T]{Items: []T{}}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out.Items); err != nil {
			return out, fmt.Errorf("decode list: %w", err)
		}
		out.Total = len(out.Items)
		return out, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return out, fmt.Errorf("decode list envelope: %w", err)
	}
	for _, key := range envelopeKeys {
		items, ok := envelope[key]
		if !ok || bytes.Equal(bytes.TrimSpace(items), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(items, &out.Items); err != nil {
			return out, fmt.Errorf("decode list %q: %w", key, err)
		}
		break
	}

	out.Total = len(out.Items)
	if total, ok := envelope["total"]; ok {
		var n int
		if err := json.Unmarshal(total, &n); err == nil {
			out.Total = n
		}
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

// GetList performs a GET and normalizes the response with DecodeList.
func GetList[T any](ctx context.Context, c *Client, path string) (List[T], error) {
	raw, err := c.GetRaw(ctx, path)
	if err != nil {
		return List[T]{Items: []T{}}, err
	}
	return DecodeList[T](raw)
}
