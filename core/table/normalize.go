package table

import (
	"bytes"
	"encoding/json"
)

// Result is the normalized form of a list response: the items in server order
// and the total count across all pages.
type Result struct {
	Items []json.RawMessage
	Total int
}

// collectionKeys are the nested object keys tried, in order, when the "data"
// field is an object rather than an array.
var collectionKeys = []string{"submissions", "payments", "items", "records"}

type envelope struct {
	Data       json.RawMessage   `json:"data"`
	Items      []json.RawMessage `json:"items"`
	Messages   []json.RawMessage `json:"messages"`
	Total      *int              `json:"total"`
	TotalCount *int              `json:"totalCount"`
	Count      *int              `json:"count"`
}

// Normalize decodes the heterogeneous upstream list shapes into a Result.
// Matchers are tried in fixed priority order, first structural match wins:
//
//  1. bare array                      [...]
//  2. data array                      {"data": [...]}
//  3. nested data collection          {"data": {"submissions"|"payments"|"items"|"records": [...]}}
//  4. items array                     {"items": [...]}
//  5. messages array                  {"messages": [...]}
//
// Anything else degrades to an empty Result rather than an error, so an
// unexpected upstream shape renders an empty table instead of breaking
// navigation. The total is read from "total", "totalCount" or "count" (outer
// envelope first, then the nested data object) and falls back to the item
// count of the current page.
func Normalize(raw json.RawMessage) Result {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Result{Items: []json.RawMessage{}}
	}

	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			return Result{Items: items, Total: len(items)}
		}
		return Result{Items: []json.RawMessage{}}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{Items: []json.RawMessage{}}
	}

	if items, total, ok := fromData(env.Data); ok {
		return Result{Items: items, Total: envTotal(env, total, len(items))}
	}
	if env.Items != nil {
		return Result{Items: env.Items, Total: envTotal(env, nil, len(env.Items))}
	}
	if env.Messages != nil {
		return Result{Items: env.Messages, Total: envTotal(env, nil, len(env.Messages))}
	}
	return Result{Items: []json.RawMessage{}}
}

// fromData handles shapes 2 and 3: "data" as a bare array, or as an object
// holding the collection under one of the known keys.
func fromData(data json.RawMessage) (items []json.RawMessage, total *int, ok bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, false
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, false
		}
		return items, nil, true
	}

	if data[0] == '{' {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, nil, false
		}
		for _, key := range collectionKeys {
			inner, found := nested[key]
			if !found {
				continue
			}
			if err := json.Unmarshal(inner, &items); err != nil {
				continue
			}
			return items, nestedTotal(nested), true
		}
	}
	return nil, nil, false
}

func nestedTotal(nested map[string]json.RawMessage) *int {
	for _, key := range []string{"total", "totalCount", "count"} {
		raw, ok := nested[key]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return &n
		}
	}
	return nil
}

// envTotal resolves the total: outer envelope fields win, then a total carried
// next to a nested collection, then the current page's item count.
func envTotal(env envelope, nested *int, itemCount int) int {
	switch {
	case env.Total != nil:
		return *env.Total
	case env.TotalCount != nil:
		return *env.TotalCount
	case env.Count != nil:
		return *env.Count
	case nested != nil:
		return *nested
	default:
		return itemCount
	}
}
