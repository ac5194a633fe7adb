package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/eskro/backend/internal/es"
)

func Search(ctx context.Context, client *elasticsearch.Client, index, query string, from, size int) (int64, []es.NewsDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "min_text", "keywords"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
		"sort": []map[string]any{{"news_date": map[string]any{"order": "desc"}}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(index),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source es.NewsDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]es.NewsDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

// Suggest collects up to limit distinct titles and keywords matching the
// query prefix, the same way the site's search box autocompletes.
func Suggest(ctx context.Context, client *elasticsearch.Client, index, query string, limit int) ([]string, error) {
	_, docs, err := Search(ctx, client, index, query, 0, limit*3)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	seen := map[string]bool{}
	suggestions := []string{}
	add := func(s string) {
		if len(suggestions) < limit && !seen[s] && strings.Contains(strings.ToLower(s), lower) {
			seen[s] = true
			suggestions = append(suggestions, s)
		}
	}
	for _, doc := range docs {
		add(doc.Title)
		for _, kw := range doc.Keywords {
			add(kw)
		}
	}
	return suggestions, nil
}
