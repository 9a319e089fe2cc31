package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/kgichohi/social_posts/internal/models"
)

// PostIndex mirrors posts into an Elasticsearch index for full-text search.
// Indexing is best-effort: callers log failures and carry on, the database
// stays the source of truth.
type PostIndex struct {
	Client *elasticsearch.Client
	Name   string
}

type postDocument struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID uint   `json:"owner_id"`
}

func (x *PostIndex) IndexPost(ctx context.Context, post *models.Post) error {
	if x == nil || x.Client == nil {
		return nil
	}

	doc := postDocument{ID: post.ID, Title: post.Title, Content: post.Content, OwnerID: post.OwnerID}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode post %d: %w", post.ID, err)
	}

	res, err := x.Client.Index(
		x.Name,
		&buf,
		x.Client.Index.WithDocumentID(strconv.FormatUint(uint64(post.ID), 10)),
		x.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index post %d: %w", post.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index post %d: %s", post.ID, res.Status())
	}
	return nil
}

func (x *PostIndex) RemovePost(ctx context.Context, id uint) error {
	if x == nil || x.Client == nil {
		return nil
	}

	res, err := x.Client.Delete(
		x.Name,
		strconv.FormatUint(uint64(id), 10),
		x.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: remove post %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: remove post %d: %s", id, res.Status())
	}
	return nil
}

func (x *PostIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Post, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "content"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := x.Client.Search(
		x.Client.Search.WithContext(ctx),
		x.Client.Search.WithIndex(x.Name),
		x.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source postDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	posts := make([]models.Post, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		posts[i] = models.Post{
			ID:      hit.Source.ID,
			Title:   hit.Source.Title,
			Content: hit.Source.Content,
			OwnerID: hit.Source.OwnerID,
		}
	}
	return r.Hits.Total.Value, posts, nil
}
