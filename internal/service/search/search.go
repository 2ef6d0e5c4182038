package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

const (
	PostsIndex = "forum_posts"
	UsersIndex = "users"
)

func doSearch(ctx context.Context, es *elasticsearch.Client, index, query string, fields []string, from, size int) (int64, []json.RawMessage, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
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
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	sources := make([]json.RawMessage, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		sources[i] = hit.Source
	}
	return r.Hits.Total.Value, sources, nil
}

func SearchPosts(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []models.ForumPost, error) {
	total, sources, err := doSearch(ctx, es, PostsIndex, query, []string{"title^2", "content", "category"}, from, size)
	if err != nil {
		return 0, nil, err
	}

	posts := make([]models.ForumPost, len(sources))
	for i, src := range sources {
		if err := json.Unmarshal(src, &posts[i]); err != nil {
			return 0, nil, err
		}
	}
	return total, posts, nil
}

// UserHit is the slim user projection stored in the search index. Password
// hashes and ban flags never reach Elasticsearch.
type UserHit struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

func SearchUsers(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []UserHit, error) {
	total, sources, err := doSearch(ctx, es, UsersIndex, query, []string{"username^2", "email", "location"}, from, size)
	if err != nil {
		return 0, nil, err
	}

	users := make([]UserHit, len(sources))
	for i, src := range sources {
		if err := json.Unmarshal(src, &users[i]); err != nil {
			return 0, nil, err
		}
	}
	return total, users, nil
}

// IndexPost upserts a forum post document. A nil client skips indexing.
func IndexPost(ctx context.Context, es *elasticsearch.Client, post *models.ForumPost) error {
	if es == nil {
		return nil
	}

	doc, err := json.Marshal(post)
	if err != nil {
		return err
	}

	res, err := es.Index(
		PostsIndex,
		bytes.NewReader(doc),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(post.ID), 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index post: %s", res.Status())
	}
	return nil
}

// IndexUser upserts the searchable projection of an account.
func IndexUser(ctx context.Context, es *elasticsearch.Client, user *models.User) error {
	if es == nil {
		return nil
	}

	doc, err := json.Marshal(UserHit{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Location: user.Location,
	})
	if err != nil {
		return err
	}

	res, err := es.Index(
		UsersIndex,
		bytes.NewReader(doc),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(user.ID), 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index user: %s", res.Status())
	}
	return nil
}

// DeleteDoc removes a document from an index, ignoring 404s.
func DeleteDoc(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	if es == nil {
		return nil
	}

	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete doc: %s", res.Status())
	}
	return nil
}
