package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

func seedPost(t *testing.T, env *testEnv, userID uint) *models.ForumPost {
	t.Helper()

	post := &models.ForumPost{
		UserID:   userID,
		Title:    "ecu remap results",
		Content:  "dyno sheet attached",
		Category: "tuning",
	}
	require.NoError(t, env.DB.Create(post).Error)
	return post
}

func likePost(t *testing.T, env *testEnv, user *models.User, postID uint, isLike bool) {
	t.Helper()

	rec, c := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/forum/posts/%d/like", postID), map[string]any{
		"isLike": isLike,
	}, user)
	setParams(c, "id", fmt.Sprint(postID))
	require.NoError(t, env.call(env.ForumHandler.LikePost, c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func likeCounts(t *testing.T, env *testEnv, postID uint) (likes, dislikes int64) {
	t.Helper()

	rec, c := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/forum/posts/%d/likes", postID), nil, nil)
	setParams(c, "id", fmt.Sprint(postID))
	require.NoError(t, env.ForumHandler.GetLikes(c))

	counts := decode[map[string]int64](t, rec)
	return counts["likes"], counts["dislikes"]
}

func TestGetPosts_PaginationAndCategory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	for i := 0; i < 3; i++ {
		seedPost(t, env, alice.ID)
	}
	require.NoError(t, env.DB.Create(&models.ForumPost{
		UserID: alice.ID, Title: "meetup", Content: "sunday drive", Category: "events",
	}).Error)

	rec, c := env.doJSON(t, http.MethodGet, "/api/forum/posts?page=1&size=2", nil, nil)
	require.NoError(t, env.ForumHandler.GetPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	type postPage struct {
		Data []models.ForumPost `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	resp := decode[postPage](t, rec)
	require.Len(t, resp.Data, 2)
	require.EqualValues(t, 4, resp.Meta.Total)
	require.True(t, resp.Meta.HasNext)

	rec, c = env.doJSON(t, http.MethodGet, "/api/forum/posts?category=events", nil, nil)
	require.NoError(t, env.ForumHandler.GetPosts(c))
	filtered := decode[postPage](t, rec)
	require.Len(t, filtered.Data, 1)
	require.Equal(t, "meetup", filtered.Data[0].Title)
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	rec, c := env.doJSON(t, http.MethodPost, "/api/forum/posts", map[string]any{
		"title":    "stage 2 worth it?",
		"content":  "currently on stage 1",
		"category": "tuning",
	}, alice)
	require.NoError(t, env.call(env.ForumHandler.CreatePost, c))
	require.Equal(t, http.StatusCreated, rec.Code)

	post := decode[models.ForumPost](t, rec)
	require.Equal(t, alice.ID, post.UserID)

	_, c = env.doJSON(t, http.MethodPost, "/api/forum/posts", map[string]any{
		"title": "no content",
	}, alice)
	requireHTTPError(t, env.call(env.ForumHandler.CreatePost, c), http.StatusBadRequest)
}

func TestUpdatePost_Ownership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)
	bob := env.seedUser(t, "bob", models.RoleUser, false)
	root := env.seedUser(t, "root", models.RoleAdmin, false)

	post := seedPost(t, env, alice.ID)
	body := map[string]any{"title": "edited", "content": "edited"}

	_, c := env.doJSON(t, http.MethodPut, "/api/forum/posts/1", body, bob)
	setParams(c, "id", "1")
	requireHTTPError(t, env.call(env.ForumHandler.UpdatePost, c), http.StatusForbidden)

	// a missing post is 404 even for a stranger
	_, c = env.doJSON(t, http.MethodPut, "/api/forum/posts/99", body, bob)
	setParams(c, "id", "99")
	requireHTTPError(t, env.call(env.ForumHandler.UpdatePost, c), http.StatusNotFound)

	rec, c := env.doJSON(t, http.MethodPut, "/api/forum/posts/1", body, root)
	setParams(c, "id", "1")
	require.NoError(t, env.call(env.ForumHandler.UpdatePost, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.ForumPost
	require.NoError(t, env.DB.First(&got, post.ID).Error)
	require.Equal(t, "edited", got.Title)
}

func TestDeletePost_CascadesChildren(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	post := seedPost(t, env, alice.ID)
	require.NoError(t, env.DB.Create(&models.ForumComment{PostID: post.ID, UserID: alice.ID, Content: "nice"}).Error)
	require.NoError(t, env.DB.Create(&models.ForumLike{PostID: post.ID, UserID: alice.ID, IsLike: true}).Error)

	rec, c := env.doJSON(t, http.MethodDelete, "/api/forum/posts/1", nil, alice)
	setParams(c, "id", "1")
	require.NoError(t, env.call(env.ForumHandler.DeletePost, c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var comments, likes int64
	env.DB.Model(&models.ForumComment{}).Where("post_id = ?", post.ID).Count(&comments)
	env.DB.Model(&models.ForumLike{}).Where("post_id = ?", post.ID).Count(&likes)
	require.Zero(t, comments)
	require.Zero(t, likes)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)
	bob := env.seedUser(t, "bob", models.RoleUser, false)

	seedPost(t, env, alice.ID)

	rec, c := env.doJSON(t, http.MethodPost, "/api/forum/posts/1/comments", map[string]any{
		"content": "what turbo?",
	}, bob)
	setParams(c, "id", "1")
	require.NoError(t, env.call(env.ForumHandler.CreateComment, c))
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[models.ForumComment](t, rec)

	// commenting on a missing post is a 404
	_, c = env.doJSON(t, http.MethodPost, "/api/forum/posts/99/comments", map[string]any{
		"content": "ghost",
	}, bob)
	setParams(c, "id", "99")
	requireHTTPError(t, env.call(env.ForumHandler.CreateComment, c), http.StatusNotFound)

	// only the author or an admin may edit
	_, c = env.doJSON(t, http.MethodPut, "/api/forum/posts/1/comments/1", map[string]any{
		"content": "hijacked",
	}, alice)
	setParams(c, "id", "1", "commentId", "1")
	requireHTTPError(t, env.call(env.ForumHandler.UpdateComment, c), http.StatusForbidden)

	rec, c = env.doJSON(t, http.MethodGet, "/api/forum/posts/1/comments", nil, nil)
	setParams(c, "id", "1")
	require.NoError(t, env.ForumHandler.GetComments(c))
	require.Len(t, decode[[]models.ForumComment](t, rec), 1)

	rec, c = env.doJSON(t, http.MethodDelete, "/api/forum/posts/1/comments/1", nil, bob)
	setParams(c, "id", "1", "commentId", "1")
	require.NoError(t, env.call(env.ForumHandler.DeleteComment, c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	err := env.DB.First(&models.ForumComment{}, comment.ID).Error
	require.Error(t, err)
}

func TestLikePost_ToggleAndReplace(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)
	bob := env.seedUser(t, "bob", models.RoleUser, false)

	post := seedPost(t, env, alice.ID)

	likePost(t, env, alice, post.ID, true)
	likes, dislikes := likeCounts(t, env, post.ID)
	require.EqualValues(t, 1, likes)
	require.EqualValues(t, 0, dislikes)

	// one row per user and post
	likePost(t, env, bob, post.ID, true)
	likes, _ = likeCounts(t, env, post.ID)
	require.EqualValues(t, 2, likes)

	// repeating a reaction removes it
	likePost(t, env, bob, post.ID, true)
	likes, _ = likeCounts(t, env, post.ID)
	require.EqualValues(t, 1, likes)

	// the opposite reaction replaces it
	likePost(t, env, alice, post.ID, false)
	likes, dislikes = likeCounts(t, env, post.ID)
	require.EqualValues(t, 0, likes)
	require.EqualValues(t, 1, dislikes)

	var rows int64
	env.DB.Model(&models.ForumLike{}).Where("post_id = ?", post.ID).Count(&rows)
	require.EqualValues(t, 1, rows)
}
