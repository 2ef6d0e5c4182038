package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gearsphere/motorclub-backend/internal/events"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/service/search"
	"github.com/gearsphere/motorclub-backend/internal/upload"
	"github.com/gearsphere/motorclub-backend/internal/util"
)

const forumPhotoDir = "forum"

type ForumHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
	Uploads  *upload.Store
}

type postRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (h *ForumHandler) GetPosts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	query := h.DB.WithContext(ctx).Model(&models.ForumPost{})
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return httpError(err)
	}

	var posts []models.ForumPost
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": posts,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ForumHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var post models.ForumPost
	if err := h.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return httpError(err)
	}

	var photos []models.ForumPostPhoto
	if err := h.DB.WithContext(ctx).Where("post_id = ?", post.ID).Find(&photos).Error; err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"post": post, "photos": photos})
}

func (h *ForumHandler) CreatePost(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}

	ctx := c.Request().Context()

	post := models.ForumPost{
		UserID:   user.ID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	}
	if err := h.DB.WithContext(ctx).Create(&post).Error; err != nil {
		return httpError(err)
	}

	if err := search.IndexPost(ctx, h.ES, &post); err != nil {
		c.Logger().Errorf("post index error: %v", err)
	}

	publish(c, h.Producer, events.TopicForumEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "post_created",
		"postID": post.ID,
		"userID": user.ID,
	})

	return c.JSON(http.StatusCreated, post)
}

// loadOwnedPost fetches the post and checks authorship. Missing posts are 404
// for everyone; the ownership comparison runs only on an existing entity.
func (h *ForumHandler) loadOwnedPost(c echo.Context) (*models.ForumPost, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}

	var post models.ForumPost
	if err := h.DB.WithContext(c.Request().Context()).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return nil, httpError(err)
	}

	if !authmw.RequireOwnerOrAdmin(authmw.CurrentUser(c), post.UserID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "you can only manage your own posts")
	}
	return &post, nil
}

func (h *ForumHandler) UpdatePost(c echo.Context) error {
	post, err := h.loadOwnedPost(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}

	ctx := c.Request().Context()

	post.Title = req.Title
	post.Content = req.Content
	post.Category = req.Category
	if err := h.DB.WithContext(ctx).Save(post).Error; err != nil {
		return httpError(err)
	}

	if err := search.IndexPost(ctx, h.ES, post); err != nil {
		c.Logger().Errorf("post index error: %v", err)
	}

	return c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) DeletePost(c echo.Context) error {
	post, err := h.loadOwnedPost(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var photos []models.ForumPostPhoto
	if err := h.DB.WithContext(ctx).Where("post_id = ?", post.ID).Find(&photos).Error; err != nil {
		return httpError(err)
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.ForumComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.ForumLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.ForumPostPhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		return httpError(err)
	}

	for _, photo := range photos {
		if err := h.Uploads.Delete(forumPhotoDir, photo.Filename); err != nil {
			c.Logger().Errorf("forum photo file delete error: %v", err)
		}
	}

	if err := search.DeleteDoc(ctx, h.ES, search.PostsIndex, post.ID); err != nil {
		c.Logger().Errorf("post deindex error: %v", err)
	}

	publish(c, h.Producer, events.TopicForumEvents, fmt.Sprint(post.UserID), map[string]any{
		"type":   "post_deleted",
		"postID": post.ID,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ForumHandler) GetComments(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var comments []models.ForumComment
	if err := h.DB.WithContext(c.Request().Context()).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *ForumHandler) CreateComment(c echo.Context) error {
	user := authmw.CurrentUser(c)

	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var post models.ForumPost
	if err := h.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		return httpError(err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	comment := models.ForumComment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := h.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *ForumHandler) loadOwnedComment(c echo.Context) (*models.ForumComment, error) {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil, err
	}

	var comment models.ForumComment
	if err := h.DB.WithContext(c.Request().Context()).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "comment not found")
		}
		return nil, httpError(err)
	}

	if !authmw.RequireOwnerOrAdmin(authmw.CurrentUser(c), comment.UserID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "you can only manage your own comments")
	}
	return &comment, nil
}

func (h *ForumHandler) UpdateComment(c echo.Context) error {
	comment, err := h.loadOwnedComment(c)
	if err != nil {
		return err
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	comment.Content = req.Content
	if err := h.DB.WithContext(c.Request().Context()).Save(comment).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *ForumHandler) DeleteComment(c echo.Context) error {
	comment, err := h.loadOwnedComment(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(comment).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LikePost records the caller's reaction to a post. One row per (user, post):
// repeating the same reaction removes it, the opposite reaction replaces it.
func (h *ForumHandler) LikePost(c echo.Context) error {
	user := authmw.CurrentUser(c)

	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		IsLike bool `json:"isLike"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	var post models.ForumPost
	if err := h.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		return httpError(err)
	}

	var existing models.ForumLike
	err = h.DB.WithContext(ctx).Where("post_id = ? AND user_id = ?", post.ID, user.ID).First(&existing).Error
	switch {
	case err == nil && existing.IsLike == req.IsLike:
		if err := h.DB.WithContext(ctx).Delete(&existing).Error; err != nil {
			return httpError(err)
		}
	case err == nil:
		if err := h.DB.WithContext(ctx).Model(&existing).Update("is_like", req.IsLike).Error; err != nil {
			return httpError(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.ForumLike{PostID: post.ID, UserID: user.ID, IsLike: req.IsLike}
		if err := h.DB.WithContext(ctx).Create(&like).Error; err != nil {
			return httpError(err)
		}
	default:
		return httpError(err)
	}

	return h.likeCounts(c, post.ID)
}

func (h *ForumHandler) GetLikes(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.likeCounts(c, postID)
}

func (h *ForumHandler) likeCounts(c echo.Context, postID uint) error {
	ctx := c.Request().Context()

	var likes, dislikes int64
	if err := h.DB.WithContext(ctx).Model(&models.ForumLike{}).Where("post_id = ? AND is_like = ?", postID, true).Count(&likes).Error; err != nil {
		return httpError(err)
	}
	if err := h.DB.WithContext(ctx).Model(&models.ForumLike{}).Where("post_id = ? AND is_like = ?", postID, false).Count(&dislikes).Error; err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"likes": likes, "dislikes": dislikes})
}

func (h *ForumHandler) UploadPostPhoto(c echo.Context) error {
	post, err := h.loadOwnedPost(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	saved, err := h.Uploads.Save(forumPhotoDir, fh)
	if err != nil {
		return httpError(err)
	}

	photo := models.ForumPostPhoto{
		PostID:       post.ID,
		Filename:     saved.Filename,
		URL:          saved.URL,
		OriginalName: saved.OriginalName,
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&photo).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, photo)
}

func (h *ForumHandler) SearchPosts(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, posts, err := search.SearchPosts(c.Request().Context(), h.ES, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "posts": posts})
}
