package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
)

type commentView struct {
	ID            int64         `json:"id"`
	PostID        int64         `json:"postId"`
	ParentID      int64         `json:"parentId,omitempty"`
	AuthorID      int64         `json:"authorId"`
	Body          string        `json:"body"`
	Path          string        `json:"path"`
	UpvoteCount   int64         `json:"upvoteCount"`
	DownvoteCount int64         `json:"downvoteCount"`
	Score         int64         `json:"score"`
	RepliesCount  int64         `json:"repliesCount"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	Replies       []commentView `json:"replies,omitempty"`
}

func newCommentView(cm *models.Comment) commentView {
	return commentView{
		ID:            cm.ID,
		PostID:        cm.PostID,
		ParentID:      cm.ParentID.Int64,
		AuthorID:      cm.AuthorID,
		Body:          cm.Body,
		Path:          cm.Path,
		UpvoteCount:   cm.UpvoteCount,
		DownvoteCount: cm.DownvoteCount,
		Score:         cm.Score,
		RepliesCount:  cm.RepliesCount,
		Status:        cm.Status,
		CreatedAt:     cm.CreatedAt,
	}
}

func newThreadViews(nodes []*core.CommentNode) []commentView {
	views := make([]commentView, 0, len(nodes))
	for _, node := range nodes {
		view := newCommentView(node.Comment)
		view.Replies = newThreadViews(node.Replies)
		views = append(views, view)
	}
	return views
}

func (r *Router) createComment(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ParentID int64  `json:"parentId"`
		Body     string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	comment, events, err := r.comments.Create(c.Request.Context(), currentUserID(c), postID, req.ParentID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondOK(c, http.StatusCreated, "comment", newCommentView(comment), "comment created")
}

func (r *Router) updateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	comment, events, err := r.comments.Update(c.Request.Context(), currentUserID(c), id, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondOK(c, http.StatusOK, "comment", newCommentView(comment), "comment updated")
}

func (r *Router) deleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.comments.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "comment deleted")
}

func (r *Router) getThread(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	thread, err := r.comments.Thread(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "comments", newThreadViews(thread), "")
}

func (r *Router) listUserComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p := parsePagination(c)
	comments, err := r.comments.ListByAuthor(c.Request.Context(), id, p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, newCommentView(cm))
	}
	respondOK(c, http.StatusOK, "comments", views, "")
}
