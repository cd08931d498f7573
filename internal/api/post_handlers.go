package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
)

type postView struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AuthorID      int64     `json:"authorId"`
	CommunityID   int64     `json:"communityId,omitempty"`
	Type          string    `json:"type"`
	URL           string    `json:"url,omitempty"`
	MediaURL      string    `json:"mediaUrl,omitempty"`
	UpvoteCount   int64     `json:"upvoteCount"`
	DownvoteCount int64     `json:"downvoteCount"`
	Score         int64     `json:"score"`
	NumComments   int64     `json:"numComments"`
	Status        string    `json:"status"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newPostView(p *models.Post) postView {
	return postView{
		ID:            p.ID,
		Title:         p.Title,
		Body:          p.Body,
		AuthorID:      p.AuthorID,
		CommunityID:   p.CommunityID.Int64,
		Type:          p.Type,
		URL:           p.URL.String,
		MediaURL:      p.MediaURL,
		UpvoteCount:   p.UpvoteCount,
		DownvoteCount: p.DownvoteCount,
		Score:         p.Score,
		NumComments:   p.NumComments,
		Status:        p.Status,
		Tags:          p.Tags,
		CreatedAt:     p.CreatedAt,
	}
}

func newPostViews(posts []*models.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views
}

// createPost accepts JSON for text and link posts, multipart form data for
// image and video posts
func (r *Router) createPost(c *gin.Context) {
	input, err := parsePostInput(c)
	if err != nil {
		respondError(c, err)
		return
	}

	post, events, err := r.posts.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondOK(c, http.StatusCreated, "post", newPostView(post), "post created")
}

func parsePostInput(c *gin.Context) (core.PostInput, error) {
	if c.ContentType() == "application/json" {
		var req struct {
			Title       string   `json:"title"`
			Body        string   `json:"body"`
			Type        string   `json:"type"`
			URL         string   `json:"url"`
			CommunityID int64    `json:"communityId"`
			Tags        []string `json:"tags"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return core.PostInput{}, core.Validationf("invalid request body")
		}
		return core.PostInput{
			Title:       req.Title,
			Body:        req.Body,
			Type:        req.Type,
			URL:         req.URL,
			CommunityID: req.CommunityID,
			Tags:        req.Tags,
		}, nil
	}

	communityID, _ := strconv.ParseInt(c.PostForm("communityId"), 10, 64)
	input := core.PostInput{
		Title:       c.PostForm("title"),
		Body:        c.PostForm("body"),
		Type:        c.PostForm("type"),
		URL:         c.PostForm("url"),
		CommunityID: communityID,
	}
	if tags := c.PostForm("tags"); tags != "" {
		input.Tags = strings.Split(tags, ",")
	}
	if file, header, err := c.Request.FormFile("media"); err == nil {
		input.Media = file
		input.MediaFilename = header.Filename
	}
	return input, nil
}

func (r *Router) getPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	post, err := r.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "post", newPostView(post), "")
}

func (r *Router) updatePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	post, events, err := r.posts.Update(c.Request.Context(), currentUserID(c), id, req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondOK(c, http.StatusOK, "post", newPostView(post), "post updated")
}

func (r *Router) deletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	events, err := r.posts.Delete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondMessage(c, http.StatusOK, "post deleted")
}

func (r *Router) savePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.posts.Save(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "post saved")
}

func (r *Router) unsavePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.posts.Unsave(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "post unsaved")
}

func (r *Router) getFeed(c *gin.Context) {
	p := parsePagination(c)
	posts, total, err := r.posts.Feed(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "posts", newPostViews(posts), total, p)
}

func (r *Router) listCommunityPosts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p := parsePagination(c)
	posts, total, err := r.posts.ListByCommunity(c.Request.Context(), id, p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "posts", newPostViews(posts), total, p)
}

func (r *Router) listUserPosts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p := parsePagination(c)
	posts, total, err := r.posts.ListByAuthor(c.Request.Context(), id, p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "posts", newPostViews(posts), total, p)
}

func (r *Router) listSavedPosts(c *gin.Context) {
	p := parsePagination(c)
	posts, total, err := r.posts.ListSaved(c.Request.Context(), currentUserID(c), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "posts", newPostViews(posts), total, p)
}

func (r *Router) listTagPosts(c *gin.Context) {
	p := parsePagination(c)
	posts, total, err := r.posts.ListByTag(c.Request.Context(), c.Param("tag"), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "posts", newPostViews(posts), total, p)
}

func (r *Router) votePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r.castVote(c, models.PostRef(id))
}

func (r *Router) voteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r.castVote(c, models.CommentRef(id))
}

func (r *Router) castVote(c *gin.Context, target models.TargetRef) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	var direction models.VoteDirection
	switch req.Direction {
	case "up":
		direction = models.VoteUp
	case "down":
		direction = models.VoteDown
	default:
		respondError(c, core.Validationf("direction must be up or down"))
		return
	}

	result, events, err := r.votes.Cast(c.Request.Context(), currentUserID(c), target, direction)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondOK(c, http.StatusOK, "vote", result, "")
}
