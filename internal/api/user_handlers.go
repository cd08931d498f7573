package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
)

// userView is the public shape of an account. The password hash, email and
// phone never leave the server on public routes.
type userView struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	IsVerified   bool   `json:"isVerified"`
	Bio          string `json:"bio,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Website      string `json:"website,omitempty"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	NumPosts     int64  `json:"numPosts"`
	NumComments  int64  `json:"numComments"`
	NumFollowers int64  `json:"numFollowers"`
	NumFollowing int64  `json:"numFollowing"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		Bio:          u.Bio.String,
		Gender:       u.Gender.String,
		Website:      u.Website.String,
		AvatarURL:    u.AvatarURL,
		NumPosts:     u.NumPosts,
		NumComments:  u.NumComments,
		NumFollowers: u.NumFollowers,
		NumFollowing: u.NumFollowing,
	}
}

func newUserViews(users []*models.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views
}

func (r *Router) registerUser(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	user, err := r.users.Register(c.Request.Context(), core.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "user", newUserView(user), "account created")
}

func (r *Router) getUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := r.users.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "user", newUserView(user), "")
}

func (r *Router) getProfile(c *gin.Context) {
	user, err := r.users.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "user", newUserView(user), "")
}

func (r *Router) updateProfile(c *gin.Context) {
	var req struct {
		Bio     *string `json:"bio"`
		Gender  *string `json:"gender"`
		Website *string `json:"website"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	user, err := r.users.UpdateProfile(c.Request.Context(), currentUserID(c), core.ProfileInput{
		Bio:     req.Bio,
		Gender:  req.Gender,
		Website: req.Website,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "user", newUserView(user), "profile updated")
}

func (r *Router) changePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}
	if err := r.users.ChangePassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password changed")
}

func (r *Router) updateAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		respondError(c, core.Validationf("avatar file is required"))
		return
	}
	defer file.Close()

	user, err := r.users.UpdateAvatar(c.Request.Context(), currentUserID(c), file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "user", newUserView(user), "avatar updated")
}

func (r *Router) followUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	events, err := r.relationships.Follow(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondMessage(c, http.StatusOK, "now following")
}

func (r *Router) unfollowUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.relationships.Unfollow(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "unfollowed")
}

func (r *Router) listFollowers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p := parsePagination(c)
	users, err := r.relationships.Followers(c.Request.Context(), id, p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "users", newUserViews(users), "")
}

func (r *Router) listFollowing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p := parsePagination(c)
	users, err := r.relationships.Following(c.Request.Context(), id, p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "users", newUserViews(users), "")
}

func (r *Router) adminListUsers(c *gin.Context) {
	p := parsePagination(c)
	users, total, err := r.users.List(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "users", newUserViews(users), total, p)
}
