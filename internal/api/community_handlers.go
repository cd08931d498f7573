package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/models"
)

type communityView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Rules        string `json:"rules,omitempty"`
	CreatorID    int64  `json:"creatorId"`
	IsPrivate    bool   `json:"isPrivate"`
	MembersCount int64  `json:"membersCount"`
}

func newCommunityView(cm *models.Community) communityView {
	return communityView{
		ID:           cm.ID,
		Name:         cm.Name,
		Title:        cm.Title,
		Description:  cm.Description,
		Rules:        cm.Rules.String,
		CreatorID:    cm.CreatorID,
		IsPrivate:    cm.IsPrivate,
		MembersCount: cm.MembersCount,
	}
}

type communityRequest struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
	IsPrivate   bool   `json:"isPrivate"`
}

func (r *Router) createCommunity(c *gin.Context) {
	var req communityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	community, err := r.communities.Create(c.Request.Context(), currentUserID(c), core.CommunityInput{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Rules:       req.Rules,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "community", newCommunityView(community), "community created")
}

func (r *Router) getCommunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	community, err := r.communities.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "community", newCommunityView(community), "")
}

func (r *Router) listCommunities(c *gin.Context) {
	p := parsePagination(c)
	communities, total, err := r.communities.List(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]communityView, 0, len(communities))
	for _, cm := range communities {
		views = append(views, newCommunityView(cm))
	}
	respondPage(c, "communities", views, total, p)
}

func (r *Router) updateCommunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req communityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.Validationf("invalid request body"))
		return
	}

	community, err := r.communities.Update(c.Request.Context(), currentUserID(c), id, core.CommunityInput{
		Title:       req.Title,
		Description: req.Description,
		Rules:       req.Rules,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "community", newCommunityView(community), "community updated")
}

func (r *Router) joinCommunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.relationships.JoinCommunity(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "joined community")
}

func (r *Router) leaveCommunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.relationships.LeaveCommunity(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "left community")
}

func (r *Router) listModerators(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	moderators, err := r.communities.Moderators(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]int64, 0, len(moderators))
	for _, m := range moderators {
		ids = append(ids, m.UserID)
	}
	respondOK(c, http.StatusOK, "moderators", ids, "")
}

func (r *Router) addModerator(c *gin.Context) {
	communityID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if err := r.relationships.AddModerator(c.Request.Context(), currentUserID(c), communityID, userID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "moderator added")
}

func (r *Router) removeModerator(c *gin.Context) {
	communityID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if err := r.relationships.RemoveModerator(c.Request.Context(), currentUserID(c), communityID, userID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "moderator removed")
}

func (r *Router) inviteToCommunity(c *gin.Context) {
	communityID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	events, err := r.communities.Invite(c.Request.Context(), currentUserID(c), communityID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	r.dispatcher.Dispatch(c.Request.Context(), events)
	respondMessage(c, http.StatusOK, "user invited")
}

func (r *Router) adminDeleteCommunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.communities.AdminDelete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "community deleted")
}
