package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burrowhq/burrow/internal/models"
)

type notificationView struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	ActorID     int64     `json:"actorId,omitempty"`
	PostID      int64     `json:"postId,omitempty"`
	CommentID   int64     `json:"commentId,omitempty"`
	CommunityID int64     `json:"communityId,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newNotificationView(n *models.Notification) notificationView {
	return notificationView{
		ID:          n.ID,
		Type:        models.NotifyTypeName(n.Type),
		Message:     n.Message,
		ActorID:     n.ActorID.Int64,
		PostID:      n.PostID.Int64,
		CommentID:   n.CommentID.Int64,
		CommunityID: n.CommunityID.Int64,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func (r *Router) listNotifications(c *gin.Context) {
	p := parsePagination(c)
	notifs, total, err := r.notifications.ListForUser(c.Request.Context(), currentUserID(c), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]notificationView, 0, len(notifs))
	for _, n := range notifs {
		views = append(views, newNotificationView(n))
	}
	respondPage(c, "notifications", views, total, p)
}

func (r *Router) unreadCount(c *gin.Context) {
	count, err := r.notifications.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "unread", count, "")
}

func (r *Router) markNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.notifications.MarkRead(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "notification read")
}

func (r *Router) markAllNotificationsRead(c *gin.Context) {
	if err := r.notifications.MarkAllRead(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "all notifications read")
}
