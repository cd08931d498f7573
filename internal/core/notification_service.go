package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
)

// NotificationService reads and acknowledges notifications. Creation goes
// through the Dispatcher only.
type NotificationService struct {
	notifications *db.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates a notification service
func NewNotificationService(repo *db.Repository) *NotificationService {
	return &NotificationService{
		notifications: db.NewNotificationRepository(repo),
		logger:        logging.WithService("notifications"),
	}
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, int64, error) {
	notifs, err := s.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list notifications")
	}
	total, err := s.notifications.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count notifications")
	}
	return notifs, total, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, Internalf(err, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead marks one notification read. Only the recipient may acknowledge.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	notif, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return Internalf(err, "failed to load notification")
	}
	if notif == nil {
		return NotFoundf("notification %d not found", notificationID)
	}
	if notif.UserID != userID {
		return Forbiddenf("not your notification")
	}
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return Internalf(err, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every notification of the caller read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return Internalf(err, "failed to mark notifications read")
	}
	s.logger.Debug("All notifications read", zap.Int64("user_id", userID))
	return nil
}
