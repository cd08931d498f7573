package core

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/internal/realtime"
	"github.com/burrowhq/burrow/pkg/logging"
)

// Event is a side effect produced by a core operation. Services return the
// events alongside their result instead of performing them inline; the caller
// hands them to the Dispatcher after the primary write has committed.
type Event interface {
	isEvent()
}

// NotifyEvent creates a notification row and pushes it to the recipient's
// realtime channel. Zero-valued reference ids are stored as NULL.
type NotifyEvent struct {
	Recipient   int64
	Type        int16
	Message     string
	ActorID     int64
	PostID      int64
	CommentID   int64
	CommunityID int64
}

func (NotifyEvent) isEvent() {}

// ReportEvent files a classifier report against flagged content. The
// reporter is NULL to distinguish system reports from user reports.
type ReportEvent struct {
	Target        models.TargetRef
	Reason        string
	Severity      string
	SpamScore     float64
	ToxicityScore float64
}

func (ReportEvent) isEvent() {}

// ContentEvent fans content changes out to realtime subscribers of the post
// and, when set, the community topic.
type ContentEvent struct {
	Name        string
	PostID      int64
	CommunityID int64
	Payload     interface{}
}

func (ContentEvent) isEvent() {}

type notificationStore interface {
	Create(ctx context.Context, notif *models.Notification) error
}

type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
}

// Dispatcher executes post-commit events. Every side effect here is
// best-effort: a failure is logged and the remaining events still run, so a
// committed operation never surfaces an error because a notification or
// report write failed.
type Dispatcher struct {
	notifications notificationStore
	reports       reportStore
	broadcaster   realtime.Broadcaster
	logger        *zap.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(notifications notificationStore, reports reportStore, broadcaster realtime.Broadcaster) *Dispatcher {
	if broadcaster == nil {
		broadcaster = realtime.NopBroadcaster{}
	}
	return &Dispatcher{
		notifications: notifications,
		reports:       reports,
		broadcaster:   broadcaster,
		logger:        logging.WithComponent("dispatcher"),
	}
}

// Dispatch runs all events in order
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case NotifyEvent:
			d.deliverNotification(ctx, e)
		case ReportEvent:
			d.fileReport(ctx, e)
		case ContentEvent:
			d.publishContent(e)
		}
	}
}

func (d *Dispatcher) deliverNotification(ctx context.Context, e NotifyEvent) {
	notif := &models.Notification{
		UserID:      e.Recipient,
		Type:        e.Type,
		Message:     e.Message,
		ActorID:     nullInt64(e.ActorID),
		PostID:      nullInt64(e.PostID),
		CommentID:   nullInt64(e.CommentID),
		CommunityID: nullInt64(e.CommunityID),
	}
	if err := d.notifications.Create(ctx, notif); err != nil {
		d.logger.Warn("failed to persist notification",
			zap.Int64("recipient", e.Recipient),
			zap.String("type", models.NotifyTypeName(e.Type)),
			zap.Error(err))
		return
	}

	payload := realtime.Envelope("notification", map[string]interface{}{
		"id":      notif.ID,
		"type":    models.NotifyTypeName(notif.Type),
		"message": notif.Message,
	})
	d.broadcaster.NotifyUser(e.Recipient, payload)
}

func (d *Dispatcher) fileReport(ctx context.Context, e ReportEvent) {
	report := &models.Report{
		Target:        e.Target,
		Reason:        e.Reason,
		Status:        models.ReportStatusOpen,
		Severity:      e.Severity,
		SpamScore:     sql.NullFloat64{Float64: e.SpamScore, Valid: true},
		ToxicityScore: sql.NullFloat64{Float64: e.ToxicityScore, Valid: true},
	}
	if err := d.reports.Create(ctx, report); err != nil {
		d.logger.Warn("failed to file classifier report",
			zap.String("target_type", e.Target.Kind.String()),
			zap.Int64("target_id", e.Target.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) publishContent(e ContentEvent) {
	payload := realtime.Envelope(e.Name, e.Payload)
	if e.PostID != 0 {
		d.broadcaster.PublishPost(e.PostID, payload)
	}
	if e.CommunityID != 0 {
		d.broadcaster.PublishCommunity(e.CommunityID, payload)
	}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
