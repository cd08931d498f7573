package core

import (
	"context"
	"errors"
	"testing"

	"github.com/burrowhq/burrow/internal/models"
)

type fakeNotificationStore struct {
	created []*models.Notification
	err     error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	n.ID = int64(len(f.created) + 1)
	f.created = append(f.created, n)
	return nil
}

type fakeReportStore struct {
	created []*models.Report
	err     error
}

func (f *fakeReportStore) Create(_ context.Context, r *models.Report) error {
	if f.err != nil {
		return f.err
	}
	r.ID = int64(len(f.created) + 1)
	f.created = append(f.created, r)
	return nil
}

func TestDispatcherNotification(t *testing.T) {
	notifs := &fakeNotificationStore{}
	reports := &fakeReportStore{}
	d := NewDispatcher(notifs, reports, nil)

	d.Dispatch(context.Background(), []Event{
		NotifyEvent{
			Recipient: 10,
			Type:      models.NotifyTypeUpvote,
			Message:   "alice upvoted your post",
			ActorID:   5,
			PostID:    42,
		},
	})

	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs.created))
	}
	n := notifs.created[0]
	if n.UserID != 10 || n.Type != models.NotifyTypeUpvote {
		t.Errorf("unexpected notification: %+v", n)
	}
	if !n.ActorID.Valid || n.ActorID.Int64 != 5 {
		t.Errorf("expected actor_id 5, got %+v", n.ActorID)
	}
	if n.CommentID.Valid {
		t.Error("expected comment_id to be NULL for a post upvote")
	}
}

func TestDispatcherReport(t *testing.T) {
	notifs := &fakeNotificationStore{}
	reports := &fakeReportStore{}
	d := NewDispatcher(notifs, reports, nil)

	d.Dispatch(context.Background(), []Event{
		ReportEvent{
			Target:        models.PostRef(42),
			Reason:        "classifier flagged content",
			Severity:      models.SeverityHigh,
			SpamScore:     0.91,
			ToxicityScore: 0.12,
		},
	})

	if len(reports.created) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports.created))
	}
	r := reports.created[0]
	if r.ReporterID.Valid {
		t.Error("classifier reports must have a NULL reporter")
	}
	if r.Status != models.ReportStatusOpen {
		t.Errorf("expected open status, got %s", r.Status)
	}
	if r.Target.Kind != models.TargetPost || r.Target.ID != 42 {
		t.Errorf("unexpected target: %+v", r.Target)
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	notifs := &fakeNotificationStore{err: errors.New("db down")}
	reports := &fakeReportStore{}
	d := NewDispatcher(notifs, reports, nil)

	// A failing notification must not stop later events.
	d.Dispatch(context.Background(), []Event{
		NotifyEvent{Recipient: 1, Type: models.NotifyTypeFollow, Message: "bob followed you"},
		ReportEvent{Target: models.CommentRef(3), Reason: "spam", Severity: models.SeverityLow},
	})

	if len(reports.created) != 1 {
		t.Fatalf("expected report to be filed despite notification failure, got %d", len(reports.created))
	}
}

func TestNullInt64(t *testing.T) {
	if nullInt64(0).Valid {
		t.Error("zero id should map to NULL")
	}
	v := nullInt64(9)
	if !v.Valid || v.Int64 != 9 {
		t.Errorf("unexpected value: %+v", v)
	}
}
