package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

// ReportService manages abuse reports
type ReportService struct {
	reports     *db.ReportRepository
	posts       *db.PostRepository
	comments    *db.CommentRepository
	users       *db.UserRepository
	communities *db.CommunityRepository
	logger      *zap.Logger
}

// NewReportService creates a report service
func NewReportService(repo *db.Repository) *ReportService {
	return &ReportService{
		reports:     db.NewReportRepository(repo),
		posts:       db.NewPostRepository(repo),
		comments:    db.NewCommentRepository(repo),
		users:       db.NewUserRepository(repo),
		communities: db.NewCommunityRepository(repo),
		logger:      logging.WithService("reports"),
	}
}

// File records a user report against a post, comment or user
func (s *ReportService) File(ctx context.Context, reporterID int64, target models.TargetRef, reason string) (*models.Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "reports.file")
	defer span.End()

	if strings.TrimSpace(reason) == "" {
		return nil, Validationf("report reason is required")
	}
	if err := s.checkTarget(ctx, target); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID: nullInt64(reporterID),
		Target:     target,
		Reason:     reason,
		Status:     models.ReportStatusOpen,
		Severity:   models.SeverityLow,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, Internalf(err, "failed to file report")
	}

	s.logger.Info("Report filed",
		zap.Int64("report_id", report.ID),
		zap.String("target_type", target.Kind.String()),
		zap.Int64("target_id", target.ID))
	return report, nil
}

// checkTarget verifies the reported entity exists. Every target kind is
// handled; an unknown kind is a validation error.
func (s *ReportService) checkTarget(ctx context.Context, target models.TargetRef) error {
	switch target.Kind {
	case models.TargetPost:
		post, err := s.posts.GetByID(ctx, target.ID)
		if err != nil {
			return Internalf(err, "failed to load post")
		}
		if post == nil {
			return NotFoundf("post %d not found", target.ID)
		}
	case models.TargetComment:
		comment, err := s.comments.GetByID(ctx, target.ID)
		if err != nil {
			return Internalf(err, "failed to load comment")
		}
		if comment == nil {
			return NotFoundf("comment %d not found", target.ID)
		}
	case models.TargetUser:
		user, err := s.users.GetByID(ctx, target.ID)
		if err != nil {
			return Internalf(err, "failed to load user")
		}
		if user == nil {
			return NotFoundf("user %d not found", target.ID)
		}
	default:
		return Validationf("unknown report target kind")
	}
	return nil
}

// Resolve transitions a report to resolved, recording who handled it and
// what was done. Resolving a resolved report is a conflict; reports are
// never reopened or deleted.
func (s *ReportService) Resolve(ctx context.Context, handlerID, reportID int64, action string) (*models.Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "reports.resolve")
	defer span.End()

	handler, err := s.users.GetByID(ctx, handlerID)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if handler == nil {
		return nil, NotFoundf("user %d not found", handlerID)
	}
	if handler.Role != models.RoleAdmin {
		moderates, err := s.moderatesAnything(ctx, handlerID)
		if err != nil {
			return nil, err
		}
		if !moderates {
			return nil, Forbiddenf("moderator or admin role required")
		}
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, Internalf(err, "failed to load report")
	}
	if report == nil {
		return nil, NotFoundf("report %d not found", reportID)
	}
	if report.Status != models.ReportStatusOpen {
		return nil, Conflictf("report %d is already resolved", reportID)
	}

	report.Status = models.ReportStatusResolved
	report.ActionTaken = nullString(action)
	report.HandledBy = nullInt64(handlerID)
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, Internalf(err, "failed to resolve report")
	}

	s.logger.Info("Report resolved",
		zap.Int64("report_id", reportID),
		zap.Int64("handled_by", handlerID),
		zap.String("action", action))
	return report, nil
}

func (s *ReportService) moderatesAnything(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.communities.DB().WithContext(ctx).
		Model(&models.CommunityModerator{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, Internalf(err, "failed to check moderator")
	}
	return count > 0, nil
}

// ListOpen lists unresolved reports for the moderation queue
func (s *ReportService) ListOpen(ctx context.Context, limit, offset int) ([]*models.Report, int64, error) {
	reports, err := s.reports.ListByStatus(ctx, models.ReportStatusOpen, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list reports")
	}
	total, err := s.reports.CountByStatus(ctx, models.ReportStatusOpen)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count reports")
	}
	return reports, total, nil
}

// ListByTarget lists every report ever filed against one entity
func (s *ReportService) ListByTarget(ctx context.Context, target models.TargetRef) ([]*models.Report, error) {
	if !target.Kind.Valid() {
		return nil, Validationf("unknown report target kind")
	}
	reports, err := s.reports.ListByTarget(ctx, target)
	if err != nil {
		return nil, Internalf(err, "failed to list reports")
	}
	return reports, nil
}
