package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/models"
)

// ReportRepository provides report-related database operations
type ReportRepository struct {
	*Repository
}

// NewReportRepository creates a new report repository
func NewReportRepository(repo *Repository) *ReportRepository {
	return &ReportRepository{Repository: repo}
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// Update updates a report
func (r *ReportRepository) Update(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// ListByStatus retrieves reports in the given status, newest first
func (r *ReportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Report, error) {
	var reports []*models.Report
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// CountByStatus returns the number of reports in the given status
func (r *ReportRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// ListByTarget retrieves the reports filed against a target, newest first
func (r *ReportRepository) ListByTarget(ctx context.Context, target models.TargetRef) ([]*models.Report, error) {
	var reports []*models.Report
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
