package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
)

type GormReportRepository struct {
	db *gorm.DB
}

func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) ListDetailed(ctx context.Context) ([]ReportDetail, error) {
	var reports []domain.ProblemReport
	err := r.db.WithContext(ctx).Order("issue_date DESC").Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reports")
	}

	// Resolve site locations with an explicit fetch instead of a relation.
	var sites []domain.Site
	if err := r.db.WithContext(ctx).Select("id", "site_location").Find(&sites).Error; err != nil {
		return nil, errors.Wrap(err, "resolve report sites")
	}
	locations := make(map[int64]string, len(sites))
	for _, s := range sites {
		locations[s.ID] = s.SiteLocation
	}

	details := make([]ReportDetail, 0, len(reports))
	for _, rep := range reports {
		details = append(details, ReportDetail{
			ProblemReport: rep,
			SiteLocation:  locations[rep.SiteId],
		})
	}
	return details, nil
}

func (r *GormReportRepository) GetByID(ctx context.Context, id int64) (*domain.ProblemReport, error) {
	var report domain.ProblemReport
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *GormReportRepository) Create(ctx context.Context, report *domain.ProblemReport) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(report).Error, "create report")
}

func (r *GormReportRepository) Update(ctx context.Context, report *domain.ProblemReport) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(report).Error, "update report")
}

func (r *GormReportRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.ProblemReport{}, id).Error, "delete report")
}

func (r *GormReportRepository) CountBySite(ctx context.Context, siteID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProblemReport{}).
		Where("site_id = ?", siteID).Count(&count).Error
	return count, errors.Wrap(err, "count reports by site")
}
