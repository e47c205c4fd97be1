package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
)

// SiteRepository interface for site inventory data access
type SiteRepository interface {
	// List returns all sites in store-default order.
	List(ctx context.Context) ([]domain.Site, error)

	// Search returns sites where any searchable text column contains q as a
	// case-insensitive substring; an empty q behaves like List.
	Search(ctx context.Context, q string) ([]domain.Site, error)

	// ListByLocation returns all sites ordered by location name ascending.
	ListByLocation(ctx context.Context) ([]domain.Site, error)

	GetByID(ctx context.Context, id int64) (*domain.Site, error)
	Create(ctx context.Context, site *domain.Site) error
	Update(ctx context.Context, site *domain.Site) error
	Delete(ctx context.Context, id int64) error
}

// ReportDetail is a problem report joined with its site's location name.
type ReportDetail struct {
	domain.ProblemReport
	SiteLocation string
}

// ReportRepository interface for daily problem report data access
type ReportRepository interface {
	// ListDetailed returns all reports newest issue date first, each with the
	// referenced site's location resolved.
	ListDetailed(ctx context.Context) ([]ReportDetail, error)

	GetByID(ctx context.Context, id int64) (*domain.ProblemReport, error)
	Create(ctx context.Context, report *domain.ProblemReport) error
	Update(ctx context.Context, report *domain.ProblemReport) error
	Delete(ctx context.Context, id int64) error

	// CountBySite counts reports referencing the given site.
	CountBySite(ctx context.Context, siteID int64) (int64, error)
}

// UserRepository interface for portal account data access
type UserRepository interface {
	List(ctx context.Context) ([]domain.SysUser, error)
	GetByID(ctx context.Context, id int64) (*domain.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.SysUser, error)
	Create(ctx context.Context, user *domain.SysUser) error
	Update(ctx context.Context, user *domain.SysUser) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

// Repos bundles the repositories handlers work against.
type Repos struct {
	Sites   SiteRepository
	Reports ReportRepository
	Users   UserRepository
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		Sites:   NewGormSiteRepository(db),
		Reports: NewGormReportRepository(db),
		Users:   NewGormUserRepository(db),
	}
}
