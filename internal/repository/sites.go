package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
)

// Columns matched by the site search, one per searchable text field.
var siteSearchColumns = []string{
	"site_location",
	"device_name",
	"sdwan_site_id",
	"lan_ip",
	"atm_port",
	"el_isp_info_details",
	"el_isp_capacity",
	"el_isp_l2_ip",
	"ilevant_isp_info_details",
	"ilevant_isp_capacity",
	"horizon_isp_info_details",
	"horizon_isp_capacity",
	"horizon_isp_l2_ip",
}

type GormSiteRepository struct {
	db *gorm.DB
}

func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

func (r *GormSiteRepository) List(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	if err := r.db.WithContext(ctx).Find(&sites).Error; err != nil {
		return nil, errors.Wrap(err, "list sites")
	}
	return sites, nil
}

func (r *GormSiteRepository) Search(ctx context.Context, q string) ([]domain.Site, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.List(ctx)
	}

	conds := make([]string, 0, len(siteSearchColumns))
	args := make([]interface{}, 0, len(siteSearchColumns))
	if strings.EqualFold(r.db.Name(), "postgres") {
		for _, col := range siteSearchColumns {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+q+"%")
		}
	} else {
		for _, col := range siteSearchColumns {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(q)+"%")
		}
	}

	var sites []domain.Site
	err := r.db.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Find(&sites).Error
	if err != nil {
		return nil, errors.Wrap(err, "search sites")
	}
	return sites, nil
}

func (r *GormSiteRepository) ListByLocation(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	if err := r.db.WithContext(ctx).Order("site_location").Find(&sites).Error; err != nil {
		return nil, errors.Wrap(err, "list sites by location")
	}
	return sites, nil
}

func (r *GormSiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	var site domain.Site
	if err := r.db.WithContext(ctx).First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) Create(ctx context.Context, site *domain.Site) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(site).Error, "create site")
}

func (r *GormSiteRepository) Update(ctx context.Context, site *domain.Site) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(site).Error, "update site")
}

func (r *GormSiteRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.Site{}, id).Error, "delete site")
}
