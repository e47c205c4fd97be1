package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.SysUser, error) {
	var users []domain.SysUser
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.SysUser, error) {
	var user domain.SysUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.SysUser, error) {
	var user domain.SysUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.SysUser) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.SysUser) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(user).Error, "update user")
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.SysUser{}, id).Error, "delete user")
}

func (r *GormUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("role = ?", role).Count(&count).Error
	return count, errors.Wrap(err, "count users by role")
}
