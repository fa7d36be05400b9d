package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 运营账号数据访问接口
type OperatorRepository interface {
	GetByID(id uint) (*models.Operator, error)
	GetByUsername(username string) (*models.Operator, error)
	Create(operator *models.Operator) error
	UpdateLastLogin(id uint, at time.Time) error
	UpdatePassword(id uint, passwordHash string) error
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建运营账号仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// GetByID 根据 ID 获取运营账号
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	if id == 0 {
		return nil, errors.New("invalid operator id")
	}
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// GetByUsername 根据用户名获取运营账号
func (r *GormOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, errors.New("invalid username")
	}
	var operator models.Operator
	if err := r.db.Where("username = ?", name).First(&operator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// Create 创建运营账号
func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	if operator == nil {
		return errors.New("operator is nil")
	}
	return r.db.Create(operator).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *GormOperatorRepository) UpdateLastLogin(id uint, at time.Time) error {
	if id == 0 {
		return errors.New("invalid operator id")
	}
	return r.db.Model(&models.Operator{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// UpdatePassword 更新密码哈希
func (r *GormOperatorRepository) UpdatePassword(id uint, passwordHash string) error {
	if id == 0 {
		return errors.New("invalid operator id")
	}
	if passwordHash == "" {
		return errors.New("invalid password hash")
	}
	return r.db.Model(&models.Operator{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}
