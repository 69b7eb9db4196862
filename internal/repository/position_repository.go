package repository

import (
	"errors"
	"fmt"
	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

// PositionRepository 定义岗位数据的持久化操作接口。
type PositionRepository interface {
	// Upsert 按 Code 创建或复用岗位：先 INSERT，唯一键冲突则回查并更新维度外键。
	Upsert(position *model.Position) (created bool, err error)
	FindByCode(code string) (*model.Position, error)
	FindAll() ([]model.Position, error)
	// FindAllWithDepartment 只返回有部门归属的岗位（Vacancy Projector 的输入集合）。
	FindAllWithDepartment() ([]model.Position, error)
}

// positionRepository 是 PositionRepository 接口的 GORM 实现。
type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

// Upsert 创建或复用岗位。复用分支更新名称和维度外键，保持幂等。
func (r *positionRepository) Upsert(position *model.Position) (bool, error) {
	if position == nil {
		return false, fmt.Errorf("position is nil")
	}
	if position.Code == "" {
		return false, fmt.Errorf("position code is required")
	}
	if position.DepartmentID == 0 {
		return false, fmt.Errorf("position department is required")
	}

	err := r.db.Create(position).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, err
	}

	var existing model.Position
	if err := r.db.Where("code = ?", position.Code).First(&existing).Error; err != nil {
		return false, err
	}

	tx := r.db.Model(&model.Position{}).
		Where("id = ?", existing.ID).
		Select("name", "department_id", "location_id", "brand_id", "level_id").
		Updates(position)
	if tx.Error != nil {
		return false, tx.Error
	}

	position.ID = existing.ID
	position.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *positionRepository) FindByCode(code string) (*model.Position, error) {
	if code == "" {
		return nil, fmt.Errorf("position code is required")
	}
	var position model.Position
	if err := r.db.Where("code = ?", code).First(&position).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) FindAll() ([]model.Position, error) {
	var positions []model.Position
	if err := r.db.Order("code ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) FindAllWithDepartment() ([]model.Position, error) {
	var positions []model.Position
	if err := r.db.Where("department_id IS NOT NULL AND department_id > 0").
		Order("code ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}
