package repository

import (
	"errors"
	"fmt"
	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

// DimensionRepository 定义部门/地点/品牌三类维度实体的持久化操作接口。
// 三类实体结构相同（按规范化名称去重），因此合并在一个仓库里实现。
//
// GetOrCreateXxx 是“解析或创建”的单一原子操作：
//  1. 直接尝试 INSERT；
//  2. 命中唯一键冲突（说明并发批次或历史运行已创建）则回查取回已有记录。
//
// 先插入再回查而不是先查再插，避免“查不到→插入→其实别人刚插完”的竞态窗口，
// 以数据库的唯一约束作为去重的唯一事实来源。
type DimensionRepository interface {
	GetOrCreateDepartment(name string) (*model.Department, bool, error)
	GetOrCreateLocation(name string) (*model.Location, bool, error)
	GetOrCreateBrand(name string) (*model.Brand, bool, error)
	FindAllDepartments() ([]model.Department, error)
	FindAllLocations() ([]model.Location, error)
	FindAllBrands() ([]model.Brand, error)
}

// dimensionRepository 是 DimensionRepository 接口的 GORM 实现。
type dimensionRepository struct {
	db *gorm.DB
}

func NewDimensionRepository(db *gorm.DB) DimensionRepository {
	return &dimensionRepository{db: db}
}

// GetOrCreateDepartment 按名称取回或创建部门。
// 返回值 created 表示本次调用是否真正插入了新记录（协调报告里区分 created/reused）。
// 调用方必须传入已经规范化后的名称（见 recon.NormalizeName）。
func (r *dimensionRepository) GetOrCreateDepartment(name string) (*model.Department, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("department name is required")
	}

	dept := &model.Department{Name: name}
	err := r.db.Create(dept).Error
	if err == nil {
		return dept, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	// 唯一键冲突：记录已存在，回查取回规范 ID。
	var existing model.Department
	if err := r.db.Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// GetOrCreateLocation 按名称取回或创建地点，语义同 GetOrCreateDepartment。
func (r *dimensionRepository) GetOrCreateLocation(name string) (*model.Location, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("location name is required")
	}

	loc := &model.Location{Name: name}
	err := r.db.Create(loc).Error
	if err == nil {
		return loc, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	var existing model.Location
	if err := r.db.Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// GetOrCreateBrand 按名称取回或创建品牌，语义同 GetOrCreateDepartment。
func (r *dimensionRepository) GetOrCreateBrand(name string) (*model.Brand, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("brand name is required")
	}

	brand := &model.Brand{Name: name}
	err := r.db.Create(brand).Error
	if err == nil {
		return brand, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	var existing model.Brand
	if err := r.db.Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *dimensionRepository) FindAllDepartments() ([]model.Department, error) {
	var depts []model.Department
	if err := r.db.Order("id ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *dimensionRepository) FindAllLocations() ([]model.Location, error) {
	var locs []model.Location
	if err := r.db.Order("id ASC").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

func (r *dimensionRepository) FindAllBrands() ([]model.Brand, error) {
	var brands []model.Brand
	if err := r.db.Order("id ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}
