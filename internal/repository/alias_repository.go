package repository

import (
	"fmt"
	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

// ManagerAliasRepository 定义上级姓名别名表的持久化操作接口。
// 别名表由管理员人工维护，协调引擎每次运行开始时整表加载、运行中只读，
// 因此这里只需要最朴素的增删查。
type ManagerAliasRepository interface {
	Create(alias *model.ManagerAlias) error
	FindAll() ([]model.ManagerAlias, error)
	Delete(aliasID uint) error
}

// managerAliasRepository 是 ManagerAliasRepository 接口的 GORM 实现。
type managerAliasRepository struct {
	db *gorm.DB
}

func NewManagerAliasRepository(db *gorm.DB) ManagerAliasRepository {
	return &managerAliasRepository{db: db}
}

func (r *managerAliasRepository) Create(alias *model.ManagerAlias) error {
	if alias == nil {
		return fmt.Errorf("alias is nil")
	}
	if alias.Alias == "" || alias.EmployeeCode == "" {
		return fmt.Errorf("alias and employee code are required")
	}
	return r.db.Create(alias).Error
}

func (r *managerAliasRepository) FindAll() ([]model.ManagerAlias, error) {
	var aliases []model.ManagerAlias
	if err := r.db.Order("id ASC").Find(&aliases).Error; err != nil {
		return nil, err
	}
	return aliases, nil
}

func (r *managerAliasRepository) Delete(aliasID uint) error {
	if aliasID == 0 {
		return fmt.Errorf("alias id is required")
	}
	res := r.db.Delete(&model.ManagerAlias{}, aliasID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
