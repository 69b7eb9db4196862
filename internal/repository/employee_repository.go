package repository

import (
	"errors"
	"fmt"
	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

// EmployeeRepository 定义员工数据的持久化操作接口。
// ManagerID 的写入只允许通过 UpdateManager，其余字段更新不得触碰汇报边，
// 保证“汇报边只由 Linker / Validator / 显式管理操作修改”这一约束落在仓库层。
type EmployeeRepository interface {
	// Upsert 按 Code 创建或复用员工：先 INSERT，唯一键冲突则回查并更新基础字段。
	// 返回 created 表示是否为本次新建。不会修改已有记录的 ManagerID。
	Upsert(employee *model.Employee) (created bool, err error)
	FindByCode(code string) (*model.Employee, error)
	FindAll() ([]model.Employee, error)
	CountAll() (int64, error)
	// UpdateManager 更新汇报边；managerID 传 nil 表示显式断开（升为根节点）。
	UpdateManager(employeeID uint, managerID *uint) error
	// DeleteAllWithAssignments 批量重置：级联删除所有任职记录后删除所有员工。
	DeleteAllWithAssignments() error
}

// employeeRepository 是 EmployeeRepository 接口的 GORM 实现。
type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Upsert 创建或复用员工。
// 复用分支只更新来源表格可能变化的基础字段（姓名、组织、标志位、维度外键、职级），
// 不更新 ManagerID：上级引用统一由 Linker 的第二遍处理。
func (r *employeeRepository) Upsert(employee *model.Employee) (bool, error) {
	if employee == nil {
		return false, fmt.Errorf("employee is nil")
	}
	if employee.Code == "" {
		return false, fmt.Errorf("employee code is required")
	}

	err := r.db.Create(employee).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, err
	}

	var existing model.Employee
	if err := r.db.Where("code = ?", employee.Code).First(&existing).Error; err != nil {
		return false, err
	}

	tx := r.db.Model(&model.Employee{}).
		Where("id = ?", existing.ID).
		Select("name", "organization", "is_manager", "is_blocked", "level",
			"position_id", "department_id", "location_id", "brand_id").
		Updates(employee)
	if tx.Error != nil {
		return false, tx.Error
	}

	// 把已有记录的主键和当前汇报边回填给调用方，后续处理基于规范 ID 进行。
	employee.ID = existing.ID
	employee.ManagerID = existing.ManagerID
	employee.CreatedAt = existing.CreatedAt
	return false, nil
}

// FindByCode 根据规范编码查找员工。
func (r *employeeRepository) FindByCode(code string) (*model.Employee, error) {
	if code == "" {
		return nil, fmt.Errorf("employee code is required")
	}
	var employee model.Employee
	if err := r.db.Where("code = ?", code).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindAll() ([]model.Employee, error) {
	var employees []model.Employee
	if err := r.db.Order("code ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepository) CountAll() (int64, error) {
	var total int64
	if err := r.db.Model(&model.Employee{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateManager 更新员工的汇报边。
// 使用 Update 单字段写入而不是 Updates 整体保存，避免误改其他字段。
// 不检查 RowsAffected：重跑时写入相同值，MySQL 返回 0 行受影响，属正常情况。
func (r *employeeRepository) UpdateManager(employeeID uint, managerID *uint) error {
	if employeeID == 0 {
		return fmt.Errorf("employee id is required")
	}
	return r.db.Model(&model.Employee{}).
		Where("id = ?", employeeID).
		Update("manager_id", managerID).Error
}

// DeleteAllWithAssignments 批量重置员工表。
// 在事务中先删任职记录再删员工，避免出现指向已删除员工的任职行。
func (r *employeeRepository) DeleteAllWithAssignments() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.PositionAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.Employee{}).Error; err != nil {
			return err
		}
		return nil
	})
}
