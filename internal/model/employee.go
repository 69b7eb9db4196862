package model

import "time"

// Employee 对应数据库中 employees 表，表示组织架构中的一名员工。
// 汇报关系通过 ManagerID 指向上级员工实现树形结构（森林）：
//   - ManagerID 为 NULL 表示根节点（没有上级）。
//   - ManagerID 只允许由协调引擎（Manager Reference Linker）或显式的管理操作修改。
//
// Code 是员工的规范标识符（canonical identifier），在所有数据源之间保持稳定，
// 与源表格里出现的任何外部编号体系无关。
type Employee struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"type:varchar(64);not null;unique" json:"code"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Organization string    `gorm:"type:varchar(255)" json:"organization"`
	IsManager    bool      `gorm:"default:false" json:"isManager"`
	IsBlocked    bool      `gorm:"default:false" json:"isBlocked"`
	Level        *string   `gorm:"type:varchar(100)" json:"level"`
	PositionID   *uint     `gorm:"index" json:"positionId"`
	DepartmentID *uint     `gorm:"index" json:"departmentId"`
	LocationID   *uint     `gorm:"index" json:"locationId"`
	BrandID      *uint     `gorm:"index" json:"brandId"`
	ManagerID    *uint     `gorm:"index" json:"managerId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EmployeeNode 是汇报树的节点，用于构建前端需要的嵌套树形响应。
// 与 Employee（数据库模型）的区别：
//   - 不含审计字段和维度外键
//   - 增加了 Children 字段，用于嵌套下级员工
type EmployeeNode struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Organization string          `json:"organization"`
	IsManager    bool            `json:"isManager"`
	Level        *string         `json:"level"`
	ManagerCode  *string         `json:"managerCode"`
	Children     []*EmployeeNode `json:"children"`
}

// TableName 指定 GORM 使用的表名
func (Employee) TableName() string {
	return "employees"
}
