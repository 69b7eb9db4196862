package model

import "time"

// ManagerAlias 对应数据库中 manager_aliases 表。
// 人工维护的“姓名变体 → 员工规范编码”映射，用于解析上级引用时的兜底匹配。
// 例如同一个人在不同源表里写作“带中间名的全名”和“不带中间名的全名”。
// 该表由管理员单独增删改，协调引擎在每次运行开始时整表加载，运行中只读。
type ManagerAlias struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Alias        string    `gorm:"type:varchar(255);not null;unique" json:"alias"`
	EmployeeCode string    `gorm:"type:varchar(64);not null" json:"employeeCode"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (ManagerAlias) TableName() string {
	return "manager_aliases"
}
