package model

import "time"

// Position 对应数据库中 positions 表，表示一个岗位。
// 岗位必须归属某个部门（DepartmentID 非空），地点/品牌/职级为可选维度。
// “空缺”不是存储字段：一个岗位是否空缺由 Vacancy Projector 根据
// position_assignments 中的活跃记录实时推导。
type Position struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string    `gorm:"type:varchar(64);not null;unique" json:"code"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	DepartmentID uint      `gorm:"not null;index" json:"departmentId"`
	LocationID   *uint     `gorm:"index" json:"locationId"`
	BrandID      *uint     `gorm:"index" json:"brandId"`
	LevelID      *uint     `gorm:"index" json:"levelId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (Position) TableName() string {
	return "positions"
}
