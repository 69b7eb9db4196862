package model

import "time"

// 维度实体：部门 / 地点 / 品牌。
// 三者结构相同但分表存储，均以规范化后的名称（去首尾空白、压缩内部空白）
// 作为唯一键，创建操作是幂等的 upsert-by-name。

// Department 对应数据库中 departments 表。
type Department struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Location 对应数据库中 locations 表。
type Location struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Brand 对应数据库中 brands 表。
type Brand struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (Department) TableName() string {
	return "departments"
}

// TableName 指定 GORM 使用的表名
func (Location) TableName() string {
	return "locations"
}

// TableName 指定 GORM 使用的表名
func (Brand) TableName() string {
	return "brands"
}
