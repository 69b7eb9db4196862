package model

import "time"

// JobTitleLevel 对应数据库中 job_title_levels 表，表示职级（用于前端分组展示）。
// SortOrder 在全表范围内唯一且单调递增（允许有空洞），批量重排序时必须保持该约束。
// 职级只影响展示分组，不参与汇报树的推导。
type JobTitleLevel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;unique" json:"name"`
	SortOrder int       `gorm:"not null;unique" json:"sortOrder"`
	Color     *string   `gorm:"type:varchar(32)" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (JobTitleLevel) TableName() string {
	return "job_title_levels"
}
