package model

import "time"

// 任职类型的规范词汇表：历史数据中出现过的各种叫法统一归一到这两类。
// 归一化规则见 recon 包的 Assignment Ledger。
const (
	AssignmentTypePermanent = "permanent"
	AssignmentTypeActing    = "acting"
)

// PositionAssignment 对应数据库中 position_assignments 表，
// 表示一名员工在 [StartDate, EndDate] 期间占据某个岗位。
// EndDate 为 NULL 表示该任职当前仍然有效。
// 同一岗位允许同时存在多条活跃任职（交接期共占），由 Vacancy Projector
// 标记为 contested，不会被静默合并。
type PositionAssignment struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PositionID     uint       `gorm:"not null;index" json:"positionId"`
	EmployeeID     uint       `gorm:"not null;index" json:"employeeId"`
	AssignmentType string     `gorm:"type:varchar(32);not null" json:"assignmentType"`
	StartDate      time.Time  `gorm:"not null" json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (PositionAssignment) TableName() string {
	return "position_assignments"
}
