package repository

import (
	"fmt"
	"orgchart_go/internal/model"
	"time"

	"gorm.io/gorm"
)

// AssignmentRepository 定义任职记录的持久化操作接口。
// 任职记录只有两个写入口：新建任职、结束任职。协调引擎从不根据汇报树反推任职。
type AssignmentRepository interface {
	Create(assignment *model.PositionAssignment) error
	// FindExisting 按 (岗位, 员工, 开始日期) 查找已有记录，用于重跑去重。
	// 任职表没有唯一键（允许交接期共占），幂等性由单写者约束下的先查后插保证。
	FindExisting(positionID, employeeID uint, startDate time.Time) (*model.PositionAssignment, error)
	// FindActiveByPosition 返回岗位 P 在时刻 T 的活跃任职：
	// startDate <= T 且（endDate 为 NULL 或 endDate >= T）。
	FindActiveByPosition(positionID uint, at time.Time) ([]model.PositionAssignment, error)
	// FindLatestEndedByPosition 返回岗位最近一条已结束的任职（按 endDate 倒序第一条）。
	FindLatestEndedByPosition(positionID uint) (*model.PositionAssignment, error)
	FindByPosition(positionID uint) ([]model.PositionAssignment, error)
	// EndAssignment 结束一条任职记录（把 endDate 从 NULL 置为给定日期）。
	EndAssignment(assignmentID uint, endDate time.Time) error
}

// assignmentRepository 是 AssignmentRepository 接口的 GORM 实现。
type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(assignment *model.PositionAssignment) error {
	if assignment == nil {
		return fmt.Errorf("assignment is nil")
	}
	if assignment.PositionID == 0 || assignment.EmployeeID == 0 {
		return fmt.Errorf("assignment position and employee are required")
	}
	return r.db.Create(assignment).Error
}

func (r *assignmentRepository) FindExisting(positionID, employeeID uint, startDate time.Time) (*model.PositionAssignment, error) {
	var assignment model.PositionAssignment
	err := r.db.Where("position_id = ? AND employee_id = ? AND start_date = ?",
		positionID, employeeID, startDate).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindActiveByPosition(positionID uint, at time.Time) ([]model.PositionAssignment, error) {
	var assignments []model.PositionAssignment
	err := r.db.Where("position_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
		positionID, at, at).
		Order("start_date ASC").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) FindLatestEndedByPosition(positionID uint) (*model.PositionAssignment, error) {
	var assignment model.PositionAssignment
	err := r.db.Where("position_id = ? AND end_date IS NOT NULL", positionID).
		Order("end_date DESC").First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByPosition(positionID uint) ([]model.PositionAssignment, error) {
	var assignments []model.PositionAssignment
	err := r.db.Where("position_id = ?", positionID).
		Order("start_date ASC").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) EndAssignment(assignmentID uint, endDate time.Time) error {
	if assignmentID == 0 {
		return fmt.Errorf("assignment id is required")
	}
	tx := r.db.Model(&model.PositionAssignment{}).
		Where("id = ? AND end_date IS NULL", assignmentID).
		Update("end_date", endDate)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
