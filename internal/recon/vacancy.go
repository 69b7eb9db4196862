package recon

import (
	"errors"
	"fmt"
	"orgchart_go/internal/repository"
	"time"

	"gorm.io/gorm"
)

// 空缺优先级。
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// VacancyConfig 是空缺优先级的判定参数。阈值来自配置文件，
// 不把业务数字硬编码进投影循环。
type VacancyConfig struct {
	// HighDays / MediumDays：空缺超过该天数时的优先级下限。
	HighDays   int
	MediumDays int
	// ImportantDepartments 是重点部门名单（按规范化名称匹配），
	// 重点部门的空缺优先级整体上调一档。
	ImportantDepartments []string
}

// PositionStatus 是单个岗位的空缺投影结果。
// 这是按需重算的派生视图，从不落库，避免与任职台账产生陈旧性分歧。
type PositionStatus struct {
	PositionCode   string `json:"positionCode"`
	PositionName   string `json:"positionName"`
	DepartmentName string `json:"departmentName"`
	IsVacant       bool   `json:"isVacant"`
	// Contested 表示同一岗位当前有多条活跃任职（交接期共占），
	// 不视为空缺，但单独标出来供运营处理。
	Contested     bool   `json:"contested"`
	DaysVacant    int    `json:"daysVacant"`
	Priority      string `json:"priority,omitempty"`
	ActiveHolders []uint `json:"activeHolders,omitempty"`
}

// Projector 从已校验的汇报树和任职台账推导空缺视图。
type Projector struct {
	positionRepo   repository.PositionRepository
	assignmentRepo repository.AssignmentRepository
	dimensionRepo  repository.DimensionRepository
	cfg            VacancyConfig
}

func NewProjector(
	positionRepo repository.PositionRepository,
	assignmentRepo repository.AssignmentRepository,
	dimensionRepo repository.DimensionRepository,
	cfg VacancyConfig,
) *Projector {
	return &Projector{
		positionRepo:   positionRepo,
		assignmentRepo: assignmentRepo,
		dimensionRepo:  dimensionRepo,
		cfg:            cfg,
	}
}

// Project 计算每个有部门归属岗位在 now 时刻的空缺状态。
//   - isVacant：now 时刻没有任何活跃任职。
//   - daysVacant：now 减去最近一次已结束任职的 endDate；从未有人任职的岗位
//     从岗位创建时间起算。
//   - priority：由部门重要性与 daysVacant 阈值计算的纯函数。
func (p *Projector) Project(now time.Time) ([]PositionStatus, error) {
	positions, err := p.positionRepo.FindAllWithDepartment()
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}

	departments, err := p.dimensionRepo.FindAllDepartments()
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	deptNames := make(map[uint]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}

	important := make(map[string]struct{}, len(p.cfg.ImportantDepartments))
	for _, name := range p.cfg.ImportantDepartments {
		important[foldKey(name)] = struct{}{}
	}

	statuses := make([]PositionStatus, 0, len(positions))
	for _, position := range positions {
		status := PositionStatus{
			PositionCode:   position.Code,
			PositionName:   position.Name,
			DepartmentName: deptNames[position.DepartmentID],
		}

		active, err := p.assignmentRepo.FindActiveByPosition(position.ID, now)
		if err != nil {
			return nil, fmt.Errorf("active assignments of %s: %w", position.Code, err)
		}

		if len(active) > 0 {
			// 共占只看不同员工的重叠任职；同一员工的多条活跃记录
			// （比如类型变更补录）不算共占。
			holders := make(map[uint]struct{}, len(active))
			for _, a := range active {
				holders[a.EmployeeID] = struct{}{}
				status.ActiveHolders = append(status.ActiveHolders, a.EmployeeID)
			}
			status.Contested = len(holders) > 1
			statuses = append(statuses, status)
			continue
		}

		status.IsVacant = true
		status.DaysVacant, err = p.daysVacant(position.ID, position.CreatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("latest ended assignment of %s: %w", position.Code, err)
		}

		_, isImportant := important[foldKey(status.DepartmentName)]
		status.Priority = classifyPriority(p.cfg, isImportant, status.DaysVacant)
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// daysVacant 计算空缺天数：最近一次已结束任职的 endDate 到 now 的完整天数；
// 岗位从未有人任职时从创建时间起算。
// 只有“查无记录”才走创建时间兜底，其余存储错误原样上抛，
// 不允许用一个看似合理的天数掩盖故障。
func (p *Projector) daysVacant(positionID uint, createdAt, now time.Time) (int, error) {
	since := createdAt
	latest, err := p.assignmentRepo.FindLatestEndedByPosition(positionID)
	switch {
	case err == nil:
		if latest != nil && latest.EndDate != nil {
			since = *latest.EndDate
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 从未有人任职，保持创建时间起算
	default:
		return 0, err
	}

	days := int(now.Sub(since).Hours() / 24)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// classifyPriority 是优先级判定的纯函数：
// 先按空缺天数定基础档位，重点部门再整体上调一档。
func classifyPriority(cfg VacancyConfig, importantDept bool, daysVacant int) string {
	priority := PriorityLow
	switch {
	case daysVacant > cfg.HighDays:
		priority = PriorityHigh
	case daysVacant > cfg.MediumDays:
		priority = PriorityMedium
	}

	if importantDept {
		switch priority {
		case PriorityLow:
			priority = PriorityMedium
		case PriorityMedium:
			priority = PriorityHigh
		}
	}
	return priority
}
