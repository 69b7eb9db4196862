package service

import (
	"errors"
	"orgchart_go/internal/model"
	"orgchart_go/internal/recon"
	"orgchart_go/internal/repository"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 请求参数非法
	ErrInvalidInput = errors.New("invalid input")
	// ErrPositionNotFound 岗位不存在
	ErrPositionNotFound = errors.New("position not found")
	// ErrLevelOrderConflict 职级重排序输入不一致（未覆盖全部职级或有重复）
	ErrLevelOrderConflict = errors.New("level reorder input is inconsistent")
)

// OrgChartService 封装组织架构的读侧视图和少量管理操作。
// 设计目标：
// 1. Handler 不直接操作 Repository，避免协议层混入业务规则。
// 2. 统一错误语义，把底层 gorm/repository 错误转换为 service 哨兵错误。
// 3. 聚合汇报树构建、空缺投影等“非纯 CRUD”的读逻辑。
// 所有视图都是查询时从存储现算的，引擎不在内存里缓存任何跨请求状态。
type OrgChartService interface {
	// GetReportingTree 返回嵌套的汇报树（森林：可能有多个根）。
	GetReportingTree() ([]*model.EmployeeNode, error)
	ListEmployees() ([]model.Employee, error)
	// ListVacancies 返回当前空缺岗位（含优先级、空缺天数）和共占岗位。
	ListVacancies(now time.Time) ([]recon.PositionStatus, error)
	// GetActiveAssignments 返回岗位在时刻 at 的活跃任职。
	GetActiveAssignments(positionCode string, at time.Time) ([]model.PositionAssignment, error)
	ListLevels() ([]model.JobTitleLevel, error)
	ReorderLevels(orderedIDs []uint) error
}

type orgChartService struct {
	employeeRepo   repository.EmployeeRepository
	positionRepo   repository.PositionRepository
	assignmentRepo repository.AssignmentRepository
	levelRepo      repository.JobTitleLevelRepository
	projector      *recon.Projector
}

func NewOrgChartService(
	employeeRepo repository.EmployeeRepository,
	positionRepo repository.PositionRepository,
	assignmentRepo repository.AssignmentRepository,
	levelRepo repository.JobTitleLevelRepository,
	projector *recon.Projector,
) OrgChartService {
	return &orgChartService{
		employeeRepo:   employeeRepo,
		positionRepo:   positionRepo,
		assignmentRepo: assignmentRepo,
		levelRepo:      levelRepo,
		projector:      projector,
	}
}

// GetReportingTree 构建汇报树（根节点 + 递归 children）。
// 实现采用两遍扫描：
// 1. 第一遍为每个员工创建节点并放入 map（ID -> node）
// 2. 第二遍按 ManagerID 把子节点挂到上级节点上
// 上级缺失（协调后理论上不该出现，防御数据漂移）的节点作为根返回，避免节点丢失。
func (s *orgChartService) GetReportingTree() ([]*model.EmployeeNode, error) {
	if s.employeeRepo == nil {
		return nil, ErrInternal
	}

	employees, err := s.employeeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*model.EmployeeNode, len(employees))
	codes := make(map[uint]string, len(employees))
	for _, e := range employees {
		nodes[e.ID] = &model.EmployeeNode{
			Code:         e.Code,
			Name:         e.Name,
			Organization: e.Organization,
			IsManager:    e.IsManager,
			Level:        e.Level,
			Children:     []*model.EmployeeNode{},
		}
		codes[e.ID] = e.Code
	}

	tree := make([]*model.EmployeeNode, 0)
	for _, e := range employees {
		node := nodes[e.ID]
		if e.ManagerID != nil {
			if parent, ok := nodes[*e.ManagerID]; ok {
				managerCode := codes[*e.ManagerID]
				node.ManagerCode = &managerCode
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (s *orgChartService) ListEmployees() ([]model.Employee, error) {
	if s.employeeRepo == nil {
		return nil, ErrInternal
	}
	return s.employeeRepo.FindAll()
}

// ListVacancies 委托 Projector 现算空缺视图，只保留空缺和共占两类条目。
func (s *orgChartService) ListVacancies(now time.Time) ([]recon.PositionStatus, error) {
	if s.projector == nil {
		return nil, ErrInternal
	}

	statuses, err := s.projector.Project(now)
	if err != nil {
		return nil, err
	}

	out := make([]recon.PositionStatus, 0, len(statuses))
	for _, st := range statuses {
		if st.IsVacant || st.Contested {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *orgChartService) GetActiveAssignments(positionCode string, at time.Time) ([]model.PositionAssignment, error) {
	if s.positionRepo == nil || s.assignmentRepo == nil {
		return nil, ErrInternal
	}
	positionCode = recon.NormalizeName(positionCode)
	if positionCode == "" {
		return nil, ErrInvalidInput
	}

	position, err := s.positionRepo.FindByCode(positionCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return s.assignmentRepo.FindActiveByPosition(position.ID, at)
}

func (s *orgChartService) ListLevels() ([]model.JobTitleLevel, error) {
	if s.levelRepo == nil {
		return nil, ErrInternal
	}
	return s.levelRepo.FindAll()
}

// ReorderLevels 批量重排职级顺序，底层在事务内保证 sort_order 唯一约束不破。
func (s *orgChartService) ReorderLevels(orderedIDs []uint) error {
	if s.levelRepo == nil {
		return ErrInternal
	}
	if len(orderedIDs) == 0 {
		return ErrInvalidInput
	}
	if err := s.levelRepo.Reorder(orderedIDs); err != nil {
		if errors.Is(err, repository.ErrLevelOrderConflict) {
			return ErrLevelOrderConflict
		}
		return err
	}
	return nil
}
