package service

import (
	"context"
	"errors"
	"orgchart_go/internal/model"
	"orgchart_go/internal/recon"
	"orgchart_go/internal/repository"
	"sync"

	"gorm.io/gorm"
)

var (
	// ErrRunInProgress 已有一次协调运行在进行中
	ErrRunInProgress = errors.New("reconciliation run already in progress")
	// ErrNoReport 尚未执行过协调运行
	ErrNoReport = errors.New("no reconciliation run has been executed yet")
	// ErrAliasNotFound 别名不存在
	ErrAliasNotFound = errors.New("manager alias not found")
	// ErrAliasAlreadyExists 别名已存在
	ErrAliasAlreadyExists = errors.New("manager alias already exists")
)

// ReconService 封装协调引擎的触发入口和别名表管理。
// 运行串行化由 Runner 内的 Redis 互斥锁保证；这里只负责把引擎错误
// 翻译成 service 哨兵错误，并保留最近一次运行的诊断报告供查询。
// 报告只保留在内存里：它是诊断视图，不是权威状态，进程重启后重跑即可。
type ReconService interface {
	// RunBatch 执行一次协调运行，返回诊断报告（部分失败时同样返回）。
	RunBatch(ctx context.Context, batch *recon.Batch) (*recon.Report, error)
	// LatestReport 返回最近一次运行的诊断报告。
	LatestReport() (*recon.Report, error)
	ListAliases() ([]model.ManagerAlias, error)
	CreateAlias(alias, employeeCode string) (*model.ManagerAlias, error)
	DeleteAlias(aliasID uint) error
	// ResetEmployees 批量重置：级联删除全部任职记录和员工。
	ResetEmployees() error
}

type reconService struct {
	runner       *recon.Runner
	aliasRepo    repository.ManagerAliasRepository
	employeeRepo repository.EmployeeRepository

	mu     sync.RWMutex
	latest *recon.Report
}

func NewReconService(
	runner *recon.Runner,
	aliasRepo repository.ManagerAliasRepository,
	employeeRepo repository.EmployeeRepository,
) ReconService {
	return &reconService{
		runner:       runner,
		aliasRepo:    aliasRepo,
		employeeRepo: employeeRepo,
	}
}

func (s *reconService) RunBatch(ctx context.Context, batch *recon.Batch) (*recon.Report, error) {
	if s.runner == nil {
		return nil, ErrInternal
	}
	if batch == nil {
		return nil, ErrInvalidInput
	}

	report, err := s.runner.Run(ctx, batch)
	if report != nil {
		s.mu.Lock()
		s.latest = report
		s.mu.Unlock()
	}
	if err != nil {
		if errors.Is(err, recon.ErrRunInProgress) {
			return report, ErrRunInProgress
		}
		return report, err
	}
	return report, nil
}

func (s *reconService) LatestReport() (*recon.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

func (s *reconService) ListAliases() ([]model.ManagerAlias, error) {
	if s.aliasRepo == nil {
		return nil, ErrInternal
	}
	return s.aliasRepo.FindAll()
}

func (s *reconService) CreateAlias(alias, employeeCode string) (*model.ManagerAlias, error) {
	if s.aliasRepo == nil {
		return nil, ErrInternal
	}
	alias = recon.NormalizeName(alias)
	employeeCode = recon.NormalizeName(employeeCode)
	if alias == "" || employeeCode == "" {
		return nil, ErrInvalidInput
	}

	record := &model.ManagerAlias{Alias: alias, EmployeeCode: employeeCode}
	if err := s.aliasRepo.Create(record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAliasAlreadyExists
		}
		return nil, err
	}
	return record, nil
}

func (s *reconService) DeleteAlias(aliasID uint) error {
	if s.aliasRepo == nil {
		return ErrInternal
	}
	if aliasID == 0 {
		return ErrInvalidInput
	}
	if err := s.aliasRepo.Delete(aliasID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAliasNotFound
		}
		return err
	}
	return nil
}

func (s *reconService) ResetEmployees() error {
	if s.employeeRepo == nil {
		return ErrInternal
	}
	return s.employeeRepo.DeleteAllWithAssignments()
}
