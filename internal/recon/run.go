package recon

import (
	"context"
	"errors"
	"fmt"
	"orgchart_go/internal/model"
	"orgchart_go/internal/repository"
	"orgchart_go/pkg/log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// runLockKey 是协调运行的 Redis 互斥锁键。
// 引擎假设同一时刻只有一个写者；锁把“调用方负责串行化”变成显式约束。
const runLockKey = "orgchart:recon:run_lock"

// runLockTTL 是锁的保底过期时间，防止进程异常退出后锁永久残留。
const runLockTTL = 15 * time.Minute

var (
	// ErrRunInProgress 表示已有另一次协调运行持有互斥锁。
	ErrRunInProgress = errors.New("another reconciliation run is in progress")
)

// Batch 是一次协调运行的输入：每类实体一个有序的行序列。
// 行已由 ingest 层完成分词、表头识别和 BOM 去除。
type Batch struct {
	Departments []Row
	Locations   []Row
	Brands      []Row
	Levels      []Row
	Positions   []Row
	Employees   []Row
	Assignments []Row
}

// Runner 驱动一次完整的协调运行。批处理作业、不是常驻服务：
// 一次运行把一个批次处理到底，结果才对外可见。
//
// 运行内的依赖顺序：
//  1. 部门/地点/品牌相互独立，三类并行 upsert；
//  2. 职级、岗位要等维度就绪（岗位必须挂部门）；
//  3. 员工第一遍创建完成后才能做第二遍链接（任何行都可能引用任何行）；
//  4. 全部汇报边写入后才能跑 Validator；
//  5. 任职台账依赖已解析的员工和岗位。
type Runner struct {
	employeeRepo   repository.EmployeeRepository
	positionRepo   repository.PositionRepository
	dimensionRepo  repository.DimensionRepository
	levelRepo      repository.JobTitleLevelRepository
	assignmentRepo repository.AssignmentRepository
	aliasRepo      repository.ManagerAliasRepository

	// rdb 为 nil 时跳过互斥锁（单测或确定单实例部署的场景）。
	rdb *redis.Client
}

func NewRunner(
	employeeRepo repository.EmployeeRepository,
	positionRepo repository.PositionRepository,
	dimensionRepo repository.DimensionRepository,
	levelRepo repository.JobTitleLevelRepository,
	assignmentRepo repository.AssignmentRepository,
	aliasRepo repository.ManagerAliasRepository,
	rdb *redis.Client,
) *Runner {
	return &Runner{
		employeeRepo:   employeeRepo,
		positionRepo:   positionRepo,
		dimensionRepo:  dimensionRepo,
		levelRepo:      levelRepo,
		assignmentRepo: assignmentRepo,
		aliasRepo:      aliasRepo,
		rdb:            rdb,
	}
}

// Run 处理一个输入批次，返回诊断报告。
// 报告在部分失败时同样返回：已完成阶段的计数和诊断全部保留，
// 运维人员据此决定是否重跑（upsert 幂等，重跑安全）。
// 运行中不支持取消：要么跑完提交诊断，要么失败后留下已落库的幂等 upsert。
func (r *Runner) Run(ctx context.Context, batch *Batch) (*Report, error) {
	report := NewReport()

	if r.rdb != nil {
		ok, err := r.rdb.SetNX(ctx, runLockKey, report.RunID, runLockTTL).Result()
		if err != nil {
			report.Finish(err)
			return report, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			report.Finish(ErrRunInProgress)
			return report, ErrRunInProgress
		}
		// 单写者假设下直接删除即可，无需比对锁值。
		defer r.rdb.Del(context.Background(), runLockKey)
	}

	log.Infow("reconciliation run started", "run_id", report.RunID)

	err := r.run(batch, report)
	report.Finish(err)

	log.Infow("reconciliation run finished",
		"run_id", report.RunID,
		"failed", report.Failed,
		"unresolved_managers", len(report.UnresolvedManagers),
		"severed_edges", len(report.SeveredEdges),
		"skipped_rows", len(report.SkippedRows),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, err
}

func (r *Runner) run(batch *Batch, report *Report) error {
	// 解析表每次运行从存储重建，运行结束即丢弃——不做任何进程级缓存。
	resolver := NewResolver()
	if err := r.seedResolver(resolver); err != nil {
		return err
	}

	if err := r.upsertDimensions(batch, resolver, report); err != nil {
		return err
	}
	if err := r.upsertLevels(batch, resolver, report); err != nil {
		return err
	}
	if err := r.upsertPositions(batch, resolver, report); err != nil {
		return err
	}

	linker := NewLinker(r.employeeRepo, resolver)
	if err := linker.Pass1(batch.Employees, report); err != nil {
		return err
	}
	if err := linker.Pass2(batch.Employees, report); err != nil {
		return err
	}

	if err := NewValidator(r.employeeRepo).Validate(report); err != nil {
		return err
	}

	return NewLedger(r.assignmentRepo, resolver).Ingest(batch.Assignments, report)
}

// seedResolver 把存储中已有的实体加载进解析表（持久化的规范名称索引）。
func (r *Runner) seedResolver(resolver *Resolver) error {
	aliases, err := r.aliasRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load manager aliases: %w", err)
	}
	resolver.LoadAliases(aliases)

	departments, err := r.dimensionRepo.FindAllDepartments()
	if err != nil {
		return fmt.Errorf("load departments: %w", err)
	}
	for _, d := range departments {
		resolver.Register(KindDepartment, d.Name, d.ID)
	}

	locations, err := r.dimensionRepo.FindAllLocations()
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	for _, l := range locations {
		resolver.Register(KindLocation, l.Name, l.ID)
	}

	brands, err := r.dimensionRepo.FindAllBrands()
	if err != nil {
		return fmt.Errorf("load brands: %w", err)
	}
	for _, b := range brands {
		resolver.Register(KindBrand, b.Name, b.ID)
	}

	levels, err := r.levelRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	for _, l := range levels {
		resolver.Register(KindLevel, l.Name, l.ID)
	}

	positions, err := r.positionRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	for _, p := range positions {
		resolver.Register(KindPosition, p.Code, p.ID)
		resolver.Register(KindPosition, p.Name, p.ID)
	}

	employees, err := r.employeeRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load employees: %w", err)
	}
	for _, e := range employees {
		resolver.Register(KindEmployee, e.Code, e.ID)
		resolver.Register(KindEmployee, e.Name, e.ID)
	}
	return nil
}

// dimensionNames 收集某类维度在整个批次里出现的全部名称：
// 该类自己的源表行，加上岗位/员工行里的引用列。
// 返回按首次出现排序的去重列表。source 记录名称的出处用于诊断：
// 源表行是行号，引用列标注引用来源，不伪装成行号。
func dimensionNames(kind string, batch *Batch) []nameRef {
	var out []nameRef
	seen := make(map[string]struct{})

	add := func(name, source string) {
		name = NormalizeName(name)
		if name == "" {
			return
		}
		key := foldKey(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, nameRef{name: name, source: source})
	}

	var ownRows []Row
	var refField string
	switch kind {
	case KindDepartment:
		ownRows, refField = batch.Departments, "departmentRef"
	case KindLocation:
		ownRows, refField = batch.Locations, "locationRef"
	case KindBrand:
		ownRows, refField = batch.Brands, "brandRef"
	}

	for i, raw := range ownRows {
		nr := NormalizeRow(kind, raw)
		add(nr["name"], fmt.Sprintf("row %d", i+1))
	}
	for _, raw := range batch.Positions {
		nr := NormalizeRow(KindPosition, raw)
		add(nr[refField], "referenced from positions")
	}
	for _, raw := range batch.Employees {
		nr := NormalizeRow(KindEmployee, raw)
		add(nr[refField], "referenced from employees")
	}
	return out
}

type nameRef struct {
	name   string
	source string
}

// upsertDimensions 并行 upsert 三类相互独立的维度实体。
// 每类内部保持输入顺序串行处理；三类之间无交叉引用，可以安全并行。
func (r *Runner) upsertDimensions(batch *Batch, resolver *Resolver, report *Report) error {
	type result struct {
		kind    string
		ids     []nameID
		created int
		reused  int
		err     error
	}

	getOrCreate := func(kind, name string) (uint, bool, error) {
		switch kind {
		case KindLocation:
			loc, created, err := r.dimensionRepo.GetOrCreateLocation(name)
			if err != nil {
				return 0, false, err
			}
			return loc.ID, created, nil
		case KindBrand:
			brand, created, err := r.dimensionRepo.GetOrCreateBrand(name)
			if err != nil {
				return 0, false, err
			}
			return brand.ID, created, nil
		default:
			dept, created, err := r.dimensionRepo.GetOrCreateDepartment(name)
			if err != nil {
				return 0, false, err
			}
			return dept.ID, created, nil
		}
	}

	kinds := []string{KindDepartment, KindLocation, KindBrand}
	results := make([]result, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind string) {
			defer wg.Done()
			res := result{kind: kind}
			for _, ref := range dimensionNames(kind, batch) {
				// 去重归引擎所有，不依赖存储层的大小写对照规则：
				// 解析表里已有的名称（含大小写/空白变体）直接复用，不再触发创建。
				if id, ok := resolver.Resolve(kind, ref.name); ok {
					res.ids = append(res.ids, nameID{name: ref.name, id: id})
					res.reused++
					continue
				}
				id, created, err := getOrCreate(kind, ref.name)
				if err != nil {
					res.err = fmt.Errorf("%s %s (%s): %w", kind, ref.source, ref.name, err)
					break
				}
				res.ids = append(res.ids, nameID{name: ref.name, id: id})
				if created {
					res.created++
				} else {
					res.reused++
				}
			}
			results[i] = res
		}(i, kind)
	}
	wg.Wait()

	// 并行阶段只读 Resolver；写入集中在这里的单 goroutine
	// （Resolver 和 Report 都不做内部加锁）。
	for _, res := range results {
		if res.err != nil {
			return res.err
		}
		for _, entry := range res.ids {
			resolver.Register(res.kind, entry.name, entry.id)
		}
		for n := 0; n < res.created; n++ {
			report.AddCreated(res.kind)
		}
		for n := 0; n < res.reused; n++ {
			report.AddReused(res.kind)
		}
	}
	return nil
}

type nameID struct {
	name string
	id   uint
}

// upsertLevels 处理职级：职级自己的源表行，加上岗位行里的 levelRef。
func (r *Runner) upsertLevels(batch *Batch, resolver *Resolver, report *Report) error {
	seen := make(map[string]struct{})

	upsert := func(name, source string) error {
		name = NormalizeName(name)
		if name == "" {
			return nil
		}
		key := foldKey(name)
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}

		// 跨运行的大小写/空白变体由解析表兜底，与维度 upsert 同一条规则。
		if _, ok := resolver.Resolve(KindLevel, name); ok {
			report.AddReused(KindLevel)
			return nil
		}

		level, created, err := r.levelRepo.GetOrCreateByName(name)
		if err != nil {
			return fmt.Errorf("%s %s (%s): %w", KindLevel, source, name, err)
		}
		resolver.Register(KindLevel, name, level.ID)
		if created {
			report.AddCreated(KindLevel)
		} else {
			report.AddReused(KindLevel)
		}
		return nil
	}

	for i, raw := range batch.Levels {
		nr := NormalizeRow(KindLevel, raw)
		if err := upsert(nr["name"], fmt.Sprintf("row %d", i+1)); err != nil {
			return err
		}
	}
	for _, raw := range batch.Positions {
		nr := NormalizeRow(KindPosition, raw)
		if err := upsert(nr["levelRef"], "referenced from positions"); err != nil {
			return err
		}
	}
	return nil
}

// upsertPositions 处理岗位行。部门是硬依赖：引用解析不到的行跳过并计数。
func (r *Runner) upsertPositions(batch *Batch, resolver *Resolver, report *Report) error {
	for i, raw := range batch.Positions {
		rowNum := i + 1
		nr := NormalizeRow(KindPosition, raw)

		code := NormalizeName(nr["code"])
		if code == "" {
			report.AddSkipped(KindPosition, rowNum, "missing position code")
			continue
		}
		name := NormalizeName(nr["name"])
		if name == "" {
			report.AddSkipped(KindPosition, rowNum, "missing position name")
			continue
		}

		deptID, ok := resolver.Resolve(KindDepartment, nr["departmentRef"])
		if !ok {
			report.AddSkipped(KindPosition, rowNum, "unresolved department reference")
			continue
		}

		position := &model.Position{
			Code:         code,
			Name:         name,
			DepartmentID: deptID,
		}
		if ref := NormalizeName(nr["locationRef"]); ref != "" {
			if id, ok := resolver.Resolve(KindLocation, ref); ok {
				position.LocationID = &id
			} else {
				report.AddUnresolvedRef(KindPosition, KindLocation, rowNum, ref)
			}
		}
		if ref := NormalizeName(nr["brandRef"]); ref != "" {
			if id, ok := resolver.Resolve(KindBrand, ref); ok {
				position.BrandID = &id
			} else {
				report.AddUnresolvedRef(KindPosition, KindBrand, rowNum, ref)
			}
		}
		if ref := NormalizeName(nr["levelRef"]); ref != "" {
			if id, ok := resolver.Resolve(KindLevel, ref); ok {
				position.LevelID = &id
			} else {
				report.AddUnresolvedRef(KindPosition, KindLevel, rowNum, ref)
			}
		}

		created, err := r.positionRepo.Upsert(position)
		if err != nil {
			return fmt.Errorf("position row %d (%s): %w", rowNum, code, err)
		}
		if created {
			report.AddCreated(KindPosition)
		} else {
			report.AddReused(KindPosition)
		}
		resolver.Register(KindPosition, code, position.ID)
		resolver.Register(KindPosition, name, position.ID)
	}
	return nil
}
