package recon

import (
	"errors"
	"fmt"
	"time"

	"orgchart_go/internal/model"

	"gorm.io/gorm"
)

// errTestStorage 模拟存储层故障。
var errTestStorage = errors.New("storage unavailable")

func aliasOf(alias, code string) *model.ManagerAlias {
	return &model.ManagerAlias{Alias: alias, EmployeeCode: code}
}

// 内存版仓库实现，行为对齐 GORM 实现的关键语义：
// 按唯一键去重的 upsert、找不到记录时返回 gorm.ErrRecordNotFound。
// 引擎测试直接在内存仓库上跑完整流水线，不需要数据库。

type memEmployeeRepo struct {
	nextID    uint
	byID      map[uint]*model.Employee
	byCode    map[string]uint
	upsertErr error
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{
		nextID: 1,
		byID:   make(map[uint]*model.Employee),
		byCode: make(map[string]uint),
	}
}

func (m *memEmployeeRepo) Upsert(employee *model.Employee) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	if employee == nil || employee.Code == "" {
		return false, fmt.Errorf("employee code is required")
	}
	if id, ok := m.byCode[employee.Code]; ok {
		existing := m.byID[id]
		existing.Name = employee.Name
		existing.Organization = employee.Organization
		existing.IsManager = employee.IsManager
		existing.IsBlocked = employee.IsBlocked
		existing.Level = employee.Level
		existing.PositionID = employee.PositionID
		existing.DepartmentID = employee.DepartmentID
		existing.LocationID = employee.LocationID
		existing.BrandID = employee.BrandID
		employee.ID = existing.ID
		employee.ManagerID = existing.ManagerID
		return false, nil
	}
	employee.ID = m.nextID
	m.nextID++
	clone := *employee
	m.byID[employee.ID] = &clone
	m.byCode[employee.Code] = employee.ID
	return true, nil
}

func (m *memEmployeeRepo) FindByCode(code string) (*model.Employee, error) {
	id, ok := m.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *m.byID[id]
	return &clone, nil
}

func (m *memEmployeeRepo) FindAll() ([]model.Employee, error) {
	out := make([]model.Employee, 0, len(m.byID))
	for id := uint(1); id < m.nextID; id++ {
		if e, ok := m.byID[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memEmployeeRepo) CountAll() (int64, error) {
	return int64(len(m.byID)), nil
}

func (m *memEmployeeRepo) UpdateManager(employeeID uint, managerID *uint) error {
	e, ok := m.byID[employeeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.ManagerID = managerID
	return nil
}

func (m *memEmployeeRepo) DeleteAllWithAssignments() error {
	m.byID = make(map[uint]*model.Employee)
	m.byCode = make(map[string]uint)
	return nil
}

// managerOf 是测试断言用的辅助方法。
func (m *memEmployeeRepo) managerOf(code string) *uint {
	id, ok := m.byCode[code]
	if !ok {
		return nil
	}
	return m.byID[id].ManagerID
}

type memPositionRepo struct {
	nextID uint
	byID   map[uint]*model.Position
	byCode map[string]uint
}

func newMemPositionRepo() *memPositionRepo {
	return &memPositionRepo{
		nextID: 1,
		byID:   make(map[uint]*model.Position),
		byCode: make(map[string]uint),
	}
}

func (m *memPositionRepo) Upsert(position *model.Position) (bool, error) {
	if position == nil || position.Code == "" {
		return false, fmt.Errorf("position code is required")
	}
	if position.DepartmentID == 0 {
		return false, fmt.Errorf("position department is required")
	}
	if id, ok := m.byCode[position.Code]; ok {
		existing := m.byID[id]
		existing.Name = position.Name
		existing.DepartmentID = position.DepartmentID
		existing.LocationID = position.LocationID
		existing.BrandID = position.BrandID
		existing.LevelID = position.LevelID
		position.ID = existing.ID
		position.CreatedAt = existing.CreatedAt
		return false, nil
	}
	position.ID = m.nextID
	m.nextID++
	if position.CreatedAt.IsZero() {
		position.CreatedAt = time.Now()
	}
	clone := *position
	m.byID[position.ID] = &clone
	m.byCode[position.Code] = position.ID
	return true, nil
}

func (m *memPositionRepo) FindByCode(code string) (*model.Position, error) {
	id, ok := m.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *m.byID[id]
	return &clone, nil
}

func (m *memPositionRepo) FindAll() ([]model.Position, error) {
	out := make([]model.Position, 0, len(m.byID))
	for id := uint(1); id < m.nextID; id++ {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPositionRepo) FindAllWithDepartment() ([]model.Position, error) {
	all, _ := m.FindAll()
	out := make([]model.Position, 0, len(all))
	for _, p := range all {
		if p.DepartmentID != 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

type memDimensionRepo struct {
	nextID      uint
	departments map[string]*model.Department
	locations   map[string]*model.Location
	brands      map[string]*model.Brand
	err         error
}

func newMemDimensionRepo() *memDimensionRepo {
	return &memDimensionRepo{
		nextID:      1,
		departments: make(map[string]*model.Department),
		locations:   make(map[string]*model.Location),
		brands:      make(map[string]*model.Brand),
	}
}

func (m *memDimensionRepo) GetOrCreateDepartment(name string) (*model.Department, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if name == "" {
		return nil, false, fmt.Errorf("department name is required")
	}
	if d, ok := m.departments[name]; ok {
		return d, false, nil
	}
	d := &model.Department{ID: m.nextID, Name: name}
	m.nextID++
	m.departments[name] = d
	return d, true, nil
}

func (m *memDimensionRepo) GetOrCreateLocation(name string) (*model.Location, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if name == "" {
		return nil, false, fmt.Errorf("location name is required")
	}
	if l, ok := m.locations[name]; ok {
		return l, false, nil
	}
	l := &model.Location{ID: m.nextID, Name: name}
	m.nextID++
	m.locations[name] = l
	return l, true, nil
}

func (m *memDimensionRepo) GetOrCreateBrand(name string) (*model.Brand, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if name == "" {
		return nil, false, fmt.Errorf("brand name is required")
	}
	if b, ok := m.brands[name]; ok {
		return b, false, nil
	}
	b := &model.Brand{ID: m.nextID, Name: name}
	m.nextID++
	m.brands[name] = b
	return b, true, nil
}

func (m *memDimensionRepo) FindAllDepartments() ([]model.Department, error) {
	out := make([]model.Department, 0, len(m.departments))
	for _, d := range m.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memDimensionRepo) FindAllLocations() ([]model.Location, error) {
	out := make([]model.Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memDimensionRepo) FindAllBrands() ([]model.Brand, error) {
	out := make([]model.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		out = append(out, *b)
	}
	return out, nil
}

type memLevelRepo struct {
	nextID uint
	byName map[string]*model.JobTitleLevel
}

func newMemLevelRepo() *memLevelRepo {
	return &memLevelRepo{nextID: 1, byName: make(map[string]*model.JobTitleLevel)}
}

func (m *memLevelRepo) GetOrCreateByName(name string) (*model.JobTitleLevel, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("level name is required")
	}
	if l, ok := m.byName[name]; ok {
		return l, false, nil
	}
	l := &model.JobTitleLevel{ID: m.nextID, Name: name, SortOrder: len(m.byName) + 1}
	m.nextID++
	m.byName[name] = l
	return l, true, nil
}

func (m *memLevelRepo) FindAll() ([]model.JobTitleLevel, error) {
	out := make([]model.JobTitleLevel, 0, len(m.byName))
	for _, l := range m.byName {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memLevelRepo) Reorder(orderedIDs []uint) error {
	return nil
}

type memAssignmentRepo struct {
	nextID         uint
	assignments    []*model.PositionAssignment
	latestEndedErr error
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{nextID: 1}
}

func (m *memAssignmentRepo) Create(assignment *model.PositionAssignment) error {
	if assignment == nil || assignment.PositionID == 0 || assignment.EmployeeID == 0 {
		return fmt.Errorf("assignment position and employee are required")
	}
	assignment.ID = m.nextID
	m.nextID++
	clone := *assignment
	m.assignments = append(m.assignments, &clone)
	return nil
}

func (m *memAssignmentRepo) FindExisting(positionID, employeeID uint, startDate time.Time) (*model.PositionAssignment, error) {
	for _, a := range m.assignments {
		if a.PositionID == positionID && a.EmployeeID == employeeID && a.StartDate.Equal(startDate) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAssignmentRepo) FindActiveByPosition(positionID uint, at time.Time) ([]model.PositionAssignment, error) {
	var out []model.PositionAssignment
	for _, a := range m.assignments {
		if a.PositionID != positionID {
			continue
		}
		if a.StartDate.After(at) {
			continue
		}
		if a.EndDate != nil && a.EndDate.Before(at) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *memAssignmentRepo) FindLatestEndedByPosition(positionID uint) (*model.PositionAssignment, error) {
	if m.latestEndedErr != nil {
		return nil, m.latestEndedErr
	}
	var latest *model.PositionAssignment
	for _, a := range m.assignments {
		if a.PositionID != positionID || a.EndDate == nil {
			continue
		}
		if latest == nil || a.EndDate.After(*latest.EndDate) {
			latest = a
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (m *memAssignmentRepo) FindByPosition(positionID uint) ([]model.PositionAssignment, error) {
	var out []model.PositionAssignment
	for _, a := range m.assignments {
		if a.PositionID == positionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAssignmentRepo) EndAssignment(assignmentID uint, endDate time.Time) error {
	for _, a := range m.assignments {
		if a.ID == assignmentID && a.EndDate == nil {
			end := endDate
			a.EndDate = &end
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memAliasRepo struct {
	nextID  uint
	aliases []*model.ManagerAlias
}

func newMemAliasRepo() *memAliasRepo {
	return &memAliasRepo{nextID: 1}
}

func (m *memAliasRepo) Create(alias *model.ManagerAlias) error {
	if alias == nil || alias.Alias == "" || alias.EmployeeCode == "" {
		return fmt.Errorf("alias and employee code are required")
	}
	alias.ID = m.nextID
	m.nextID++
	clone := *alias
	m.aliases = append(m.aliases, &clone)
	return nil
}

func (m *memAliasRepo) FindAll() ([]model.ManagerAlias, error) {
	out := make([]model.ManagerAlias, 0, len(m.aliases))
	for _, a := range m.aliases {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memAliasRepo) Delete(aliasID uint) error {
	for i, a := range m.aliases {
		if a.ID == aliasID {
			m.aliases = append(m.aliases[:i], m.aliases[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
