package recon

import (
	"errors"
	"testing"
	"time"

	"orgchart_go/internal/model"
)

func testVacancyConfig() VacancyConfig {
	return VacancyConfig{
		HighDays:             30,
		MediumDays:           14,
		ImportantDepartments: []string{"Satış"},
	}
}

func newTestProjector(t *testing.T) (*Projector, *memPositionRepo, *memAssignmentRepo, *memDimensionRepo) {
	t.Helper()
	positionRepo := newMemPositionRepo()
	assignmentRepo := newMemAssignmentRepo()
	dimensionRepo := newMemDimensionRepo()
	p := NewProjector(positionRepo, assignmentRepo, dimensionRepo, testVacancyConfig())
	return p, positionRepo, assignmentRepo, dimensionRepo
}

func seedPosition(t *testing.T, repo *memPositionRepo, code string, deptID uint, createdAt time.Time) *model.Position {
	t.Helper()
	p := &model.Position{Code: code, Name: code, DepartmentID: deptID, CreatedAt: createdAt}
	if _, err := repo.Upsert(p); err != nil {
		t.Fatalf("seed position %s: %v", code, err)
	}
	return p
}

func TestProjector_OccupiedPosition(t *testing.T) {
	p, positions, assignments, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	pos := seedPosition(t, positions, "P1", dept.ID, now.AddDate(-1, 0, 0))
	assignments.Create(&model.PositionAssignment{
		PositionID: pos.ID, EmployeeID: 20,
		AssignmentType: model.AssignmentTypePermanent,
		StartDate:      now.AddDate(0, -3, 0),
	})

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	s := statuses[0]
	if s.IsVacant || s.Contested {
		t.Fatalf("occupied position misclassified: %+v", s)
	}
	if len(s.ActiveHolders) != 1 || s.ActiveHolders[0] != 20 {
		t.Fatalf("unexpected holders: %+v", s.ActiveHolders)
	}
}

func TestProjector_ContestedPosition(t *testing.T) {
	p, positions, assignments, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	pos := seedPosition(t, positions, "P1", dept.ID, now.AddDate(-1, 0, 0))
	assignments.Create(&model.PositionAssignment{PositionID: pos.ID, EmployeeID: 20, StartDate: now.AddDate(0, -3, 0)})
	assignments.Create(&model.PositionAssignment{PositionID: pos.ID, EmployeeID: 21, StartDate: now.AddDate(0, -1, 0)})

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	s := statuses[0]
	// 交接期共占：不算空缺，单独标记
	if s.IsVacant {
		t.Fatal("contested position must not be vacant")
	}
	if !s.Contested {
		t.Fatal("position with two active assignments must be contested")
	}
	if len(s.ActiveHolders) != 2 {
		t.Fatalf("expected 2 holders, got %+v", s.ActiveHolders)
	}
}

func TestProjector_SameEmployeeOverlapNotContested(t *testing.T) {
	p, positions, assignments, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// 同一员工的两条活跃记录（类型变更补录）：不是共占
	pos := seedPosition(t, positions, "P1", dept.ID, now.AddDate(-1, 0, 0))
	assignments.Create(&model.PositionAssignment{
		PositionID: pos.ID, EmployeeID: 20,
		AssignmentType: model.AssignmentTypeActing,
		StartDate:      now.AddDate(0, -3, 0),
	})
	assignments.Create(&model.PositionAssignment{
		PositionID: pos.ID, EmployeeID: 20,
		AssignmentType: model.AssignmentTypePermanent,
		StartDate:      now.AddDate(0, -1, 0),
	})

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	s := statuses[0]
	if s.IsVacant {
		t.Fatal("occupied position must not be vacant")
	}
	if s.Contested {
		t.Fatal("overlapping assignments of the same employee must not be contested")
	}
	if len(s.ActiveHolders) != 2 {
		t.Fatalf("expected both active rows listed, got %+v", s.ActiveHolders)
	}
}

func TestProjector_StoreErrorPropagates(t *testing.T) {
	p, positions, assignments, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedPosition(t, positions, "P1", dept.ID, now.AddDate(0, 0, -20))
	assignments.latestEndedErr = errTestStorage

	// 存储故障不允许静默回退到创建时间算出一个看似合理的天数
	if _, err := p.Project(now); !errors.Is(err, errTestStorage) {
		t.Fatalf("expected storage error to propagate, got: %v", err)
	}
}

func TestProjector_VacantDaysFromLatestEnded(t *testing.T) {
	p, positions, assignments, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	pos := seedPosition(t, positions, "P1", dept.ID, now.AddDate(-2, 0, 0))
	oldEnd := now.AddDate(0, 0, -40)
	newEnd := now.AddDate(0, 0, -10)
	assignments.Create(&model.PositionAssignment{PositionID: pos.ID, EmployeeID: 20, StartDate: now.AddDate(-1, 0, 0), EndDate: &oldEnd})
	assignments.Create(&model.PositionAssignment{PositionID: pos.ID, EmployeeID: 21, StartDate: now.AddDate(0, 0, -30), EndDate: &newEnd})

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	s := statuses[0]
	if !s.IsVacant {
		t.Fatal("position should be vacant")
	}
	// 空缺天数从最近一次结束的任职起算
	if s.DaysVacant != 10 {
		t.Fatalf("daysVacant = %d, want 10", s.DaysVacant)
	}
	if s.Priority != PriorityLow {
		t.Fatalf("priority = %q, want low", s.Priority)
	}
}

func TestProjector_NeverFilledCountsFromCreation(t *testing.T) {
	p, positions, _, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Operasyon")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedPosition(t, positions, "P1", dept.ID, now.AddDate(0, 0, -20))

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	s := statuses[0]
	if !s.IsVacant || s.DaysVacant != 20 {
		t.Fatalf("unexpected status: %+v", s)
	}
	if s.Priority != PriorityMedium {
		t.Fatalf("priority = %q, want medium for 20 days", s.Priority)
	}
}

func TestProjector_ImportantDepartmentBumpsPriority(t *testing.T) {
	p, positions, _, dims := newTestProjector(t)
	dept, _, _ := dims.GetOrCreateDepartment("Satış")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// 空缺 20 天：普通部门 medium，重点部门上调到 high
	seedPosition(t, positions, "P1", dept.ID, now.AddDate(0, 0, -20))

	statuses, err := p.Project(now)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if statuses[0].Priority != PriorityHigh {
		t.Fatalf("priority = %q, want high for important department", statuses[0].Priority)
	}
}

func TestClassifyPriority(t *testing.T) {
	cfg := testVacancyConfig()
	cases := []struct {
		days      int
		important bool
		want      string
	}{
		{0, false, PriorityLow},
		{14, false, PriorityLow},
		{15, false, PriorityMedium},
		{30, false, PriorityMedium},
		{31, false, PriorityHigh},
		{0, true, PriorityMedium},
		{15, true, PriorityHigh},
		{31, true, PriorityHigh},
	}
	for _, c := range cases {
		if got := classifyPriority(cfg, c.important, c.days); got != c.want {
			t.Errorf("classifyPriority(days=%d, important=%v) = %q, want %q", c.days, c.important, got, c.want)
		}
	}
}
