package recon

import (
	"errors"
	"fmt"
	"orgchart_go/internal/model"
	"orgchart_go/internal/repository"
	"time"

	"gorm.io/gorm"
)

// assignmentTypeMap 把历史数据里出现过的任职类型叫法归一到规范词汇表。
// 键为 foldKey 格式。未登记的叫法一律归为 acting：临时任职意味着岗位
// 没有被长期填补，这是保守的默认。
var assignmentTypeMap = map[string]string{
	"permanent":   model.AssignmentTypePermanent,
	"kalıcı":      model.AssignmentTypePermanent,
	"kalici":      model.AssignmentTypePermanent,
	"tam zamanlı": model.AssignmentTypePermanent,
	"tam zamanli": model.AssignmentTypePermanent,
	"kadrolu":     model.AssignmentTypePermanent,
	"asil":        model.AssignmentTypePermanent,
	"acting":      model.AssignmentTypeActing,
	"vekalet":     model.AssignmentTypeActing,
	"vekaleten":   model.AssignmentTypeActing,
	"geçici":      model.AssignmentTypeActing,
	"gecici":      model.AssignmentTypeActing,
	"temporary":   model.AssignmentTypeActing,
}

// NormalizeAssignmentType 把开放词汇表的任职类型标签归一为 permanent / acting。
func NormalizeAssignmentType(raw string) string {
	if t, ok := assignmentTypeMap[foldKey(raw)]; ok {
		return t
	}
	return model.AssignmentTypeActing
}

// Ledger 是任职台账：任职记录的唯一写入口，并提供“某岗位在时刻 T 的
// 活跃任职”查询。台账从不根据汇报树反推任职记录。
type Ledger struct {
	assignmentRepo repository.AssignmentRepository
	resolver       *Resolver
}

func NewLedger(assignmentRepo repository.AssignmentRepository, resolver *Resolver) *Ledger {
	return &Ledger{assignmentRepo: assignmentRepo, resolver: resolver}
}

// Ingest 把批次里的任职行写入台账。
// 岗位和员工引用经 Resolver 解析，解析不到或缺开始日期的行跳过并计数。
// 重跑去重：同 (岗位, 员工, 开始日期) 的记录已存在则复用，不重复写入。
func (l *Ledger) Ingest(rows []Row, report *Report) error {
	const kind = "assignment"

	for i, raw := range rows {
		rowNum := i + 1
		nr := NormalizeRow(kind, raw)

		positionID, ok := l.resolver.Resolve(KindPosition, nr["positionRef"])
		if !ok {
			report.AddSkipped(kind, rowNum, "unresolved position reference")
			continue
		}
		employeeID, ok := l.resolver.Resolve(KindEmployee, nr["employeeCode"])
		if !ok {
			report.AddSkipped(kind, rowNum, "unresolved employee code")
			continue
		}
		startDate, ok := parseDate(nr["startDate"])
		if !ok {
			report.AddSkipped(kind, rowNum, "missing or malformed start date")
			continue
		}

		existing, err := l.assignmentRepo.FindExisting(positionID, employeeID, startDate)
		if err == nil && existing != nil {
			report.AddReused(kind)
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment row %d: %w", rowNum, err)
		}

		assignment := &model.PositionAssignment{
			PositionID:     positionID,
			EmployeeID:     employeeID,
			AssignmentType: NormalizeAssignmentType(nr["assignmentType"]),
			StartDate:      startDate,
		}
		if endDate, ok := parseDate(nr["endDate"]); ok {
			assignment.EndDate = &endDate
		}

		if err := l.assignmentRepo.Create(assignment); err != nil {
			return fmt.Errorf("assignment row %d: %w", rowNum, err)
		}
		report.AddCreated(kind)
	}
	return nil
}

// ActiveAssignments 返回岗位 P 在时刻 T 的全部活跃任职。
// 允许同时返回多条（交接期共占）；是否标记 contested 由 Projector 决定。
func (l *Ledger) ActiveAssignments(positionID uint, at time.Time) ([]model.PositionAssignment, error) {
	return l.assignmentRepo.FindActiveByPosition(positionID, at)
}

// EndAssignment 结束一条任职（把 endDate 置为给定日期）。
func (l *Ledger) EndAssignment(assignmentID uint, endDate time.Time) error {
	return l.assignmentRepo.EndAssignment(assignmentID, endDate)
}
