package recon

import (
	"time"

	"github.com/google/uuid"
)

// UnresolvedManager 记录一条无法解析的上级引用。
// 只记录诊断、不做模糊匹配：部分匹配挂错上级比留空危害大得多。
type UnresolvedManager struct {
	EmployeeCode string `json:"employeeCode"`
	EmployeeName string `json:"employeeName"`
	Reference    string `json:"reference"`
}

// SeveredEdge 记录一条被 Validator 切断的汇报边（成环或悬挂）。
type SeveredEdge struct {
	EmployeeCode string `json:"employeeCode"`
	ManagerCode  string `json:"managerCode"`
	Reason       string `json:"reason"`
}

// UnresolvedRef 记录一条无法解析的维度/岗位引用（行本身照常处理，链接留空）。
type UnresolvedRef struct {
	RowKind   string `json:"rowKind"`
	RefKind   string `json:"refKind"`
	RowNum    int    `json:"rowNum"`
	Reference string `json:"reference"`
}

// SkippedRow 记录一条因缺少必填字段或引用无法解析而被跳过的输入行。
type SkippedRow struct {
	Kind   string `json:"kind"`
	RowNum int    `json:"rowNum"`
	Reason string `json:"reason"`
}

// KindCounts 是某类实体在一次运行中的处理计数。
type KindCounts struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Reused    int `json:"reused"`
	Skipped   int `json:"skipped"`
}

// Report 是一次协调运行的诊断报告。
// 即使运行中途失败也会返回已积累的报告，运维人员据此决定是否重跑。
type Report struct {
	RunID      string                 `json:"runId"`
	StartedAt  time.Time              `json:"startedAt"`
	FinishedAt time.Time              `json:"finishedAt"`
	Counts     map[string]*KindCounts `json:"counts"`

	UnresolvedManagers []UnresolvedManager `json:"unresolvedManagers"`
	UnresolvedRefs     []UnresolvedRef     `json:"unresolvedRefs"`
	SeveredEdges       []SeveredEdge       `json:"severedEdges"`
	SkippedRows        []SkippedRow        `json:"skippedRows"`

	// Failed 为 true 表示运行因存储错误提前中止；已落库的幂等 upsert 保持原样。
	Failed       bool   `json:"failed"`
	FailureCause string `json:"failureCause,omitempty"`
}

func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Counts:    make(map[string]*KindCounts),
	}
}

// counts 返回某类实体的计数器，首次访问时创建。
func (r *Report) counts(kind string) *KindCounts {
	c, ok := r.Counts[kind]
	if !ok {
		c = &KindCounts{}
		r.Counts[kind] = c
	}
	return c
}

// AddCreated / AddReused / AddSkipped 维护分类计数。
// Processed = Created + Reused + Skipped，在计数时同步累加。
func (r *Report) AddCreated(kind string) {
	c := r.counts(kind)
	c.Processed++
	c.Created++
}

func (r *Report) AddReused(kind string) {
	c := r.counts(kind)
	c.Processed++
	c.Reused++
}

func (r *Report) AddSkipped(kind string, rowNum int, reason string) {
	c := r.counts(kind)
	c.Processed++
	c.Skipped++
	r.SkippedRows = append(r.SkippedRows, SkippedRow{Kind: kind, RowNum: rowNum, Reason: reason})
}

// AddUnresolvedManager 记录一条未解析的上级引用诊断。
func (r *Report) AddUnresolvedManager(employeeCode, employeeName, reference string) {
	r.UnresolvedManagers = append(r.UnresolvedManagers, UnresolvedManager{
		EmployeeCode: employeeCode,
		EmployeeName: employeeName,
		Reference:    reference,
	})
}

// AddUnresolvedRef 记录一条未解析的维度/岗位引用诊断。
func (r *Report) AddUnresolvedRef(rowKind, refKind string, rowNum int, reference string) {
	r.UnresolvedRefs = append(r.UnresolvedRefs, UnresolvedRef{
		RowKind:   rowKind,
		RefKind:   refKind,
		RowNum:    rowNum,
		Reference: reference,
	})
}

// AddSeveredEdge 记录一条被切断的汇报边。
func (r *Report) AddSeveredEdge(employeeCode, managerCode, reason string) {
	r.SeveredEdges = append(r.SeveredEdges, SeveredEdge{
		EmployeeCode: employeeCode,
		ManagerCode:  managerCode,
		Reason:       reason,
	})
}

// Finish 结束报告计时。失败时记录原因，已有的计数和诊断保留。
func (r *Report) Finish(err error) {
	r.FinishedAt = time.Now()
	if err != nil {
		r.Failed = true
		r.FailureCause = err.Error()
	}
}
