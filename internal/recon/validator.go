package recon

import (
	"fmt"
	"orgchart_go/internal/model"
	"orgchart_go/internal/repository"
)

// Validator 校验链接完成后的汇报图，保证其构成森林：
// 无环、每个节点至多一个上级、所有上级引用都指向存在的员工。
//
// 每次都对全部员工做完整校验而不是增量校验：一条边的变化可能影响
// 任意多个下级节点的可达性，增量判定不可靠。
// 必须在批次内所有汇报边写入之后运行——对链接到一半的数据做校验没有意义。
type Validator struct {
	employeeRepo repository.EmployeeRepository
}

func NewValidator(employeeRepo repository.EmployeeRepository) *Validator {
	return &Validator{employeeRepo: employeeRepo}
}

// Validate 逐个员工沿 ManagerID 链向上走，每次行走使用独立的 visited 集合。
// 处置规则：
//   - 走到 ManagerID 为 NULL 的节点：链合法，结束。
//   - 上级指向不存在的员工：悬挂边，切断并记诊断。
//   - 在到达根之前重访了某个节点：成环。切断闭合环的那条边
//     （即本次行走中最后经过的那条边），而不是丢弃整条链；切边记为
//     一次纠正动作上报，绝不静默修复。
//   - 行走步数超过员工总数：数据异常的兜底护栏，按成环处理。
//
// 切边同时写回存储和内存映射，后续行走基于已修正的图进行。
func (v *Validator) Validate(report *Report) error {
	employees, err := v.employeeRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load employees for validation: %w", err)
	}

	byID := make(map[uint]*model.Employee, len(employees))
	for i := range employees {
		byID[employees[i].ID] = &employees[i]
	}
	maxDepth := len(employees)

	for i := range employees {
		start := &employees[i]

		visited := make(map[uint]struct{})
		visited[start.ID] = struct{}{}

		current := start
		steps := 0
		for current.ManagerID != nil {
			steps++
			if steps > maxDepth {
				// 理论上 visited 集合已能兜住所有环；步数护栏防御图结构之外的脏数据。
				if err := v.sever(current, byID, report, "depth limit exceeded"); err != nil {
					return err
				}
				break
			}

			manager, ok := byID[*current.ManagerID]
			if !ok {
				if err := v.sever(current, byID, report, "dangling manager reference"); err != nil {
					return err
				}
				break
			}

			if _, seen := visited[manager.ID]; seen {
				// current → manager 是闭合环的边：本次行走中最后写入的一条。
				if err := v.sever(current, byID, report, "cycle detected"); err != nil {
					return err
				}
				break
			}

			visited[manager.ID] = struct{}{}
			current = manager
		}
	}
	return nil
}

// sever 切断 employee 的上级边：持久化置空、同步内存、记诊断。
func (v *Validator) sever(employee *model.Employee, byID map[uint]*model.Employee, report *Report, reason string) error {
	managerCode := ""
	if employee.ManagerID != nil {
		if m, ok := byID[*employee.ManagerID]; ok {
			managerCode = m.Code
		} else {
			managerCode = fmt.Sprintf("#%d", *employee.ManagerID)
		}
	}

	if err := v.employeeRepo.UpdateManager(employee.ID, nil); err != nil {
		return fmt.Errorf("sever reporting edge of %s: %w", employee.Code, err)
	}
	employee.ManagerID = nil
	report.AddSeveredEdge(employee.Code, managerCode, reason)
	return nil
}
