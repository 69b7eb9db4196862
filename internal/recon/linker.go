package recon

import (
	"fmt"
	"orgchart_go/internal/model"
	"orgchart_go/internal/repository"
)

// Linker 实现上级引用的两遍链接。
// 两遍的原因：未排序的导出里向前引用很常见——某行的上级可能是
// 批次里更靠后才出现的员工，单遍处理必然产生悬挂引用。
//   - 第一遍：把批次里所有员工建出来（上级一律留空），同时把编码、姓名
//     登记进 Resolver。
//   - 第二遍：逐行解析上级引用并写入汇报边；解析不到的只记诊断、绝不猜测。
//
// Linker 是运行级对象：每次运行新建，内部查找表随运行结束丢弃。
type Linker struct {
	employeeRepo repository.EmployeeRepository
	resolver     *Resolver

	// byCode 是第一遍建立的 编码→员工 映射，第二遍据此定位行自身的员工。
	byCode map[string]*model.Employee
}

func NewLinker(employeeRepo repository.EmployeeRepository, resolver *Resolver) *Linker {
	return &Linker{
		employeeRepo: employeeRepo,
		resolver:     resolver,
		byCode:       make(map[string]*model.Employee),
	}
}

// Pass1 物化批次内的全部员工实体，不写任何汇报边。
// 缺编码或缺姓名的行跳过并计数，绝不默认补一个猜测值。
// 存储层返回非预期错误时对整个运行是致命的，错误里带上源行号。
func (l *Linker) Pass1(rows []Row, report *Report) error {
	for i, raw := range rows {
		rowNum := i + 1
		nr := NormalizeRow(KindEmployee, raw)

		code := NormalizeName(nr["code"])
		if code == "" {
			report.AddSkipped(KindEmployee, rowNum, "missing employee code")
			continue
		}
		name := NormalizeName(nr["name"])
		if name == "" {
			report.AddSkipped(KindEmployee, rowNum, "missing employee name")
			continue
		}

		employee := &model.Employee{
			Code:         code,
			Name:         name,
			Organization: NormalizeName(nr["organization"]),
			IsManager:    parseBool(nr["isManager"]),
			IsBlocked:    parseBool(nr["isBlocked"]),
		}
		if level := NormalizeName(nr["level"]); level != "" {
			employee.Level = &level
		}

		// 维度引用经 Resolver 解析；解析不到的留空并记诊断，不影响员工本体创建。
		employee.DepartmentID = l.resolveRef(KindDepartment, nr["departmentRef"], rowNum, report)
		employee.LocationID = l.resolveRef(KindLocation, nr["locationRef"], rowNum, report)
		employee.BrandID = l.resolveRef(KindBrand, nr["brandRef"], rowNum, report)
		employee.PositionID = l.resolveRef(KindPosition, nr["positionRef"], rowNum, report)

		created, err := l.employeeRepo.Upsert(employee)
		if err != nil {
			return fmt.Errorf("employee row %d (%s): %w", rowNum, code, err)
		}
		if created {
			report.AddCreated(KindEmployee)
		} else {
			report.AddReused(KindEmployee)
		}

		l.byCode[code] = employee
		l.resolver.Register(KindEmployee, code, employee.ID)
		l.resolver.Register(KindEmployee, name, employee.ID)
	}
	return nil
}

// Pass2 解析并写入上级引用。必须在整个批次的 Pass1 结束后调用：
// 任何一行都可能引用任何一行创建的员工。
// 规则：
//   - 引用为空：不动已有汇报边。
//   - 引用命中哨兵（"null" 等，大小写不敏感）：显式断开，不算解析失败。
//   - 引用解析成自己：按未解析处理并记诊断，绝不写自环。
//   - 解析不到：记一条诊断并显式置空，绝不挂到部分匹配的结果上。
func (l *Linker) Pass2(rows []Row, report *Report) error {
	for i, raw := range rows {
		rowNum := i + 1
		nr := NormalizeRow(KindEmployee, raw)

		code := NormalizeName(nr["code"])
		employee, ok := l.byCode[code]
		if !ok {
			// 第一遍已跳过的行，这里不再重复计数。
			continue
		}

		ref := NormalizeName(nr["managerRef"])
		if ref == "" {
			continue
		}

		if IsNullToken(ref) {
			if err := l.employeeRepo.UpdateManager(employee.ID, nil); err != nil {
				return fmt.Errorf("employee row %d (%s): %w", rowNum, code, err)
			}
			employee.ManagerID = nil
			continue
		}

		managerID, resolved := l.resolver.ResolveManager(ref)
		if resolved && managerID == employee.ID {
			// 自己汇报给自己：按未解析处理。
			resolved = false
		}
		if !resolved {
			report.AddUnresolvedManager(code, employee.Name, ref)
			if err := l.employeeRepo.UpdateManager(employee.ID, nil); err != nil {
				return fmt.Errorf("employee row %d (%s): %w", rowNum, code, err)
			}
			employee.ManagerID = nil
			continue
		}

		if err := l.employeeRepo.UpdateManager(employee.ID, &managerID); err != nil {
			return fmt.Errorf("employee row %d (%s): %w", rowNum, code, err)
		}
		employee.ManagerID = &managerID
	}
	return nil
}

// resolveRef 解析一个可选的维度/岗位引用。
// 引用为空返回 nil；非空但解析不到时记诊断并返回 nil。
func (l *Linker) resolveRef(kind, ref string, rowNum int, report *Report) *uint {
	ref = NormalizeName(ref)
	if ref == "" {
		return nil
	}
	id, ok := l.resolver.Resolve(kind, ref)
	if !ok {
		report.AddUnresolvedRef(KindEmployee, kind, rowNum, ref)
		return nil
	}
	return &id
}
