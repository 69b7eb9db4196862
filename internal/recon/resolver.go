package recon

import "orgchart_go/internal/model"

// Resolver 把异构的源标识（规范编码、外部编号、自由文本名称）解析成实体的规范 ID。
// 解析顺序：
//  1. 精确匹配（本次运行已登记的标识，含运行开始时从存储整体加载的索引）
//  2. 折叠匹配（去空白、压缩内部空白、大小写折叠后比较）
//  3. 仅限员工上级引用：人工维护的姓名别名表
//
// Resolver 是纯查找结构，没有副作用；索引的填充是 Entity Upsert 层的职责
// （实体每创建/复用一个就 Register 一次）。每次运行新建一个 Resolver，
// 运行结束即丢弃，绝不做进程级缓存，保证重跑的确定性。
type Resolver struct {
	exact   map[string]map[string]uint // kind → 原始标识 → 规范 ID
	folded  map[string]map[string]uint // kind → 折叠标识 → 规范 ID
	aliases map[string]string          // 折叠后的姓名变体 → 员工规范编码
}

func NewResolver() *Resolver {
	return &Resolver{
		exact:   make(map[string]map[string]uint),
		folded:  make(map[string]map[string]uint),
		aliases: make(map[string]string),
	}
}

// Register 登记一个标识到规范 ID 的映射。
// 同一实体通常会登记多个标识（如员工的编码和姓名都指向同一 ID）。
// 先登记的映射优先：重复登记同一标识不覆盖，避免后处理的行篡改先建立的解析结果。
func (r *Resolver) Register(kind, key string, id uint) {
	key = NormalizeName(key)
	if key == "" || id == 0 {
		return
	}

	if r.exact[kind] == nil {
		r.exact[kind] = make(map[string]uint)
	}
	if _, ok := r.exact[kind][key]; !ok {
		r.exact[kind][key] = id
	}

	fk := foldKey(key)
	if r.folded[kind] == nil {
		r.folded[kind] = make(map[string]uint)
	}
	if _, ok := r.folded[kind][fk]; !ok {
		r.folded[kind][fk] = id
	}
}

// LoadAliases 加载姓名别名表（运行开始时整表加载，运行中只读）。
func (r *Resolver) LoadAliases(aliases []model.ManagerAlias) {
	for _, a := range aliases {
		key := foldKey(a.Alias)
		if key == "" {
			continue
		}
		if _, ok := r.aliases[key]; !ok {
			r.aliases[key] = a.EmployeeCode
		}
	}
}

// Resolve 把原始标识解析成规范 ID。解析不到时返回 (0, false)，
// 调用方绝不允许据此捏造一个标识。
func (r *Resolver) Resolve(kind, raw string) (uint, bool) {
	key := NormalizeName(raw)
	if key == "" {
		return 0, false
	}
	if id, ok := r.exact[kind][key]; ok {
		return id, true
	}
	if id, ok := r.folded[kind][foldKey(key)]; ok {
		return id, true
	}
	return 0, false
}

// ResolveManager 解析员工的上级引用，比 Resolve 多一层别名兜底：
// 姓名变体命中别名表时，取别名指向的员工编码再做一次精确解析。
func (r *Resolver) ResolveManager(raw string) (uint, bool) {
	if id, ok := r.Resolve(KindEmployee, raw); ok {
		return id, true
	}
	if code, ok := r.aliases[foldKey(raw)]; ok {
		return r.Resolve(KindEmployee, code)
	}
	return 0, false
}
