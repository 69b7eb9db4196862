// Package recon 实现组织层级协调引擎：
// 把来自多个表格源、标识体系不一致的员工/岗位行，解析成一棵一致的汇报树，
// 并派生空缺岗位、活跃任职等只读视图。引擎按批次运行、可安全重跑（幂等），
// 运行之间不保留任何私有状态。
package recon

import (
	"strings"
	"time"
)

// Row 是上游解析器交付的一行记录：列名（规范化后）→ 字符串值。
// CSV/XLSX 的分词、表头识别、BOM 去除都在 ingest 层完成，引擎只消费 Row。
type Row map[string]string

// 实体种类。解析器按种类维护独立的标识索引。
const (
	KindEmployee   = "employee"
	KindPosition   = "position"
	KindDepartment = "department"
	KindLocation   = "location"
	KindBrand      = "brand"
	KindLevel      = "level"
)

// columnAliases 是每类实体的声明式列别名表：规范字段名 → 源表格里见过的表头写法。
// 行进入引擎前先经 NormalizeRow 按此表折叠成规范字段名，
// 解析代码里不再出现逐个尝试表头拼写的兜底链。
// 别名全部按 foldKey 格式登记（小写、空白压缩为下划线）。
var columnAliases = map[string]map[string][]string{
	KindEmployee: {
		"code":          {"code", "employee_code", "sicil", "sicil_no", "personel_no"},
		"name":          {"name", "full_name", "ad_soyad", "adi_soyadi"},
		"organization":  {"organization", "org", "organizasyon"},
		"positionRef":   {"position", "position_code", "pozisyon"},
		"departmentRef": {"department", "departman", "bolum"},
		"locationRef":   {"location", "lokasyon", "sube"},
		"brandRef":      {"brand", "marka"},
		"managerRef":    {"manager", "manager_name", "yonetici", "bagli_oldugu_yonetici"},
		"isManager":     {"is_manager", "yonetici_mi"},
		"isBlocked":     {"is_blocked", "blocked", "pasif"},
		"level":         {"level", "unvan", "kademe"},
	},
	KindPosition: {
		"code":          {"code", "position_code", "pozisyon_kodu"},
		"name":          {"name", "position_name", "pozisyon"},
		"departmentRef": {"department", "departman", "bolum"},
		"locationRef":   {"location", "lokasyon", "sube"},
		"brandRef":      {"brand", "marka"},
		"levelRef":      {"level", "unvan", "kademe"},
	},
	KindDepartment: {
		"code": {"code", "department_code"},
		"name": {"name", "department", "departman"},
	},
	KindLocation: {
		"code": {"code", "location_code"},
		"name": {"name", "location", "lokasyon"},
	},
	KindBrand: {
		"code": {"code", "brand_code"},
		"name": {"name", "brand", "marka"},
	},
	KindLevel: {
		"name": {"name", "level", "unvan"},
	},
	"assignment": {
		"positionRef":    {"position", "position_code", "pozisyon"},
		"employeeCode":   {"employee", "employee_code", "sicil", "sicil_no"},
		"startDate":      {"start_date", "start", "baslangic"},
		"endDate":        {"end_date", "end", "bitis"},
		"assignmentType": {"assignment_type", "type", "gorev_tipi"},
	},
}

// nullTokens 是“显式没有上级”的哨兵写法（大小写不敏感）。
// 命中哨兵的上级引用视为明确的根节点，不是解析失败。
var nullTokens = map[string]struct{}{
	"null": {},
	"none": {},
	"-":    {},
	"yok":  {},
}

// NormalizeName 规范化名称：去首尾空白、内部连续空白压缩为单个空格。
// 维度实体按规范化后的名称去重。
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// foldKey 生成大小写无关的匹配键：规范化后转小写。
func foldKey(raw string) string {
	return strings.ToLower(NormalizeName(raw))
}

// foldHeader 把表头折叠成别名表的登记格式：小写、空白压缩为下划线。
func foldHeader(raw string) string {
	return strings.ReplaceAll(strings.ToLower(NormalizeName(raw)), " ", "_")
}

// NormalizeRow 按列别名表把一行原始记录折叠成规范字段名。
// 未登记的列被丢弃；同一规范字段命中多个别名时取第一个非空值。
func NormalizeRow(kind string, raw Row) Row {
	aliases, ok := columnAliases[kind]
	if !ok {
		return Row{}
	}

	// 原始表头也先折叠，做到大小写/空白不敏感。
	folded := make(map[string]string, len(raw))
	for k, v := range raw {
		key := foldHeader(k)
		if _, exists := folded[key]; !exists || strings.TrimSpace(v) != "" {
			folded[key] = v
		}
	}

	out := make(Row, len(aliases))
	for field, names := range aliases {
		for _, alias := range names {
			if v, ok := folded[alias]; ok && strings.TrimSpace(v) != "" {
				out[field] = strings.TrimSpace(v)
				break
			}
		}
	}
	return out
}

// IsNullToken 判断引用是否为“显式无上级”的哨兵值。
func IsNullToken(raw string) bool {
	_, ok := nullTokens[foldKey(raw)]
	return ok
}

// parseBool 解析表格里的布尔写法。未识别的值一律按 false 处理。
func parseBool(raw string) bool {
	switch foldKey(raw) {
	case "1", "true", "yes", "evet", "x":
		return true
	default:
		return false
	}
}

// dateLayouts 是源表格里出现过的日期格式，按出现频率排序。
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate 依次尝试已知日期格式。空串返回零值时间和 false。
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
