package ingest

import (
	"fmt"
	"io"
	"orgchart_go/internal/recon"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetAliases 把工作表名（大小写不敏感）映射到批次槽位。
// 覆盖历史导出里出现过的中英/土耳其语表名。
var sheetAliases = map[string]string{
	"departments":      "departments",
	"department":       "departments",
	"departman":        "departments",
	"departmanlar":     "departments",
	"locations":        "locations",
	"location":         "locations",
	"lokasyon":         "locations",
	"lokasyonlar":      "locations",
	"brands":           "brands",
	"brand":            "brands",
	"marka":            "brands",
	"markalar":         "brands",
	"levels":           "levels",
	"level":            "levels",
	"unvan":            "levels",
	"unvanlar":         "levels",
	"positions":        "positions",
	"position":         "positions",
	"pozisyon":         "positions",
	"pozisyonlar":      "positions",
	"employees":        "employees",
	"employee":         "employees",
	"personel":         "employees",
	"calisanlar":       "employees",
	"assignments":      "assignments",
	"assignment":       "assignments",
	"atama":            "assignments",
	"atamalar":         "assignments",
	"gorevlendirmeler": "assignments",
}

// ReadWorkbook 把一个 XLSX 工作簿分词成批次。
// 无法识别的工作表跳过；每个工作表第一行作为表头，空行丢弃。
func ReadWorkbook(r io.Reader) (*recon.Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	batch := &recon.Batch{}
	for _, sheet := range f.GetSheetList() {
		slot, ok := sheetAliases[strings.ToLower(strings.TrimSpace(sheet))]
		if !ok {
			continue
		}

		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}

		switch slot {
		case "departments":
			batch.Departments = append(batch.Departments, rows...)
		case "locations":
			batch.Locations = append(batch.Locations, rows...)
		case "brands":
			batch.Brands = append(batch.Brands, rows...)
		case "levels":
			batch.Levels = append(batch.Levels, rows...)
		case "positions":
			batch.Positions = append(batch.Positions, rows...)
		case "employees":
			batch.Employees = append(batch.Employees, rows...)
		case "assignments":
			batch.Assignments = append(batch.Assignments, rows...)
		}
	}
	return batch, nil
}

// sheetRows 把一个工作表按表头分词成行序列。
func sheetRows(f *excelize.File, sheet string) ([]recon.Row, error) {
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(cells) < 2 {
		return nil, nil
	}

	header := cells[0]
	var rows []recon.Row
	for _, record := range cells[1:] {
		row := make(recon.Row, len(header))
		empty := true
		for i, name := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			row[name] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
