// Package ingest 把 CSV/XLSX 文件分词成协调引擎消费的行序列。
// 表头识别、BOM 去除、空行过滤都在这一层完成；列名到规范字段的
// 折叠由引擎的列别名表负责，这里不做任何语义解释。
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"orgchart_go/internal/recon"
	"os"
	"path/filepath"
	"strings"
)

// utf8BOM 是 Excel 导出 CSV 时常见的字节序标记。
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV 把一个 CSV 流分词成行序列。第一行作为表头；
// 全空的行被丢弃；列数少于表头的行按空值补齐。
func ReadCSV(r io.Reader) ([]recon.Row, error) {
	br := bufio.NewReader(r)

	// 去除 BOM，否则第一个表头名会带上不可见前缀，别名表永远匹配不上。
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []recon.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

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

// ReadCSVFile 打开并分词一个 CSV 文件。
func ReadCSVFile(path string) ([]recon.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// csvFileNames 是目录导入时每类实体识别的文件名（不含扩展名）。
var csvFileNames = map[string][]string{
	"departments": {"departments", "department", "departman"},
	"locations":   {"locations", "location", "lokasyon"},
	"brands":      {"brands", "brand", "marka"},
	"levels":      {"levels", "level", "unvan"},
	"positions":   {"positions", "position", "pozisyon"},
	"employees":   {"employees", "employee", "personel"},
	"assignments": {"assignments", "assignment", "atama"},
}

// LoadDir 从一个目录读取按实体命名的 CSV 文件，组装成一个批次。
// 找不到的文件视为该类实体本批没有输入，不是错误。
func LoadDir(dir string) (*recon.Batch, error) {
	read := func(slot string) ([]recon.Row, error) {
		for _, base := range csvFileNames[slot] {
			path := filepath.Join(dir, base+".csv")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			return ReadCSVFile(path)
		}
		return nil, nil
	}

	batch := &recon.Batch{}
	var err error
	if batch.Departments, err = read("departments"); err != nil {
		return nil, err
	}
	if batch.Locations, err = read("locations"); err != nil {
		return nil, err
	}
	if batch.Brands, err = read("brands"); err != nil {
		return nil, err
	}
	if batch.Levels, err = read("levels"); err != nil {
		return nil, err
	}
	if batch.Positions, err = read("positions"); err != nil {
		return nil, err
	}
	if batch.Employees, err = read("employees"); err != nil {
		return nil, err
	}
	if batch.Assignments, err = read("assignments"); err != nil {
		return nil, err
	}
	return batch, nil
}
