package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"merge-service/internal/merge/model"
)

// ReadAny — выберет парсер по расширению и вернёт исходную таблицу.
// headerRow — номер строки заголовков (1-based). Пустые ячейки становятся nil.
func ReadAny(r io.Reader, filename string, headerRow int) (*model.Table, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		t   *model.Table
		err error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		t, err = readXLSX(r, headerRow)
	case ".xls":
		t, err = readXLS(r, headerRow)
	case ".csv", ".tsv":
		t, err = readCSV(r, headerRow, ext == ".tsv")
	case ".json":
		t, err = readJSON(r)
	case ".jsonl", ".ndjson":
		t, err = readJSONLines(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	t.Source = filepath.Base(filename)
	return t, nil
}

// pickHeader — берёт строку заголовков, подставляет Column N для пустых и
// добавляет суффикс _2, _3 к повторам.
func pickHeader(rows [][]string, headerRow int) []string {
	if len(rows) == 0 {
		return nil
	}
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	return uniqueHeaders(rows[idx])
}

func uniqueHeaders(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s_%d", v, n+1)
		}
		seen[v]++
		out[i] = v
	}
	return out
}

// rowsToTable — AoA в таблицу по заголовкам, пропуская полностью пустые строки.
func rowsToTable(rows [][]string, headers []string, headerRow int) *model.Table {
	t := &model.Table{Columns: headers}
	start := headerRow // первая строка после заголовков
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(model.Row, len(headers))
		empty := true
		for c := range headers {
			var v string
			if c < len(rec) {
				v = strings.TrimSpace(rec[c])
			}
			if v == "" {
				m[headers[c]] = nil
				continue
			}
			empty = false
			m[headers[c]] = v
		}
		if !empty {
			t.Rows = append(t.Rows, m)
		}
	}
	return t
}
