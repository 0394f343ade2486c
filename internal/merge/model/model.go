package model

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Row: одна строка таблицы, имя колонки -> значение (nil = null)
type Row map[string]any

// Table — исходная таблица одного источника.
type Table struct {
	Source  string   // идентификатор источника (имя файла, sql:<kind>)
	Columns []string // порядок колонок как в заголовке
	Rows    []Row
}

// Precedence — ранг доверия источника (меньше = надёжнее).
func (t *Table) Precedence() int { return PrecedenceFor(t.Source) }

// Ранги по формату источника
const (
	RankSpreadsheet = 0
	RankCSV         = 1
	RankJSON        = 2
	RankSQL         = 3
	RankUnknown     = 99
)

// PrecedenceFor выводит ранг из идентификатора источника.
func PrecedenceFor(source string) int {
	s := strings.ToLower(strings.TrimSpace(source))
	if strings.HasPrefix(s, "sql:") {
		return RankSQL
	}
	switch filepath.Ext(s) {
	case ".xlsx", ".xls", ".xlsm":
		return RankSpreadsheet
	case ".csv", ".tsv":
		return RankCSV
	case ".json", ".jsonl":
		return RankJSON
	case ".sql", ".sqlite", ".db":
		return RankSQL
	default:
		return RankUnknown
	}
}

// IsNull: nil, пустая/пробельная строка, NaN.
func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	default:
		return false
	}
}

// ValueKey приводит значение к строковому ключу для сравнения (группировка, частоты, дедуп).
// 100 (int) и 100.0 (float из JSON) дают один ключ. Числа без экспоненты:
// float64(2500000) и "2500000" из CSV совпадают.
func ValueKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// ColumnProfile — профиль колонки конкретного источника.
type ColumnProfile struct {
	Source     string  `json:"source"`
	Index      int     `json:"source_index"`
	Name       string  `json:"name"`
	Normalized string  `json:"normalized"`
	DType      DType   `json:"dtype"`
	NullRatio  float64 `json:"null_ratio"`
}

// UnmappedColumn — колонка, не прошедшая порог ни с одной канонической.
type UnmappedColumn struct {
	Source    string  `json:"source"`
	Column    string  `json:"column"`
	BestMatch string  `json:"best_match,omitempty"`
	BestScore float64 `json:"best_score"`
}

// MergedTable — результат слияния, колонки в каноническом порядке.
type MergedTable struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len: число строк
func (m *MergedTable) Len() int { return len(m.Rows) }

// Result — всё, что возвращает один прогон.
type Result struct {
	Table  *MergedTable   `json:"table"`
	Types  []DType        `json:"types"` // типы колонок Table после очистки
	Schema *Schema        `json:"schema"`
	Report *QualityReport `json:"report"`
	Stats  MergeStats     `json:"stats"`
}

// MergeStats — служебная статистика MergeEngine.
type MergeStats struct {
	InitialRows   int    `json:"initial_rows"`
	FinalRows     int    `json:"final_rows"`
	EntityKey     string `json:"entity_key,omitempty"`
	NullKeyRows   int    `json:"null_key_rows"`
	DuplicateRows int    `json:"duplicate_rows"`
}
