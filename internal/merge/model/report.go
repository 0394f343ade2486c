package model

import "time"

// CorruptRows — сколько строк источника имеют null в обязательных колонках.
type CorruptRows struct {
	File    string   `json:"file"`
	Count   int      `json:"corrupt_rows_count"`
	Columns []string `json:"columns"`
}

// ValidationIssues — всё, что нашёл Validator. Только MissingRequired фатален.
type ValidationIssues struct {
	Issues              []string      `json:"issues"`
	HighNullColumns     []string      `json:"high_null_columns"`
	MissingRequired     []string      `json:"missing_required_columns"`
	TypeInconsistencies []string      `json:"type_inconsistencies"`
	CorruptRows         []CorruptRows `json:"corrupt_rows_report"`
}

// NewValidationIssues — с пустыми (не nil) списками, чтобы в JSON были [] а не null.
func NewValidationIssues() ValidationIssues {
	return ValidationIssues{
		Issues:              []string{},
		HighNullColumns:     []string{},
		MissingRequired:     []string{},
		TypeInconsistencies: []string{},
		CorruptRows:         []CorruptRows{},
	}
}

// QualityReport — неизменяемый снимок результата задания.
type QualityReport struct {
	GeneratedAt       time.Time        `json:"report_generated_at"`
	ProcessedFiles    []string         `json:"processed_files"`
	TotalFiles        int              `json:"total_files"`
	InitialTotalRows  int              `json:"initial_total_rows"`
	FinalMergedRows   int              `json:"final_merged_rows"`
	UnifiedColumnsMap *Schema          `json:"unified_columns_map"`
	DiscardedColumns  []UnmappedColumn `json:"discarded_columns"`
	ConflictsResolved int              `json:"conflicts_resolved"`
	ValidationIssues  ValidationIssues `json:"validation_issues"`
	QualityScore      int              `json:"final_quality_score_percent"`
}
