package service

import (
	"time"

	"merge-service/internal/merge/model"
)

// Штрафы за проблемы качества
const (
	penaltyUnmapped        = 5
	penaltyHighNull        = 2
	penaltyMissingRequired = 25
	penaltyTypeMismatch    = 10
)

// QualityScore — 100 минус штрафы, всегда в [0,100].
func QualityScore(unmapped, highNull, missingRequired, typeInconsistencies int) int {
	score := 100 -
		penaltyUnmapped*unmapped -
		penaltyHighNull*highNull -
		penaltyMissingRequired*missingRequired -
		penaltyTypeMismatch*typeInconsistencies
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// BuildReport собирает неизменяемый снимок по итогам задания.
func BuildReport(now time.Time, tables []model.Table, mapping Mapping, issues model.ValidationIssues, merged *model.MergedTable) *model.QualityReport {
	files := make([]string, len(tables))
	initial := 0
	for i, t := range tables {
		files[i] = t.Source
		initial += len(t.Rows)
	}
	final := 0
	if merged != nil {
		final = merged.Len()
	}
	unmapped := mapping.Unmapped
	if unmapped == nil {
		unmapped = []model.UnmappedColumn{}
	}
	return &model.QualityReport{
		GeneratedAt:       now.UTC(),
		ProcessedFiles:    files,
		TotalFiles:        len(tables),
		InitialTotalRows:  initial,
		FinalMergedRows:   final,
		UnifiedColumnsMap: mapping.Schema,
		DiscardedColumns:  unmapped,
		ConflictsResolved: initial - final,
		ValidationIssues:  issues,
		QualityScore: QualityScore(
			len(unmapped),
			len(issues.HighNullColumns),
			len(issues.MissingRequired),
			len(issues.TypeInconsistencies),
		),
	}
}
