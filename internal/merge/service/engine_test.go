package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merge-service/internal/merge/model"
)

func findByKey(t *testing.T, tbl *model.MergedTable, key string, v any) model.Row {
	t.Helper()
	for _, r := range tbl.Rows {
		if r[key] == v {
			return r
		}
	}
	t.Fatalf("no row with %s=%v", key, v)
	return nil
}

func TestEngineRunFixture(t *testing.T) {
	e := newTestEngine(t, nil)
	res, err := e.Run(context.Background(), fixtureTables(), nil)
	require.NoError(t, err)

	tbl := res.Table
	assert.Equal(t, []string{"ID", "Nombre Completo", "email", "Monto"}, tbl.Columns)
	require.Equal(t, 5, tbl.Len())

	alice := findByKey(t, tbl, "ID", int64(1))
	assert.Equal(t, "alice smith", alice["Nombre Completo"])
	assert.Equal(t, int64(100), alice["Monto"])
	assert.Equal(t, "alice@example.com", alice["email"])

	bob := findByKey(t, tbl, "ID", int64(2))
	assert.Equal(t, "bob johnson", bob["Nombre Completo"])
	assert.Equal(t, int64(200), bob["Monto"])
	assert.Equal(t, "bob@example.com", bob["email"])

	charlie := findByKey(t, tbl, "ID", int64(3))
	assert.Equal(t, "charlie brown", charlie["Nombre Completo"])
	assert.Equal(t, int64(150), charlie["Monto"])

	// порядок групп — первое появление после сортировки по приоритету
	ids := make([]any, 0, tbl.Len())
	for _, r := range tbl.Rows {
		ids = append(ids, r["ID"])
	}
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4), int64(5)}, ids)

	rep := res.Report
	assert.Equal(t, []string{"data.xlsx", "data.csv", "data.json"}, rep.ProcessedFiles)
	assert.Equal(t, 3, rep.TotalFiles)
	assert.Equal(t, 9, rep.InitialTotalRows)
	assert.Equal(t, 5, rep.FinalMergedRows)
	assert.Equal(t, rep.InitialTotalRows-rep.FinalMergedRows, rep.ConflictsResolved)
	assert.Empty(t, rep.DiscardedColumns)
	assert.Equal(t, 100, rep.QualityScore)
	assert.Equal(t, []model.DType{model.Integer, model.String, model.String, model.Integer}, res.Types)
}

func TestEngineRunMissingRequiredHalts(t *testing.T) {
	e := newTestEngine(t, nil)
	res, err := e.Run(context.Background(), fixtureTables(), []string{"phone"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, model.ErrMissingRequired)

	var se *model.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"phone"}, se.Missing)
	assert.Equal(t, []string{"data.xlsx", "data.csv", "data.json"}, se.Sources)
}

func TestEngineRunUsesConfiguredRequiredColumns(t *testing.T) {
	e := newTestEngine(t, func(c *model.Config) { c.RequiredColumns = []string{"zip"} })
	_, err := e.Run(context.Background(), fixtureTables(), nil)
	assert.ErrorIs(t, err, model.ErrMissingRequired)
}

func TestEngineRunNoSources(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, model.ErrNoSources)
}

func TestEngineRunIsDeterministic(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := func(parallel bool) []byte {
		e := newTestEngine(t, func(c *model.Config) { c.ParallelMapping = parallel })
		e.now = func() time.Time { return fixed }
		res, err := e.Run(context.Background(), fixtureTables(), []string{"ID"})
		require.NoError(t, err)
		b, err := json.Marshal(res)
		require.NoError(t, err)
		return b
	}
	first := run(false)
	assert.JSONEq(t, string(first), string(run(false)))
	assert.JSONEq(t, string(first), string(run(true)))
}

func TestEngineRunReportsNullKeysAndUnmapped(t *testing.T) {
	tables := []model.Table{
		table("a.xlsx", []string{"ID", "email"}, []any{"1", "a@x.io"}, []any{"2", "b@x.io"}),
		table("b.csv", []string{"ID", "email", "favourite colour"},
			[]any{"1", "a@x.io", "red"}, []any{"3", "d@x.io", "green"}, []any{nil, "c@x.io", "blue"}),
	}
	e := newTestEngine(t, nil)
	res, err := e.Run(context.Background(), tables, nil)
	require.NoError(t, err)

	rep := res.Report
	require.Len(t, rep.DiscardedColumns, 1)
	assert.Equal(t, "favourite colour", rep.DiscardedColumns[0].Column)
	assert.Contains(t, rep.ValidationIssues.Issues, "1 rows without 'ID' value were skipped.")
	assert.Equal(t, 1, res.Stats.NullKeyRows)
	assert.Equal(t, 3, rep.FinalMergedRows)
	assert.Equal(t, 2, rep.ConflictsResolved)
	assert.Equal(t, 95, rep.QualityScore)
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Weights.Lexical = 0.9
	_, err := NewEngine(cfg, nopLogger())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestReportJSONFieldNames(t *testing.T) {
	e := newTestEngine(t, nil)
	res, err := e.Run(context.Background(), fixtureTables(), nil)
	require.NoError(t, err)

	b, err := json.Marshal(res.Report)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{
		"report_generated_at", "processed_files", "total_files", "initial_total_rows",
		"final_merged_rows", "unified_columns_map", "discarded_columns", "conflicts_resolved",
		"validation_issues", "final_quality_score_percent",
	} {
		assert.Contains(t, m, k)
	}
	vi, ok := m["validation_issues"].(map[string]any)
	require.True(t, ok)
	for _, k := range []string{"issues", "high_null_columns", "missing_required_columns", "type_inconsistencies", "corrupt_rows_report"} {
		assert.Contains(t, vi, k)
	}
	ucm, ok := m["unified_columns_map"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, ucm, 4)
}
