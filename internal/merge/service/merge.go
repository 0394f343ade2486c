package service

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"merge-service/internal/merge/model"
)

// taggedRow — строка после переименования, с рангом источника.
type taggedRow struct {
	values model.Row
	rank   int
}

// ResolveConflict выбирает одно значение колонки в группе сущности.
// values идут в порядке приоритета (ранг по возрастанию, затем исходный порядок).
// Нет значений -> nil; одно -> оно; иначе самое частое, при равенстве частот —
// встреченное первым, то есть из самого надёжного источника.
func ResolveConflict(values []any) any {
	counts := make(map[string]int)
	first := make(map[string]int)
	order := make([]string, 0, len(values))
	for i, v := range values {
		if model.IsNull(v) {
			continue
		}
		k := model.ValueKey(v)
		if _, ok := counts[k]; !ok {
			first[k] = i
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return nil
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return values[first[best]]
}

// EntityKeyColumn: явный ключ, если он есть среди канонических колонок,
// иначе первая колонка, чьё нормализованное имя содержит "id".
func EntityKeyColumn(columns []string, hint string) string {
	if hint != "" {
		for _, c := range columns {
			if c == hint {
				return c
			}
		}
	}
	for _, c := range columns {
		if strings.Contains(Normalize(c), "id") {
			return c
		}
	}
	return ""
}

// MergeEngine: конкатенация, группировка по ключу сущности, разрешение конфликтов.
type MergeEngine struct {
	entityKeyHint string
	log           zerolog.Logger
}

func NewMergeEngine(entityKeyHint string, logger zerolog.Logger) *MergeEngine {
	return &MergeEngine{entityKeyHint: entityKeyHint, log: logger}
}

// Merge не меняет исходные таблицы и схему.
func (e *MergeEngine) Merge(tables []model.Table, schema *model.Schema) (*model.MergedTable, model.MergeStats) {
	columns := schema.Columns()
	rows := e.concat(tables, schema)
	stats := model.MergeStats{InitialRows: len(rows)}

	// стабильная сортировка по рангу, внутри ранга исходный порядок
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].rank < rows[j].rank })

	key := EntityKeyColumn(columns, e.entityKeyHint)
	var out []model.Row
	if key == "" {
		e.log.Warn().Msg("no entity key column found, dropping exact duplicates only")
		out, stats.DuplicateRows = dedupeRows(rows, columns)
	} else {
		e.log.Info().Str("entity_key", key).Msg("resolving conflicts by entity key")
		stats.EntityKey = key
		out, stats.NullKeyRows = e.resolveGroups(rows, columns, key)
		if stats.NullKeyRows > 0 {
			e.log.Warn().Str("entity_key", key).Int("rows", stats.NullKeyRows).Msg("rows without entity key skipped")
		}
	}
	stats.FinalRows = len(out)
	e.log.Info().Int("initial", stats.InitialRows).Int("final", stats.FinalRows).Msg("merge complete")
	return &model.MergedTable{Columns: columns, Rows: out}, stats
}

func (e *MergeEngine) concat(tables []model.Table, schema *model.Schema) []taggedRow {
	total := 0
	for _, t := range tables {
		total += len(t.Rows)
	}
	rows := make([]taggedRow, 0, total)
	for i, t := range tables {
		rank := t.Precedence()
		rename := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			if c, ok := schema.Resolve(i, col); ok {
				rename[col] = c
			}
		}
		for _, r := range t.Rows {
			vals := make(model.Row, len(rename))
			for col, canon := range rename {
				if v, ok := r[col]; ok {
					vals[canon] = v
				}
			}
			rows = append(rows, taggedRow{values: vals, rank: rank})
		}
	}
	return rows
}

// resolveGroups: индекс ключ -> строки в порядке приоритета; по группе на запись.
func (e *MergeEngine) resolveGroups(rows []taggedRow, columns []string, key string) ([]model.Row, int) {
	groups := make(map[string][]int)
	var order []string
	nullKeys := 0
	for i, r := range rows {
		kv := r.values[key]
		if model.IsNull(kv) {
			nullKeys++
			continue
		}
		k := model.ValueKey(kv)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	out := make([]model.Row, 0, len(order))
	values := make([]any, 0, 8)
	for _, k := range order {
		idx := groups[k]
		rec := make(model.Row, len(columns))
		for _, col := range columns {
			values = values[:0]
			for _, i := range idx {
				values = append(values, rows[i].values[col])
			}
			rec[col] = ResolveConflict(values)
		}
		out = append(out, rec)
	}
	return out, nullKeys
}

// dedupeRows оставляет первое вхождение полностью одинаковых строк.
func dedupeRows(rows []taggedRow, columns []string) ([]model.Row, int) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]model.Row, 0, len(rows))
	dups := 0
	var b strings.Builder
	for _, r := range rows {
		b.Reset()
		for _, col := range columns {
			v := r.values[col]
			if model.IsNull(v) {
				b.WriteString("\x00")
			} else {
				b.WriteString(model.ValueKey(v))
			}
			b.WriteString("\x1f")
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
		rec := make(model.Row, len(columns))
		for _, col := range columns {
			v := r.values[col]
			if model.IsNull(v) {
				v = nil
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, dups
}
