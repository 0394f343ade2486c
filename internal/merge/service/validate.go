package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"merge-service/internal/merge/model"
)

type profileKey struct {
	src int
	col string
}

// Validator — проверки до слияния. Фатально только отсутствие обязательных колонок.
type Validator struct {
	highNull float64
	log      zerolog.Logger
}

func NewValidator(highNullRatio float64, logger zerolog.Logger) *Validator {
	return &Validator{highNull: highNullRatio, log: logger}
}

// ResolveRequired ищет каноническую колонку для имени из списка обязательных:
// точное имя, нормализованное имя, затем алиасы.
func ResolveRequired(schema *model.Schema, name string) (string, bool) {
	cols := schema.Columns()
	for _, c := range cols {
		if c == name {
			return c, true
		}
	}
	n := Normalize(name)
	if n == "" {
		return "", false
	}
	for _, c := range cols {
		if Normalize(c) == n {
			return c, true
		}
	}
	for _, c := range cols {
		for _, a := range schema.Aliases(c) {
			if a.Column == name || Normalize(a.Column) == n {
				return c, true
			}
		}
	}
	return "", false
}

// Validate не меняет входные данные.
func (v *Validator) Validate(tables []model.Table, profiles [][]model.ColumnProfile, schema *model.Schema, required []string) model.ValidationIssues {
	v.log.Info().Int("sources", len(tables)).Msg("pre-merge validation started")
	res := model.NewValidationIssues()

	// обязательные колонки
	var requiredCanon []string
	for _, req := range required {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		c, ok := ResolveRequired(schema, req)
		if !ok {
			v.log.Error().Str("column", req).Msg("required column is missing in all files")
			res.MissingRequired = append(res.MissingRequired, req)
			continue
		}
		requiredCanon = append(requiredCanon, c)
	}

	// согласованность типов по канонической колонке
	byKey := make(map[profileKey]model.ColumnProfile)
	for _, ps := range profiles {
		for _, p := range ps {
			byKey[profileKey{p.Index, p.Name}] = p
		}
	}
	for _, canon := range schema.Columns() {
		seen := map[model.DType]bool{}
		for _, a := range schema.Aliases(canon) {
			p, ok := byKey[profileKey{a.SourceIndex, a.Column}]
			if !ok || p.DType == model.Empty {
				continue
			}
			seen[p.DType] = true
		}
		if len(seen) > 1 {
			types := make([]model.DType, 0, len(seen))
			for d := range seen {
				types = append(types, d)
			}
			sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
			names := make([]string, len(types))
			for i, d := range types {
				names[i] = d.String()
			}
			issue := fmt.Sprintf("Canonical column '%s' has inconsistent types: [%s]", canon, strings.Join(names, ", "))
			v.log.Warn().Str("column", canon).Strs("types", names).Msg("type inconsistency")
			res.TypeInconsistencies = append(res.TypeInconsistencies, issue)
		}
	}

	for i, t := range tables {
		if len(t.Rows) == 0 {
			issue := fmt.Sprintf("File '%s' is empty.", t.Source)
			v.log.Warn().Str("file", t.Source).Msg("empty source")
			res.Issues = append(res.Issues, issue)
			continue
		}
		// высокая доля null
		if i < len(profiles) {
			for _, p := range profiles[i] {
				if p.NullRatio < v.highNull {
					continue
				}
				label := p.Name
				if c, ok := schema.Resolve(i, p.Name); ok {
					label = c
				}
				v.log.Warn().Str("file", t.Source).Str("column", label).Float64("null_ratio", p.NullRatio).Msg("high null rate")
				res.HighNullColumns = append(res.HighNullColumns, fmt.Sprintf("%s -> %s", t.Source, label))
			}
		}
		// битые строки: null в обязательной колонке после переименования
		if len(requiredCanon) > 0 {
			if cr := corruptRows(i, t, schema, requiredCanon); cr.Count > 0 {
				v.log.Warn().Str("file", t.Source).Int("rows", cr.Count).Strs("columns", cr.Columns).Msg("corrupt rows")
				res.CorruptRows = append(res.CorruptRows, cr)
			}
		}
	}
	v.log.Info().
		Int("missing_required", len(res.MissingRequired)).
		Int("type_inconsistencies", len(res.TypeInconsistencies)).
		Int("high_null", len(res.HighNullColumns)).
		Int("corrupt_sources", len(res.CorruptRows)).
		Msg("pre-merge validation finished")
	return res
}

func corruptRows(idx int, t model.Table, schema *model.Schema, required []string) model.CorruptRows {
	// каноническая -> колонка этого источника
	local := make(map[string]string, len(required))
	for _, col := range t.Columns {
		if c, ok := schema.Resolve(idx, col); ok {
			local[c] = col
		}
	}
	out := model.CorruptRows{File: t.Source, Columns: []string{}}
	hit := make(map[string]bool)
	for _, row := range t.Rows {
		bad := false
		for _, c := range required {
			col, ok := local[c]
			if ok && !model.IsNull(row[col]) {
				continue
			}
			bad = true
			hit[c] = true
		}
		if bad {
			out.Count++
		}
	}
	for _, c := range required {
		if hit[c] {
			out.Columns = append(out.Columns, c)
			hit[c] = false
		}
	}
	return out
}
