package service

import (
	"math"

	"merge-service/internal/merge/model"
	"merge-service/internal/utils"
)

// ISOLayout — формат дат на выходе
const ISOLayout = "2006-01-02T15:04:05"

// Cleaner заново выводит тип каждой колонки результата и приводит значения к нему.
type Cleaner struct {
	inf TypeInferencer
}

func NewCleaner(inf TypeInferencer) *Cleaner { return &Cleaner{inf: inf} }

// Clean возвращает новую таблицу и типы колонок; вход не меняется.
func (c *Cleaner) Clean(t *model.MergedTable) (*model.MergedTable, []model.DType) {
	out := &model.MergedTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]model.Row, len(t.Rows)),
	}
	for i := range t.Rows {
		out.Rows[i] = make(model.Row, len(t.Columns))
	}
	types := make([]model.DType, len(t.Columns))
	col := make([]any, len(t.Rows))
	for ci, name := range t.Columns {
		for i, r := range t.Rows {
			col[i] = r[name]
		}
		dt := c.inf.Infer(col)
		types[ci] = dt
		for i, v := range col {
			out.Rows[i][name] = coerce(v, dt)
		}
	}
	return out, types
}

func coerce(v any, dt model.DType) any {
	if model.IsNull(v) {
		return nil
	}
	switch dt {
	case model.DateTime:
		if ts, ok := ParseDateTime(v); ok {
			return ts.Format(ISOLayout)
		}
		return nil
	case model.Integer, model.Float:
		if _, isBool := v.(bool); isBool {
			return nil
		}
		f, ok := parseNumeric(v)
		if !ok {
			return nil
		}
		if dt == model.Integer && utils.IsIntegral(f) {
			return int64(f)
		}
		if math.IsNaN(f) {
			return nil
		}
		return f
	case model.Boolean:
		if b, ok := parseBoolToken(v); ok {
			return b
		}
		return nil
	case model.String:
		s := foldText(model.ValueKey(v))
		if s == "" {
			return nil
		}
		return s
	default:
		return nil
	}
}
