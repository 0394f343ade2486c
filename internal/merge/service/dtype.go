package service

import (
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"time"

	"merge-service/internal/merge/model"
	"merge-service/internal/utils"
)

var boolTokens = map[string]bool{
	"true": true, "t": true, "1": true, "y": true, "yes": true,
	"false": false, "f": false, "0": false, "n": false, "no": false,
}

// parseBoolToken: регистр не важен
func parseBoolToken(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	b, ok := boolTokens[strings.ToLower(model.ValueKey(v))]
	return b, ok
}

// parseNumeric — число из значения любого поддерживаемого типа.
func parseNumeric(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		return utils.ParseNumber(t.String())
	case string:
		return utils.ParseNumber(t)
	case []byte:
		return utils.ParseNumber(string(t))
	default:
		return 0, false
	}
}

// от строгих к нестрогим; US (месяц первым) раньше EU
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"02/01/2006",
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDateTime пробует известные форматы дат.
func ParseDateTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// TypeInferencer классифицирует колонку по сэмплу непустых значений.
// Сэмпл детерминирован: фиксированный размер и seed.
type TypeInferencer struct {
	SampleSize int
	Seed       int64
}

func NewTypeInferencer(sampleSize int, seed int64) TypeInferencer {
	if sampleSize < 1 {
		sampleSize = 100
	}
	return TypeInferencer{SampleSize: sampleSize, Seed: seed}
}

func (ti TypeInferencer) sample(values []any) []any {
	nonNull := make([]any, 0, len(values))
	for _, v := range values {
		if !model.IsNull(v) {
			nonNull = append(nonNull, v)
		}
	}
	if len(nonNull) <= ti.SampleSize {
		return nonNull
	}
	idx := rand.New(rand.NewSource(ti.Seed)).Perm(len(nonNull))[:ti.SampleSize]
	sort.Ints(idx)
	out := make([]any, len(idx))
	for i, j := range idx {
		out[i] = nonNull[j]
	}
	return out
}

// Infer: Empty -> Boolean -> Integer -> Float -> DateTime -> String.
func (ti TypeInferencer) Infer(values []any) model.DType {
	s := ti.sample(values)
	if len(s) == 0 {
		return model.Empty
	}
	if all(s, func(v any) bool { _, ok := parseBoolToken(v); return ok }) {
		return model.Boolean
	}
	integral := true
	numeric := all(s, func(v any) bool {
		if _, isBool := v.(bool); isBool {
			return false
		}
		f, ok := parseNumeric(v)
		if ok && !utils.IsIntegral(f) {
			integral = false
		}
		return ok
	})
	if numeric {
		if integral {
			return model.Integer
		}
		return model.Float
	}
	if all(s, func(v any) bool { _, ok := ParseDateTime(v); return ok }) {
		return model.DateTime
	}
	return model.String
}

func all(vals []any, pred func(any) bool) bool {
	for _, v := range vals {
		if !pred(v) {
			return false
		}
	}
	return true
}
