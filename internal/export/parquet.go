package export

import (
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"merge-service/internal/merge/model"
)

func parquetNode(k columnKind) parquet.Node {
	switch k {
	case kindInt:
		return parquet.Optional(parquet.Int(64))
	case kindFloat:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case kindBool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

// orderedGroup — parquet.Group с полями в заданном порядке
// (сам Group сортирует поля по имени).
type orderedGroup struct {
	parquet.Group
	fields []parquet.Field
}

func newOrderedGroup(names []string, nodes map[string]parquet.Node) orderedGroup {
	g := parquet.Group(nodes)
	byName := make(map[string]parquet.Field, len(nodes))
	for _, f := range g.Fields() {
		byName[f.Name()] = f
	}
	fields := make([]parquet.Field, 0, len(names))
	for _, n := range names {
		if f, ok := byName[n]; ok {
			fields = append(fields, f)
		}
	}
	return orderedGroup{Group: g, fields: fields}
}

func (g orderedGroup) Fields() []parquet.Field { return g.fields }

func (g orderedGroup) String() string {
	names := make([]string, len(g.fields))
	for i, f := range g.fields {
		names[i] = f.Name()
	}
	return "group(" + strings.Join(names, ", ") + ")"
}

// WriteParquet: все колонки optional, тип выводится из значений, порядок канонический.
func WriteParquet(path string, t *model.MergedTable) (err error) {
	kinds := make(map[string]columnKind, len(t.Columns))
	nodes := make(map[string]parquet.Node, len(t.Columns))
	for _, c := range t.Columns {
		kinds[c] = kindOf(t, c)
		nodes[c] = parquetNode(kinds[c])
	}
	schema := parquet.NewSchema(TableName, newOrderedGroup(t.Columns, nodes))

	leaves := schema.Columns()
	order := make([]string, len(leaves))
	for i, leaf := range leaves {
		order[i] = leaf[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := parquet.NewWriter(f, schema)
	rows := make([]parquet.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(parquet.Row, len(order))
		for i, c := range order {
			row[i] = parquetValue(r[c], kinds[c]).Level(0, definitionLevel(r[c]), i)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if _, err := w.WriteRows(rows); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

func definitionLevel(v any) int {
	if v == nil {
		return 0
	}
	return 1
}

func parquetValue(v any, k columnKind) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}
	switch k {
	case kindInt:
		switch n := v.(type) {
		case int64:
			return parquet.Int64Value(n)
		case int:
			return parquet.Int64Value(int64(n))
		}
	case kindFloat:
		switch n := v.(type) {
		case float64:
			return parquet.DoubleValue(n)
		case int64:
			return parquet.DoubleValue(float64(n))
		case int:
			return parquet.DoubleValue(float64(n))
		}
	case kindBool:
		if b, ok := v.(bool); ok {
			return parquet.BooleanValue(b)
		}
	}
	return parquet.ByteArrayValue([]byte(formatValue(v)))
}
