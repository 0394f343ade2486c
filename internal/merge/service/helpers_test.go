package service

import (
	"github.com/rs/zerolog"

	"merge-service/internal/merge/model"
)

func table(source string, cols []string, rows ...[]any) model.Table {
	t := model.Table{Source: source, Columns: cols}
	for _, r := range rows {
		row := make(model.Row, len(cols))
		for i, c := range cols {
			if i < len(r) {
				row[c] = r[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// три источника: xlsx (строки как из Excel), csv, json (числа)
func fixtureTables() []model.Table {
	return []model.Table{
		table("data.xlsx", []string{"ID", "Nombre Completo", "email", "Monto"},
			[]any{"1", "Alice Smith", "alice@example.com", "100"},
			[]any{"2", "Bob Johnson", "bob@example.com", "200"},
			[]any{"3", "Charlie Brown", "charlie@example.com", "150"},
		),
		table("data.csv", []string{"Identifier", "Full Name", "correo", "Amount"},
			[]any{"1", "Alice Smith", "alice@example.com", "105"},
			[]any{"2", "Robert Johnson", "bob_j@example.com", "200"},
			[]any{"4", "David Davis", "dave@example.com", "300"},
		),
		table("data.json", []string{"codigo", "nombre", "mail", "valor"},
			[]any{int64(1), "Alicia Smith", "alice_s@example.com", int64(100)},
			[]any{int64(3), "Charles Brown", "charlie_b@example.com", int64(155)},
			[]any{int64(5), "Eve Williams", "eve@example.com", int64(500)},
		),
	}
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
