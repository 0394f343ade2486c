package fileio

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"merge-service/internal/merge/model"
)

func TestReadAnyCSV(t *testing.T) {
	in := "\ufeffID;Full Name;;ID\n1;Alice Smith;x;9\n\n;;;\n2; Bob ;;\n"
	tbl, err := ReadAny(strings.NewReader(in), "dir/crm.csv", 1)
	require.NoError(t, err)

	assert.Equal(t, "crm.csv", tbl.Source)
	assert.Equal(t, []string{"ID", "Full Name", "Column 3", "ID_2"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, model.Row{"ID": "1", "Full Name": "Alice Smith", "Column 3": "x", "ID_2": "9"}, tbl.Rows[0])
	assert.Equal(t, model.Row{"ID": "2", "Full Name": "Bob", "Column 3": nil, "ID_2": nil}, tbl.Rows[1])
}

func TestReadAnyCSVHeaderRow(t *testing.T) {
	in := "report generated 2024-01-01\ncode,amount\nA1,10\n"
	tbl, err := ReadAny(strings.NewReader(in), "r.csv", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "amount"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "10", tbl.Rows[0]["amount"])
}

func TestReadAnyCSVWindows1252(t *testing.T) {
	src := "nombre,ciudad\nJosé Muñoz,Bogotá\nAndrés Peña,Medellín\nIñaki Gómez,Cúcuta\n"
	enc, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	tbl, err := ReadAny(strings.NewReader(enc), "legacy.csv", 1)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "José Muñoz", tbl.Rows[0]["nombre"])
}

func TestReadAnyTSV(t *testing.T) {
	tbl, err := ReadAny(strings.NewReader("a\tb\n1\t2\n"), "x.tsv", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, "2", tbl.Rows[0]["b"])
}

func TestReadAnyJSONArray(t *testing.T) {
	in := `[
		{"codigo": 1, "nombre": "Alicia", "valor": 100.5, "activo": true},
		{"codigo": 3, "nombre": null, "extra": {"k": 1}}
	]`
	tbl, err := ReadAny(strings.NewReader(in), "api.json", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"codigo", "nombre", "valor", "activo", "extra"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, int64(1), tbl.Rows[0]["codigo"])
	assert.Equal(t, 100.5, tbl.Rows[0]["valor"])
	assert.Equal(t, true, tbl.Rows[0]["activo"])
	assert.Nil(t, tbl.Rows[1]["nombre"])
	assert.Equal(t, `{"k":1}`, tbl.Rows[1]["extra"])
	_, has := tbl.Rows[1]["valor"]
	assert.False(t, has)
}

func TestReadAnyJSONWrappedRecords(t *testing.T) {
	in := `{"meta": {"count": 2}, "data": [{"id": 1}, {"id": 2}]}`
	tbl, err := ReadAny(strings.NewReader(in), "wrapped.json", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 2)
}

func TestReadAnyJSONLines(t *testing.T) {
	in := "{\"id\": 1, \"mail\": \"a@x.io\"}\n\n{\"id\": 2}\n"
	tbl, err := ReadAny(strings.NewReader(in), "events.jsonl", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "mail"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 2)

	_, err = ReadAny(strings.NewReader("{\"id\": 1}\n[1,2]\n"), "bad.jsonl", 1)
	assert.ErrorContains(t, err, "line 2")
}

func TestReadAnyXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ID", "Nombre Completo", "Monto"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "Alice Smith", 100}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "Bob Johnson", ""}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := ReadAny(bytes.NewReader(buf.Bytes()), "data.xlsx", 1)
	require.NoError(t, err)
	assert.Equal(t, "data.xlsx", tbl.Source)
	assert.Equal(t, []string{"ID", "Nombre Completo", "Monto"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "1", tbl.Rows[0]["ID"])
	assert.Equal(t, "100", tbl.Rows[0]["Monto"])
	assert.Nil(t, tbl.Rows[1]["Monto"])
}

func TestReadAnyUnsupported(t *testing.T) {
	_, err := ReadAny(strings.NewReader("x"), "notes.txt", 1)
	assert.ErrorContains(t, err, "unsupported file")
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n1,5;2;3")))
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b\n")))
	assert.Equal(t, '|', sniffDelimiter([]byte("a|b|c")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}

func TestLoadSQLSqlite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "src.db")
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE clients (id INTEGER, name TEXT, balance REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO clients VALUES (1, 'Ann', 10.5), (2, NULL, 3)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl, err := LoadSQL(context.Background(), "SQLite", p, "SELECT id, name, balance FROM clients ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, "sql:sqlite", tbl.Source)
	assert.Equal(t, model.RankSQL, tbl.Precedence())
	assert.Equal(t, []string{"id", "name", "balance"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, int64(1), tbl.Rows[0]["id"])
	assert.Equal(t, "Ann", tbl.Rows[0]["name"])
	assert.Equal(t, 10.5, tbl.Rows[0]["balance"])
	assert.Nil(t, tbl.Rows[1]["name"])
}

func TestLoadSQLRejectsUnknownKind(t *testing.T) {
	_, err := LoadSQL(context.Background(), "oracle", "dsn", "select 1")
	assert.ErrorContains(t, err, "unsupported sql kind")
	_, err = LoadSQL(context.Background(), "sqlite", ":memory:", "  ")
	assert.ErrorContains(t, err, "empty query")
}
