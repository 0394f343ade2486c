package fileio

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"merge-service/internal/merge/model"
)

// поддерживаемые СУБД -> имя database/sql драйвера
var sqlDrivers = map[string]string{
	"sqlite":    "sqlite",
	"postgres":  "pgx",
	"mssql":     "sqlserver",
	"sqlserver": "sqlserver",
}

// SQLKinds — допустимые значения kind для LoadSQL.
func SQLKinds() []string { return []string{"sqlite", "postgres", "mssql"} }

// LoadSQL выполняет запрос и возвращает результат как исходную таблицу "sql:<kind>".
func LoadSQL(ctx context.Context, kind, dsn, query string) (*model.Table, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	driver, ok := sqlDrivers[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported sql kind %q (want one of %s)", kind, strings.Join(SQLKinds(), ", "))
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("sql %s: empty query", kind)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kind, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	t.Source = "sql:" + kind
	return t, nil
}

func scanTable(rows *sql.Rows) (*model.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &model.Table{Columns: uniqueHeaders(cols)}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(model.Row, len(cols))
		for i, c := range t.Columns {
			r[c] = sqlValue(vals[i])
		}
		t.Rows = append(t.Rows, r)
	}
	return t, rows.Err()
}

// sqlValue приводит значения драйверов к типам, которые понимает движок.
func sqlValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case int8:
		return int64(t)
	case int:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format("2006-01-02T15:04:05")
	case string, int64, float64, bool:
		return t
	default:
		return fmt.Sprint(t)
	}
}
