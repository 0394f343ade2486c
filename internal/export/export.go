package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"merge-service/internal/merge/model"
)

// Имена приёмников
const (
	SinkCSV     = "csv"
	SinkParquet = "parquet"
	SinkSQLite  = "sqlite"
	SinkReport  = "report"
)

// TableName — таблица в sqlite-приёмнике, перезаписывается целиком.
const TableName = "merged_data"

var fileNames = map[string]string{
	SinkCSV:     "merged_data.csv",
	SinkParquet: "merged_data.parquet",
	SinkSQLite:  "merged_data.db",
	SinkReport:  "quality_report.json",
}

// Exporter пишет результат задания в <dir>/<job-id>/. Задания не делят файлы.
type Exporter struct {
	dir string
	log zerolog.Logger
}

func New(dir string, logger zerolog.Logger) *Exporter {
	if dir == "" {
		dir = "exports"
	}
	return &Exporter{dir: dir, log: logger}
}

// NewJobID генерирует uuid нового задания.
func NewJobID() string { return uuid.NewString() }

// JobDir создаёт каталог задания. jobID должен быть uuid, чтобы не выйти за пределы dir.
func (e *Exporter) JobDir(jobID string) (string, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return "", fmt.Errorf("job id %q: %w", jobID, err)
	}
	p := filepath.Join(e.dir, jobID)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// Outcome — итог по приёмникам. Ошибка одного приёмника не отменяет остальные.
type Outcome struct {
	JobID  string               `json:"job_id"`
	Dir    string               `json:"dir"`
	Files  map[string]string    `json:"exported_files"`
	Errors []*model.ExportError `json:"-"`
}

// ErrorMessages: sink -> текст ошибки (для JSON-ответа)
func (o Outcome) ErrorMessages() map[string]string {
	out := make(map[string]string, len(o.Errors))
	for _, e := range o.Errors {
		out[e.Sink] = e.Err.Error()
	}
	return out
}

// Err — все ошибки приёмников одной ошибкой, nil если всё записано.
func (o Outcome) Err() error {
	if len(o.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(o.Errors))
	for i, e := range o.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// ExportAll пишет CSV, parquet, sqlite и отчёт. report может быть nil.
func (e *Exporter) ExportAll(ctx context.Context, jobID string, t *model.MergedTable, report *model.QualityReport) (Outcome, error) {
	dir, err := e.JobDir(jobID)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{JobID: jobID, Dir: dir, Files: map[string]string{}}
	sinks := []struct {
		name  string
		write func(context.Context, string) error
	}{
		{SinkCSV, func(_ context.Context, p string) error { return WriteCSV(p, t) }},
		{SinkParquet, func(_ context.Context, p string) error { return WriteParquet(p, t) }},
		{SinkSQLite, func(ctx context.Context, p string) error { return WriteSQLite(ctx, p, t) }},
	}
	if report != nil {
		sinks = append(sinks, struct {
			name  string
			write func(context.Context, string) error
		}{SinkReport, func(_ context.Context, p string) error { return WriteReport(p, report) }})
	}
	for _, s := range sinks {
		p := filepath.Join(dir, fileNames[s.name])
		if err := ctx.Err(); err != nil {
			out.Errors = append(out.Errors, &model.ExportError{Sink: s.name, Path: p, Err: err})
			continue
		}
		if err := s.write(ctx, p); err != nil {
			ee := &model.ExportError{Sink: s.name, Path: p, Err: err}
			e.log.Error().Err(err).Str("sink", s.name).Str("path", p).Msg("export failed")
			out.Errors = append(out.Errors, ee)
			continue
		}
		e.log.Info().Str("sink", s.name).Str("path", p).Int("rows", t.Len()).Msg("exported")
		out.Files[s.name] = p
	}
	return out, nil
}

// WriteReport — отчёт качества в JSON с отступами.
func WriteReport(path string, report *model.QualityReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// formatValue — текстовое представление очищенного значения; null -> "".
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return model.ValueKey(v)
	}
}

// колоночный тип по фактическим значениям
type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindFloat
	kindBool
)

func kindOf(t *model.MergedTable, col string) columnKind {
	seen := false
	ints, floats, bools := true, true, true
	for _, r := range t.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		seen = true
		switch v.(type) {
		case int64, int:
			bools = false
		case float64:
			ints, bools = false, false
		case bool:
			ints, floats = false, false
		default:
			return kindText
		}
	}
	switch {
	case !seen:
		return kindText
	case bools:
		return kindBool
	case ints:
		return kindInt
	case floats:
		return kindFloat
	}
	return kindText
}
