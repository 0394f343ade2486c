package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"merge-service/internal/export"
	"merge-service/internal/fileio"
	"merge-service/internal/merge/model"
	"merge-service/internal/merge/service"
)

// Response — ответ POST /merge. rows идут в порядке columns.
type Response struct {
	JobID         string               `json:"job_id"`
	Report        *model.QualityReport `json:"report"`
	ExportedFiles map[string]string    `json:"exported_files"`
	ExportErrors  map[string]string    `json:"export_errors"`
	Columns       []string             `json:"columns"`
	Types         []model.DType        `json:"types"`
	Rows          [][]any              `json:"rows"`
}

// Merge возвращает http.HandlerFunc для r.Post("/merge", ...).
// Форма: files (минимум два), required (через запятую), header_row,
// необязательные threshold, entity_key, parallel.
func Merge(base model.Config, exp *export.Exporter, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
			return
		}
		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(maxUploadMB) << 20); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error(), nil)
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) < 2 {
			writeError(w, http.StatusBadRequest, "at least two files are required in field 'files'", nil)
			return
		}

		headerRow := atoi(r.FormValue("header_row"), 1)
		tables := make([]model.Table, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "open "+fh.Filename+": "+err.Error(), nil)
				return
			}
			t, err := fileio.ReadAny(f, fh.Filename, headerRow)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), nil)
				return
			}
			log.Info().Str("file", t.Source).Int("rows", len(t.Rows)).Strs("columns", t.Columns).Msg("source loaded")
			tables = append(tables, *t)
		}

		cfg := base
		cfg.Threshold = toFloat(r.FormValue("threshold"), base.Threshold)
		cfg.ParallelMapping = toBool(r.FormValue("parallel"), base.ParallelMapping)
		if k := strings.TrimSpace(r.FormValue("entity_key")); k != "" {
			cfg.EntityKey = k
		}
		engine, err := service.NewEngine(cfg, *log)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		res, err := engine.Run(r.Context(), tables, splitList(r.FormValue("required")))
		if err != nil {
			var se *model.SchemaError
			if errors.As(err, &se) {
				writeError(w, http.StatusUnprocessableEntity, err.Error(), map[string]any{
					"missing_required_columns": se.Missing,
				})
				return
			}
			log.Error().Err(err).Msg("merge failed")
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}

		jobID := export.NewJobID()
		out, err := exp.ExportAll(r.Context(), jobID, res.Table, res.Report)
		if err != nil {
			// каталог задания не создан; таблица всё равно валидна
			log.Error().Err(err).Msg("export dir")
			out = export.Outcome{JobID: jobID, Files: map[string]string{}}
			out.Errors = append(out.Errors, &model.ExportError{Sink: "dir", Err: err})
		}

		resp := Response{
			JobID:         jobID,
			Report:        res.Report,
			ExportedFiles: out.Files,
			ExportErrors:  out.ErrorMessages(),
			Columns:       res.Table.Columns,
			Types:         res.Types,
			Rows:          rowsAsArrays(res.Table),
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Str("job_id", jobID).
			Int("files", len(tables)).
			Int("rows", res.Table.Len()).
			Int("quality_score", res.Report.QualityScore).
			Dur("elapsed", time.Since(start)).
			Msg("merge done")
	}
}

func rowsAsArrays(t *model.MergedTable) [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			vals[j] = r[c]
		}
		out[i] = vals
	}
	return out
}

func writeError(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
