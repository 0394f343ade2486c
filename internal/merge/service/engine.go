package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"merge-service/internal/merge/model"
)

// Engine — полный прогон: профили -> схема -> валидация -> слияние -> очистка -> отчёт.
// Состояния между заданиями нет, один Engine можно звать из нескольких горутин.
type Engine struct {
	cfg       model.Config
	log       zerolog.Logger
	inferer   TypeInferencer
	mapper    *SchemaMapper
	validator *Validator
	merger    *MergeEngine
	cleaner   *Cleaner
	now       func() time.Time
}

func NewEngine(cfg model.Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SynonymGroups == nil {
		cfg.SynonymGroups = model.DefaultSynonymGroups()
	}
	inf := NewTypeInferencer(cfg.SampleSize, cfg.SampleSeed)
	scorer := NewSimilarityScorer(cfg.Weights, cfg.SynonymGroups)
	return &Engine{
		cfg:       cfg,
		log:       logger,
		inferer:   inf,
		mapper:    NewSchemaMapper(scorer, cfg, logger.With().Str("stage", "mapping").Logger()),
		validator: NewValidator(cfg.HighNullRatio, logger.With().Str("stage", "validation").Logger()),
		merger:    NewMergeEngine(cfg.EntityKey, logger.With().Str("stage", "merge").Logger()),
		cleaner:   NewCleaner(inf),
		now:       time.Now,
	}, nil
}

// Profile — профили колонок одной таблицы в порядке заголовка.
func (e *Engine) Profile(index int, t model.Table) []model.ColumnProfile {
	out := make([]model.ColumnProfile, len(t.Columns))
	col := make([]any, len(t.Rows))
	for ci, name := range t.Columns {
		nulls := 0
		for i, r := range t.Rows {
			col[i] = r[name]
			if model.IsNull(col[i]) {
				nulls++
			}
		}
		p := model.ColumnProfile{
			Source:     t.Source,
			Index:      index,
			Name:       name,
			Normalized: Normalize(name),
			DType:      e.inferer.Infer(col),
		}
		if len(t.Rows) > 0 {
			p.NullRatio = float64(nulls) / float64(len(t.Rows))
		}
		out[ci] = p
	}
	return out
}

// Run выполняет задание. Входные таблицы не меняются.
// Если обязательная колонка не найдена ни в одном источнике — *model.SchemaError, слияния нет.
func (e *Engine) Run(ctx context.Context, tables []model.Table, required []string) (*model.Result, error) {
	if len(tables) == 0 {
		return nil, model.ErrNoSources
	}
	if required == nil {
		required = e.cfg.RequiredColumns
	}
	started := e.now()
	sources := make([]string, len(tables))
	profiles := make([][]model.ColumnProfile, len(tables))
	for i, t := range tables {
		sources[i] = t.Source
		profiles[i] = e.Profile(i, t)
		e.log.Debug().Str("source", t.Source).Int("rows", len(t.Rows)).Int("columns", len(t.Columns)).Msg("source profiled")
	}

	mapping, err := e.mapper.Map(ctx, profiles)
	if err != nil {
		return nil, fmt.Errorf("map schema: %w", err)
	}
	e.log.Info().Int("canonical", mapping.Schema.Len()).Int("unmapped", len(mapping.Unmapped)).Msg("schema mapped")

	issues := e.validator.Validate(tables, profiles, mapping.Schema, required)
	if len(issues.MissingRequired) > 0 {
		err := &model.SchemaError{Missing: issues.MissingRequired, Sources: sources}
		e.log.Error().Err(err).Msg("merge halted")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged, stats := e.merger.Merge(tables, mapping.Schema)
	if stats.NullKeyRows > 0 {
		issues.Issues = append(issues.Issues,
			fmt.Sprintf("%d rows without '%s' value were skipped.", stats.NullKeyRows, stats.EntityKey))
	}
	cleaned, types := e.cleaner.Clean(merged)

	report := BuildReport(e.now(), tables, mapping, issues, cleaned)
	e.log.Info().
		Int("initial_rows", report.InitialTotalRows).
		Int("final_rows", report.FinalMergedRows).
		Int("quality_score", report.QualityScore).
		Dur("took", e.now().Sub(started)).
		Msg("merge job finished")

	return &model.Result{
		Table:  cleaned,
		Types:  types,
		Schema: mapping.Schema,
		Report: report,
		Stats:  stats,
	}, nil
}
