package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"merge-service/internal/merge/model"
)

// Decision — принятая привязка алиаса (для логов и отчёта).
type Decision struct {
	SourceIndex int
	Source      string
	Column      string
	Canonical   string
	Signals     Signals
	Exact       bool
}

// Mapping — результат SchemaMapper.
type Mapping struct {
	Schema    *model.Schema
	Unmapped  []model.UnmappedColumn
	Decisions []Decision
}

// SchemaMapper строит canonical -> aliases по всем источникам.
type SchemaMapper struct {
	scorer    *SimilarityScorer
	threshold float64
	maxCanon  int
	parallel  bool
	log       zerolog.Logger
}

func NewSchemaMapper(scorer *SimilarityScorer, cfg model.Config, logger zerolog.Logger) *SchemaMapper {
	return &SchemaMapper{
		scorer:    scorer,
		threshold: cfg.Threshold,
		maxCanon:  cfg.MaxCanonicalColumns,
		parallel:  cfg.ParallelMapping,
		log:       logger,
	}
}

type sourceMatch struct {
	aliases   map[int][]model.Alias // индекс канонической колонки -> алиасы
	unmapped  []model.UnmappedColumn
	decisions []Decision
}

// Map: profiles[i] — профили колонок i-го источника в порядке заголовка.
// Канонические колонки = колонки первого источника. Источники сопоставляются
// независимо друг от друга, поэтому параллельный режим даёт тот же результат.
func (m *SchemaMapper) Map(ctx context.Context, profiles [][]model.ColumnProfile) (Mapping, error) {
	if len(profiles) == 0 {
		return Mapping{Schema: model.NewSchema(nil, nil)}, nil
	}
	canon := profiles[0]
	order := make([]string, len(canon))
	aliases := make(map[string][]model.Alias, len(canon))
	for i, c := range canon {
		order[i] = c.Name
		aliases[c.Name] = []model.Alias{{SourceIndex: 0, Source: c.Source, Column: c.Name}}
	}

	results := make([]sourceMatch, len(profiles))
	if m.parallel && len(profiles) > 2 {
		g, gctx := errgroup.WithContext(ctx)
		for i := 1; i < len(profiles); i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = m.matchSource(canon, profiles[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Mapping{}, err
		}
	} else {
		for i := 1; i < len(profiles); i++ {
			if err := ctx.Err(); err != nil {
				return Mapping{}, err
			}
			results[i] = m.matchSource(canon, profiles[i])
		}
	}

	out := Mapping{Unmapped: []model.UnmappedColumn{}}
	for i := 1; i < len(results); i++ {
		r := results[i]
		for k := range canon {
			aliases[canon[k].Name] = append(aliases[canon[k].Name], r.aliases[k]...)
		}
		out.Unmapped = append(out.Unmapped, r.unmapped...)
		out.Decisions = append(out.Decisions, r.decisions...)
	}
	for _, d := range out.Decisions {
		if d.Exact {
			continue
		}
		m.log.Info().
			Str("source", d.Source).
			Str("alias", d.Column).
			Str("canonical", d.Canonical).
			Float64("score", d.Signals.Score).
			Msg("column mapped")
	}
	for _, u := range out.Unmapped {
		m.log.Warn().
			Str("source", u.Source).
			Str("column", u.Column).
			Str("best_match", u.BestMatch).
			Float64("best_score", u.BestScore).
			Msg("column unmapped")
	}
	out.Schema = model.NewSchema(order, aliases)
	return out, nil
}

// matchSource сопоставляет колонки одного источника. Каждая каноническая колонка
// принимает не больше одного алиаса из источника.
func (m *SchemaMapper) matchSource(canon, cols []model.ColumnProfile) sourceMatch {
	res := sourceMatch{aliases: make(map[int][]model.Alias)}
	assigned := make([]bool, len(canon))
	used := make([]bool, len(cols))

	assign := func(j, k int, sig Signals, exact bool) {
		c := cols[j]
		assigned[k], used[j] = true, true
		res.aliases[k] = append(res.aliases[k], model.Alias{SourceIndex: c.Index, Source: c.Source, Column: c.Name})
		res.decisions = append(res.decisions, Decision{
			SourceIndex: c.Index, Source: c.Source, Column: c.Name,
			Canonical: canon[k].Name, Signals: sig, Exact: exact,
		})
	}

	// 1) точное имя, 2) совпадение после нормализации
	exactPasses := []func(a, b model.ColumnProfile) bool{
		func(a, b model.ColumnProfile) bool { return a.Name == b.Name },
		func(a, b model.ColumnProfile) bool { return a.Normalized != "" && a.Normalized == b.Normalized },
	}
	for _, same := range exactPasses {
		for j := range cols {
			if used[j] {
				continue
			}
			for k := range canon {
				if !assigned[k] && same(cols[j], canon[k]) {
					assign(j, k, Signals{Lexical: 1, Phonetic: 1, Semantic: 1, Score: 1}, true)
					break
				}
			}
		}
	}

	// 3) fuzzy: максимум по свободным каноническим, при равенстве первая
	limit := len(canon)
	if m.maxCanon > 0 && m.maxCanon < limit {
		limit = m.maxCanon
	}
	for j := range cols {
		if used[j] {
			continue
		}
		best, bestSig := -1, Signals{Score: -1}
		for k := 0; k < limit; k++ {
			if assigned[k] {
				continue
			}
			sig := m.scorer.Score(cols[j], canon[k])
			if sig.Score > bestSig.Score {
				best, bestSig = k, sig
			}
		}
		if best >= 0 && bestSig.Score >= m.threshold {
			assign(j, best, bestSig, false)
			continue
		}
		u := model.UnmappedColumn{Source: cols[j].Source, Column: cols[j].Name}
		if best >= 0 {
			u.BestMatch, u.BestScore = canon[best].Name, bestSig.Score
		}
		res.unmapped = append(res.unmapped, u)
	}
	return res
}
