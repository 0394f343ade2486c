package service

import (
	lev "github.com/texttheater/golang-levenshtein/levenshtein"

	"merge-service/internal/merge/model"
)

// Signals — разложение оценки, для логов и объяснимости.
type Signals struct {
	Lexical   float64 `json:"lexical"`
	Phonetic  float64 `json:"phonetic"`
	Semantic  float64 `json:"semantic"`
	TypeMatch float64 `json:"type_match"`
	Score     float64 `json:"score"`
}

// lexicalRatio — нормированное indel-расстояние (вставка/удаление = 1, замена = 2).
func lexicalRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	return lev.RatioForStrings([]rune(a), []rune(b), lev.DefaultOptions)
}

// SimilarityScorer — взвешенная оценка двух профилей колонок. Без состояния после создания.
type SimilarityScorer struct {
	weights model.Weights
	groups  map[string][]int // нормализованный термин -> группы синонимов
}

func NewSimilarityScorer(w model.Weights, groups []model.SynonymGroup) *SimilarityScorer {
	idx := make(map[string][]int)
	for gi, g := range groups {
		for _, term := range g.Terms {
			n := Normalize(term)
			if n == "" {
				continue
			}
			idx[n] = append(idx[n], gi)
		}
	}
	return &SimilarityScorer{weights: w, groups: idx}
}

// Semantic: 1, если оба имени входят в одну группу синонимов.
func (s *SimilarityScorer) Semantic(a, b string) float64 {
	ga, gb := s.groups[a], s.groups[b]
	for _, x := range ga {
		for _, y := range gb {
			if x == y {
				return 1
			}
		}
	}
	return 0
}

func typeMatch(a, b model.DType) float64 {
	if a == b && a != model.Empty {
		return 1
	}
	return 0
}

// Score: совпадающие нормализованные имена всегда дают 1.
func (s *SimilarityScorer) Score(a, b model.ColumnProfile) Signals {
	if a.Normalized != "" && a.Normalized == b.Normalized {
		return Signals{Lexical: 1, Phonetic: 1, Semantic: 1, TypeMatch: typeMatch(a.DType, b.DType), Score: 1}
	}
	sig := Signals{
		Phonetic:  phoneticSimilarity(a.Normalized, b.Normalized),
		Semantic:  s.Semantic(a.Normalized, b.Normalized),
		TypeMatch: typeMatch(a.DType, b.DType),
	}
	if a.Normalized != "" && b.Normalized != "" {
		sig.Lexical = lexicalRatio(a.Normalized, b.Normalized)
	}
	w := s.weights
	score := w.Lexical*sig.Lexical + w.Phonetic*sig.Phonetic + w.Semantic*sig.Semantic + w.Type*sig.TypeMatch
	sig.Score = clamp01(score)
	return sig
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
