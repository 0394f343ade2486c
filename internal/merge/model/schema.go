package model

import (
	"bytes"
	"encoding/json"
)

// Alias — пара (источник, колонка), привязанная к канонической колонке.
type Alias struct {
	SourceIndex int    `json:"-"`
	Source      string `json:"source"`
	Column      string `json:"column"`
}

type aliasKey struct {
	src int
	col string
}

// Schema — каноническая схема задания. После NewSchema не меняется.
type Schema struct {
	order   []string
	aliases map[string][]Alias
	lookup  map[aliasKey]string
}

// NewSchema копирует входные данные; порядок order сохраняется.
// Алиасы на колонки вне order игнорируются. Повторная привязка алиаса к другой
// канонической колонке игнорируется: алиас принадлежит ровно одной колонке.
func NewSchema(order []string, aliases map[string][]Alias) *Schema {
	s := &Schema{
		order:   append([]string(nil), order...),
		aliases: make(map[string][]Alias, len(order)),
		lookup:  make(map[aliasKey]string),
	}
	for _, canon := range s.order {
		for _, a := range aliases[canon] {
			k := aliasKey{a.SourceIndex, a.Column}
			if _, taken := s.lookup[k]; taken {
				continue
			}
			s.lookup[k] = canon
			s.aliases[canon] = append(s.aliases[canon], a)
		}
	}
	return s
}

// Columns: канонические колонки по порядку.
func (s *Schema) Columns() []string { return append([]string(nil), s.order...) }

// Aliases — копия алиасов канонической колонки.
func (s *Schema) Aliases(canonical string) []Alias {
	return append([]Alias(nil), s.aliases[canonical]...)
}

// Has сообщает, есть ли такая каноническая колонка.
func (s *Schema) Has(canonical string) bool {
	_, ok := s.aliases[canonical]
	if ok {
		return true
	}
	for _, c := range s.order {
		if c == canonical {
			return true
		}
	}
	return false
}

// Resolve: колонка источника -> каноническая колонка.
func (s *Schema) Resolve(sourceIndex int, column string) (string, bool) {
	c, ok := s.lookup[aliasKey{sourceIndex, column}]
	return c, ok
}

// Len: число канонических колонок
func (s *Schema) Len() int { return len(s.order) }

// MarshalJSON пишет {canonical: [alias...]} в каноническом порядке.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, canon := range s.order {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(canon)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		list := s.aliases[canon]
		if list == nil {
			list = []Alias{}
		}
		v, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
