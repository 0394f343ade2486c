package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merge-service/internal/merge/model"
)

func newTestEngine(t *testing.T, mutate func(*model.Config)) *Engine {
	t.Helper()
	cfg := model.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg, nopLogger())
	require.NoError(t, err)
	return e
}

func profilesOf(e *Engine, tables []model.Table) [][]model.ColumnProfile {
	out := make([][]model.ColumnProfile, len(tables))
	for i, t := range tables {
		out[i] = e.Profile(i, t)
	}
	return out
}

func aliasColumns(s *model.Schema, canonical string) []string {
	var out []string
	for _, a := range s.Aliases(canonical) {
		out = append(out, a.Column)
	}
	return out
}

func TestMapFixture(t *testing.T) {
	e := newTestEngine(t, nil)
	m, err := e.mapper.Map(context.Background(), profilesOf(e, fixtureTables()))
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Nombre Completo", "email", "Monto"}, m.Schema.Columns())
	assert.Equal(t, []string{"ID", "Identifier", "codigo"}, aliasColumns(m.Schema, "ID"))
	assert.Equal(t, []string{"Nombre Completo", "Full Name", "nombre"}, aliasColumns(m.Schema, "Nombre Completo"))
	assert.Equal(t, []string{"email", "correo", "mail"}, aliasColumns(m.Schema, "email"))
	assert.Equal(t, []string{"Monto", "Amount", "valor"}, aliasColumns(m.Schema, "Monto"))
	assert.Empty(t, m.Unmapped)
}

func TestMapOneAliasPerSourcePerCanonical(t *testing.T) {
	e := newTestEngine(t, nil)
	tables := []model.Table{
		table("a.csv", []string{"ID"}, []any{"1"}, []any{"2"}),
		table("b.csv", []string{"id", "ID_"}, []any{"1", "1"}, []any{"2", "2"}),
	}
	m, err := e.mapper.Map(context.Background(), profilesOf(e, tables))
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "id"}, aliasColumns(m.Schema, "ID"))
	require.Len(t, m.Unmapped, 1)
	assert.Equal(t, "ID_", m.Unmapped[0].Column)
	assert.Equal(t, "b.csv", m.Unmapped[0].Source)
}

func TestMapUnmappedKeepsBestCandidate(t *testing.T) {
	e := newTestEngine(t, nil)
	tables := []model.Table{
		table("a.csv", []string{"ID", "email"}, []any{"1", "a@x.io"}, []any{"2", "b@x.io"}),
		table("b.csv", []string{"ID", "favourite colour"}, []any{"1", "red"}, []any{"2", "blue"}),
	}
	m, err := e.mapper.Map(context.Background(), profilesOf(e, tables))
	require.NoError(t, err)

	require.Len(t, m.Unmapped, 1)
	u := m.Unmapped[0]
	assert.Equal(t, "favourite colour", u.Column)
	assert.Equal(t, "email", u.BestMatch)
	assert.Less(t, u.BestScore, 0.55)
	assert.False(t, m.Schema.Has("favourite colour"))
}

func TestMapCanonicalCap(t *testing.T) {
	tables := []model.Table{
		table("a.xlsx", []string{"ID", "Monto"}, []any{"1", "10"}, []any{"2", "20"}),
		table("b.csv", []string{"Amount"}, []any{"10"}, []any{"30"}),
	}

	capped := newTestEngine(t, func(c *model.Config) { c.MaxCanonicalColumns = 1 })
	m, err := capped.mapper.Map(context.Background(), profilesOf(capped, tables))
	require.NoError(t, err)
	assert.Equal(t, []string{"Monto"}, aliasColumns(m.Schema, "Monto"))
	require.Len(t, m.Unmapped, 1)

	free := newTestEngine(t, nil)
	m, err = free.mapper.Map(context.Background(), profilesOf(free, tables))
	require.NoError(t, err)
	assert.Equal(t, []string{"Monto", "Amount"}, aliasColumns(m.Schema, "Monto"))
}

func TestMapParallelMatchesSequential(t *testing.T) {
	tables := append(fixtureTables(),
		table("extra.csv", []string{"correo electronico", "clave", "importe"},
			[]any{"x@y.z", "9", "1.5"}, []any{"q@y.z", "10", "2.5"}),
		table("more.json", []string{"uid", "notes"},
			[]any{int64(1), "hello"}, []any{int64(2), "world"}),
	)
	seq := newTestEngine(t, nil)
	par := newTestEngine(t, func(c *model.Config) { c.ParallelMapping = true })

	ms, err := seq.mapper.Map(context.Background(), profilesOf(seq, tables))
	require.NoError(t, err)
	mp, err := par.mapper.Map(context.Background(), profilesOf(par, tables))
	require.NoError(t, err)

	a, _ := json.Marshal(ms.Schema)
	b, _ := json.Marshal(mp.Schema)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, ms.Unmapped, mp.Unmapped)
}

func TestMapCanceledContext(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.mapper.Map(ctx, profilesOf(e, fixtureTables()))
	assert.ErrorIs(t, err, context.Canceled)
}
