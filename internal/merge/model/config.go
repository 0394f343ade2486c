package model

import (
	"fmt"
	"math"
)

// Weights — веса сигналов SimilarityScorer.
type Weights struct {
	Lexical  float64 `json:"lexical" yaml:"lexical"`
	Phonetic float64 `json:"phonetic" yaml:"phonetic"`
	Semantic float64 `json:"semantic" yaml:"semantic"`
	Type     float64 `json:"type" yaml:"type"`
}

func (w Weights) sum() float64 { return w.Lexical + w.Phonetic + w.Semantic + w.Type }

// SynonymGroup — набор эквивалентных имён колонок (в разных языках/нотациях).
type SynonymGroup struct {
	Name  string   `json:"name" yaml:"name"`
	Terms []string `json:"terms" yaml:"terms"`
}

// Config — параметры одного задания слияния. Передаётся явно в каждый вызов.
type Config struct {
	Weights       Weights
	Threshold     float64 // порог принятия алиаса
	HighNullRatio float64 // доля null, начиная с которой колонка считается «пустой»
	SampleSize    int     // сэмпл для вывода типа
	SampleSeed    int64

	SynonymGroups []SynonymGroup

	// 0 = без ограничения
	MaxCanonicalColumns int
	ParallelMapping     bool

	// EntityKey: явный ключ сущности; используется, только если это каноническая колонка.
	EntityKey       string
	RequiredColumns []string
}

// DefaultConfig — значения по умолчанию.
func DefaultConfig() Config {
	return Config{
		Weights:       Weights{Lexical: 0.4, Phonetic: 0.1, Semantic: 0.4, Type: 0.1},
		Threshold:     0.55,
		HighNullRatio: 0.7,
		SampleSize:    100,
		SampleSeed:    1,
		SynonymGroups: DefaultSynonymGroups(),
	}
}

// Validate проверяет диапазоны параметров.
func (c Config) Validate() error {
	w := c.Weights
	names := [...]string{"lexical", "phonetic", "semantic", "type"}
	for i, v := range [...]float64{w.Lexical, w.Phonetic, w.Semantic, w.Type} {
		if v < 0 || math.IsNaN(v) {
			return &ConfigError{Field: "weights." + names[i], Reason: fmt.Sprintf("must be >= 0, got %v", v)}
		}
	}
	if math.Abs(w.sum()-1) > 1e-9 {
		return &ConfigError{Field: "weights", Reason: fmt.Sprintf("must sum to 1, got %v", w.sum())}
	}
	if c.Threshold < 0 || c.Threshold > 1 || math.IsNaN(c.Threshold) {
		return &ConfigError{Field: "threshold", Reason: fmt.Sprintf("must be in [0,1], got %v", c.Threshold)}
	}
	if c.HighNullRatio < 0 || c.HighNullRatio > 1 || math.IsNaN(c.HighNullRatio) {
		return &ConfigError{Field: "high_null_ratio", Reason: fmt.Sprintf("must be in [0,1], got %v", c.HighNullRatio)}
	}
	if c.SampleSize < 1 {
		return &ConfigError{Field: "sample_size", Reason: "must be >= 1"}
	}
	if c.MaxCanonicalColumns < 0 {
		return &ConfigError{Field: "max_canonical_columns", Reason: "must be >= 0"}
	}
	return nil
}

// DefaultSynonymGroups — встроенная таблица синонимов (англ./исп.).
// Термины сравниваются после нормализации, поэтому "Full Name" == "fullname".
func DefaultSynonymGroups() []SynonymGroup {
	return []SynonymGroup{
		{Name: "identifier", Terms: []string{"id", "identifier", "identificador", "codigo", "code", "key", "uid", "uuid", "clave", "recordid"}},
		{Name: "customer", Terms: []string{"customer", "client", "cliente", "buyer", "comprador", "account", "cuenta"}},
		{Name: "name", Terms: []string{"name", "fullname", "nombre", "nombrecompleto", "displayname", "contactname", "nom"}},
		{Name: "email", Terms: []string{"email", "mail", "correo", "correoelectronico", "emailaddress", "ecorreo"}},
		{Name: "phone", Terms: []string{"phone", "telephone", "telefono", "tel", "mobile", "celular", "movil", "phonenumber"}},
		{Name: "address", Terms: []string{"address", "direccion", "street", "streetaddress", "domicilio", "calle", "addr"}},
		{Name: "city", Terms: []string{"city", "ciudad", "town", "localidad", "municipio"}},
		{Name: "state", Terms: []string{"state", "province", "provincia", "region", "departamento"}},
		{Name: "zip", Terms: []string{"zip", "zipcode", "postalcode", "postcode", "codigopostal", "cp"}},
		{Name: "country", Terms: []string{"country", "pais", "nation", "nacion"}},
		{Name: "date", Terms: []string{"date", "fecha", "timestamp", "datetime", "createdat", "created", "fechaalta"}},
		{Name: "amount", Terms: []string{"amount", "monto", "valor", "value", "total", "importe", "price", "precio", "cost", "costo"}},
		{Name: "quantity", Terms: []string{"quantity", "qty", "cantidad", "units", "unidades", "count"}},
		{Name: "description", Terms: []string{"description", "descripcion", "desc", "details", "detalle", "notes", "notas"}},
		{Name: "status", Terms: []string{"status", "estado", "estatus", "situacion"}},
	}
}
