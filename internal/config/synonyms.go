package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"merge-service/internal/merge/model"
)

type synonymsFile struct {
	Groups []model.SynonymGroup `yaml:"groups"`
}

// LoadSynonyms читает группы синонимов из YAML:
//
//	groups:
//	  - name: identifier
//	    terms: [id, identifier, codigo]
func LoadSynonyms(path string) ([]model.SynonymGroup, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	return ParseSynonyms(b)
}

func ParseSynonyms(b []byte) ([]model.SynonymGroup, error) {
	var f synonymsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}
	if len(f.Groups) == 0 {
		return nil, &model.ConfigError{Field: "synonyms", Reason: "no groups defined"}
	}
	for i, g := range f.Groups {
		if len(g.Terms) == 0 {
			return nil, &model.ConfigError{Field: fmt.Sprintf("synonyms.groups[%d]", i), Reason: "no terms"}
		}
	}
	return f.Groups, nil
}
