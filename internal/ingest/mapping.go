package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/DjordjeVuckovic/apikit/internal/domain"
	"gopkg.in/yaml.v3"
)

var targets = map[string]func(in *domain.ArticleInput, v string){
	"title":       func(in *domain.ArticleInput, v string) { in.Title = v },
	"subtitle":    func(in *domain.ArticleInput, v string) { in.Subtitle = v },
	"content":     func(in *domain.ArticleInput, v string) { in.Content = v },
	"description": func(in *domain.ArticleInput, v string) { in.Description = v },
	"url":         func(in *domain.ArticleInput, v string) { in.URL = v },
	"language":    func(in *domain.ArticleInput, v string) { in.Language = strings.ToLower(v) },
	"category":    func(in *domain.ArticleInput, v string) { in.Category = v },
	"author": func(in *domain.ArticleInput, v string) {
		if v != "" {
			in.Author = &v
		}
	},
}

// Mapping maps dataset columns onto article fields.
type Mapping struct {
	Dataset string         `yaml:"dataset"`
	Fields  []FieldMapping `yaml:"fields"`
}

type FieldMapping struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Required bool   `yaml:"required,omitempty"`
}

func LoadMapping(r io.Reader) (*Mapping, error) {
	var m Mapping
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Mapping) Validate() error {
	if m.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("at least one field mapping is required")
	}
	for i, f := range m.Fields {
		if f.Source == "" {
			return fmt.Errorf("fields[%d] must have source defined", i)
		}
		if _, ok := targets[f.Target]; !ok {
			return fmt.Errorf("fields[%d]: unknown target %q", i, f.Target)
		}
	}
	return nil
}

// Map builds an article input from one record. Required columns must be
// present and non-blank.
func (m *Mapping) Map(fields map[string]string) (domain.ArticleInput, error) {
	var in domain.ArticleInput
	for _, f := range m.Fields {
		v := strings.TrimSpace(fields[f.Source])
		if v == "" && f.Required {
			return domain.ArticleInput{}, fmt.Errorf("missing required column %q", f.Source)
		}
		targets[f.Target](&in, v)
	}
	return in, nil
}
