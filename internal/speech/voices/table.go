package voices

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// KeywordTable is the data-driven gender classifier for voice display
// names, plus the region preferences of the target quiz language.
type KeywordTable struct {
	Version     int      `yaml:"version"`
	Language    string   `yaml:"language"`    // primary language subtag, e.g. "en"
	DefaultTag  string   `yaml:"default_tag"` // default regional tag, e.g. "en-US"
	RegionOrder []string `yaml:"region_order"`
	Male        []string `yaml:"male"`
	Female      []string `yaml:"female"`
}

// Keywords returns the keyword list for the requested gender.
func (t *KeywordTable) Keywords(gender quiz.Gender) []string {
	if gender == quiz.GenderMale {
		return t.Male
	}
	return t.Female
}

// DefaultTable is the embedded table shipped with the trainer.
var DefaultTable = mustParseTable(keywordsYAML)

// ParseTable decodes a keyword table from YAML.
func ParseTable(data []byte) (*KeywordTable, error) {
	var t KeywordTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if t.Language == "" || t.DefaultTag == "" {
		return nil, fmt.Errorf("keyword table v%d: language and default_tag are required", t.Version)
	}
	return &t, nil
}

func mustParseTable(data []byte) *KeywordTable {
	t, err := ParseTable(data)
	if err != nil {
		panic(err)
	}
	return t
}
