// Package config loads kelime settings from an optional YAML file and the environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Dictionary  DictionaryConfig  `yaml:"dictionary"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Lexical     LexicalConfig     `yaml:"lexical"`
	Translation TranslationConfig `yaml:"translation"`
	Learn       LearnConfig       `yaml:"learn"`
	Log         LogConfig         `yaml:"log"`
}

// DictionaryConfig holds file locations.
type DictionaryConfig struct {
	Path     string `yaml:"path"      env:"KELIME_DICTIONARY" env-default:"dictionary.json"`
	WordList string `yaml:"word_list" env:"KELIME_WORD_LIST"  env-default:"words.txt"`
	// Journal is the sqlite review journal. "off" disables it.
	Journal string `yaml:"journal" env:"KELIME_JOURNAL" env-default:"journal.db"`
}

// JournalEnabled reports whether learn sessions are journaled.
func (d DictionaryConfig) JournalEnabled() bool {
	return d.Journal != "" && d.Journal != "off"
}

// FetchConfig holds scraping settings shared by both lookups.
type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout"             env:"KELIME_FETCH_TIMEOUT" env-default:"10s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"KELIME_FETCH_RPS"     env-default:"2"`
	Workers           int           `yaml:"workers"             env:"KELIME_FETCH_WORKERS" env-default:"1"`
	UserAgent         string        `yaml:"user_agent"          env:"KELIME_USER_AGENT"`
}

// LexicalConfig locates English senses. Defaults target dictionary.cambridge.org.
type LexicalConfig struct {
	BaseURL string `yaml:"base_url" env:"KELIME_LEXICAL_URL"     env-default:"https://dictionary.cambridge.org/dictionary/english"`
	Section string `yaml:"section"  env:"KELIME_LEXICAL_SECTION" env-default:".entry-body__el"`
	POS     string `yaml:"pos"      env:"KELIME_LEXICAL_POS"     env-default:".pos-header .pos"`
	Gloss   string `yaml:"gloss"    env:"KELIME_LEXICAL_GLOSS"   env-default:".def-block .def"`
}

// TranslationConfig locates Turkish translations. Defaults target tureng.com.
type TranslationConfig struct {
	BaseURL string `yaml:"base_url" env:"KELIME_TRANSLATION_URL"   env-default:"https://tureng.com/en/turkish-english"`
	Table   string `yaml:"table"    env:"KELIME_TRANSLATION_TABLE" env-default:"table.searchResultsTable"`
	Cell    string `yaml:"cell"     env:"KELIME_TRANSLATION_CELL"  env-default:"td.tr.ts"`
}

// LearnConfig holds quiz settings.
type LearnConfig struct {
	// Seed fixes the sampling order when non-zero.
	Seed uint64 `yaml:"seed" env:"KELIME_SEED" env-default:"0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
