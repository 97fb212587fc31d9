package lookup

import (
	"context"
	"fmt"

	"github.com/andybalholm/cascadia"
)

// TranslationConfig locates Turkish translations on a bilingual dictionary page.
type TranslationConfig struct {
	BaseURL string
	// Table matches the results table; only the first match is read.
	Table string
	// Cell matches the translation cells inside the table.
	Cell string
}

// DefaultTranslationConfig targets tureng.com.
func DefaultTranslationConfig() TranslationConfig {
	return TranslationConfig{
		BaseURL: "https://tureng.com/en/turkish-english",
		Table:   "table.searchResultsTable",
		Cell:    "td.tr.ts",
	}
}

// Translation looks up Turkish translations of an English word.
type Translation struct {
	fetcher *Fetcher
	baseURL string
	table   cascadia.Selector
	cell    cascadia.Selector
}

// NewTranslation compiles the selectors of cfg.
func NewTranslation(f *Fetcher, cfg TranslationConfig) (*Translation, error) {
	table, err := compile("table", cfg.Table)
	if err != nil {
		return nil, err
	}
	cell, err := compile("cell", cfg.Cell)
	if err != nil {
		return nil, err
	}
	return &Translation{
		fetcher: f,
		baseURL: cfg.BaseURL,
		table:   table,
		cell:    cell,
	}, nil
}

// TurkishTranslations fetches the results page for word and returns the
// translations in table order, without duplicates.
func (t *Translation) TurkishTranslations(ctx context.Context, word string) ([]string, error) {
	doc, err := t.fetcher.Document(ctx, wordURL(t.baseURL, word))
	if err != nil {
		return nil, err
	}

	table := t.table.MatchFirst(doc)
	if table == nil {
		return nil, fmt.Errorf("%w: no results table for %q", ErrNoResults, word)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, n := range t.cell.MatchAll(table) {
		text := nodeText(n)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: turkish translations for %q", ErrNoResults, word)
	}
	return out, nil
}
