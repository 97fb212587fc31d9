package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/japaniel/kelime/pkg/dictionary"
)

const unknownPOS = "unknown"

// LexicalConfig locates English senses on a definition page.
type LexicalConfig struct {
	BaseURL string
	// Section matches one part-of-speech block.
	Section string
	// POS matches the part-of-speech label inside a section.
	POS string
	// Gloss matches each definition inside a section.
	Gloss string
}

// DefaultLexicalConfig targets the Cambridge English dictionary.
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{
		BaseURL: "https://dictionary.cambridge.org/dictionary/english",
		Section: ".entry-body__el",
		POS:     ".pos-header .pos",
		Gloss:   ".def-block .def",
	}
}

// Lexical looks up English senses grouped by part of speech.
type Lexical struct {
	fetcher *Fetcher
	baseURL string
	section cascadia.Selector
	pos     cascadia.Selector
	gloss   cascadia.Selector
}

// NewLexical compiles the selectors of cfg.
func NewLexical(f *Fetcher, cfg LexicalConfig) (*Lexical, error) {
	section, err := compile("section", cfg.Section)
	if err != nil {
		return nil, err
	}
	pos, err := compile("pos", cfg.POS)
	if err != nil {
		return nil, err
	}
	gloss, err := compile("gloss", cfg.Gloss)
	if err != nil {
		return nil, err
	}
	return &Lexical{
		fetcher: f,
		baseURL: cfg.BaseURL,
		section: section,
		pos:     pos,
		gloss:   gloss,
	}, nil
}

// EnglishSenses fetches the definition page for word.
// Sections sharing a part of speech are merged in page order.
func (l *Lexical) EnglishSenses(ctx context.Context, word string) (dictionary.Senses, error) {
	doc, err := l.fetcher.Document(ctx, wordURL(l.baseURL, word))
	if err != nil {
		return nil, err
	}

	senses := dictionary.Senses{}
	for _, section := range l.section.MatchAll(doc) {
		label := unknownPOS
		if n := l.pos.MatchFirst(section); n != nil {
			if text := nodeText(n); text != "" {
				label = text
			}
		}
		for _, n := range l.gloss.MatchAll(section) {
			gloss := strings.TrimSpace(strings.TrimSuffix(nodeText(n), ":"))
			if gloss == "" {
				continue
			}
			senses = senses.Add(label, gloss)
		}
	}
	if len(senses) == 0 {
		return nil, fmt.Errorf("%w: english senses for %q", ErrNoResults, word)
	}
	return senses, nil
}
