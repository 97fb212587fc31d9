// Package enrich adds scraped definitions for new words to a dictionary.
package enrich

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/kelime/pkg/dictionary"
	"github.com/japaniel/kelime/pkg/kelime"
)

// LexicalLookup returns English senses grouped by part of speech.
type LexicalLookup interface {
	EnglishSenses(ctx context.Context, word string) (dictionary.Senses, error)
}

// TranslationLookup returns Turkish translations of a word.
type TranslationLookup interface {
	TurkishTranslations(ctx context.Context, word string) ([]string, error)
}

// Pool abstracts the worker pool so tests can inject failing implementations.
type Pool interface {
	Start(ctx context.Context)
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Outcome is the result of enriching one word: either a complete Record or an Err.
type Outcome struct {
	Word   string
	Record *dictionary.Record
	Err    error
}

// OK reports whether the word was fully enriched.
func (o Outcome) OK() bool { return o.Err == nil && o.Record != nil }

// Report summarizes an update run. Words are listed in word-list order.
type Report struct {
	Added   []string
	Skipped []string
	Failed  []string
}

// Updater enriches the words of a word list that the dictionary does not hold yet.
type Updater struct {
	Lexical     LexicalLookup
	Translation TranslationLookup
	// Workers is the number of words enriched at once. One keeps the run sequential.
	Workers int
	Logger  *slog.Logger
	// OnOutcome is called on the caller's goroutine for every enriched word.
	OnOutcome func(Outcome)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) Pool
}

// NewUpdater creates an Updater with one worker.
func NewUpdater(lex LexicalLookup, tr TranslationLookup, logger *slog.Logger) *Updater {
	return &Updater{
		Lexical:     lex,
		Translation: tr,
		Workers:     1,
		Logger:      logger,
	}
}

// Update reads every word from words, skips those already in d (no lookup, no
// overwrite) and enriches the rest. A record is added only when both lookups
// succeed; a failed word is logged and the batch goes on.
//
// A word list read error is returned before any lookup starts. Only the
// calling goroutine writes to d.
func (u *Updater) Update(ctx context.Context, d *dictionary.Dictionary, words iter.Seq2[string, error]) (Report, error) {
	var report Report

	var pending []string
	queued := make(map[string]struct{})
	for line, err := range words {
		if err != nil {
			return report, err
		}
		word := kelime.Normalize(strings.TrimSpace(line))
		if word == "" {
			continue
		}
		if d.Has(word) {
			u.Logger.DebugContext(ctx, "word already in dictionary", slog.String("word", word))
			report.Skipped = append(report.Skipped, word)
			continue
		}
		if _, ok := queued[word]; ok {
			continue
		}
		queued[word] = struct{}{}
		pending = append(pending, word)
	}
	if len(pending) == 0 {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	u.Logger.InfoContext(ctx, "enriching words", slog.Int("count", len(pending)), slog.Int("workers", u.workers()))

	var wp Pool
	if u.PoolFactory != nil {
		wp = u.PoolFactory(u.workers(), u.workers()*2)
	} else {
		wp = NewWorkerPool(u.workers(), u.workers()*2)
	}

	// Sized for every word so workers never block on send.
	results := make(chan Outcome, len(pending))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wp.Start(ctx)

	var submitErr error
	for _, word := range pending {
		err := wp.SubmitCtx(ctx, func(ctx context.Context) error {
			results <- u.enrich(ctx, word)
			return nil
		})
		if err != nil {
			submitErr = fmt.Errorf("submit %q: %w", word, err)
			cancel()
			break
		}
	}
	wp.Close()
	close(results)

	outcomes := make(map[string]Outcome, len(pending))
	for o := range results {
		outcomes[o.Word] = o
	}

	for _, word := range pending {
		o, ok := outcomes[word]
		if !ok {
			continue
		}
		if u.OnOutcome != nil {
			u.OnOutcome(o)
		}
		if !o.OK() {
			u.Logger.WarnContext(ctx, "could not enrich word", slog.String("word", word), slog.String("error", o.Err.Error()))
			report.Failed = append(report.Failed, word)
			continue
		}
		d.Put(word, o.Record)
		report.Added = append(report.Added, word)
	}

	if submitErr != nil {
		return report, submitErr
	}
	return report, context.Cause(ctx)
}

// enrich runs both lookups for word concurrently. Either failure fails the word.
func (u *Updater) enrich(ctx context.Context, word string) Outcome {
	var (
		senses       dictionary.Senses
		translations []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		senses, err = u.Lexical.EnglishSenses(gctx, word)
		if err != nil {
			return fmt.Errorf("english senses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		translations, err = u.Translation.TurkishTranslations(gctx, word)
		if err != nil {
			return fmt.Errorf("turkish translations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{Word: word, Err: err}
	}

	rec := dictionary.NewRecord()
	rec.English = senses
	rec.Turkish = translations
	return Outcome{Word: word, Record: rec}
}

func (u *Updater) workers() int {
	if u.Workers < 1 {
		return 1
	}
	return u.Workers
}
