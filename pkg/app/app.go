// Package app wires configuration, storage and lookups into the kelime commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/japaniel/kelime/pkg/config"
	"github.com/japaniel/kelime/pkg/db"
	"github.com/japaniel/kelime/pkg/dictionary"
	"github.com/japaniel/kelime/pkg/enrich"
	"github.com/japaniel/kelime/pkg/kelime"
	"github.com/japaniel/kelime/pkg/learn"
	"github.com/japaniel/kelime/pkg/lookup"
	"github.com/japaniel/kelime/pkg/scheduler"
)

const (
	statsSkipLimit    = 5
	statsNextLimit    = 5
	statsSessionLimit = 3
)

// App owns the dictionary for the duration of one command.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	dict    *dictionary.Dictionary
	journal *sql.DB
}

// Open loads the dictionary and, when enabled, the review journal.
// A journal that cannot be opened is logged and disabled.
func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	d, err := dictionary.Load(cfg.Dictionary.Path)
	if err != nil {
		return nil, err
	}
	for _, q := range d.Quarantined() {
		logger.Warn("malformed dictionary entry kept aside",
			slog.String("word", q.Key),
			slog.String("error", q.Reason.Error()),
		)
	}
	logger.Debug("dictionary loaded", slog.String("path", cfg.Dictionary.Path), slog.Int("words", d.Len()))

	a := &App{cfg: cfg, log: logger, dict: d}
	if cfg.Dictionary.JournalEnabled() {
		conn, err := db.Open(cfg.Dictionary.Journal)
		if err != nil {
			logger.Warn("review journal disabled",
				slog.String("path", cfg.Dictionary.Journal),
				slog.String("error", err.Error()),
			)
		} else {
			a.journal = conn
		}
	}
	return a, nil
}

// Dictionary returns the loaded dictionary.
func (a *App) Dictionary() *dictionary.Dictionary { return a.dict }

// Update enriches the words of the list at path, or of the configured word
// list when path is empty. Failed words are printed to out with their error.
func (a *App) Update(ctx context.Context, path string, out io.Writer) (enrich.Report, error) {
	if path == "" {
		path = a.cfg.Dictionary.WordList
	}
	fetcher := lookup.NewFetcher(lookup.FetcherOptions{
		Timeout:           a.cfg.Fetch.Timeout,
		RequestsPerSecond: a.cfg.Fetch.RequestsPerSecond,
		UserAgent:         a.cfg.Fetch.UserAgent,
	}, a.log)

	lex, err := lookup.NewLexical(fetcher, lookup.LexicalConfig{
		BaseURL: a.cfg.Lexical.BaseURL,
		Section: a.cfg.Lexical.Section,
		POS:     a.cfg.Lexical.POS,
		Gloss:   a.cfg.Lexical.Gloss,
	})
	if err != nil {
		return enrich.Report{}, err
	}
	tr, err := lookup.NewTranslation(fetcher, lookup.TranslationConfig{
		BaseURL: a.cfg.Translation.BaseURL,
		Table:   a.cfg.Translation.Table,
		Cell:    a.cfg.Translation.Cell,
	})
	if err != nil {
		return enrich.Report{}, err
	}

	u := enrich.NewUpdater(lex, tr, a.log)
	u.Workers = a.cfg.Fetch.Workers
	u.OnOutcome = func(o enrich.Outcome) {
		if !o.OK() {
			fmt.Fprintf(out, "%s: %v\n", o.Word, o.Err)
		}
	}

	report, err := u.Update(ctx, a.dict, kelime.ReadLines(path))
	if err != nil {
		return report, err
	}
	a.log.Info("update finished",
		slog.Int("added", len(report.Added)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// Learn runs a quiz of n words reading answers from in and writing cards to out.
func (a *App) Learn(ctx context.Context, n int, in io.Reader, out io.Writer) (learn.Result, error) {
	rec := &sessionJournal{conn: a.journal, requested: n}
	s := &learn.Session{
		Dict:   a.dict,
		In:     in,
		Out:    out,
		Rand:   a.newRand(),
		Logger: a.log,
	}
	if a.journal != nil {
		s.Journal = rec
	}

	res, err := s.Run(ctx, n)
	if ferr := rec.finish(res); ferr != nil {
		a.log.Warn("could not finish journal session", slog.String("error", ferr.Error()))
	}
	return res, err
}

func (a *App) newRand() *rand.Rand {
	if seed := a.cfg.Learn.Seed; seed != 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Stats prints a summary of the dictionary and the review journal.
func (a *App) Stats(out io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Words: %d\n", a.dict.Len())
	if q := len(a.dict.Quarantined()); q > 0 {
		fmt.Fprintf(&b, "Malformed entries: %d\n", q)
	}

	frame := scheduler.Frame(a.dict)
	if len(frame) > 0 {
		total := 0
		low, high := frame[0].TimesShown, frame[len(frame)-1].TimesShown
		for _, w := range frame {
			total += w.TimesShown
		}
		fmt.Fprintf(&b, "Times shown: min %d, max %d, mean %.2f\n",
			low, high, float64(total)/float64(len(frame)))

		b.WriteString("Most likely next:\n")
		for i, w := range frame {
			if i == statsNextLimit {
				break
			}
			fmt.Fprintf(&b, "\t%s (%.1f%%)\n", kelime.Display(w.Word), w.Probability*100)
		}
	}

	if a.journal != nil {
		st, err := db.GetStats(a.journal, statsSkipLimit)
		if err != nil {
			return fmt.Errorf("journal stats: %w", err)
		}
		fmt.Fprintf(&b, "Sessions: %d\nReviews: %d (%d acknowledged)\n", st.Sessions, st.Reviews, st.Acknowledged)
		if len(st.MostSkipped) > 0 {
			b.WriteString("Most skipped:\n")
			for _, ws := range st.MostSkipped {
				fmt.Fprintf(&b, "\t%s (%d)\n", kelime.Display(ws.Word), ws.Skips)
			}
		}
		if err := a.writeRecentSessions(&b); err != nil {
			return err
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// writeRecentSessions lists the latest sessions, then the words of the newest one.
func (a *App) writeRecentSessions(b *strings.Builder) error {
	sessions, err := db.ListSessions(a.journal, statsSessionLimit)
	if err != nil {
		return fmt.Errorf("recent sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	b.WriteString("Recent sessions:\n")
	for _, s := range sessions {
		state := "unfinished"
		if s.FinishedAt != nil {
			state = fmt.Sprintf("%d of %d shown, %d acknowledged", s.Shown, s.Requested, s.Acknowledged)
		}
		fmt.Fprintf(b, "\t#%d %s: %s\n", s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), state)
	}

	reviews, err := db.GetSessionReviews(a.journal, sessions[0].ID)
	if err != nil {
		return fmt.Errorf("session reviews: %w", err)
	}
	if len(reviews) == 0 {
		return nil
	}
	words := make([]string, 0, len(reviews))
	for _, r := range reviews {
		w := kelime.Display(r.Word)
		if !r.Acknowledged {
			w += " (skipped)"
		}
		words = append(words, w)
	}
	fmt.Fprintf(b, "Last session: %s\n", strings.Join(words, ", "))
	return nil
}

// Save writes the dictionary back to its configured path.
func (a *App) Save() error {
	if err := a.dict.Save(a.cfg.Dictionary.Path); err != nil {
		return err
	}
	a.log.Debug("dictionary saved", slog.String("path", a.cfg.Dictionary.Path), slog.Int("words", a.dict.Len()))
	return nil
}

// Close releases the journal. The dictionary is not saved.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// sessionJournal starts the journal session on the first review, so runs that
// fail before any card is shown leave no trace.
type sessionJournal struct {
	conn      *sql.DB
	requested int
	j         *db.Journal
}

func (s *sessionJournal) Record(word string, acknowledged bool, timesShown int) error {
	if s.j == nil {
		j, err := db.BeginJournal(s.conn, s.requested)
		if err != nil {
			return err
		}
		s.j = j
	}
	return s.j.Record(word, acknowledged, timesShown)
}

func (s *sessionJournal) finish(res learn.Result) error {
	if s.j == nil {
		return nil
	}
	return s.j.Finish(res.Shown, res.Acknowledged)
}
