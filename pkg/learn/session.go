// Package learn runs the terminal flashcard loop.
package learn

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/japaniel/kelime/pkg/dictionary"
	"github.com/japaniel/kelime/pkg/kelime"
	"github.com/japaniel/kelime/pkg/scheduler"
)

// Recorder receives the outcome of every card shown.
type Recorder interface {
	Record(word string, acknowledged bool, timesShown int) error
}

// Session quizzes the user on words drawn from Dict.
type Session struct {
	Dict *dictionary.Dictionary
	In   io.Reader
	Out  io.Writer
	Rand *rand.Rand
	// Journal is optional. Its failures are logged and never end the session.
	Journal Recorder
	Logger  *slog.Logger
}

// Result counts what happened in a session.
type Result struct {
	Shown        int
	Acknowledged int
	Skipped      int
}

// Run draws n words and shows them one at a time.
// An empty answer acknowledges the word: its counter goes up and its senses
// and translations are printed. Any other answer skips it unchanged.
// Sampling errors are returned before the first card is shown. End of input
// stops the session early and keeps the counters updated so far.
func (s *Session) Run(ctx context.Context, n int) (Result, error) {
	var res Result
	words, err := scheduler.Sample(s.Dict, n, s.Rand)
	if err != nil {
		return res, err
	}

	in := bufio.NewReader(s.In)
	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, ok := s.Dict.Get(word)
		if !ok {
			return res, fmt.Errorf("sampled word %q missing from dictionary", word)
		}

		if _, err := fmt.Fprintln(s.Out, kelime.Display(word)); err != nil {
			return res, err
		}
		answer, err := readAnswer(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return res, err
			}
			if !errors.Is(err, io.EOF) {
				return res, fmt.Errorf("read answer: %w", err)
			}
			if answer == "" {
				s.logger().DebugContext(ctx, "input closed, ending session", slog.Int("shown", res.Shown))
				return res, nil
			}
		}
		res.Shown++

		acknowledged := strings.TrimRight(answer, "\r\n") == ""
		if acknowledged {
			rec.TimesShown++
			res.Acknowledged++
			if err := Render(s.Out, rec); err != nil {
				return res, err
			}
		} else {
			res.Skipped++
		}
		s.record(ctx, word, acknowledged, rec.TimesShown)
	}
	return res, nil
}

type answer struct {
	line string
	err  error
}

// readAnswer reads one line from in, giving up when ctx is done. The read
// itself cannot be interrupted, so a cancelled call leaves it pending and in
// must not be used afterwards.
func readAnswer(ctx context.Context, in *bufio.Reader) (string, error) {
	ch := make(chan answer, 1)
	go func() {
		line, err := in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-ch:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return a.line, a.err
	}
}

func (s *Session) record(ctx context.Context, word string, acknowledged bool, timesShown int) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Record(word, acknowledged, timesShown); err != nil {
		s.logger().WarnContext(ctx, "could not journal review", slog.String("word", word), slog.String("error", err.Error()))
	}
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Render prints the senses of rec grouped by part of speech, then its
// translations, each list numbered from zero.
func Render(w io.Writer, rec *dictionary.Record) error {
	var b strings.Builder
	b.WriteString("English:\n")
	for _, g := range rec.English {
		fmt.Fprintf(&b, "\t%s:\n", g.POS)
		for i, gloss := range g.Glosses {
			fmt.Fprintf(&b, "\t\t%d. %s\n", i, gloss)
		}
	}
	b.WriteString("Turkish:\n")
	for i, tr := range rec.Turkish {
		fmt.Fprintf(&b, "\t%d. %s\n", i, tr)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
