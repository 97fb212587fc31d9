package learn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/japaniel/kelime/pkg/dictionary"
	"github.com/japaniel/kelime/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type review struct {
	word         string
	acknowledged bool
	timesShown   int
}

type fakeJournal struct {
	reviews []review
	err     error
}

func (f *fakeJournal) Record(word string, acknowledged bool, timesShown int) error {
	f.reviews = append(f.reviews, review{word, acknowledged, timesShown})
	return f.err
}

func newRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func evDict(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Parse([]byte(`{"ev": {"English": {"noun": ["house"]}, "Turkish": ["ev"], "times_shown": 1}}`))
	require.NoError(t, err)
	return d
}

func TestRunAcknowledge(t *testing.T) {
	d := evDict(t)
	var out bytes.Buffer
	j := &fakeJournal{}
	s := &Session{Dict: d, In: strings.NewReader("\n"), Out: &out, Rand: newRand(), Journal: j}

	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Result{Shown: 1, Acknowledged: 1}, res)

	rec, _ := d.Get("ev")
	assert.Equal(t, 2, rec.TimesShown)
	assert.Equal(t, "EV\nEnglish:\n\tnoun:\n\t\t0. house\nTurkish:\n\t0. ev\n", out.String())
	assert.Equal(t, []review{{"ev", true, 2}}, j.reviews)
}

func TestRunSkipOnNonEmptyInput(t *testing.T) {
	d := evDict(t)
	var out bytes.Buffer
	j := &fakeJournal{}
	s := &Session{Dict: d, In: strings.NewReader("x\n"), Out: &out, Rand: newRand(), Journal: j}

	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Result{Shown: 1, Skipped: 1}, res)

	rec, _ := d.Get("ev")
	assert.Equal(t, 1, rec.TimesShown)
	assert.Equal(t, "EV\n", out.String())
	assert.Equal(t, []review{{"ev", false, 1}}, j.reviews)
}

func TestRunWhitespaceIsNotAcknowledgement(t *testing.T) {
	d := evDict(t)
	s := &Session{Dict: d, In: strings.NewReader("  \r\n"), Out: &bytes.Buffer{}, Rand: newRand()}
	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
}

func TestRunCRLFAcknowledges(t *testing.T) {
	d := evDict(t)
	s := &Session{Dict: d, In: strings.NewReader("\r\n"), Out: &bytes.Buffer{}, Rand: newRand()}
	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Acknowledged)
}

func TestRunSampleTooLargeBeforePrompt(t *testing.T) {
	d := evDict(t)
	var out bytes.Buffer
	s := &Session{Dict: d, In: strings.NewReader("\n\n"), Out: &out, Rand: newRand()}

	_, err := s.Run(context.Background(), 2)
	assert.ErrorIs(t, err, scheduler.ErrSampleTooLarge)
	assert.Empty(t, out.String(), "nothing is shown when sampling fails")
}

func TestRunEndOfInputStopsEarly(t *testing.T) {
	d, err := dictionary.Parse([]byte(`{
		"a": {"English": {}, "Turkish": [], "times_shown": 1},
		"b": {"English": {}, "Turkish": [], "times_shown": 1},
		"c": {"English": {}, "Turkish": [], "times_shown": 1}
	}`))
	require.NoError(t, err)

	s := &Session{Dict: d, In: strings.NewReader("\n"), Out: &bytes.Buffer{}, Rand: newRand()}
	res, err := s.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, Result{Shown: 1, Acknowledged: 1}, res)

	total := 0
	for _, w := range d.Words() {
		rec, _ := d.Get(w)
		total += rec.TimesShown
	}
	assert.Equal(t, 4, total, "the acknowledged increment is kept")
}

func TestRunMixedAnswers(t *testing.T) {
	d, err := dictionary.Parse([]byte(`{
		"a": {"English": {"noun": ["first"]}, "Turkish": ["bir"], "times_shown": 1},
		"b": {"English": {"noun": ["second"]}, "Turkish": ["iki"], "times_shown": 1}
	}`))
	require.NoError(t, err)

	var out bytes.Buffer
	j := &fakeJournal{}
	s := &Session{Dict: d, In: strings.NewReader("\nskip\n"), Out: &out, Rand: newRand(), Journal: j}
	res, err := s.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, Result{Shown: 2, Acknowledged: 1, Skipped: 1}, res)

	require.Len(t, j.reviews, 2)
	assert.True(t, j.reviews[0].acknowledged)
	assert.False(t, j.reviews[1].acknowledged)
	assert.NotEqual(t, j.reviews[0].word, j.reviews[1].word)
}

func TestRunJournalErrorDoesNotStopSession(t *testing.T) {
	d := evDict(t)
	j := &fakeJournal{err: errors.New("disk full")}
	s := &Session{Dict: d, In: strings.NewReader("\n"), Out: &bytes.Buffer{}, Rand: newRand(), Journal: j}
	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Acknowledged)
}

func TestRunCancelledContext(t *testing.T) {
	d := evDict(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	s := &Session{Dict: d, In: strings.NewReader("\n"), Out: &out, Rand: newRand()}
	_, err := s.Run(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestRender(t *testing.T) {
	rec := &dictionary.Record{
		English: dictionary.Senses{
			{POS: "verb", Glosses: []string{"to leave", "to stop"}},
			{POS: "noun", Glosses: []string{"lack of control"}},
		},
		Turkish: []string{"terk etmek", "bırakmak"},
	}
	var out bytes.Buffer
	require.NoError(t, Render(&out, rec))
	want := "English:\n" +
		"\tverb:\n\t\t0. to leave\n\t\t1. to stop\n" +
		"\tnoun:\n\t\t0. lack of control\n" +
		"Turkish:\n\t0. terk etmek\n\t1. bırakmak\n"
	assert.Equal(t, want, out.String())
}

func TestRunCancelWhileWaitingForAnswer(t *testing.T) {
	d := evDict(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	j := &fakeJournal{}
	s := &Session{Dict: d, In: pr, Out: &out, Rand: newRand(), Journal: j}

	type result struct {
		res Result
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := s.Run(ctx, 1)
		done <- result{res, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case r := <-done:
		assert.ErrorIs(t, r.err, context.Canceled)
		assert.Equal(t, Result{}, r.res)
	case <-time.After(time.Second):
		t.Fatal("Run kept waiting for input after the context was cancelled")
	}

	assert.Equal(t, "EV\n", out.String(), "no card is rendered")
	rec, _ := d.Get("ev")
	assert.Equal(t, 1, rec.TimesShown)
	assert.Empty(t, j.reviews)
}
