package dictionary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
    "ev": {
        "English": {"noun": ["house", "home"], "verb": ["to house"]},
        "Turkish": ["ev", "konut"],
        "times_shown": 3
    },
    "ışık": {
        "English": {"noun": ["light"]},
        "Turkish": ["ışık"],
        "times_shown": 1
    }
}`

func TestParseValidDocument(t *testing.T) {
	d, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.Empty(t, d.Quarantined())
	assert.Equal(t, []string{"ev", "ışık"}, d.Words())

	rec, ok := d.Get("EV")
	require.True(t, ok)
	assert.Equal(t, 3, rec.TimesShown)
	assert.Equal(t, []string{"ev", "konut"}, rec.Turkish)
	require.Len(t, rec.English, 2)
	assert.Equal(t, "noun", rec.English[0].POS)
	assert.Equal(t, "verb", rec.English[1].POS)

	_, ok = d.Get("IŞIK")
	assert.True(t, ok, "Turkish uppercase should resolve to the stored key")
}

func TestParseQuarantinesMalformedEntries(t *testing.T) {
	doc := `{
		"good": {"English": {}, "Turkish": [], "times_shown": 1},
		"no_turkish": {"English": {}, "times_shown": 1},
		"bad_count": {"English": {}, "Turkish": [], "times_shown": 1.5},
		"zero": {"English": {}, "Turkish": [], "times_shown": 0},
		"bad_gloss": {"English": {"noun": [1, 2]}, "Turkish": [], "times_shown": 2},
		"scalar": 42,
		"Good": {"English": {}, "Turkish": ["x"], "times_shown": 4}
	}`
	d, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"good"}, d.Words())
	rec, _ := d.Get("good")
	assert.Equal(t, 1, rec.TimesShown, "first entry wins a normalization collision")

	var keys []string
	for _, q := range d.Quarantined() {
		keys = append(keys, q.Key)
		assert.Error(t, q.Reason)
	}
	assert.ElementsMatch(t, []string{"no_turkish", "bad_count", "zero", "bad_gloss", "scalar", "Good"}, keys)

	assert.True(t, d.Has("bad_count"), "quarantined words still count as present")
}

func TestParseMalformedEntryDoesNotShadowValidOne(t *testing.T) {
	doc := `{
		"EV": {"English": 3},
		"ev": {"English": {"noun": ["house"]}, "Turkish": ["ev"], "times_shown": 2}
	}`
	d, err := Parse([]byte(doc))
	require.NoError(t, err)

	rec, ok := d.Get("ev")
	require.True(t, ok, "the valid entry is loaded")
	assert.Equal(t, 2, rec.TimesShown)
	assert.Equal(t, []string{"ev"}, d.Words())
	require.Len(t, d.Quarantined(), 1)
	assert.Equal(t, "EV", d.Quarantined()[0].Key)

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, d.Save(path))
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	require.Len(t, reloaded.Quarantined(), 1)
	assert.JSONEq(t, `{"English": 3}`, string(reloaded.Quarantined()[0].Raw))
}

func TestParseRejectsNonObject(t *testing.T) {
	_, err := Parse([]byte(`["ev"]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Parse([]byte(`{"ev":`))
	assert.Error(t, err)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "dictionary.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.json")

	d := New()
	rec := NewRecord()
	rec.English = rec.English.Add("verb", "to abandon").Add("noun", "abandonment").Add("verb", "to leave")
	rec.Turkish = []string{"terk etmek", "bırakmak"}
	rec.TimesShown = 7
	d.Put("Abandon", rec)
	d.Put("ev", &Record{English: Senses{{POS: "noun", Glosses: []string{"house"}}}, Turkish: []string{"ev"}, TimesShown: 1})

	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Words(), loaded.Words())
	for _, w := range d.Words() {
		want, _ := d.Get(w)
		got, ok := loaded.Get(w)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	got, _ := loaded.Get("abandon")
	assert.Equal(t, "verb", got.English[0].POS, "part of speech order survives a round trip")
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.json")
	d := New()
	d.Put("ışık", &Record{English: Senses{{POS: "noun", Glosses: []string{"light & <glow>"}}}, Turkish: []string{"ışık"}, TimesShown: 2})
	require.NoError(t, d.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"ışık": {`)
	assert.Contains(t, out, "\n    \"ışık\"")
	assert.Contains(t, out, `"light & <glow>"`)
	assert.Contains(t, out, `"times_shown": 2`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.True(t, json.Valid(data))
}

func TestSavePreservesQuarantinedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.json")
	doc := `{"ev": {"English": {}, "Turkish": ["ev"], "times_shown": 1}, "broken": {"English": "oops"}}`
	d, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, d.Quarantined(), 1)

	require.NoError(t, d.Save(path))
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded.Quarantined(), 1)
	assert.Equal(t, "broken", reloaded.Quarantined()[0].Key)
	assert.JSONEq(t, `{"English": "oops"}`, string(reloaded.Quarantined()[0].Raw))
}

func TestRecordUnmarshalValidates(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"English": {"adj": ["big"]}, "Turkish": ["büyük"], "times_shown": 5}`), &r))
	assert.Equal(t, 5, r.TimesShown)

	err := json.Unmarshal([]byte(`{"English": {"adj": "big"}, "Turkish": [], "times_shown": 5}`), &r)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestSensesAdd(t *testing.T) {
	var s Senses
	s = s.Add("noun", "a").Add("verb", "b").Add("noun", "c")
	assert.Equal(t, Senses{
		{POS: "noun", Glosses: []string{"a", "c"}},
		{POS: "verb", Glosses: []string{"b"}},
	}, s)
}
