package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/japaniel/kelime/pkg/kelime"
	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when a dictionary document is not a JSON object.
var ErrNotObject = errors.New("dictionary document is not a json object")

// Quarantined is a stored entry that failed validation.
// It is kept verbatim so Save writes it back unchanged.
type Quarantined struct {
	Key    string
	Raw    json.RawMessage
	Reason error
}

// Dictionary maps normalized words to their records.
// It is not safe for concurrent use.
type Dictionary struct {
	records    map[string]*Record
	quarantine []Quarantined
	held       map[string]struct{}
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		records: make(map[string]*Record),
		held:    make(map[string]struct{}),
	}
}

// Has reports whether word is stored, including quarantined entries.
func (d *Dictionary) Has(word string) bool {
	key := kelime.Normalize(word)
	if _, ok := d.records[key]; ok {
		return true
	}
	_, ok := d.held[key]
	return ok
}

// Get returns the record stored for word.
func (d *Dictionary) Get(word string) (*Record, bool) {
	rec, ok := d.records[kelime.Normalize(word)]
	return rec, ok
}

// Put stores rec under the normalized form of word, replacing any existing record.
func (d *Dictionary) Put(word string, rec *Record) {
	if rec == nil {
		return
	}
	if rec.English == nil {
		rec.English = Senses{}
	}
	if rec.Turkish == nil {
		rec.Turkish = []string{}
	}
	d.records[kelime.Normalize(word)] = rec
}

// Len returns the number of valid records.
func (d *Dictionary) Len() int { return len(d.records) }

// Words returns the keys of all valid records in lexicographic order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.records))
	for w := range d.records {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Quarantined returns the entries rejected while loading.
func (d *Dictionary) Quarantined() []Quarantined {
	return d.quarantine
}

// Load reads the whole dictionary document at path.
// A missing file yields an empty dictionary. Entries that fail validation,
// or whose key collides with an earlier valid entry after normalization, are
// quarantined instead of failing the load.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dictionary document.
func Parse(data []byte) (*Dictionary, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse dictionary: invalid json")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, ErrNotObject
	}

	d := New()
	doc.ForEach(func(key, value gjson.Result) bool {
		word := key.String()
		norm := kelime.Normalize(word)
		// Only a valid record claims a word. A malformed entry under the same
		// word stays quarantined next to it.
		if _, ok := d.records[norm]; ok {
			d.hold(word, norm, value, fmt.Errorf("duplicate of %q after normalization", norm))
			return true
		}
		rec, err := decodeRecord(value)
		if err != nil {
			d.hold(word, norm, value, err)
			return true
		}
		d.records[norm] = rec
		return true
	})
	return d, nil
}

func (d *Dictionary) hold(key, norm string, value gjson.Result, reason error) {
	d.quarantine = append(d.quarantine, Quarantined{
		Key:    key,
		Raw:    json.RawMessage(value.Raw),
		Reason: reason,
	})
	d.held[norm] = struct{}{}
}

// Save writes the whole dictionary to path as indented JSON with sorted keys.
// Non-ASCII characters are written literally. The file is replaced atomically.
func (d *Dictionary) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dictionary-*.json")
	if err != nil {
		return fmt.Errorf("create temp dictionary: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write dictionary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close dictionary: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod dictionary: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace dictionary: %w", err)
	}
	return nil
}

// Marshal encodes the dictionary the way Save writes it.
func (d *Dictionary) Marshal() ([]byte, error) {
	entries := make(map[string][]byte, len(d.records)+len(d.quarantine))
	for word, rec := range d.records {
		raw, err := marshalLiteral(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", word, err)
		}
		entries[word] = raw
	}
	// Colliding quarantined keys were reported at load time; the valid record wins.
	for _, q := range d.quarantine {
		if _, ok := entries[q.Key]; ok {
			continue
		}
		entries[q.Key] = q.Raw
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := marshalLiteral(k)
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(entries[k])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent dictionary: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
