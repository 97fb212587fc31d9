package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// ErrMalformedRecord is returned when a stored entry does not have the record shape.
var ErrMalformedRecord = errors.New("malformed record")

// Record is the learning unit stored for one vocabulary word.
type Record struct {
	English    Senses   `json:"English"`
	Turkish    []string `json:"Turkish"`
	TimesShown int      `json:"times_shown"`
}

// NewRecord returns an empty record that has been shown once.
func NewRecord() *Record {
	return &Record{
		English:    Senses{},
		Turkish:    []string{},
		TimesShown: 1,
	}
}

// UnmarshalJSON decodes and validates a record.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid json", ErrMalformedRecord)
	}
	rec, err := decodeRecord(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

func decodeRecord(v gjson.Result) (*Record, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: entry is not an object", ErrMalformedRecord)
	}

	english := v.Get("English")
	if !english.Exists() {
		return nil, fmt.Errorf("%w: missing English", ErrMalformedRecord)
	}
	senses, err := decodeSenses(english)
	if err != nil {
		return nil, err
	}

	turkish := v.Get("Turkish")
	if !turkish.Exists() {
		return nil, fmt.Errorf("%w: missing Turkish", ErrMalformedRecord)
	}
	translations, err := decodeStrings(turkish)
	if err != nil {
		return nil, fmt.Errorf("%w: Turkish: %v", ErrMalformedRecord, err)
	}

	shown := v.Get("times_shown")
	if shown.Type != gjson.Number || shown.Num != math.Trunc(shown.Num) {
		return nil, fmt.Errorf("%w: times_shown must be an integer", ErrMalformedRecord)
	}
	if shown.Num < 1 || shown.Num > math.MaxInt32 {
		return nil, fmt.Errorf("%w: times_shown out of range (%s)", ErrMalformedRecord, shown.Raw)
	}

	return &Record{
		English:    senses,
		Turkish:    translations,
		TimesShown: int(shown.Int()),
	}, nil
}

func decodeStrings(v gjson.Result) ([]string, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("expected an array of strings")
	}
	out := []string{}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("expected string, got %s", item.Type)
		}
		out = append(out, item.String())
	}
	return out, nil
}

// SenseGroup holds the glosses listed under one part of speech.
type SenseGroup struct {
	POS     string
	Glosses []string
}

// Senses are English glosses grouped by part of speech.
// Group order is kept through JSON encoding and decoding.
type Senses []SenseGroup

// Add appends gloss to the group for pos, creating the group if needed.
func (s Senses) Add(pos, gloss string) Senses {
	for i := range s {
		if s[i].POS == pos {
			s[i].Glosses = append(s[i].Glosses, gloss)
			return s
		}
	}
	return append(s, SenseGroup{POS: pos, Glosses: []string{gloss}})
}

// Lookup returns the glosses for pos.
func (s Senses) Lookup(pos string) ([]string, bool) {
	for _, g := range s {
		if g.POS == pos {
			return g.Glosses, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the groups as a JSON object keyed by part of speech.
func (s Senses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalLiteral(g.POS)
		if err != nil {
			return nil, err
		}
		glosses := g.Glosses
		if glosses == nil {
			glosses = []string{}
		}
		val, err := marshalLiteral(glosses)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string arrays, keeping key order.
func (s *Senses) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid json", ErrMalformedRecord)
	}
	out, err := decodeSenses(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*s = out
	return nil
}

func decodeSenses(v gjson.Result) (Senses, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: English is not an object", ErrMalformedRecord)
	}
	out := Senses{}
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		var glosses []string
		glosses, err = decodeStrings(value)
		if err != nil {
			err = fmt.Errorf("%w: English[%s]: %v", ErrMalformedRecord, key.String(), err)
			return false
		}
		if _, ok := out.Lookup(key.String()); !ok {
			out = append(out, SenseGroup{POS: key.String(), Glosses: []string{}})
		}
		for _, g := range glosses {
			out = out.Add(key.String(), g)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// marshalLiteral encodes v as compact JSON without HTML escaping.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
