package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// CategorySet maps category keys to records in registry order.
// A nil record marks a category whose fetch failed.
type CategorySet struct {
	keys    []string
	records map[string]*Record
}

// NewCategorySet returns an empty set sized for n categories.
func NewCategorySet(n int) *CategorySet {
	return &CategorySet{
		keys:    make([]string, 0, n),
		records: make(map[string]*Record, n),
	}
}

// Set stores rec under key. Re-setting a key keeps its original position.
func (s *CategorySet) Set(key string, rec *Record) {
	if _, ok := s.records[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.records[key] = rec
}

// Get returns the record for key and whether the key is present.
func (s *CategorySet) Get(key string) (*Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// Keys returns the keys in insertion order.
func (s *CategorySet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys, failed ones included.
func (s *CategorySet) Len() int { return len(s.keys) }

// Failed returns the keys whose fetch failed.
func (s *CategorySet) Failed() []string {
	var out []string
	for _, k := range s.keys {
		if s.records[k] == nil {
			out = append(out, k)
		}
	}
	return out
}

// Valid returns the exportable records in insertion order.
func (s *CategorySet) Valid() []Record {
	out := make([]Record, 0, len(s.keys))
	for _, k := range s.keys {
		if rec := s.records[k]; rec.Valid() {
			out = append(out, *rec)
		}
	}
	return out
}

// SortedByTime returns the exportable records, fastest first.
func (s *CategorySet) SortedByTime() []Record {
	out := s.Valid()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RawTimeSeconds < out[j].RawTimeSeconds
	})
	return out
}

// MarshalJSON encodes the set as an object keyed by category in insertion order.
func (s *CategorySet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.records[k])
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
