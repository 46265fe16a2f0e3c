package models

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is one produced row. Fields keep source column order and marshal
// as a JSON object in that order.
type Record []Field

// NewRecord pairs keys with values by position. Missing values are nil.
func NewRecord(keys []string, values []any) Record {
	rec := make(Record, len(keys))
	for i, k := range keys {
		rec[i].Key = k
		if i < len(values) {
			rec[i].Value = values[i]
		}
	}
	return rec
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Map returns an unordered copy of the record.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON writes the record as an object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, f := range r {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.Key)
		stream.WriteVal(f.Value)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}
