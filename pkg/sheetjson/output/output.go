// Package output renders results and error reports as JSON.
package output

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON serializes v. With pretty set the output is indented by two spaces.
func ToJSON(v any, pretty bool) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !pretty {
		return data, nil
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders v to w followed by a newline.
func Write(w io.Writer, v any, pretty bool) error {
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveToFile renders v into path, or to stdout when path is empty or "-".
func SaveToFile(v any, path string, pretty bool) error {
	if path == "" || path == "-" {
		return Write(os.Stdout, v, pretty)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, v, pretty); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
