package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
)

type columnFile struct {
	DecimalComma     any              `yaml:"decimal_comma"`
	EuroNumberFormat any              `yaml:"euro_number_format"`
	DateOnly         any              `yaml:"date_only"`
	Columns          []map[string]any `yaml:"columns"`
}

// LoadColumns reads a YAML or JSON column override file.
func LoadColumns(path string) (sheetjson.RowOptionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sheetjson.RowOptionSet{}, fmt.Errorf("read columns file: %w", err)
	}
	return ParseColumns(data)
}

// ParseColumns decodes column overrides. JSON input is accepted as YAML.
func ParseColumns(data []byte) (sheetjson.RowOptionSet, error) {
	var cf columnFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return sheetjson.RowOptionSet{}, fmt.Errorf("parse columns file: %w", err)
	}

	rows := sheetjson.RowOptionSet{DateOnly: cast.ToBool(cf.DateOnly)}
	if cf.DecimalComma != nil {
		rows.DecimalComma = cast.ToBool(cf.DecimalComma)
	} else {
		rows.DecimalComma = cast.ToBool(cf.EuroNumberFormat)
	}
	for _, m := range cf.Columns {
		rows.Columns = append(rows.Columns, sheetjson.ColumnFromMap(m))
	}
	return rows, nil
}
