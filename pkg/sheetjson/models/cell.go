// Package models defines the data structures produced by a sheet read.
package models

import (
	"strconv"
	"time"
)

// CellKind classifies a raw source cell.
type CellKind uint8

const (
	// CellEmpty is a blank cell or a position past the end of a short row.
	CellEmpty CellKind = iota
	CellInt
	CellFloat
	CellBool
	// CellDate is a native date/time. Invalid is set when the reader saw a
	// date-formatted cell it could not resolve.
	CellDate
	// CellString is text typed as a string by a workbook reader.
	CellString
	// CellText is untyped text from a delimited file.
	CellText
)

// Cell is one raw value as classified by a source reader.
type Cell struct {
	Kind    CellKind
	Int     int64
	Float   float64
	Bool    bool
	Time    time.Time
	Str     string
	Invalid bool
}

func EmptyCell() Cell { return Cell{Kind: CellEmpty} }
func IntCell(v int64) Cell { return Cell{Kind: CellInt, Int: v} }
func FloatCell(v float64) Cell { return Cell{Kind: CellFloat, Float: v} }
func BoolCell(v bool) Cell { return Cell{Kind: CellBool, Bool: v} }
func DateCell(v time.Time) Cell { return Cell{Kind: CellDate, Time: v} }
func StringCell(v string) Cell { return Cell{Kind: CellString, Str: v} }
func TextCell(v string) Cell { return Cell{Kind: CellText, Str: v} }
func InvalidDateCell(raw string) Cell {
	return Cell{Kind: CellDate, Str: raw, Invalid: true}
}

// IsEmpty reports whether the cell carries no value. Blank text counts as empty.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellString, CellText:
		return c.Str == ""
	}
	return false
}

// String returns the cell's display text, used for header capture.
func (c Cell) String() string {
	switch c.Kind {
	case CellInt:
		return strconv.FormatInt(c.Int, 10)
	case CellFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellDate:
		if c.Invalid {
			return c.Str
		}
		return c.Time.Format("2006-01-02T15:04:05")
	case CellString, CellText:
		return c.Str
	}
	return ""
}
