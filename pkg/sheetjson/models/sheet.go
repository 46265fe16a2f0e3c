package models

// SheetDataSet holds the outcome of reading one sheet.
type SheetDataSet struct {
	// SheetName is the worksheet name, or the file stem for delimited files.
	SheetName string `json:"sheet"`
	// Keys are the resolved header keys in column order.
	Keys []string `json:"fields"`
	// Rows are the materialized records, capped by the row ceiling.
	Rows []Record `json:"data"`
	// NumRows is the total number of source rows, header included.
	NumRows int `json:"num_rows"`
}

// NewSheetDataSet creates a SheetDataSet, normalizing nil slices to empty.
func NewSheetDataSet(name string, keys []string, rows []Record, total int) SheetDataSet {
	if keys == nil {
		keys = []string{}
	}
	if rows == nil {
		rows = []Record{}
	}
	return SheetDataSet{SheetName: name, Keys: keys, Rows: rows, NumRows: total}
}
