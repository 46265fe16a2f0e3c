package models

// SheetRef identifies the selected sheet.
type SheetRef struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
}

// WorkbookInfo describes the source file and its sheet selection.
type WorkbookInfo struct {
	// Filename is the file name without directory.
	Filename string `json:"name"`
	// Extension is the lower-case extension without the dot.
	Extension string `json:"extension"`
	// Selected lists the sheets that will be read.
	Selected []SheetRef `json:"selected"`
	// Sheets lists every sheet in source order.
	Sheets []string `json:"sheets"`
}

// Primary returns the first selected sheet.
func (w WorkbookInfo) Primary() SheetRef {
	if len(w.Selected) == 0 {
		return SheetRef{}
	}
	return w.Selected[0]
}

// ResultSet aggregates one or many sheet results plus workbook metadata.
type ResultSet struct {
	Filename  string   `json:"name"`
	Extension string   `json:"extension"`
	Sheet     SheetRef `json:"sheet"`
	// Selected lists every sheet the read covered; Sheet is its first entry.
	Selected []SheetRef `json:"selected"`
	Sheets   []string   `json:"sheets"`
	Keys     []string   `json:"fields"`
	// NumRows is the counted total; for multi-sheet reads the sum over sheets.
	NumRows int `json:"num_rows"`
	// Data holds the single sheet's rows. It is omitted from JSON when
	// rows were streamed to OutRef or when Multiple is set.
	Data []Record `json:"data"`
	// Multiple holds per-sheet results for preview reads.
	Multiple []SheetDataSet `json:"multiple,omitempty"`
	// OutRef names where streamed rows were delivered.
	OutRef string `json:"out_ref,omitempty"`
}

// NewResultSet builds a single-sheet result.
func NewResultSet(info WorkbookInfo, ds SheetDataSet, outRef string) *ResultSet {
	return &ResultSet{
		Filename:  info.Filename,
		Extension: info.Extension,
		Sheet:     info.Primary(),
		Selected:  selectedRefs(info),
		Sheets:    info.Sheets,
		Keys:      ds.Keys,
		NumRows:   ds.NumRows,
		Data:      ds.Rows,
		OutRef:    outRef,
	}
}

// NewMultiResultSet builds a result covering several sheets. Keys come
// from the first sheet.
func NewMultiResultSet(info WorkbookInfo, sheets []SheetDataSet) *ResultSet {
	rs := &ResultSet{
		Filename:  info.Filename,
		Extension: info.Extension,
		Sheet:     info.Primary(),
		Selected:  selectedRefs(info),
		Sheets:    info.Sheets,
		Keys:      []string{},
		Multiple:  sheets,
	}
	for i, s := range sheets {
		if i == 0 {
			rs.Keys = s.Keys
		}
		rs.NumRows += s.NumRows
	}
	return rs
}

func selectedRefs(info WorkbookInfo) []SheetRef {
	if len(info.Selected) == 0 {
		return []SheetRef{}
	}
	return append([]SheetRef(nil), info.Selected...)
}

// Streamed reports whether rows were delivered to OutRef.
func (r *ResultSet) Streamed() bool {
	return r.OutRef != ""
}

// MarshalJSON omits data when rows were streamed or split per sheet.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	type plain ResultSet
	out := struct {
		plain
		Data *[]Record `json:"data,omitempty"`
	}{plain: plain(r)}

	if r.OutRef == "" && len(r.Multiple) == 0 {
		data := r.Data
		if data == nil {
			data = []Record{}
		}
		out.Data = &data
	}
	return json.Marshal(out)
}
