package sheetjson

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrPermissionDenied indicates the input file cannot be read.
var ErrPermissionDenied = errors.New("permission denied")

// ErrUnsupportedFormat indicates the file extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrWorkbookOpen indicates the workbook could not be parsed.
var ErrWorkbookOpen = errors.New("cannot open workbook")

// ErrNoSheets indicates the workbook has no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrSheetNotFound indicates a sheet selection matched nothing.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrUnreadableDelimited indicates a CSV or TSV file could not be read.
var ErrUnreadableDelimited = errors.New("unreadable delimited file")

// ErrSaveSink indicates the save callback failed while streaming.
var ErrSaveSink = errors.New("save sink failure")

// ErrNoPath indicates no input path was given.
var ErrNoPath = errors.New("no file path specified")

// Reason codes carried by ReadError.
const (
	CodeFileNotFound    = "file_not_found"
	CodePermission      = "permission_denied"
	CodeUnsupported     = "unsupported_format"
	CodeWorkbookOpen    = "cannot_open_workbook"
	CodeNoSheets        = "workbook_with_no_sheets"
	CodeSheetNotFound   = "sheet_not_found"
	CodeUnreadableCSV   = "unreadable_csv_file"
	CodeUnreadableTSV   = "unreadable_tsv_file"
	CodeSaveSink        = "save_sink_failure"
	CodeNoPath          = "no_filepath_specified"
	CodeInvalidOptions  = "invalid_options"
	codeUnknownFallback = "read_error"
)

var sentinels = map[string]error{
	CodeFileNotFound:  ErrFileNotFound,
	CodePermission:    ErrPermissionDenied,
	CodeUnsupported:   ErrUnsupportedFormat,
	CodeWorkbookOpen:  ErrWorkbookOpen,
	CodeNoSheets:      ErrNoSheets,
	CodeSheetNotFound: ErrSheetNotFound,
	CodeUnreadableCSV: ErrUnreadableDelimited,
	CodeUnreadableTSV: ErrUnreadableDelimited,
	CodeSaveSink:      ErrSaveSink,
	CodeNoPath:        ErrNoPath,
}

// ReadError is a structural failure that aborted a read.
type ReadError struct {
	Code  string
	Path  string
	Sheet string
	Err   error
}

func (e *ReadError) Error() string {
	msg := e.Code
	if sentinel, ok := sentinels[e.Code]; ok {
		msg = sentinel.Error()
	}
	if e.Sheet != "" {
		msg = fmt.Sprintf("%s (sheet %q)", msg, e.Sheet)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Code.
func (e *ReadError) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && sentinel == target
}

// NewReadError creates a new ReadError.
func NewReadError(code, path, sheet string, err error) *ReadError {
	return &ReadError{
		Code:  code,
		Path:  path,
		Sheet: sheet,
		Err:   err,
	}
}

// CodeOf returns the reason code of err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var re *ReadError
	if errors.As(err, &re) {
		return re.Code
	}
	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return codeUnknownFallback
}

// Report is the user-visible failure shape.
type Report struct {
	Error   bool      `json:"error"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Options OptionSet `json:"options"`
}

// ErrorReport describes err together with the options that produced it.
func ErrorReport(err error, opts OptionSet) Report {
	r := Report{Error: true, Code: CodeOf(err), Options: opts}
	if err != nil {
		r.Message = err.Error()
	}
	return r
}
