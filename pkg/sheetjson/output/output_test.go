package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

func TestToJSON(t *testing.T) {
	rec := models.NewRecord([]string{"z", "a"}, []any{int64(1), "x"})

	compact, err := ToJSON(rec, false)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x"}`, string(compact))

	pretty, err := ToJSON(rec, true)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": \"x\"\n}", string(pretty))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]int{"n": 2}, false))
	assert.Equal(t, "{\"n\":2}\n", buf.String())
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	ds := models.NewSheetDataSet("S", nil, nil, 0)

	require.NoError(t, SaveToFile(ds, path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sheet":"S","fields":[],"data":[],"num_rows":0}`, string(data))
}
