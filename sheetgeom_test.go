package sheetgeom

import (
	"bytes"
	"testing"

	"github.com/hnimtadd/sheetgeom/geometry"
	"github.com/hnimtadd/sheetgeom/geometry/coordinate"
	"github.com/hnimtadd/sheetgeom/geometry/dimension"
	"github.com/hnimtadd/sheetgeom/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullMessage = `{
	"commandName": ".uno:SheetGeometryData",
	"maxtiledcolumn": "9",
	"maxtiledrow": "99",
	"columns": {
		"sizes": "1280:9 1",
		"hidden": "0:9 1",
		"filtered": "0:9 1",
		"groups": "1:2:0:1,0 1"
	},
	"rows": {
		"sizes": "255:99 1",
		"hidden": "0:1 4 99 3",
		"filtered": "0:99 1",
		"groups": ""
	}
}`

func TestProcessMessage(t *testing.T) {
	var buf bytes.Buffer
	v := NewSheetView(Options{
		Logger: logger.New(logger.Options{Buffer: &buf, Level: logger.InfoLevel}),
	})
	assert.Nil(t, v.Geometry())
	assert.Equal(t, "<no geometry>\n", v.DumpString())

	require.NoError(t, v.ProcessMessage([]byte(fullMessage)))
	require.NotNil(t, v.Geometry())
	assert.Contains(t, buf.String(), "sheet geometry loaded")

	// Rows 2 to 4 are hidden.
	data, ok := v.Geometry().RowData(5)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 34, Size: 17}, data)
	assert.Equal(t, 1, v.Geometry().ColumnGroupLevels())
	assert.Equal(t, 0, v.Geometry().RowGroupLevels())

	require.NoError(t, v.ProcessMessage([]byte(`{
		"commandName": ".uno:SheetGeometryData",
		"maxtiledcolumn": "9",
		"maxtiledrow": "99",
		"rows": {"hidden": "0:99 1"}
	}`)))
	data, ok = v.Geometry().RowData(5)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 85, Size: 17}, data)
}

func TestProcessMessageErrors(t *testing.T) {
	v := NewSheetView(Options{})

	err := v.ProcessMessage([]byte(`{not json`))
	assert.ErrorContains(t, err, "decode sheet geometry")

	err = v.ProcessMessage([]byte(`{"commandName": ".uno:SheetGeometryData", "maxtiledcolumn": "9", "maxtiledrow": "99"}`))
	assert.ErrorIs(t, err, geometry.ErrIncomplete)
	assert.Nil(t, v.Geometry())

	err = v.ProcessMessage([]byte(`{"commandName": ".uno:CellCursor"}`))
	assert.ErrorIs(t, err, geometry.ErrWrongCommand)
}

func TestSetZoom(t *testing.T) {
	v := NewSheetView(Options{})

	// Zoom set before the geometry arrives is used for it.
	require.NoError(t, v.SetZoom(3840, 3840, 256, 2))
	require.NoError(t, v.ProcessMessage([]byte(fullMessage)))
	data, ok := v.Geometry().ColumnData(1)
	require.True(t, ok)
	// floor(1280 / 15 * 2) = 170 device pixels, 85 CSS pixels.
	assert.Equal(t, dimension.ElementData{StartPos: 85, Size: 85}, data)
	assert.Equal(t, 1, v.Geometry().Columns().Recomputations())

	require.NoError(t, v.SetZoom(1920, 1920, 256, 2))
	assert.Equal(t, 2, v.Geometry().Columns().Recomputations())
	data, ok = v.Geometry().ColumnData(1)
	require.True(t, ok)
	// floor(1280 / 7.5 * 2) = 341 device pixels.
	assert.Equal(t, dimension.ElementData{StartPos: 170.5, Size: 170.5}, data)

	assert.ErrorIs(t, v.SetZoom(0, 1920, 256, 2), geometry.ErrInvalidArgument)
	assert.ErrorIs(t, NewSheetView(Options{}).SetZoom(1920, 1920, 256, 0), geometry.ErrInvalidArgument)
}

func TestSetViewArea(t *testing.T) {
	v := NewSheetView(Options{})
	require.NoError(t, v.SetViewArea(coordinate.NewPoint(0.0, 0.0), coordinate.NewPoint(100.0, 100.0)))

	require.NoError(t, v.ProcessMessage([]byte(fullMessage)))
	require.NoError(t, v.SetViewArea(coordinate.NewPoint(1275.0, 0.0), coordinate.NewPoint(2550.0, 1275.0)))
	assert.Equal(t, geometry.CellRange{
		Columns: dimension.Range{Start: 1, End: 3},
		Rows:    dimension.Range{Start: 0, End: 8},
	}, v.Geometry().ViewCellRange())
}

func TestDumpString(t *testing.T) {
	v := NewSheetView(Options{})
	require.NoError(t, v.ProcessMessage([]byte(fullMessage)))

	out := v.DumpString()
	assert.Contains(t, out, "columns:\n")
	assert.Contains(t, out, "rows:\n")
	assert.Contains(t, out, "posprinttwips")
}
