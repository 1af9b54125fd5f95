package geometry

import (
	"testing"

	"github.com/hnimtadd/sheetgeom/geometry/coordinate"
	"github.com/hnimtadd/sheetgeom/geometry/dimension"
	"github.com/hnimtadd/sheetgeom/geometry/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

// 15 twips per CSS pixel, one device pixel per CSS pixel.
var testOptions = Options{
	TileGeometry: TileGeometry{
		TileWidthTwips:    3840,
		TileHeightTwips:   3840,
		TileSizeCSSPixels: 256,
		DPIScale:          1,
	},
}

// fullPayload describes 10 columns of 1280 twips (85px) and 1000 rows of
// 255 twips (17px).
func fullPayload() *Payload {
	return &Payload{
		CommandName:    CommandName,
		MaxTiledColumn: str("9"),
		MaxTiledRow:    str("999"),
		Columns: &dimension.Payload{
			Sizes:    str("1280:9 1"),
			Hidden:   str("0:9 1"),
			Filtered: str("0:9 1"),
			Groups:   str("1:2:0:1,0 1"),
		},
		Rows: &dimension.Payload{
			Sizes:    str("255:999 1"),
			Hidden:   str("0:999 1"),
			Filtered: str("0:999 1"),
		},
	}
}

func newTestGeometry(t *testing.T) *SheetGeometry {
	t.Helper()
	g, err := New(fullPayload(), testOptions)
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	g := newTestGeometry(t)

	assert.Equal(t, 9, g.Columns().MaxIndex())
	assert.Equal(t, 999, g.Rows().MaxIndex())
	assert.Equal(t, 1, g.Columns().Recomputations())
	assert.Equal(t, 1, g.Rows().Recomputations())

	data, ok := g.ColumnData(1)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 85, Size: 85}, data)

	data, ok = g.RowData(3)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 51, Size: 17}, data)
}

func TestNewRejectsInvalidPayloads(t *testing.T) {
	wrongCommand := fullPayload()
	wrongCommand.CommandName = ".uno:Other"

	noCommand := fullPayload()
	noCommand.CommandName = ""

	badColumn := fullPayload()
	badColumn.MaxTiledColumn = str("12a")

	noRow := fullPayload()
	noRow.MaxTiledRow = nil

	noRows := fullPayload()
	noRows.Rows = nil

	emptyHidden := fullPayload()
	emptyHidden.Rows.Hidden = str("")

	noFiltered := fullPayload()
	noFiltered.Columns.Filtered = nil

	for name, tc := range map[string]struct {
		payload *Payload
		err     error
	}{
		"wrong command": {wrongCommand, ErrWrongCommand},
		"no command":    {noCommand, ErrWrongCommand},
		"bad column":    {badColumn, ErrBadMaxIndex},
		"no row":        {noRow, ErrBadMaxIndex},
		"no rows":       {noRows, ErrIncomplete},
		"empty hidden":  {emptyHidden, ErrIncomplete},
		"no filtered":   {noFiltered, ErrIncomplete},
		"nil":           {nil, ErrInvalidArgument},
	} {
		g, err := New(tc.payload, testOptions)
		assert.ErrorIs(t, err, tc.err, name)
		assert.Nil(t, g, name)
	}
}

func TestNewRejectsInvalidTileGeometry(t *testing.T) {
	opts := testOptions
	opts.DPIScale = 0
	_, err := New(fullPayload(), opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, dimension.ErrInvalidTileGeometry)
}

func TestPartialUpdate(t *testing.T) {
	g := newTestGeometry(t)

	require.NoError(t, g.Update(&Payload{
		CommandName:    CommandName,
		MaxTiledColumn: str("9"),
		MaxTiledRow:    str("500"),
		Rows:           &dimension.Payload{Hidden: str("1:4 999 2")},
	}, false))

	assert.Equal(t, 500, g.Rows().MaxIndex())
	data, ok := g.RowData(5)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 0, Size: 17}, data)

	// Columns were not part of the update.
	assert.Equal(t, 1, g.Columns().Recomputations())
	assert.Equal(t, 1, g.ColumnGroupLevels())
}

func TestUpdateRejectedWithoutChanges(t *testing.T) {
	g := newTestGeometry(t)

	err := g.Update(&Payload{
		CommandName: CommandName,
		MaxTiledRow: str("500"),
		Rows:        &dimension.Payload{Hidden: str("1:4 999 2")},
	}, false)
	assert.ErrorIs(t, err, ErrBadMaxIndex)
	assert.Equal(t, 999, g.Rows().MaxIndex())
	assert.Equal(t, 1, g.Rows().Recomputations())
}

func TestUpdateSkipsUnchangedAxis(t *testing.T) {
	g := newTestGeometry(t)

	require.NoError(t, g.Update(fullPayload(), true))
	assert.Equal(t, 1, g.Columns().Recomputations())
	assert.Equal(t, 1, g.Rows().Recomputations())

	p := fullPayload()
	p.Rows.Sizes = str("300:999 1")
	require.NoError(t, g.Update(p, true))
	assert.Equal(t, 1, g.Columns().Recomputations())
	assert.Equal(t, 2, g.Rows().Recomputations())
}

func TestUpdateAfterDirectDimensionUpdate(t *testing.T) {
	g := newTestGeometry(t)

	require.NoError(t, g.Columns().Update(&dimension.Payload{Sizes: str("2560:9 1")}))
	data, ok := g.ColumnData(1)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 170, Size: 170}, data)

	// The payload matches the last one applied through g, but the columns
	// changed since, so it is applied again.
	require.NoError(t, g.Update(fullPayload(), true))
	data, ok = g.ColumnData(1)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 85, Size: 85}, data)
}

func TestUpdateAxisFailure(t *testing.T) {
	g := newTestGeometry(t)

	p := fullPayload()
	p.Rows.Sizes = str("bad")
	err := g.Update(p, false)
	assert.ErrorIs(t, err, span.ErrMalformedEncoding)
	assert.ErrorContains(t, err, "rows")

	// After a failure the same payload is applied again rather than
	// skipped.
	err = g.Update(p, false)
	assert.ErrorIs(t, err, span.ErrMalformedEncoding)

	require.NoError(t, g.Update(fullPayload(), true))
}

func TestSetTileGeometryData(t *testing.T) {
	g := newTestGeometry(t)

	require.NoError(t, g.SetTileGeometryData(3840, 3840, 256, 1, true))
	assert.Equal(t, 1, g.Columns().Recomputations())

	require.NoError(t, g.SetTileGeometryData(3840, 3840, 256, 2, true))
	assert.Equal(t, 2, g.Columns().Recomputations())
	assert.Equal(t, 2, g.Rows().Recomputations())

	err := g.SetTileGeometryData(3840, 0, 256, 2, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetTileGeometryDataRejectsWithoutChanges(t *testing.T) {
	g := newTestGeometry(t)

	err := g.SetTileGeometryData(1920, 0, 256, 1, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, dimension.ErrInvalidTileGeometry)

	// The valid column width must not have been applied.
	data, ok := g.ColumnData(1)
	require.True(t, ok)
	assert.Equal(t, dimension.ElementData{StartPos: 85, Size: 85}, data)
	assert.Equal(t, 1, g.Columns().Recomputations())
	assert.Equal(t, 1, g.Rows().Recomputations())
}

func TestSetViewArea(t *testing.T) {
	g := newTestGeometry(t)

	require.NoError(t, g.SetViewArea(coordinate.NewPoint(0.0, 0.0), coordinate.NewPoint(2550.0, 510.0)))
	assert.Equal(t, CellRange{
		Columns: dimension.Range{Start: 0, End: 2},
		Rows:    dimension.Range{Start: 0, End: 2},
	}, g.ViewCellRange())

	err := g.SetViewArea(coordinate.NewPoint(0.0, 0.0), coordinate.NewPoint(-1.0, 510.0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGroupsInView(t *testing.T) {
	g := newTestGeometry(t)
	require.NoError(t, g.SetViewArea(coordinate.NewPoint(0.0, 0.0), coordinate.NewPoint(2550.0, 510.0)))

	assert.Equal(t, []dimension.GroupData{
		{Level: "1", Index: "0", StartPos: "85", EndPos: "255", Hidden: "0"},
	}, g.ColumnGroupsDataInView())

	assert.Equal(t, 0, g.RowGroupLevels())
	assert.Empty(t, g.RowGroupsDataInView())
}

func TestForEachInRange(t *testing.T) {
	g := newTestGeometry(t)

	var rows []int
	g.ForEachRowInRange(0, 2, func(row int, data dimension.ElementData) {
		rows = append(rows, row)
		assert.Equal(t, 17.0, data.Size)
	})
	assert.Equal(t, []int{0, 1, 2}, rows)

	var starts []float64
	g.ForEachColumnInRange(8, 12, func(_ int, data dimension.ElementData) {
		starts = append(starts, data.StartPos)
	})
	assert.Equal(t, []float64{680, 765}, starts)
}

func TestTileTwipsSheetAreaFromPrint(t *testing.T) {
	g := newTestGeometry(t)

	area, err := g.TileTwipsSheetAreaFromPrint(coordinate.NewBounds(
		coordinate.NewPoint(1280.0, 255.0),
		coordinate.NewPoint(2560.0, 510.0),
	))
	require.NoError(t, err)
	assert.Equal(t, coordinate.NewBounds(
		coordinate.NewPoint(1275.0, 255.0),
		coordinate.NewPoint(3825.0, 765.0),
	), area)

	// A collapsed rectangle keeps a width of one device pixel.
	area, err = g.TileTwipsSheetAreaFromPrint(coordinate.NewBounds(
		coordinate.NewPoint(1280.0, 255.0),
		coordinate.NewPoint(1280.0, 255.0),
	))
	require.NoError(t, err)
	assert.Equal(t, coordinate.NewPoint(15.0, 15.0), area.Size())

	_, err = g.TileTwipsSheetAreaFromPrint(coordinate.Bounds[float64]{
		Min: coordinate.NewPoint(10.0, 0.0),
		Max: coordinate.NewPoint(0.0, 0.0),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
