// Package geometry holds the row and column geometry of a spreadsheet as
// sent by the document engine.
package geometry

import (
	"errors"
	"fmt"

	"github.com/hnimtadd/sheetgeom/geometry/coordinate"
	"github.com/hnimtadd/sheetgeom/geometry/dimension"
	"github.com/hnimtadd/sheetgeom/logger"
)

type (
	// TileGeometry is the zoom state shared by both dimensions.
	TileGeometry struct {
		TileWidthTwips    int
		TileHeightTwips   int
		TileSizeCSSPixels int
		DPIScale          float64
	}

	Options struct {
		TileGeometry
		Logger logger.Logger
	}

	// CellRange is a range of columns and rows.
	CellRange struct {
		Columns dimension.Range
		Rows    dimension.Range
	}

	// appliedPayload identifies an axis payload and the dimension revision
	// it produced. The payload is skipped only while the dimension has not
	// been updated since.
	appliedPayload struct {
		fingerprint uint64
		revision    int
	}

	// SheetGeometry pairs the column and row dimensions of a sheet.
	SheetGeometry struct {
		columns *dimension.SheetDimension
		rows    *dimension.SheetDimension

		// Last axis payloads applied without error.
		columnsApplied *appliedPayload
		rowsApplied    *appliedPayload

		logger logger.Logger
	}
)

// New creates the geometry from a complete payload. The tile geometry is
// applied first so positions are computed once, by the initial update.
func New(p *Payload, opts Options) (*SheetGeometry, error) {
	l := logger.OrDiscard(opts.Logger)
	g := &SheetGeometry{
		columns: dimension.NewSheetDimension(dimension.Options{Name: "columns", Logger: l}),
		rows:    dimension.NewSheetDimension(dimension.Options{Name: "rows", Logger: l}),
		logger:  l,
	}

	tg := opts.TileGeometry
	if err := g.SetTileGeometryData(tg.TileWidthTwips, tg.TileHeightTwips,
		tg.TileSizeCSSPixels, tg.DPIScale, false); err != nil {
		return nil, err
	}
	if err := g.Update(p, true); err != nil {
		return nil, err
	}
	return g, nil
}

// Update applies p. A payload that fails validation is rejected without
// changing anything. Otherwise both axes are updated on a best effort basis
// and the returned error joins their failures.
func (g *SheetGeometry) Update(p *Payload, checkCompleteness bool) error {
	maxColumn, maxRow, err := p.validate(checkCompleteness)
	if err != nil {
		g.logger.Error("rejected sheet geometry", "command", CommandName, "error", err)
		return err
	}

	var errs []error
	if err := g.updateAxis("columns", g.columns, p.Columns, &g.columnsApplied); err != nil {
		errs = append(errs, err)
	}
	if err := g.updateAxis("rows", g.rows, p.Rows, &g.rowsApplied); err != nil {
		errs = append(errs, err)
	}

	g.columns.SetMaxIndex(maxColumn)
	g.rows.SetMaxIndex(maxRow)

	return errors.Join(errs...)
}

func (g *SheetGeometry) updateAxis(
	name string,
	dim *dimension.SheetDimension,
	p *dimension.Payload,
	last **appliedPayload,
) error {
	if p == nil {
		return nil
	}

	fp, hashErr := p.Fingerprint()
	if hashErr == nil && *last != nil &&
		(*last).fingerprint == fp && (*last).revision == dim.Revision() {
		g.logger.Debug("skipping unchanged geometry", "axis", name)
		return nil
	}

	if err := dim.Update(p); err != nil {
		*last = nil
		g.logger.Error("geometry update failed", "axis", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	if hashErr == nil {
		*last = &appliedPayload{fingerprint: fp, revision: dim.Revision()}
	}
	return nil
}

// SetTileGeometryData forwards the zoom state to both dimensions. Nothing
// changes if any parameter is invalid.
func (g *SheetGeometry) SetTileGeometryData(
	tileWidthTwips, tileHeightTwips, tileSizeCSSPixels int,
	dpiScale float64,
	updatePositions bool,
) error {
	if err := ValidateTileGeometry(tileWidthTwips, tileHeightTwips, tileSizeCSSPixels, dpiScale); err != nil {
		return err
	}
	if err := g.columns.SetTileGeometryData(tileWidthTwips, tileSizeCSSPixels, dpiScale, updatePositions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err := g.rows.SetTileGeometryData(tileHeightTwips, tileSizeCSSPixels, dpiScale, updatePositions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

// ValidateTileGeometry checks zoom parameters for both axes.
func ValidateTileGeometry(tileWidthTwips, tileHeightTwips, tileSizeCSSPixels int, dpiScale float64) error {
	if err := dimension.ValidateTileGeometry(tileWidthTwips, tileSizeCSSPixels, dpiScale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err := dimension.ValidateTileGeometry(tileHeightTwips, tileSizeCSSPixels, dpiScale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

// SetViewArea sets the visible area from its top-left corner and size in
// tile twips.
func (g *SheetGeometry) SetViewArea(topLeft, size coordinate.Point[float64]) error {
	if size.X < 0 || size.Y < 0 {
		return fmt.Errorf("%w: negative view size %v", ErrInvalidArgument, size)
	}
	bottomRight := topLeft.Add(size)
	g.columns.SetViewLimits(topLeft.X, bottomRight.X)
	g.rows.SetViewLimits(topLeft.Y, bottomRight.Y)
	return nil
}

func (g *SheetGeometry) Columns() *dimension.SheetDimension {
	return g.columns
}

func (g *SheetGeometry) Rows() *dimension.SheetDimension {
	return g.rows
}

// ViewColumnRange returns the column range of the view area.
func (g *SheetGeometry) ViewColumnRange() dimension.Range {
	return g.columns.ViewElementRange()
}

// ViewRowRange returns the row range of the view area.
func (g *SheetGeometry) ViewRowRange() dimension.Range {
	return g.rows.ViewElementRange()
}

func (g *SheetGeometry) ViewCellRange() CellRange {
	return CellRange{
		Columns: g.ViewColumnRange(),
		Rows:    g.ViewRowRange(),
	}
}

// ColumnData returns the start position and size of a column in CSS
// pixels. Hidden and filtered columns have zero size.
func (g *SheetGeometry) ColumnData(column int) (dimension.ElementData, bool) {
	return g.columns.ElementData(column, false)
}

// RowData returns the start position and size of a row in CSS pixels.
// Hidden and filtered rows have zero size.
func (g *SheetGeometry) RowData(row int) (dimension.ElementData, bool) {
	return g.rows.ElementData(row, false)
}

func (g *SheetGeometry) ForEachColumnInRange(start, end int, cb func(column int, data dimension.ElementData)) {
	g.columns.ForEachInRange(start, end, cb)
}

func (g *SheetGeometry) ForEachRowInRange(start, end int, cb func(row int, data dimension.ElementData)) {
	g.rows.ForEachInRange(start, end, cb)
}

func (g *SheetGeometry) ColumnGroupLevels() int {
	return g.columns.GroupLevels()
}

func (g *SheetGeometry) RowGroupLevels() int {
	return g.rows.GroupLevels()
}

func (g *SheetGeometry) ColumnGroupsDataInView() []dimension.GroupData {
	return g.columns.GroupsDataInView()
}

func (g *SheetGeometry) RowGroupsDataInView() []dimension.GroupData {
	return g.rows.GroupsDataInView()
}

// TileTwipsSheetAreaFromPrint converts a rectangle in print twips to the
// tile twips rectangle covering the same cells.
func (g *SheetGeometry) TileTwipsSheetAreaFromPrint(r coordinate.Bounds[float64]) (coordinate.Bounds[float64], error) {
	if !r.Valid() {
		return r, fmt.Errorf("%w: inverted rectangle %v", ErrInvalidArgument, r)
	}

	horiz, ok := g.columns.TileTwipsRangeFromPrint(r.Min.X, r.Max.X)
	if !ok {
		return r, fmt.Errorf("%w: no column geometry", ErrIncomplete)
	}
	vert, ok := g.rows.TileTwipsRangeFromPrint(r.Min.Y, r.Max.Y)
	if !ok {
		return r, fmt.Errorf("%w: no row geometry", ErrIncomplete)
	}

	return coordinate.Bounds[float64]{
		Min: coordinate.NewPoint(horiz.StartPos, vert.StartPos),
		Max: coordinate.NewPoint(horiz.EndPos, vert.EndPos),
	}, nil
}
