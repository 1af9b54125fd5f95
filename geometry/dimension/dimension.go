// Package dimension answers position queries for the rows or the columns of
// a sheet.
package dimension

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/hnimtadd/sheetgeom/geometry/outline"
	"github.com/hnimtadd/sheetgeom/geometry/span"
	"github.com/hnimtadd/sheetgeom/geometry/unit"
	"github.com/hnimtadd/sheetgeom/geometry/utils"
	"github.com/hnimtadd/sheetgeom/logger"
)

type (
	// PositionData is the position cache attached to every span of the
	// visible sizes. Positions are those of the end of the span.
	PositionData struct {
		// Size of one element of the span in device pixels.
		SizeDev       int
		PosDevPx      int
		PosCSSPx      float64
		PosTileTwips  int
		PosPrintTwips int
	}

	// ElementData is the start position and size of one row or column.
	ElementData struct {
		StartPos float64
		Size     float64
	}

	// Range is an inclusive range of element indices.
	Range struct {
		Start int
		End   int
	}

	// TwipsRange is a range of positions in tile twips.
	TwipsRange struct {
		StartPos float64
		EndPos   float64
	}

	// GroupData describes an outline group in the view, ready for display.
	// Positions are in device pixels.
	GroupData struct {
		Level    string
		Index    string
		StartPos string
		EndPos   string
		Hidden   string
	}

	Options struct {
		// Name identifies the dimension ("rows" or "columns") in logs.
		Name   string
		Logger logger.Logger
	}

	sizeList = span.SpanList[int, PositionData]

	// SheetDimension holds the geometry of one axis of a sheet.
	SheetDimension struct {
		sizes    *sizeList
		hidden   *span.BoolSpanList
		filtered *span.BoolSpanList
		outlines *outline.DimensionOutlines

		// Union of hidden and filtered.
		invisible *span.BoolSpanList

		// sizes with hidden and filtered elements set to zero. It carries
		// the position cache and is rebuilt whenever sizes, hidden or
		// filtered change.
		visibleSizes *sizeList

		maxIndex int

		tileSizeTwips        int
		tileSizeCSSPixels    int
		dpiScale             float64
		twipsPerCSSPixel     float64
		devPixelsPerCSSPixel float64
		hasTileGeometry      bool

		// Last view window in tile twips. The view indices are derived
		// from it again whenever positions or the max index change.
		viewStartTileTwips float64
		viewEndTileTwips   float64
		hasViewLimits      bool
		viewStartIndex     int
		viewEndIndex       int

		// Number of position cache rebuilds.
		recomputations int

		// Number of Update calls.
		revision int

		logger logger.Logger
	}
)

func NewSheetDimension(opts Options) *SheetDimension {
	l := logger.OrDiscard(opts.Logger)
	if opts.Name != "" {
		l = l.With("dimension", opts.Name)
	}
	return &SheetDimension{
		sizes:    &sizeList{},
		hidden:   &span.BoolSpanList{},
		filtered: &span.BoolSpanList{},
		outlines: &outline.DimensionOutlines{},
		logger:   l,
	}
}

// Update loads the fields present in p. Loading is best effort: a field
// that fails to load keeps its previous state and the remaining fields are
// still loaded. The returned error joins every failure.
func (d *SheetDimension) Update(p *Payload) error {
	if p == nil {
		return nil
	}
	d.revision++

	var errs []error
	regenerate := false
	load := func(name string, encoding *string, loader func(string) error) {
		if encoding == nil {
			return
		}
		if err := loader(*encoding); err != nil {
			d.logger.Warn("failed to load geometry field", "field", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		regenerate = true
	}
	load("sizes", p.Sizes, d.sizes.Load)
	load("hidden", p.Hidden, d.hidden.Load)
	load("filtered", p.Filtered, d.filtered.Load)

	if p.Groups != nil {
		if err := d.outlines.Load(*p.Groups); err != nil {
			d.logger.Warn("failed to load geometry field", "field", "groups", "error", err)
			errs = append(errs, fmt.Errorf("groups: %w", err))
		}
	}

	if regenerate {
		if err := d.updateVisible(); err != nil {
			d.logger.Warn("failed to compute visible sizes", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// updateVisible rebuilds the visible sizes and their positions. Nothing is
// done until sizes, hidden and filtered have all been loaded.
func (d *SheetDimension) updateVisible() error {
	if d.sizes.Len() == 0 || d.hidden.Len() == 0 || d.filtered.Len() == 0 {
		return nil
	}
	// hidden and filtered always come from the same payload as sizes, so
	// all three cover the same range.
	invisible, err := d.hidden.Union(d.filtered)
	if err != nil {
		return fmt.Errorf("hidden/filtered union: %w", err)
	}
	visible, err := d.sizes.ApplyZeroValues(invisible)
	if err != nil {
		return fmt.Errorf("visible sizes: %w", err)
	}
	d.invisible = invisible
	d.visibleSizes = visible
	d.updatePositions()
	return nil
}

func (d *SheetDimension) SetMaxIndex(maxIndex int) {
	if d.maxIndex == maxIndex {
		return
	}
	d.maxIndex = maxIndex
	d.updateViewIndices()
}

func (d *SheetDimension) MaxIndex() int {
	return d.maxIndex
}

// ErrInvalidTileGeometry is returned for non-positive zoom parameters.
var ErrInvalidTileGeometry = errors.New("tile geometry must be positive")

// ValidateTileGeometry checks zoom parameters without applying them.
func ValidateTileGeometry(tileSizeTwips, tileSizeCSSPixels int, dpiScale float64) error {
	if tileSizeTwips <= 0 || tileSizeCSSPixels <= 0 || !(dpiScale > 0) {
		return fmt.Errorf("%w: twips=%d css=%d dpi=%v",
			ErrInvalidTileGeometry, tileSizeTwips, tileSizeCSSPixels, dpiScale)
	}
	return nil
}

// SetTileGeometryData sets the zoom dependent conversion factors. The
// position cache is rebuilt when updatePositions is set, unless nothing
// changed.
func (d *SheetDimension) SetTileGeometryData(
	tileSizeTwips int,
	tileSizeCSSPixels int,
	dpiScale float64,
	updatePositions bool,
) error {
	if err := ValidateTileGeometry(tileSizeTwips, tileSizeCSSPixels, dpiScale); err != nil {
		return err
	}

	// Avoid position re-computations if no change in zoom/dpiScale.
	if d.hasTileGeometry &&
		d.tileSizeTwips == tileSizeTwips &&
		d.tileSizeCSSPixels == tileSizeCSSPixels &&
		d.dpiScale == dpiScale {
		d.logger.Debug("tile geometry unchanged")
		return nil
	}

	d.tileSizeTwips = tileSizeTwips
	d.tileSizeCSSPixels = tileSizeCSSPixels
	d.dpiScale = dpiScale
	d.twipsPerCSSPixel = float64(tileSizeTwips) / float64(tileSizeCSSPixels)
	d.devPixelsPerCSSPixel = dpiScale
	d.hasTileGeometry = true

	if updatePositions {
		d.updatePositions()
	}
	return nil
}

// Revision changes on every call to Update.
func (d *SheetDimension) Revision() int {
	return d.revision
}

// Recomputations returns how many times the position cache was rebuilt.
func (d *SheetDimension) Recomputations() int {
	return d.recomputations
}

func (d *SheetDimension) updatePositions() {
	if d.visibleSizes == nil || !d.hasTileGeometry {
		return
	}

	posDevPx := 0
	posPrintTwips := 0
	d.visibleSizes.AddCustomDataForEachSpan(func(_ int, size int, spanLength int) PositionData {
		// Rounding is done in device pixels, like the document engine
		// does. Do not reorder.
		sizeDev := int(math.Floor(float64(size) / d.twipsPerCSSPixel * d.devPixelsPerCSSPixel))
		posDevPx += sizeDev * spanLength
		posCSSPx := float64(posDevPx) / d.devPixelsPerCSSPixel
		// position in device pixel aligned twips.
		posTileTwips := int(math.Floor(posCSSPx * d.twipsPerCSSPixel))
		posPrintTwips += size * spanLength

		return PositionData{
			SizeDev:       sizeDev,
			PosDevPx:      posDevPx,
			PosCSSPx:      posCSSPx,
			PosTileTwips:  posTileTwips,
			PosPrintTwips: posPrintTwips,
		}
	})
	d.recomputations++
	d.logger.Debug("position cache rebuilt", "spans", d.visibleSizes.Len())
	d.updateViewIndices()
}

// ready reports whether positions can be queried.
func (d *SheetDimension) ready() bool {
	return d.visibleSizes != nil && d.visibleSizes.Len() > 0 && d.hasTileGeometry
}

func (d *SheetDimension) clampIndex(index int) int {
	return min(max(index, 0), d.visibleSizes.LastEnd())
}

// ElementData returns the position and size of the element at index in CSS
// pixels, or in device pixels if useDevicePixels is set. Indices outside the
// dimension are clamped. It returns false if no geometry has been loaded.
func (d *SheetDimension) ElementData(index int, useDevicePixels bool) (ElementData, bool) {
	u := unit.CSSPixels
	if useDevicePixels {
		u = unit.DevicePixels
	}
	return d.ElementDataInUnit(index, u)
}

// ElementDataInUnit is like ElementData for any unit.
func (d *SheetDimension) ElementDataInUnit(index int, u unit.Unit) (ElementData, bool) {
	if !d.ready() {
		return ElementData{}, false
	}
	index = d.clampIndex(index)
	sp, ok := d.visibleSizes.SpanDataByIndex(index)
	if !ok {
		return ElementData{}, false
	}
	return d.elementDataFromSpan(index, sp, u)
}

// elementDataFromSpan computes the data of element index of sp. Elements of
// a span share their size; the start position is found by walking back from
// the cached end position of the span.
func (d *SheetDimension) elementDataFromSpan(
	index int,
	sp span.SpanData[int, PositionData],
	u unit.Unit,
) (ElementData, bool) {
	if !sp.HasData || index < sp.Start || sp.End < index {
		return ElementData{}, false
	}

	pos := sp.Data
	numSizes := sp.End - index + 1
	startDevPx := pos.PosDevPx - pos.SizeDev*numSizes

	switch u {
	case unit.CSSPixels, unit.DevicePixels:
		pixelScale := d.devPixelsPerCSSPixel
		if u == unit.DevicePixels {
			pixelScale = 1
		}
		return ElementData{
			StartPos: float64(startDevPx) / pixelScale,
			Size:     float64(pos.SizeDev) / pixelScale,
		}, true
	case unit.PrintTwips:
		return ElementData{
			StartPos: float64(pos.PosPrintTwips - sp.Size*numSizes),
			Size:     float64(sp.Size),
		}, true
	case unit.TileTwips:
		// Derived from device pixels to mirror the document engine.
		twipsPerDevPixel := d.twipsPerCSSPixel / d.devPixelsPerCSSPixel
		return ElementData{
			StartPos: math.Floor(float64(startDevPx) * twipsPerDevPixel),
			Size:     math.Floor(float64(pos.SizeDev) * twipsPerDevPixel),
		}, true
	default:
		d.logger.Error("unsupported unit", "unit", u)
		return ElementData{}, false
	}
}

// ForEachInRange calls cb for every element in the inclusive range
// [start, end] with its data in CSS pixels. The range is clamped to the
// dimension.
func (d *SheetDimension) ForEachInRange(start, end int, cb func(index int, data ElementData)) {
	if !d.ready() || cb == nil || start > end {
		return
	}
	start, end = d.clampIndex(start), d.clampIndex(end)
	d.visibleSizes.ForEachSpanInRange(start, end, func(sp span.SpanData[int, PositionData]) {
		first := max(sp.Start, start)
		last := min(sp.End, end)
		for index := first; index <= last; index++ {
			data, _ := d.elementDataFromSpan(index, sp, unit.CSSPixels)
			cb(index, data)
		}
	})
}

func tileTwipsField(p PositionData) float64  { return float64(p.PosTileTwips) }
func printTwipsField(p PositionData) float64 { return float64(p.PosPrintTwips) }

// IndexFromTileTwipsPos returns the index of the element at pos. Positions
// outside the dimension give 0 or the max index.
func (d *SheetDimension) IndexFromTileTwipsPos(pos float64) int {
	if !d.ready() {
		return 0
	}
	sp, ok := d.visibleSizes.SpanDataByCustomDataField(math.Floor(pos), tileTwipsField)
	if !ok {
		// enforce limits.
		if pos >= 0 {
			return d.maxIndex
		}
		return 0
	}

	count := sp.Len()
	posStart := float64(sp.Data.PosDevPx-sp.Data.SizeDev*count) /
		d.devPixelsPerCSSPixel * d.twipsPerCSSPixel
	posEnd := float64(sp.Data.PosTileTwips)
	sizeOne := (posEnd - posStart) / float64(count)
	if sizeOne <= 0 {
		return sp.Start
	}

	// Always round down, element boundaries belong to the next element.
	relative := int(math.Floor((pos - posStart) / sizeOne))
	return sp.Start + min(max(relative, 0), count-1)
}

// spanAndIndexFromPrintTwipsPos returns the index of the element at pos in
// print twips together with its span.
func (d *SheetDimension) spanAndIndexFromPrintTwipsPos(pos float64) (int, span.SpanData[int, PositionData], bool) {
	sp, ok := d.visibleSizes.SpanDataByCustomDataField(math.Floor(pos), printTwipsField)
	if !ok {
		// enforce limits.
		index := 0
		if pos >= 0 {
			index = d.clampIndex(d.maxIndex)
		}
		sp, ok = d.visibleSizes.SpanDataByIndex(index)
		return index, sp, ok
	}

	count := sp.Len()
	if sp.Size <= 0 {
		return sp.Start, sp, true
	}
	posStart := float64(sp.Data.PosPrintTwips - sp.Size*count)
	relative := int(math.Floor((pos - posStart) / float64(sp.Size)))
	return sp.Start + min(max(relative, 0), count-1), sp, true
}

// SetViewLimits sets the visible element range from a window given in tile
// twips.
func (d *SheetDimension) SetViewLimits(startPosTileTwips, endPosTileTwips float64) {
	d.viewStartTileTwips = startPosTileTwips
	d.viewEndTileTwips = endPosTileTwips
	d.hasViewLimits = true
	d.updateViewIndices()
}

func (d *SheetDimension) updateViewIndices() {
	if !d.hasViewLimits {
		return
	}
	d.viewStartIndex = max(0, d.IndexFromTileTwipsPos(d.viewStartTileTwips))
	d.viewEndIndex = min(d.maxIndex, d.IndexFromTileTwipsPos(d.viewEndTileTwips))
}

// ViewElementRange returns the visible element range.
func (d *SheetDimension) ViewElementRange() Range {
	return Range{Start: d.viewStartIndex, End: d.viewEndIndex}
}

// TileTwipsRangeFromPrint converts a range given in print twips to tile
// twips, aligned to the elements containing its ends.
func (d *SheetDimension) TileTwipsRangeFromPrint(startPT, endPT float64) (TwipsRange, bool) {
	if !d.ready() {
		return TwipsRange{}, false
	}
	startIndex, startSpan, ok := d.spanAndIndexFromPrintTwipsPos(startPT)
	if !ok {
		return TwipsRange{}, false
	}
	startData, ok := d.elementDataFromSpan(startIndex, startSpan, unit.TileTwips)
	if !ok {
		return TwipsRange{}, false
	}

	if startPT == endPT {
		// The range is hidden. Like the document engine, report it one
		// device pixel wide so that it is still drawn.
		rangeSize := math.Floor(d.twipsPerCSSPixel / d.devPixelsPerCSSPixel)
		return TwipsRange{
			StartPos: startData.StartPos,
			EndPos:   startData.StartPos + rangeSize,
		}, true
	}

	endIndex, endSpan, ok := d.spanAndIndexFromPrintTwipsPos(endPT)
	if !ok {
		return TwipsRange{}, false
	}
	endData, ok := d.elementDataFromSpan(endIndex, endSpan, unit.TileTwips)
	if !ok {
		return TwipsRange{}, false
	}

	startPos := startData.StartPos
	endPos := max(endData.StartPos+endData.Size, startPos)
	return TwipsRange{StartPos: startPos, EndPos: endPos}, true
}

// GroupLevels returns the number of outline levels.
func (d *SheetDimension) GroupLevels() int {
	return d.outlines.Levels()
}

// ForEachGroupInRange calls cb for every outline group intersecting
// [start, end], innermost level first.
func (d *SheetDimension) ForEachGroupInRange(start, end int, cb func(level, index, start, end int, hidden bool)) {
	d.outlines.ForEachGroupInRange(start, end, cb)
}

// GroupsDataInView returns the outline groups intersecting the view range.
func (d *SheetDimension) GroupsDataInView() []GroupData {
	groups := []GroupData{}
	if d.outlines.Levels() == 0 || !d.ready() {
		return groups
	}

	d.outlines.ForEachGroupInRange(d.viewStartIndex, d.viewEndIndex,
		func(level, index, start, end int, hidden bool) {
			startData, _ := d.ElementData(start, true)
			endData, _ := d.ElementData(end, true)
			hiddenFlag := "0"
			if hidden {
				hiddenFlag = "1"
			}
			groups = append(groups, GroupData{
				Level:    strconv.Itoa(level + 1),
				Index:    strconv.Itoa(index),
				StartPos: formatPos(startData.StartPos),
				EndPos:   formatPos(endData.StartPos + endData.Size),
				Hidden:   hiddenFlag,
			})
		})
	return groups
}

func formatPos(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HiddenInRange returns a bitmap of the hidden or filtered elements in
// [start, end]; bit i stands for element start+i. The range is clamped to
// the dimension. It returns nil if no geometry has been loaded.
func (d *SheetDimension) HiddenInRange(start, end int) *utils.BitSet {
	if d.invisible == nil || d.visibleSizes == nil || start > end {
		return nil
	}
	start, end = d.clampIndex(start), d.clampIndex(end)
	return d.invisible.Bits(start, end)
}

// VisibleSpans returns the spans of the sizes with hidden and filtered
// elements set to zero.
func (d *SheetDimension) VisibleSpans() []span.Span[int] {
	if d.visibleSizes == nil {
		return nil
	}
	return d.visibleSizes.Spans()
}
