package sheetgeom

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/hnimtadd/sheetgeom/geometry"
	"github.com/hnimtadd/sheetgeom/geometry/coordinate"
	"github.com/hnimtadd/sheetgeom/logger"
)

// Default tile: 256 CSS pixels of 15 twips.
const (
	DefaultTileSizeTwips     = 3840
	DefaultTileSizeCSSPixels = 256
)

type SheetView struct {
	// The sheet geometry. It is created by the first message, which must
	// carry the full geometry; later messages update it in place.
	geometry *geometry.SheetGeometry

	// The zoom state. It is kept here so it can be applied to a geometry
	// that arrives after the zoom was set.
	tile geometry.TileGeometry

	logger logger.Logger
}

type Options struct {
	TileWidthTwips    int
	TileHeightTwips   int
	TileSizeCSSPixels int
	DPIScale          float64
	Logger            logger.Logger
}

// NewSheetView creates a view without geometry. Zero options take the
// default tile size and a device pixel ratio of 1.
func NewSheetView(opts Options) *SheetView {
	tile := geometry.TileGeometry{
		TileWidthTwips:    opts.TileWidthTwips,
		TileHeightTwips:   opts.TileHeightTwips,
		TileSizeCSSPixels: opts.TileSizeCSSPixels,
		DPIScale:          opts.DPIScale,
	}
	if tile.TileWidthTwips == 0 {
		tile.TileWidthTwips = DefaultTileSizeTwips
	}
	if tile.TileHeightTwips == 0 {
		tile.TileHeightTwips = DefaultTileSizeTwips
	}
	if tile.TileSizeCSSPixels == 0 {
		tile.TileSizeCSSPixels = DefaultTileSizeCSSPixels
	}
	if tile.DPIScale == 0 {
		tile.DPIScale = 1
	}
	return &SheetView{
		tile:   tile,
		logger: logger.OrDiscard(opts.Logger),
	}
}

// ProcessMessage decodes a sheet geometry message and applies it.
func (v *SheetView) ProcessMessage(buf []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("panic in ProcessMessage", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic in ProcessMessage: %v", r)
		}
	}()

	var p geometry.Payload
	if err := json.Unmarshal(buf, &p); err != nil {
		v.logger.Error("undecodable sheet geometry message", "error", err)
		return fmt.Errorf("decode sheet geometry: %w", err)
	}
	return v.Apply(&p)
}

// Apply applies a decoded message. The first one creates the geometry.
func (v *SheetView) Apply(p *geometry.Payload) error {
	if v.geometry == nil {
		g, err := geometry.New(p, geometry.Options{
			TileGeometry: v.tile,
			Logger:       v.logger,
		})
		if err != nil {
			return err
		}
		v.geometry = g
		v.logger.Info("sheet geometry loaded",
			"maxcolumn", g.Columns().MaxIndex(), "maxrow", g.Rows().MaxIndex())
		return nil
	}
	return v.geometry.Update(p, false)
}

// SetZoom changes the tile geometry and recomputes positions if it
// differs from the current one.
func (v *SheetView) SetZoom(tileWidthTwips, tileHeightTwips, tileSizeCSSPixels int, dpiScale float64) error {
	tile := geometry.TileGeometry{
		TileWidthTwips:    tileWidthTwips,
		TileHeightTwips:   tileHeightTwips,
		TileSizeCSSPixels: tileSizeCSSPixels,
		DPIScale:          dpiScale,
	}
	if v.geometry != nil {
		if err := v.geometry.SetTileGeometryData(tileWidthTwips, tileHeightTwips,
			tileSizeCSSPixels, dpiScale, true); err != nil {
			return err
		}
	} else if err := geometry.ValidateTileGeometry(tileWidthTwips, tileHeightTwips,
		tileSizeCSSPixels, dpiScale); err != nil {
		return err
	}
	v.tile = tile
	return nil
}

// SetViewArea sets the visible area in tile twips. It is ignored until the
// geometry is loaded.
func (v *SheetView) SetViewArea(topLeft, size coordinate.Point[float64]) error {
	if v.geometry == nil {
		v.logger.Debug("view area set before geometry was loaded")
		return nil
	}
	return v.geometry.SetViewArea(topLeft, size)
}

// Geometry returns the sheet geometry, or nil before the first message.
func (v *SheetView) Geometry() *geometry.SheetGeometry {
	return v.geometry
}

func (v *SheetView) DumpString() string {
	if v.geometry == nil {
		return "<no geometry>\n"
	}
	return "columns:\n" + v.geometry.Columns().String() +
		"rows:\n" + v.geometry.Rows().String()
}
