package unit

// The unit a position or size is expressed in. The same element of a sheet
// dimension has a different start position in each of them:
//   - CSS pixels and device pixels are what the browser lays out.
//   - Tile twips are twips rounded to device pixel boundaries, so that tiles
//     rendered by the document engine line up with cell edges.
//   - Print twips are the unrounded document positions. They do not change
//     with zoom.
type Unit int

const (
	CSSPixels Unit = iota
	DevicePixels
	TileTwips
	PrintTwips
)

func (u Unit) String() string {
	switch u {
	case CSSPixels:
		return "csspixels"
	case DevicePixels:
		return "devpixels"
	case TileTwips:
		return "tiletwips"
	case PrintTwips:
		return "printtwips"
	default:
		return "unknown"
	}
}

// IsPixels reports whether u is one of the pixel units.
func (u Unit) IsPixels() bool {
	return u == CSSPixels || u == DevicePixels
}

// Parse returns the unit with the given name.
func Parse(name string) (Unit, bool) {
	for _, u := range []Unit{CSSPixels, DevicePixels, TileTwips, PrintTwips} {
		if u.String() == name {
			return u, true
		}
	}
	return 0, false
}
