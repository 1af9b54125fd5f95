package dimension

import (
	"strconv"
	"strings"

	dw "github.com/mattn/go-runewidth"
)

var dumpHeader = []string{"start", "end", "size", "sizedev", "posdevpx", "poscsspx", "postiletwips", "posprinttwips"}

// String renders the visible spans and their position cache as a table,
// one span per line.
func (d *SheetDimension) String() string {
	if d.visibleSizes == nil {
		return "<no geometry>"
	}

	rows := [][]string{dumpHeader}
	for sp := range d.visibleSizes.All() {
		row := []string{
			strconv.Itoa(sp.Start),
			strconv.Itoa(sp.End),
			strconv.Itoa(sp.Size),
			"-", "-", "-", "-", "-",
		}
		if sp.HasData {
			row[3] = strconv.Itoa(sp.Data.SizeDev)
			row[4] = strconv.Itoa(sp.Data.PosDevPx)
			row[5] = formatPos(sp.Data.PosCSSPx)
			row[6] = strconv.Itoa(sp.Data.PosTileTwips)
			row[7] = strconv.Itoa(sp.Data.PosPrintTwips)
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(dumpHeader))
	for _, row := range rows {
		for col, cell := range row {
			widths[col] = max(widths[col], dw.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for col, cell := range row {
			if col > 0 {
				b.WriteString("  ")
			}
			b.WriteString(dw.FillLeft(cell, widths[col]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
