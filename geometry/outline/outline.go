// Package outline holds the collapsible group levels of one sheet
// dimension.
package outline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hnimtadd/sheetgeom/geometry/search"
)

// ErrMalformedEncoding is returned when an outline encoding cannot be
// parsed.
var ErrMalformedEncoding = errors.New("malformed outline encoding")

// Group is a collapsible range of rows or columns at one outline level.
type Group struct {
	Start int
	End   int // inclusive
	// Hidden is set when the group is collapsed.
	Hidden bool
	// Visible is the visibility flag sent by the document engine.
	Visible int
}

// DimensionOutlines holds the groups of every outline level, outermost
// level first. Groups within one level are sorted and do not overlap.
type DimensionOutlines struct {
	levels [][]Group
}

// Load replaces the outlines with the given encoding. Levels are separated
// by spaces and groups within a level by commas; each group is
// "start:length:hidden:visible". The last token of both lists is ignored.
// Fewer than two level tokens means there is no outline.
//
// On failure the outlines are left untouched.
func (o *DimensionOutlines) Load(encoding string) error {
	tokens := strings.Fields(encoding)
	if len(tokens) < 2 {
		o.levels = nil
		return nil
	}

	levels := make([][]Group, 0, len(tokens)-1)
	for levelIdx, levelToken := range tokens[:len(tokens)-1] {
		entries := strings.Split(levelToken, ",")
		if len(entries) < 2 {
			return fmt.Errorf("%w: level %d has no groups", ErrMalformedEncoding, levelIdx)
		}

		groups := make([]Group, 0, len(entries)-1)
		for _, entry := range entries[:len(entries)-1] {
			group, err := parseGroup(entry)
			if err != nil {
				return fmt.Errorf("level %d: %w", levelIdx, err)
			}
			groups = append(groups, group)
		}
		levels = append(levels, groups)
	}

	o.levels = levels
	return nil
}

func parseGroup(entry string) (Group, error) {
	fields := strings.Split(entry, ":")
	if len(fields) < 4 {
		return Group{}, fmt.Errorf("%w: group %q needs 4 fields", ErrMalformedEncoding, entry)
	}
	var values [4]int
	for i := range values {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return Group{}, fmt.Errorf("%w: group %q: %v", ErrMalformedEncoding, entry, err)
		}
		values[i] = v
	}
	start, length := values[0], values[1]
	return Group{
		Start:   start,
		End:     start + length - 1,
		Hidden:  values[2] != 0,
		Visible: values[3],
	}, nil
}

// Levels returns the number of outline levels.
func (o *DimensionOutlines) Levels() int {
	return len(o.levels)
}

// Groups returns the groups of level.
func (o *DimensionOutlines) Groups(level int) []Group {
	if level < 0 || level >= len(o.levels) {
		return nil
	}
	return o.levels[level]
}

// firstGroupFrom matches the first group that contains index or starts
// after it.
func firstGroupFrom(index int, prev, cur, _ *Group) int {
	switch {
	case cur.End < index:
		return 1
	case cur.Start <= index:
		return 0
	case prev == nil || prev.End < index:
		// index is in the gap before cur.
		return 0
	default:
		return -1
	}
}

// ForEachGroupInRange calls cb for every group intersecting the inclusive
// range [start, end]. Levels are visited from the innermost to the
// outermost one; within a level groups are visited in order.
func (o *DimensionOutlines) ForEachGroupInRange(
	start, end int,
	cb func(level, index, start, end int, hidden bool),
) {
	if cb == nil || len(o.levels) == 0 || start > end {
		return
	}

	for level := len(o.levels) - 1; level >= 0; level-- {
		groups := o.levels[level]
		first := search.BinarySearch(groups, start, firstGroupFrom, false)
		if first == -1 {
			// Every group of this level ends before start.
			continue
		}

		for idx := first; idx < len(groups); idx++ {
			g := groups[idx]
			if end < g.Start {
				break
			}
			cb(level, idx, g.Start, g.End, g.Hidden)
		}
	}
}
