package span

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hnimtadd/sheetgeom/geometry/search"
	"github.com/hnimtadd/sheetgeom/geometry/utils"
)

// BoolSpanList stores alternating boolean runs over [0, LastEnd()]. Only
// run ends are kept: run i has value startBit for even i and !startBit for
// odd i.
type BoolSpanList struct {
	startBit bool
	ends     []int
}

// NewBoolSpanList creates a boolean span list whose first run has value
// startBit and whose runs end at ends.
func NewBoolSpanList(startBit bool, ends ...int) *BoolSpanList {
	return &BoolSpanList{startBit: startBit, ends: ends}
}

// Load replaces the content with the "startBit:firstEnd end1 ... count"
// encoding. On failure the list is left untouched.
func (b *BoolSpanList) Load(encoding string) error {
	tokens, err := splitEncoding(encoding)
	if err != nil {
		return err
	}

	bit, first, err := parsePair(tokens[0])
	if err != nil {
		return err
	}
	if err := checkEnd(0, first); err != nil {
		return err
	}

	ends := make([]int, 1, len(tokens))
	ends[0] = first
	for _, tok := range tokens[1:] {
		end, err := parseEnd(tok)
		if err != nil {
			return err
		}
		if err := checkEnd(ends[len(ends)-1], end); err != nil {
			return err
		}
		ends = append(ends, end)
	}

	b.startBit = bit != 0
	b.ends = ends
	return nil
}

// String encodes the list in the format accepted by Load.
func (b *BoolSpanList) String() string {
	var sb strings.Builder
	for i, end := range b.ends {
		if i == 0 {
			if b.startBit {
				sb.WriteString("1:")
			} else {
				sb.WriteString("0:")
			}
		}
		sb.WriteString(strconv.Itoa(end))
		sb.WriteByte(' ')
	}
	sb.WriteString(strconv.Itoa(len(b.ends)))
	return sb.String()
}

// StartBit returns the value of the first run.
func (b *BoolSpanList) StartBit() bool {
	return b.startBit
}

// Len returns the number of runs.
func (b *BoolSpanList) Len() int {
	return len(b.ends)
}

// LastEnd returns the last index covered by the list, or -1 if empty.
func (b *BoolSpanList) LastEnd() int {
	if len(b.ends) == 0 {
		return -1
	}
	return b.ends[len(b.ends)-1]
}

func (b *BoolSpanList) runValue(run int) bool {
	return b.startBit != (run%2 == 1)
}

func (b *BoolSpanList) searchByIndex(index int) int {
	return search.BinarySearch(b.ends, index,
		func(index int, prev, cur, _ *int) int {
			return spanEndDirection(index, prev, cur)
		},
		true,
	)
}

// IsSet reports the value at index. Indices outside the list are unset.
func (b *BoolSpanList) IsSet(index int) bool {
	run := b.searchByIndex(index)
	if run == -1 {
		return false
	}
	return b.runValue(run)
}

// Bits expands the runs intersecting [start, end] into a bitmap where bit i
// holds the value at index start+i. start and end must lie in the list.
func (b *BoolSpanList) Bits(start, end int) *utils.BitSet {
	utils.Assert(start <= end, "invalid range")
	set := utils.NewBitSet(end - start + 1)
	first := b.searchByIndex(start)
	last := b.searchByIndex(end)
	if first == -1 || last == -1 {
		return set
	}
	for run := first; run <= last; run++ {
		if !b.runValue(run) {
			continue
		}
		runStart := 0
		if run > 0 {
			runStart = b.ends[run-1] + 1
		}
		lo := max(runStart, start)
		hi := min(b.ends[run], end)
		if lo <= hi {
			set.SetRange(lo-start, hi-start)
		}
	}
	return set
}

// Union returns the logical OR of b and other, which must cover the same
// range.
//
// Runs in O(len(b) + len(other)).
func (b *BoolSpanList) Union(other *BoolSpanList) (*BoolSpanList, error) {
	if len(b.ends) == 0 || other == nil || len(other.ends) == 0 {
		return nil, ErrEmpty
	}
	maxElement := b.LastEnd()
	if maxElement != other.LastEnd() {
		return nil, fmt.Errorf("%w: %d != %d", ErrRangeMismatch, maxElement, other.LastEnd())
	}

	thisBit := b.startBit
	otherBit := other.startBit
	resultBit := thisBit || otherBit
	result := &BoolSpanList{startBit: resultBit}

	thisIdx, otherIdx := 0, 0
	for thisIdx < len(b.ends) && otherIdx < len(other.ends) {
		// end elements of the current runs of both lists.
		thisEnd := b.ends[thisIdx]
		otherEnd := other.ends[otherIdx]

		last := otherEnd
		switch {
		case thisEnd < otherEnd:
			last = thisEnd
			thisBit = !thisBit
			thisIdx++
		case otherEnd < thisEnd:
			otherBit = !otherBit
			otherIdx++
		default:
			thisBit = !thisBit
			otherBit = !otherBit
			thisIdx++
			otherIdx++
		}

		// A new run starts at last+1, or the range is exhausted.
		nextBit := thisBit || otherBit
		if resultBit != nextBit || last >= maxElement {
			result.ends = append(result.ends, last)
			resultBit = nextBit
		}
	}

	return result, nil
}
