// Package span implements run-length encoded mappings from a dense index
// range to values.
package span

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/hnimtadd/sheetgeom/geometry/search"
)

// Number is the set of value kinds a SpanList can hold.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// Span is a run of consecutive indices sharing one value. End is the
// inclusive last index of the run; the run starts right after the
// previous span's End, or at 0.
type Span[V Number] struct {
	End   int
	Value V
}

// SpanData describes one span of a SpanList together with its custom data.
type SpanData[V Number, D any] struct {
	Start int
	End   int
	Size  V

	// Data is the custom data attached by AddCustomDataForEachSpan. HasData
	// is false if none was attached.
	Data    D
	HasData bool
}

// Len returns the number of indices covered by the span.
func (s SpanData[V, D]) Len() int {
	return s.End - s.Start + 1
}

// SpanList maps the index range [0, LastEnd()] to values of kind V, one
// Span per run. Per span custom data of kind D can be attached afterwards;
// it is kept in a slice parallel to the spans.
type SpanList[V Number, D any] struct {
	spans []Span[V]
	data  []D
}

// NewSpanList creates a span list from spans, which must have
// non-decreasing ends.
func NewSpanList[V Number, D any](spans ...Span[V]) *SpanList[V, D] {
	return &SpanList[V, D]{spans: spans}
}

// Load replaces the content with the "value:end ... count" encoding. On
// failure the list is left untouched.
func (s *SpanList[V, D]) Load(encoding string) error {
	tokens, err := splitEncoding(encoding)
	if err != nil {
		return err
	}

	spans := make([]Span[V], 0, len(tokens))
	prev := 0
	for _, tok := range tokens {
		value, end, err := parsePair(tok)
		if err != nil {
			return err
		}
		if err := checkEnd(prev, end); err != nil {
			return err
		}
		prev = end
		spans = append(spans, Span[V]{End: end, Value: V(value)})
	}

	s.spans = spans
	s.data = nil
	return nil
}

// String encodes the list in the format accepted by Load.
func (s *SpanList[V, D]) String() string {
	var b strings.Builder
	for _, sp := range s.spans {
		b.WriteString(formatValue(sp.Value))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(sp.End))
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(len(s.spans)))
	return b.String()
}

func formatValue[V Number](v V) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// Len returns the number of spans.
func (s *SpanList[V, D]) Len() int {
	return len(s.spans)
}

// LastEnd returns the last index covered by the list, or -1 if empty.
func (s *SpanList[V, D]) LastEnd() int {
	if len(s.spans) == 0 {
		return -1
	}
	return s.spans[len(s.spans)-1].End
}

// Spans returns a copy of the spans.
func (s *SpanList[V, D]) Spans() []Span[V] {
	out := make([]Span[V], len(s.spans))
	copy(out, s.spans)
	return out
}

// AddCustomDataForEachSpan attaches f(end, value, spanLength) to every span,
// folding over the spans in order. spanLength is the number of indices in
// the span.
func (s *SpanList[V, D]) AddCustomDataForEachSpan(f func(end int, value V, spanLength int) D) {
	data := make([]D, len(s.spans))
	prevEnd := -1
	for i, sp := range s.spans {
		data[i] = f(sp.End, sp.Value, sp.End-prevEnd)
		prevEnd = sp.End
	}
	s.data = data
}

func (s *SpanList[V, D]) hasData() bool {
	return len(s.spans) > 0 && len(s.data) == len(s.spans)
}

// SpanDataByIndex returns the span containing index.
func (s *SpanList[V, D]) SpanDataByIndex(index int) (SpanData[V, D], bool) {
	id := s.searchByIndex(index)
	if id == -1 {
		return SpanData[V, D]{}, false
	}
	return s.spanData(id), true
}

// SpanDataByCustomDataField returns the first span whose custom data range
// contains value. field selects a numeric field of the custom data that
// starts from 0 at the first span and never decreases, e.g. a cumulative
// position.
func (s *SpanList[V, D]) SpanDataByCustomDataField(value float64, field func(D) float64) (SpanData[V, D], bool) {
	if field == nil || !s.hasData() {
		return SpanData[V, D]{}, false
	}
	id := search.BinarySearch(s.data, value,
		func(v float64, prev, cur, next *D) int {
			valueStart := 0.0
			if prev != nil {
				valueStart = field(*prev)
			}
			valueEnd := field(*cur)
			if next != nil {
				valueEnd--
			}
			switch {
			case v < valueStart:
				return -1
			case valueEnd < v:
				return 1
			default:
				return 0
			}
		},
		// Zero sized spans repeat the previous position.
		true,
	)
	if id == -1 {
		return SpanData[V, D]{}, false
	}
	return s.spanData(id), true
}

// All iterates over every span in order.
func (s *SpanList[V, D]) All() iter.Seq[SpanData[V, D]] {
	return func(yield func(SpanData[V, D]) bool) {
		for id := range s.spans {
			if !yield(s.spanData(id)) {
				return
			}
		}
	}
}

// ForEachSpanInRange calls cb for every span intersecting [start, end], in
// ascending order.
func (s *SpanList[V, D]) ForEachSpanInRange(start, end int, cb func(SpanData[V, D])) {
	if start > end || cb == nil {
		return
	}
	startID := s.searchByIndex(start)
	endID := s.searchByIndex(end)
	if startID == -1 || endID == -1 {
		return
	}
	for id := startID; id <= endID; id++ {
		cb(s.spanData(id))
	}
}

// ApplyZeroValues returns a copy of s where every index set in mask has
// value 0. Both lists must cover the same range; callers keep the sizes and
// the masks in sync by deriving them from the same payload.
//
// Runs in O(len(s) + len(mask)).
func (s *SpanList[V, D]) ApplyZeroValues(mask *BoolSpanList) (*SpanList[V, D], error) {
	if len(s.spans) == 0 || mask == nil || len(mask.ends) == 0 {
		return nil, ErrEmpty
	}
	maxElement := s.LastEnd()
	if maxElement != mask.LastEnd() {
		return nil, fmt.Errorf("%w: %d != %d", ErrRangeMismatch, maxElement, mask.LastEnd())
	}

	result := &SpanList[V, D]{spans: make([]Span[V], 0, len(s.spans))}

	thisIdx, otherIdx := 0, 0
	zero := mask.startBit
	valueAt := func(i int) V {
		if zero {
			return 0
		}
		return s.spans[i].Value
	}
	resultValue := valueAt(0)

	for thisIdx < len(s.spans) && otherIdx < len(mask.ends) {
		// end elements of the current runs of both lists.
		thisEnd := s.spans[thisIdx].End
		otherEnd := mask.ends[otherIdx]

		last := otherEnd
		switch {
		case thisEnd < otherEnd:
			last = thisEnd
			thisIdx++
		case otherEnd < thisEnd:
			zero = !zero
			otherIdx++
		default:
			zero = !zero
			thisIdx++
			otherIdx++
		}

		next := resultValue
		if thisIdx < len(s.spans) {
			next = valueAt(thisIdx)
		}

		// A new run starts at last+1, or the range is exhausted.
		if resultValue != next || last >= maxElement {
			result.spans = append(result.spans, Span[V]{End: last, Value: resultValue})
			resultValue = next
		}
	}

	return result, nil
}

func (s *SpanList[V, D]) spanData(id int) SpanData[V, D] {
	sp := s.spans[id]
	out := SpanData[V, D]{
		End:  sp.End,
		Size: sp.Value,
	}
	if id > 0 {
		out.Start = s.spans[id-1].End + 1
	}
	if s.hasData() {
		out.Data = s.data[id]
		out.HasData = true
	}
	return out
}

func (s *SpanList[V, D]) searchByIndex(index int) int {
	return search.BinarySearch(s.spans, index,
		func(index int, prev, cur, _ *Span[V]) int {
			var prevEnd *int
			if prev != nil {
				prevEnd = &prev.End
			}
			return spanEndDirection(index, prevEnd, &cur.End)
		},
		true,
	)
}
