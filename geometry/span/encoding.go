package span

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedEncoding is returned when a span list text encoding
	// cannot be parsed.
	ErrMalformedEncoding = errors.New("malformed span list encoding")

	// ErrRangeMismatch is returned when two span lists that are merged do
	// not cover the same total range.
	ErrRangeMismatch = errors.New("span lists cover different ranges")

	// ErrEmpty is returned when an operation needs a loaded span list.
	ErrEmpty = errors.New("span list is empty")
)

// splitEncoding splits a run-length encoding into its entry tokens. The
// trailing token holds the number of spans; it is only checked for
// presence.
func splitEncoding(encoding string) ([]string, error) {
	tokens := strings.Fields(encoding)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 tokens, got %d",
			ErrMalformedEncoding, len(tokens))
	}
	return tokens[:len(tokens)-1], nil
}

// parsePair parses a "left:right" token of two integers.
func parsePair(token string) (int, int, error) {
	left, right, ok := strings.Cut(token, ":")
	if !ok || strings.Contains(right, ":") {
		return 0, 0, fmt.Errorf("%w: %q is not a pair", ErrMalformedEncoding, token)
	}
	l, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedEncoding, token, err)
	}
	r, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedEncoding, token, err)
	}
	return l, r, nil
}

func parseEnd(token string) (int, error) {
	end, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedEncoding, token, err)
	}
	return end, nil
}

// checkEnd verifies that ends are non-negative and never decrease. Equal
// ends describe zero length spans, which are legal.
func checkEnd(prev, end int) error {
	if end < 0 || end < prev {
		return fmt.Errorf("%w: span end %d after %d", ErrMalformedEncoding, end, prev)
	}
	return nil
}

// spanEndDirection matches the run whose inclusive range
// [prev end + 1, cur end] contains index.
func spanEndDirection(index int, prevEnd, curEnd *int) int {
	start := 0
	if prevEnd != nil {
		start = *prevEnd + 1
	}
	switch {
	case index < start:
		return -1
	case *curEnd < index:
		return 1
	default:
		return 0
	}
}
