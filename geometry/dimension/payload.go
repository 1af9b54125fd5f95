package dimension

import (
	"github.com/mitchellh/hashstructure/v2"
)

// Payload is the per-axis part of a sheet geometry message. A nil field was
// not sent and keeps its previous state.
type Payload struct {
	Sizes    *string `json:"sizes,omitempty"`
	Hidden   *string `json:"hidden,omitempty"`
	Filtered *string `json:"filtered,omitempty"`
	Groups   *string `json:"groups,omitempty"`
}

// fingerprint keeps absent and empty fields apart when hashing.
type fingerprint struct {
	Sizes, Hidden, Filtered, Groups             string
	HasSizes, HasHidden, HasFiltered, HasGroups bool
}

func field(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// Fingerprint returns a hash of the payload content. Two payloads with the
// same fingerprint leave a dimension in the same state.
func (p *Payload) Fingerprint() (uint64, error) {
	var f fingerprint
	f.Sizes, f.HasSizes = field(p.Sizes)
	f.Hidden, f.HasHidden = field(p.Hidden)
	f.Filtered, f.HasFiltered = field(p.Filtered)
	f.Groups, f.HasGroups = field(p.Groups)
	return hashstructure.Hash(f, hashstructure.FormatV2, nil)
}

// Complete reports whether sizes, hidden and filtered are all present and
// non-empty.
func (p *Payload) Complete() (missing string, ok bool) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"sizes", p.Sizes},
		{"hidden", p.Hidden},
		{"filtered", p.Filtered},
	} {
		if f.value == nil || *f.value == "" {
			return f.name, false
		}
	}
	return "", true
}
