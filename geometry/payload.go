package geometry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/hnimtadd/sheetgeom/geometry/dimension"
)

// CommandName identifies sheet geometry messages.
const CommandName = ".uno:SheetGeometryData"

var (
	ErrWrongCommand    = errors.New("wrong command name")
	ErrBadMaxIndex     = errors.New("missing or unreadable max index")
	ErrIncomplete      = errors.New("incomplete sheet geometry")
	ErrInvalidArgument = errors.New("invalid argument")
)

var decimal = regexp.MustCompile(`^\d+$`)

// Payload is a decoded sheet geometry message. Columns and Rows are absent
// in updates that do not touch them.
type Payload struct {
	CommandName    string             `json:"commandName"`
	MaxTiledColumn *string            `json:"maxtiledcolumn,omitempty"`
	MaxTiledRow    *string            `json:"maxtiledrow,omitempty"`
	Columns        *dimension.Payload `json:"columns,omitempty"`
	Rows           *dimension.Payload `json:"rows,omitempty"`
}

func parseMaxIndex(name string, v *string) (int, error) {
	if v == nil || !decimal.MatchString(*v) {
		return 0, fmt.Errorf("%w: %s", ErrBadMaxIndex, name)
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrBadMaxIndex, name, err)
	}
	return n, nil
}

// validate checks the structure of p and returns the max column and row
// indices. A complete payload must carry non-empty sizes, hidden and
// filtered for both axes.
func (p *Payload) validate(checkCompleteness bool) (maxColumn, maxRow int, err error) {
	if p == nil {
		return 0, 0, fmt.Errorf("%w: nil payload", ErrInvalidArgument)
	}
	if p.CommandName != CommandName {
		return 0, 0, fmt.Errorf("%w: got %q, expected %q",
			ErrWrongCommand, p.CommandName, CommandName)
	}
	if maxColumn, err = parseMaxIndex("maxtiledcolumn", p.MaxTiledColumn); err != nil {
		return 0, 0, err
	}
	if maxRow, err = parseMaxIndex("maxtiledrow", p.MaxTiledRow); err != nil {
		return 0, 0, err
	}

	if !checkCompleteness {
		return maxColumn, maxRow, nil
	}
	if p.Columns == nil || p.Rows == nil {
		return 0, 0, fmt.Errorf("%w: rows and columns are required", ErrIncomplete)
	}
	if missing, ok := p.Columns.Complete(); !ok {
		return 0, 0, fmt.Errorf("%w: invalid value for columns.%s", ErrIncomplete, missing)
	}
	if missing, ok := p.Rows.Complete(); !ok {
		return 0, 0, fmt.Errorf("%w: invalid value for rows.%s", ErrIncomplete, missing)
	}
	return maxColumn, maxRow, nil
}
