package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedHeader reports a line that FormatOp could not have produced.
var ErrMalformedHeader = errors.New("ir: malformed operation header")

// Header is the structural part of a rendered operation line.
type Header struct {
	Result    uint32
	HasResult bool
	Name      string
	Operands  []uint32
}

// ParseHeader recovers result, name and operand identities from a line
// rendered by FormatOp. Leading indentation is ignored and attributes are
// skipped.
func ParseHeader(line string) (Header, error) {
	var h Header
	rest := strings.TrimSpace(line)
	if rest == "" {
		return h, fmt.Errorf("%w: empty line", ErrMalformedHeader)
	}

	if strings.HasPrefix(rest, "%") {
		lhs, rhs, ok := strings.Cut(rest, " := ")
		if !ok {
			return h, fmt.Errorf("%w: %q: result without ':='", ErrMalformedHeader, line)
		}
		id, err := parseValueRef(lhs)
		if err != nil {
			return h, fmt.Errorf("%w: %q: %w", ErrMalformedHeader, line, err)
		}
		h.Result, h.HasResult = id, true
		rest = rhs
	}

	name, args, _ := strings.Cut(rest, " ")
	if name == "" || strings.HasPrefix(name, "{") {
		return h, fmt.Errorf("%w: %q: missing name", ErrMalformedHeader, line)
	}
	h.Name = name

	if i := strings.IndexByte(args, '{'); i >= 0 {
		args = args[:i]
	}
	args = strings.TrimSpace(args)
	if args == "" {
		return h, nil
	}
	for _, ref := range strings.Split(args, ",") {
		id, err := parseValueRef(strings.TrimSpace(ref))
		if err != nil {
			return h, fmt.Errorf("%w: %q: %w", ErrMalformedHeader, line, err)
		}
		h.Operands = append(h.Operands, id)
	}
	return h, nil
}

func parseValueRef(s string) (uint32, error) {
	digits, ok := strings.CutPrefix(s, "%")
	if !ok {
		return 0, fmt.Errorf("value reference %q must start with %%", s)
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("value reference %q: %w", s, err)
	}
	return uint32(n), nil
}
