package index

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax is returned for malformed label strings and equations.
var ErrSyntax = errors.New("index: syntax error")

// Parse splits a compact label string such as "ijk" into one label per letter.
// Whitespace is ignored and the empty string yields a scalar (rank-0) tuple.
func Parse(s string) (Labels, error) {
	out := Labels{}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case unicode.IsLetter(r):
			out = append(out, Label(string(r)))
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, r, s)
		}
	}
	return out, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Labels {
	ls, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ls
}

// ParseEquation parses a two-operand contraction in either of the forms
//
//	"ik=ij,jk"   (output first)
//	"ij,jk->ik"  (output last)
//
// and returns the C, A and B tuples.
func ParseEquation(eq string) (c, a, b Labels, err error) {
	var out, in string
	switch {
	case strings.Contains(eq, "->"):
		parts := strings.Split(eq, "->")
		if len(parts) != 2 {
			return nil, nil, nil, fmt.Errorf("%w: more than one \"->\" in %q", ErrSyntax, eq)
		}
		in, out = parts[0], parts[1]
	case strings.Contains(eq, "="):
		parts := strings.Split(eq, "=")
		if len(parts) != 2 {
			return nil, nil, nil, fmt.Errorf("%w: more than one \"=\" in %q", ErrSyntax, eq)
		}
		out, in = parts[0], parts[1]
	default:
		return nil, nil, nil, fmt.Errorf("%w: missing output in %q", ErrSyntax, eq)
	}

	operands := strings.Split(in, ",")
	if len(operands) != 2 {
		return nil, nil, nil, fmt.Errorf("%w: expected two operands in %q, got %d", ErrSyntax, eq, len(operands))
	}

	if c, err = Parse(out); err != nil {
		return nil, nil, nil, err
	}
	if a, err = Parse(operands[0]); err != nil {
		return nil, nil, nil, err
	}
	if b, err = Parse(operands[1]); err != nil {
		return nil, nil, nil, err
	}
	return c, a, b, nil
}

// Key returns a stable string identifying a (C, A, B) triple of tuples.
func Key(c, a, b Labels) string {
	var sb strings.Builder
	for i, ls := range []Labels{c, a, b} {
		if i > 0 {
			sb.WriteByte('|')
		}
		for j, l := range ls {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(string(l))
		}
	}
	return sb.String()
}
