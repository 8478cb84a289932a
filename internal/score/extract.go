// Package score scrapes a numeric score from a program's captured output.
package score

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMarker is the literal that precedes the score in program output.
const DefaultMarker = "Accuracy:"

var (
	// ErrMissing means the output contains no marker. The repository is
	// excluded from the leaderboard; this is not a pipeline failure.
	ErrMissing = errors.New("score marker not found")

	// ErrMalformed means the marker was found but the following token is not
	// a floating-point numeral.
	ErrMalformed = errors.New("malformed score")
)

// Extract finds the first occurrence of marker in output, skips any
// whitespace after it and parses the next whitespace-delimited token as a
// float64. The token must consist only of numeral characters.
func Extract(output, marker string) (float64, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	idx := strings.Index(output, marker)
	if idx < 0 {
		return 0, ErrMissing
	}
	rest := strings.TrimLeftFunc(output[idx+len(marker):], unicode.IsSpace)

	token := rest
	if end := strings.IndexFunc(rest, unicode.IsSpace); end >= 0 {
		token = rest[:end]
	}
	if token == "" {
		return 0, fmt.Errorf("%w: nothing follows %q", ErrMalformed, marker)
	}

	numeral := numeralPrefix(token)
	if numeral != token {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, token)
	}

	v, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
	}
	return v, nil
}

// numeralPrefix returns the maximal leading run of characters that may
// appear in a decimal floating-point literal.
func numeralPrefix(s string) string {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isNumeralRune(r) {
			break
		}
		i += size
	}
	return s[:i]
}

func isNumeralRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		return true
	}
	return false
}
