// Package bytesize parses human-readable size literals such as "64MiB".
package bytesize

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// ErrInvalidSize marks malformed size literals.
var ErrInvalidSize = errors.New("invalid size")

var units = map[string]bool{
	"": true, "b": true,
	"k": true, "kb": true, "ki": true, "kib": true,
	"m": true, "mb": true, "mi": true, "mib": true,
	"g": true, "gb": true, "gi": true, "gib": true,
	"t": true, "tb": true, "ti": true, "tib": true,
}

// Parse returns the number of bytes in s, a number followed by an optional
// unit. Units are case-insensitive; k, m, g and t (with or without a
// trailing b) are powers of 1000, ki, mi, gi and ti (with or without a
// trailing b) are powers of 1024.
func Parse(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	i := strings.IndexFunc(trimmed, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := trimmed, ""
	if i >= 0 {
		number, unit = trimmed[:i], strings.ToLower(strings.TrimSpace(trimmed[i:]))
	}
	if number == "" || strings.Count(number, ".") > 1 {
		return 0, errors.Mark(errors.Newf("size %q has no number", s), ErrInvalidSize)
	}
	if !units[unit] {
		return 0, errors.Mark(errors.Newf("size %q has unknown unit %q", s, unit), ErrInvalidSize)
	}
	n, err := humanize.ParseBytes(number + unit)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "parse size %q", s), ErrInvalidSize)
	}
	if n > math.MaxInt64 {
		return 0, errors.Mark(errors.Newf("size %q overflows", s), ErrInvalidSize)
	}
	return int64(n), nil
}

// Format renders n bytes in binary units, e.g. "64 MiB".
func Format(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
