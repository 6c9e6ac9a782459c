package conjure

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// SafeLong bounds, the integers exactly representable as IEEE 754 doubles.
const (
	MaxSafeLong = 1<<53 - 1
	MinSafeLong = -MaxSafeLong
)

// SafeLong is a 64-bit integer restricted to [MinSafeLong, MaxSafeLong].
type SafeLong int64

// SafeLongRangeError reports a value outside the safe-long range.
type SafeLongRangeError struct {
	Value string
}

func (e *SafeLongRangeError) Error() string {
	return fmt.Sprintf("safelong %s is outside [%d, %d]", e.Value, MinSafeLong, MaxSafeLong)
}

// NewSafeLong returns v as a SafeLong, or a range error.
func NewSafeLong(v int64) (SafeLong, error) {
	if v < MinSafeLong || v > MaxSafeLong {
		return 0, &SafeLongRangeError{Value: strconv.FormatInt(v, 10)}
	}
	return SafeLong(v), nil
}

// Valid reports whether s is within range.
func (s SafeLong) Valid() bool {
	return s >= MinSafeLong && s <= MaxSafeLong
}

func (s SafeLong) String() string {
	return strconv.FormatInt(int64(s), 10)
}

func (s SafeLong) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &SafeLongRangeError{Value: s.String()}
	}
	return strconv.AppendInt(nil, int64(s), 10), nil
}

func (s *SafeLong) UnmarshalText(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return &SafeLongRangeError{Value: string(data)}
		}
		return errors.Wrapf(err, "invalid safelong %q", data)
	}
	parsed, err := NewSafeLong(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s SafeLong) MarshalJSON() ([]byte, error) {
	return s.MarshalText()
}

func (s *SafeLong) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	// Integral doubles such as 1.0 and 1e3 are accepted.
	if bytes.ContainsAny(data, ".eE") {
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return errors.Wrapf(err, "invalid safelong %s", data)
		}
		if f < MinSafeLong || f > MaxSafeLong || f != math.Trunc(f) {
			return &SafeLongRangeError{Value: string(data)}
		}
		*s = SafeLong(int64(f))
		return nil
	}
	return s.UnmarshalText(data)
}
