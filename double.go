package conjure

import (
	"bytes"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// Double is a 64-bit float whose wire form spells non-finite values as
// "NaN", "Infinity" and "-Infinity".
type Double float64

// Equal reports whether d and o are the same value. Unlike ==, NaN equals
// NaN.
func (d Double) Equal(o Double) bool {
	if math.IsNaN(float64(d)) {
		return math.IsNaN(float64(o))
	}
	return d == o
}

// Compare orders doubles totally: NaN sorts after +Inf and -0 equals +0.
func (d Double) Compare(o Double) int {
	dn, on := math.IsNaN(float64(d)), math.IsNaN(float64(o))
	switch {
	case dn && on:
		return 0
	case dn:
		return 1
	case on:
		return -1
	case d < o:
		return -1
	case d > o:
		return 1
	}
	return 0
}

func (d Double) String() string {
	f := float64(d)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (d Double) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Double) UnmarshalText(data []byte) error {
	switch string(data) {
	case "NaN":
		*d = Double(math.NaN())
		return nil
	case "Infinity":
		*d = Double(math.Inf(1))
		return nil
	case "-Infinity":
		*d = Double(math.Inf(-1))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errors.Wrapf(err, "invalid double %q", data)
	}
	*d = Double(f)
	return nil
}

func (d Double) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(`"` + d.String() + `"`), nil
	}
	return json.Marshal(f)
}

func (d *Double) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN", "Infinity", "-Infinity":
			return d.UnmarshalText([]byte(s))
		}
		return errors.Newf("invalid double %s", data)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "invalid double %s", data)
	}
	*d = Double(f)
	return nil
}
