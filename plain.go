package conjure

import (
	"encoding"
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
)

// EncodePlain renders v in the PLAIN format used for path, query and header
// parameters: strings verbatim, numbers and booleans in decimal form, and
// everything else through encoding.TextMarshaler.
func EncodePlain(v any) (string, error) {
	switch v := v.(type) {
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return Double(v).String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()).String(), nil
	}
	return "", errors.Newf("cannot encode %T as plain text", v)
}

// DecodePlain parses s in the PLAIN format into v, which must be a pointer.
func DecodePlain(s string, v any) error {
	switch v := v.(type) {
	case encoding.TextUnmarshaler:
		return v.UnmarshalText([]byte(s))
	case *string:
		*v = s
		return nil
	case *bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrapf(err, "invalid boolean %q", s)
		}
		*v = b
		return nil
	case *int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid integer %q", s)
		}
		*v = int32(n)
		return nil
	case *float64:
		var d Double
		if err := d.UnmarshalText([]byte(s)); err != nil {
			return err
		}
		*v = float64(d)
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Newf("cannot decode plain text into non-pointer %T", v)
	}
	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.String:
		elem.SetString(s)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrapf(err, "invalid boolean %q", s)
		}
		elem.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, elem.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid integer %q", s)
		}
		elem.SetInt(n)
		return nil
	case reflect.Float32, reflect.Float64:
		var d Double
		if err := d.UnmarshalText([]byte(s)); err != nil {
			return err
		}
		elem.SetFloat(float64(d))
		return nil
	}
	return errors.Newf("cannot decode plain text into %T", v)
}
