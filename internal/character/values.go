package character

import (
	"fmt"
	"strconv"
	"strings"
)

// Scalar is a TOML value rendered as text. Authors write frame data as
// strings or bare numbers interchangeably.
type Scalar string

// UnmarshalTOML implements toml.Unmarshaler.
func (s *Scalar) UnmarshalTOML(v any) error {
	text, err := scalarText(v)
	if err != nil {
		return err
	}
	*s = Scalar(text)
	return nil
}

func (s Scalar) String() string { return string(s) }

// Sequence holds a value that may be written either as one string or as an
// array. A single string is kept whole and marked Delimited so callers can
// split it (inputs on the separator, buttons per letter).
type Sequence struct {
	Values    []string
	Delimited bool
}

// Seq builds an explicit array sequence.
func Seq(values ...string) Sequence { return Sequence{Values: values} }

// Raw builds a single-string sequence.
func Raw(value string) Sequence { return Sequence{Values: []string{value}, Delimited: true} }

// UnmarshalTOML implements toml.Unmarshaler.
func (s *Sequence) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case []any:
		values := make([]string, 0, len(t))
		for i, elem := range t {
			text, err := scalarText(elem)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			values = append(values, text)
		}
		*s = Sequence{Values: values}
	case []string:
		*s = Sequence{Values: append([]string(nil), t...)}
	default:
		text, err := scalarText(v)
		if err != nil {
			return err
		}
		*s = Raw(text)
	}
	return nil
}

// IsSet reports whether the value was present and non-empty.
func (s Sequence) IsSet() bool { return len(s.Values) > 0 }

// First returns the first value or "".
func (s Sequence) First() string {
	if len(s.Values) == 0 {
		return ""
	}
	return s.Values[0]
}

// Join concatenates the values with sep.
func (s Sequence) Join(sep string) string { return strings.Join(s.Values, sep) }

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
