// Package normalization maps loosely written configuration and data values
// (" Vertical ", "JSON") onto typed enumerations.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// New creates a normalizer named name (used in error messages) over values.
// Keys are matched after trimming and lower-casing.
func New[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		key := clean(k)
		normalized[key] = v
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    keys,
	}
}

// Normalize returns the matching value, or the default when raw is unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.validValues[clean(raw)]; ok {
		return value
	}
	return n.defaultValue
}

// Parse returns the matching value or an error naming the valid options.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if value, ok := n.validValues[clean(raw)]; ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// Valid reports whether raw names a known value.
func (n *Normalizer[T]) Valid(raw string) bool {
	_, ok := n.validValues[clean(raw)]
	return ok
}

// ValidKeys returns all valid normalized keys.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.validKeys)
}

// Result is the outcome of normalizing a config field.
type Result[T comparable] struct {
	Value   T
	Changed bool
	Warning string
}

// NormalizeField normalizes raw for field and reports whether the spelling changed.
func (n *Normalizer[T]) NormalizeField(field, raw string) Result[T] {
	cleaned := clean(raw)
	res := Result[T]{Value: n.Normalize(raw), Changed: cleaned != raw}
	if res.Changed {
		res.Warning = fmt.Sprintf("normalized %s from '%s' to '%s'", field, raw, cleaned)
	}
	return res
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
