package grib

import (
	"encoding/json"
	"math"
)

// MDI is the all-ones missing data indicator used by the wire format for
// integer keys.
const MDI int64 = 0xFFFFFFFF

// FixedSurfaceMissing is the second missing sentinel in historical use for
// fixed-surface type codes only.
const FixedSurfaceMissing int64 = 255

// Section is one numbered message section as materialised by the upstream
// byte-level reader: a bag of already type-decoded values addressed by key.
// Reads never fail; a key the reader did not supply reads as missing. On
// the save path the same type is used as a write accumulator.
//
// Sections survive JSON round-trips unchanged, which is how they travel
// between the reader and this engine.
type Section map[string]any

// Has reports whether the reader materialised key at all.
func (s Section) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Int returns the integer value for key, or MDI when the key is absent.
func (s Section) Int(key string) int64 {
	v, ok := s[key]
	if !ok {
		return MDI
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(math.Round(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return MDI
}

// Float returns the floating-point value for key, or NaN when absent.
func (s Section) Float(key string) float64 {
	v, ok := s[key]
	if !ok {
		return math.NaN()
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return math.NaN()
}

// Ints returns the integer array for key, or nil when absent.
func (s Section) Ints(key string) []int64 {
	v, ok := s[key]
	if !ok {
		return nil
	}
	switch a := v.(type) {
	case []int64:
		return a
	case []any:
		out := make([]int64, len(a))
		for i, e := range a {
			switch n := e.(type) {
			case int64:
				out[i] = n
			case float64:
				out[i] = int64(math.Round(n))
			default:
				return nil
			}
		}
		return out
	case []float64:
		out := make([]int64, len(a))
		for i, f := range a {
			out[i] = int64(math.Round(f))
		}
		return out
	}
	return nil
}

// Floats returns the floating-point array for key, or nil when absent.
func (s Section) Floats(key string) []float64 {
	v, ok := s[key]
	if !ok {
		return nil
	}
	switch a := v.(type) {
	case []float64:
		return a
	case []any:
		out := make([]float64, len(a))
		for i, e := range a {
			switch n := e.(type) {
			case float64:
				out[i] = n
			case int64:
				out[i] = float64(n)
			default:
				return nil
			}
		}
		return out
	case []int64:
		out := make([]float64, len(a))
		for i, n := range a {
			out[i] = float64(n)
		}
		return out
	}
	return nil
}

// Str returns the string value for key, or "" when absent.
func (s Section) Str(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Missing reports whether key is absent or carries the MDI sentinel.
func (s Section) Missing(key string) bool {
	return s.Int(key) == MDI
}

// SurfaceTypeMissing reports whether a fixed-surface type key is missing.
// Fixed-surface types use an explicit query because two sentinels are in
// historical use for them.
func (s Section) SurfaceTypeMissing(key string) bool {
	v := s.Int(key)
	return v == MDI || v == FixedSurfaceMissing
}

// Set records a value on the save path.
func (s Section) Set(key string, v any) {
	s[key] = v
}

// SetMissing records the MDI sentinel for key on the save path.
func (s Section) SetMissing(key string) {
	s[key] = MDI
}
