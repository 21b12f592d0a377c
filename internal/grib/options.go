package grib

import "fmt"

// Options carries the process-wide translation toggles. A value is passed
// into every top-level conversion rather than held as global state, so
// concurrent conversions may run with different settings.
type Options struct {
	// WarnOnUnsupported surfaces notes about fields the engine
	// deliberately does not translate.
	WarnOnUnsupported bool

	// SupportHindcastValues enables the negative-forecast-period
	// reinterpretation of large raw forecastTime values.
	SupportHindcastValues bool

	// Warn receives warning messages. Nil discards them.
	Warn func(msg string)
}

// DefaultOptions matches the engine's historical behaviour: hindcast
// reinterpretation on, unsupported-field warnings off.
func DefaultOptions() Options {
	return Options{SupportHindcastValues: true}
}

// Warnf emits a formatted warning if a sink is configured.
func (o Options) Warnf(format string, args ...any) {
	if o.Warn != nil {
		o.Warn(fmt.Sprintf(format, args...))
	}
}

// WarnUnsupported emits a formatted warning only when WarnOnUnsupported is
// set. Used for fields that are deliberately dropped.
func (o Options) WarnUnsupported(format string, args ...any) {
	if o.WarnOnUnsupported {
		o.Warnf(format, args...)
	}
}
