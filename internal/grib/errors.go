package grib

import "fmt"

// TranslationError marks a hard translation failure: either an input using
// a deliberately unimplemented code, template or flag combination, or a
// strictly required field that is absent. One such error fails the whole
// message's conversion; there are no partial results.
type TranslationError struct {
	Msg string
}

func (e *TranslationError) Error() string { return e.Msg }

// Unsupportedf builds a TranslationError for input the engine deliberately
// does not implement.
func Unsupportedf(format string, args ...any) error {
	return &TranslationError{Msg: fmt.Sprintf(format, args...)}
}
