// Package grib holds the primitive vocabulary of the translation engine:
// keyed section documents as produced by the byte-level reader, the
// Regulation 92.1.12 scaled-integer codec, parameter identity codes, the
// shared code tables, and the option/error types threaded through every
// template translator.
//
// Everything here is a leaf: the grid and product translators depend on
// this package, never the other way around.
package grib
