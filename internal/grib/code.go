package grib

import (
	"fmt"
	"regexp"
)

// Code is the immutable 4-tuple identity of a GRIB parameter. For edition
// 2 the fields are discipline, category and number; for edition 1 they
// hold table2Version, centre and number. The canonical string form
// round-trips exactly through ParseCode.
type Code struct {
	Edition    int
	Discipline int
	Category   int
	Number     int
}

// NewCode validates and builds a Code.
func NewCode(edition, a, b, c int) (Code, error) {
	if edition != 1 && edition != 2 {
		return Code{}, fmt.Errorf("invalid grib edition %d: expected 1 or 2", edition)
	}
	return Code{Edition: edition, Discipline: a, Category: b, Number: c}, nil
}

// String renders the canonical identity, e.g. "GRIB2:d000c003n001" or
// "GRIB1:t002c098n033".
func (c Code) String() string {
	if c.Edition == 1 {
		return fmt.Sprintf("GRIB1:t%03dc%03dn%03d", c.Discipline, c.Category, c.Number)
	}
	return fmt.Sprintf("GRIB2:d%03dc%03dn%03d", c.Discipline, c.Category, c.Number)
}

// codePattern is deliberately liberal: any four digit groups separated by
// non-digit text, so both the canonical form and looser encodings parse.
var codePattern = regexp.MustCompile(
	`^[^\d]*(\d+)[^\d]*(\d+)[^\d]*(\d+)[^\d]*(\d+)[^\d]*$`)

// ParseCode reads a Code back from any string containing four digit
// groups, the first being the edition.
func ParseCode(s string) (Code, error) {
	m := codePattern.FindStringSubmatch(s)
	if m == nil {
		return Code{}, fmt.Errorf(
			"invalid grib code %q: requires 4 numbers, separated by non-numerals", s)
	}
	var nums [4]int
	for i, g := range m[1:] {
		fmt.Sscanf(g, "%d", &nums[i])
	}
	return NewCode(nums[0], nums[1], nums[2], nums[3])
}
