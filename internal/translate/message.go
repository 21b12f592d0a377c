// Package translate converts whole messages between their section-keyed
// wire form and semantic metadata records, in both directions.
package translate

import (
	"time"

	"github.com/couchcryptid/gribmeta/internal/grib"
)

// Message is the section-keyed form a message takes between the
// byte-level reader and this engine. Section 2 (local use) is carried
// but never interpreted.
type Message struct {
	Sections map[int]grib.Section `json:"sections"`
}

// NewMessage returns a message with every section present and empty,
// ready for the encode path to fill.
func NewMessage() *Message {
	sections := make(map[int]grib.Section, 7)
	for n := 0; n <= 6; n++ {
		sections[n] = grib.Section{}
	}
	return &Message{Sections: sections}
}

// Section returns the numbered section, or an empty one when the reader
// did not materialise it.
func (m *Message) Section(n int) grib.Section {
	if s, ok := m.Sections[n]; ok {
		return s
	}
	return grib.Section{}
}

// referenceTime assembles the section 1 date-time fields.
func referenceTime(section grib.Section) time.Time {
	return time.Date(
		int(section.Int("year")),
		time.Month(section.Int("month")),
		int(section.Int("day")),
		int(section.Int("hour")),
		int(section.Int("minute")),
		int(section.Int("second")),
		0, time.UTC)
}
