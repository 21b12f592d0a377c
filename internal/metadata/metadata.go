// Package metadata defines the semantic record the translation engine
// builds from a message's sections and consumes when encoding one: named
// coordinate arrays with optional bounds and coordinate systems, scalar
// phenomenon identity, cell methods, and derived-coordinate factories.
//
// A Record lives for exactly one message. Coordinate systems are immutable
// values and may be shared across coordinates and messages.
package metadata

// Coord is a named numeric coordinate. A single point makes it scalar.
type Coord struct {
	StandardName string
	LongName     string
	Units        string
	Points       []float64
	// Bounds holds one ascending or descending pair per point, nil when
	// the coordinate is unbounded.
	Bounds      [][2]float64
	CoordSystem CoordSystem
	// Circular marks a longitude-like coordinate whose wrap-around gap
	// does not exceed its largest step.
	Circular   bool
	Attributes map[string]any
}

// Name returns the standard name when set, the long name otherwise.
func (c Coord) Name() string {
	if c.StandardName != "" {
		return c.StandardName
	}
	return c.LongName
}

// Scalar reports whether the coordinate carries exactly one point.
func (c Coord) Scalar() bool { return len(c.Points) == 1 }

// WithAttribute returns a copy of the coordinate carrying an extra
// attribute.
func (c Coord) WithAttribute(key string, value any) Coord {
	attrs := make(map[string]any, len(c.Attributes)+1)
	for k, v := range c.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	c.Attributes = attrs
	return c
}

// CellMethod records one statistical reduction applied to the field.
type CellMethod struct {
	Method     string
	CoordNames []string
	// Intervals holds optional "N unit" descriptors, nil when the wire
	// carried no usable increment.
	Intervals []string
}

// FactoryKind selects a hybrid-level derived-coordinate constructor.
type FactoryKind int

const (
	HybridHeight FactoryKind = iota
	HybridPressure
)

func (k FactoryKind) String() string {
	if k == HybridPressure {
		return "hybrid_pressure"
	}
	return "hybrid_height"
}

// Factory defers construction of a derived vertical coordinate to the
// gridded-object consumer: it names the delta and sigma coordinates built
// during translation plus the external reference field they combine with.
type Factory struct {
	Kind      FactoryKind
	DeltaName string
	SigmaName string
	Reference string
}

// CoordAndDim pairs a coordinate with the grid axis it describes. Dim is
// -1 for scalar auxiliary coordinates.
type CoordAndDim struct {
	Coord Coord
	Dim   int
}

// Record is the translation product for one message, mutated through the
// template dispatch chain and handed to the gridded-object constructor.
type Record struct {
	Factories  []Factory
	References []string

	StandardName string
	LongName     string
	Units        string

	Attributes  map[string]any
	CellMethods []CellMethod

	DimCoords []CoordAndDim
	AuxCoords []CoordAndDim
}

// NewRecord builds an empty record ready for translation.
func NewRecord() *Record {
	return &Record{Attributes: map[string]any{}}
}

// AddDimCoord attaches a dimension coordinate on axis dim.
func (r *Record) AddDimCoord(c Coord, dim int) {
	r.DimCoords = append(r.DimCoords, CoordAndDim{Coord: c, Dim: dim})
}

// AddAuxCoord attaches an auxiliary coordinate; dim -1 marks a scalar.
func (r *Record) AddAuxCoord(c Coord, dim int) {
	r.AuxCoords = append(r.AuxCoords, CoordAndDim{Coord: c, Dim: dim})
}

// AddScalar attaches a scalar auxiliary coordinate.
func (r *Record) AddScalar(c Coord) {
	r.AddAuxCoord(c, -1)
}

// Coord finds a coordinate by name across dimension and auxiliary lists.
func (r *Record) Coord(name string) (Coord, bool) {
	for _, cd := range r.DimCoords {
		if cd.Coord.Name() == name {
			return cd.Coord, true
		}
	}
	for _, cd := range r.AuxCoords {
		if cd.Coord.Name() == name {
			return cd.Coord, true
		}
	}
	return Coord{}, false
}

// HasCoord reports whether a coordinate with the given name is attached.
func (r *Record) HasCoord(name string) bool {
	_, ok := r.Coord(name)
	return ok
}

// DimOf returns the axis index of the named dimension coordinate.
func (r *Record) DimOf(name string) (int, bool) {
	for _, cd := range r.DimCoords {
		if cd.Coord.Name() == name {
			return cd.Dim, true
		}
	}
	return 0, false
}

// RemoveCellMethod drops the most recently added cell method. Used where a
// delegating template must undo its delegate's statistic.
func (r *Record) RemoveCellMethod() {
	if n := len(r.CellMethods); n > 0 {
		r.CellMethods = r.CellMethods[:n-1]
	}
}

// RemoveAuxCoord drops the named auxiliary coordinate if present.
func (r *Record) RemoveAuxCoord(name string) {
	for i, cd := range r.AuxCoords {
		if cd.Coord.Name() == name {
			r.AuxCoords = append(r.AuxCoords[:i], r.AuxCoords[i+1:]...)
			return
		}
	}
}

// Name returns the record's phenomenon name, preferring the standard name.
func (r *Record) Name() string {
	if r.StandardName != "" {
		return r.StandardName
	}
	return r.LongName
}
