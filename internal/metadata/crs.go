package metadata

// CoordSystem is one of the fixed set of coordinate reference systems a
// grid template can declare. All are immutable values.
type CoordSystem interface {
	crs()
}

// GeogCS is a geographic coordinate system on an ellipsoid. A sphere has
// equal axes.
type GeogCS struct {
	SemiMajor float64
	SemiMinor float64
}

// SphereCS builds a spherical GeogCS of the given radius.
func SphereCS(radius float64) GeogCS {
	return GeogCS{SemiMajor: radius, SemiMinor: radius}
}

// Spherical reports whether the two axes coincide.
func (g GeogCS) Spherical() bool { return g.SemiMajor == g.SemiMinor }

// EccentricitySquared derives e^2 from the axes; zero for a sphere.
func (g GeogCS) EccentricitySquared() float64 {
	ratio := g.SemiMinor / g.SemiMajor
	return 1 - ratio*ratio
}

// RotatedGeogCS is a rotated-pole geographic system: plain lat/lon about a
// repositioned north pole.
type RotatedGeogCS struct {
	GridNorthPoleLat float64
	GridNorthPoleLon float64
	NorthPoleLon     float64 // angle of rotation about the new pole
	Ellipsoid        GeogCS
}

// Mercator with one standard parallel.
type Mercator struct {
	StandardParallel float64
	Ellipsoid        GeogCS
}

// TransverseMercator as used by the length-in-centimetres grid template.
type TransverseMercator struct {
	LatOrigin     float64
	LonOrigin     float64
	FalseEasting  float64
	FalseNorthing float64
	ScaleFactor   float64
	Ellipsoid     GeogCS
}

// Stereographic in its polar aspect, true at one latitude.
type Stereographic struct {
	CentralLat    float64 // +90 or -90
	CentralLon    float64
	TrueScaleLat  float64
	FalseEasting  float64
	FalseNorthing float64
	Ellipsoid     GeogCS
}

// LambertConformal with two secant latitudes.
type LambertConformal struct {
	CentralLat    float64
	CentralLon    float64
	FalseEasting  float64
	FalseNorthing float64
	SecantLats    [2]float64
	Ellipsoid     GeogCS
}

// LambertAzimuthal is the Lambert azimuthal equal-area projection.
type LambertAzimuthal struct {
	CentralLat    float64
	CentralLon    float64
	FalseEasting  float64
	FalseNorthing float64
	Ellipsoid     GeogCS
}

// Geostationary is the satellite space-view perspective. Grid coordinates
// are scan angles in radians from the satellite.
type Geostationary struct {
	LatOrigin     float64 // always 0: only equatorial satellites translate
	LonOrigin     float64
	Height        float64 // perspective point height above the ellipsoid
	SweepAxis     string  // "x" or "y"
	FalseEasting  float64
	FalseNorthing float64
	Ellipsoid     GeogCS
}

func (GeogCS) crs()             {}
func (RotatedGeogCS) crs()      {}
func (Mercator) crs()           {}
func (TransverseMercator) crs() {}
func (Stereographic) crs()      {}
func (LambertConformal) crs()   {}
func (LambertAzimuthal) crs()   {}
func (Geostationary) crs()      {}
