package grib

// Static code tables. Lookups return ok=false for unknown codes; callers
// decide whether that is a hard failure or a graceful fallback.

// timeRangeUnitHours maps code table 4.4 time-range units to hours. Only
// the units the engine translates are present.
var timeRangeUnitHours = map[int64]float64{
	0:  1.0 / 60,   // minute
	1:  1,          // hour
	2:  24,         // day
	10: 3,          // 3 hours
	11: 6,          // 6 hours
	12: 12,         // 12 hours
	13: 1.0 / 3600, // second
}

// TimeRangeUnitHours converts a code table 4.4 unit indicator to hours.
func TimeRangeUnitHours(code int64) (float64, error) {
	h, ok := timeRangeUnitHours[code]
	if !ok {
		return 0, Unsupportedf(
			"product definition section 4 contains unsupported time range unit [%d]", code)
	}
	return h, nil
}

// statisticNames maps code table 4.10 statistical process types to cell
// method names. Codes outside this set are unsupported.
var statisticNames = map[int64]string{
	0: "mean",
	1: "sum",
	2: "maximum",
	3: "minimum",
	6: "standard_deviation",
}

// StatisticName resolves a code table 4.10 statistical process type.
func StatisticName(code int64) (string, bool) {
	name, ok := statisticNames[code]
	return name, ok
}

// StatisticCode is the encode direction of StatisticName.
func StatisticCode(name string) (int64, bool) {
	for code, n := range statisticNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// FixedSurface describes how a code table 4.5 level type decodes into a
// vertical coordinate.
type FixedSurface struct {
	StandardName string
	LongName     string
	Units        string
}

// fixedSurfaces lists the level types with an agreed coordinate reading.
// Other types still yield a coordinate, tagged with the raw code instead.
var fixedSurfaces = map[int64]FixedSurface{
	100: {LongName: "pressure", Units: "Pa"},
	103: {LongName: "height", Units: "m"},
}

// FixedSurfaceFor resolves a code table 4.5 fixed-surface type.
func FixedSurfaceFor(code int64) (FixedSurface, bool) {
	fs, ok := fixedSurfaces[code]
	return fs, ok
}

// centreNames expands originating-centre mnemonics from the common code
// table C-1 for the attributes block.
var centreNames = map[string]string{
	"ecmf": "European Centre for Medium Range Weather Forecasts",
	"egrr": "UK Meteorological Office, Exeter",
	"kwbc": "US National Weather Service, National Centres for Environmental Prediction",
	"rjtd": "Japan Meteorological Agency, Tokyo",
}

// CentreName expands a centre mnemonic, returning the mnemonic itself when
// no expansion is known.
func CentreName(mnemonic string) string {
	if name, ok := centreNames[mnemonic]; ok {
		return name
	}
	return mnemonic
}

// CentreMnemonic is the encode direction of CentreName, falling back to
// the UK Met Office when the name is unknown.
func CentreMnemonic(name string) string {
	for mnemonic, full := range centreNames {
		if full == name || mnemonic == name {
			return mnemonic
		}
	}
	return "egrr"
}

// SpatialProcessing describes a code table 4.15 spatial processing type.
// Statistical types carry an "area" cell method; pure interpolation does
// not.
type SpatialProcessing struct {
	Description string
	Statistical bool
	// NumPoints is the number of source points each target value is
	// derived from, written back on encode.
	NumPoints int64
}

var spatialProcessingTypes = map[int64]SpatialProcessing{
	0: {Description: "no interpolation", Statistical: true, NumPoints: 0},
	1: {Description: "bilinear interpolation", Statistical: false, NumPoints: 4},
	2: {Description: "bicubic interpolation", Statistical: false, NumPoints: 4},
	3: {Description: "nearest neighbour interpolation", Statistical: false, NumPoints: 1},
	4: {Description: "budget interpolation", Statistical: true, NumPoints: 4},
	5: {Description: "spectral interpolation", Statistical: false, NumPoints: 4},
	6: {Description: "neighbour-budget interpolation", Statistical: true, NumPoints: 4},
}

// SpatialProcessingFor resolves a code table 4.15 processing type.
func SpatialProcessingFor(code int64) (SpatialProcessing, bool) {
	sp, ok := spatialProcessingTypes[code]
	return sp, ok
}
