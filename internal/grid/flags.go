package grid

import "github.com/couchcryptid/gribmeta/internal/grib"

// ScanMode decodes the flag table 3.4 scanning-mode byte: point storage
// order and axis directions.
type ScanMode struct {
	INegative    bool // bit 1: points scan in the -i (west) direction
	JPositive    bool // bit 2: points scan in the +j (north) direction
	JConsecutive bool // bit 3: adjacent points are consecutive in j
	IAlternative bool // bit 4: rows alternate scan direction
}

// scanModeFrom decodes the scanning-mode byte. The alternating-row mode
// has no regular-coordinate reading and is unsupported.
func scanModeFrom(flags int64) (ScanMode, error) {
	scan := ScanMode{
		INegative:    flags&0x80 != 0,
		JPositive:    flags&0x40 != 0,
		JConsecutive: flags&0x20 != 0,
		IAlternative: flags&0x10 != 0,
	}
	if scan.IAlternative {
		return scan, grib.Unsupportedf(
			"grid definition section 3 contains unsupported alternative row scanning mode")
	}
	return scan, nil
}

// encodeScanMode is the save direction of scanModeFrom.
func encodeScanMode(scan ScanMode) int64 {
	var flags int64
	if scan.INegative {
		flags |= 0x80
	}
	if scan.JPositive {
		flags |= 0x40
	}
	if scan.JConsecutive {
		flags |= 0x20
	}
	return flags
}

// ResolutionFlags decodes the flag table 3.3 resolution-and-component
// byte.
type ResolutionFlags struct {
	IIncrementsGiven bool // bit 3
	JIncrementsGiven bool // bit 4
	UVResolved       bool // bit 5: winds relative to the grid axes
}

func resolutionFlagsFrom(flags int64) ResolutionFlags {
	return ResolutionFlags{
		IIncrementsGiven: flags&0x20 != 0,
		JIncrementsGiven: flags&0x10 != 0,
		UVResolved:       flags&0x08 != 0,
	}
}

// ProjectionCentre decodes the flag table 3.5 projection-centre byte.
type ProjectionCentre struct {
	SouthPoleOnPlane    bool // bit 1
	BipolarAndSymmetric bool // bit 2
}

func projectionCentreFrom(flags int64) ProjectionCentre {
	return ProjectionCentre{
		SouthPoleOnPlane:    flags&0x80 != 0,
		BipolarAndSymmetric: flags&0x40 != 0,
	}
}
