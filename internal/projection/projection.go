// Package projection implements the forward and inverse map projections
// the grid templates need: Mercator, polar stereographic, Lambert
// conformal and Lambert azimuthal equal-area, in their ellipsoidal forms
// (the spherical case falls out with zero eccentricity). Formulas follow
// the EPSG guidance notes. Angles are degrees at the interface, metres on
// the projected plane.
package projection

import (
	"math"

	"github.com/couchcryptid/gribmeta/internal/metadata"
)

const degToRad = math.Pi / 180

// tsfn is the isometric-latitude half-tangent common to the conformal
// projections: tan(pi/4 - phi/2) / ((1 - e sin phi)/(1 + e sin phi))^(e/2).
func tsfn(phi, e float64) float64 {
	s := math.Sin(phi)
	con := math.Pow((1-e*s)/(1+e*s), e/2)
	return math.Tan(math.Pi/4-phi/2) / con
}

// msfn is cos(phi) / sqrt(1 - e^2 sin^2 phi).
func msfn(phi, e float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
}

// phiFromTs inverts tsfn by fixed-point iteration.
func phiFromTs(ts, e float64) float64 {
	phi := math.Pi/2 - 2*math.Atan(ts)
	for i := 0; i < 15; i++ {
		s := math.Sin(phi)
		con := math.Pow((1-e*s)/(1+e*s), e/2)
		next := math.Pi/2 - 2*math.Atan(ts*con)
		if math.Abs(next-phi) < 1e-12 {
			return next
		}
		phi = next
	}
	return phi
}

// MercatorForward projects geographic degrees onto the Mercator plane.
func MercatorForward(cs metadata.Mercator, lon, lat float64) (x, y float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())
	ts := cs.StandardParallel * degToRad
	k0 := math.Cos(ts) / math.Sqrt(1-e*e*math.Sin(ts)*math.Sin(ts))

	phi := lat * degToRad
	x = a * k0 * lon * degToRad
	y = -a * k0 * math.Log(tsfn(phi, e))
	return x, y
}

// MercatorInverse recovers geographic degrees from the Mercator plane.
func MercatorInverse(cs metadata.Mercator, x, y float64) (lon, lat float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())
	ts := cs.StandardParallel * degToRad
	k0 := math.Cos(ts) / math.Sqrt(1-e*e*math.Sin(ts)*math.Sin(ts))

	lon = x / (a * k0) / degToRad
	lat = phiFromTs(math.Exp(-y/(a*k0)), e) / degToRad
	return lon, lat
}

// StereographicForward projects geographic degrees through the polar
// stereographic aspect true at cs.TrueScaleLat.
func StereographicForward(cs metadata.Stereographic, lon, lat float64) (x, y float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())

	south := cs.CentralLat < 0
	phi := lat * degToRad
	lam := (lon - cs.CentralLon) * degToRad
	tsLat := cs.TrueScaleLat * degToRad
	if south {
		// South polar aspect: mirror through the equator, negate the
		// plane at the end.
		phi = -phi
		lam = -lam
		tsLat = -tsLat
	}

	t := tsfn(phi, e)
	var rho float64
	if math.Abs(tsLat-math.Pi/2) < 1e-10 {
		// True at the pole itself: the secant form degenerates.
		rho = 2 * a * t / math.Sqrt(math.Pow(1+e, 1+e)*math.Pow(1-e, 1-e))
	} else {
		rho = a * msfn(tsLat, e) * t / tsfn(tsLat, e)
	}

	x = rho * math.Sin(lam)
	y = -rho * math.Cos(lam)
	if south {
		x, y = -x, -y
	}
	return x + cs.FalseEasting, y + cs.FalseNorthing
}

// StereographicInverse recovers geographic degrees from the polar
// stereographic plane.
func StereographicInverse(cs metadata.Stereographic, x, y float64) (lon, lat float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())

	south := cs.CentralLat < 0
	dx := x - cs.FalseEasting
	dy := y - cs.FalseNorthing
	tsLat := cs.TrueScaleLat * degToRad
	if south {
		dx, dy = -dx, -dy
		tsLat = -tsLat
	}

	rho := math.Hypot(dx, dy)
	var t float64
	if math.Abs(tsLat-math.Pi/2) < 1e-10 {
		t = rho * math.Sqrt(math.Pow(1+e, 1+e)*math.Pow(1-e, 1-e)) / (2 * a)
	} else {
		t = rho * tsfn(tsLat, e) / (a * msfn(tsLat, e))
	}

	phi := phiFromTs(t, e)
	var lam float64
	if rho > 0 {
		lam = math.Atan2(dx, -dy)
	}
	if south {
		phi, lam = -phi, -lam
	}
	return cs.CentralLon + lam/degToRad, phi / degToRad
}

// lccConstants derives the cone constant n, the mapping factor F and the
// origin radius rho0 for a two-standard-parallel Lambert conformal.
func lccConstants(cs metadata.LambertConformal) (n, f, rho0, e float64) {
	e = math.Sqrt(cs.Ellipsoid.EccentricitySquared())
	phi1 := cs.SecantLats[0] * degToRad
	phi2 := cs.SecantLats[1] * degToRad
	phi0 := cs.CentralLat * degToRad

	m1 := msfn(phi1, e)
	t1 := tsfn(phi1, e)
	if math.Abs(phi1-phi2) < 1e-10 {
		n = math.Sin(phi1)
	} else {
		m2 := msfn(phi2, e)
		t2 := tsfn(phi2, e)
		n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	f = m1 / (n * math.Pow(t1, n))
	rho0 = cs.Ellipsoid.SemiMajor * f * math.Pow(tsfn(phi0, e), n)
	return n, f, rho0, e
}

// LambertConformalForward projects geographic degrees onto the Lambert
// conformal plane.
func LambertConformalForward(cs metadata.LambertConformal, lon, lat float64) (x, y float64) {
	n, f, rho0, e := lccConstants(cs)
	a := cs.Ellipsoid.SemiMajor

	phi := lat * degToRad
	rho := a * f * math.Pow(tsfn(phi, e), n)
	dlam := lon - cs.CentralLon
	// Keep the angle in the cone's principal range.
	for dlam > 180 {
		dlam -= 360
	}
	for dlam < -180 {
		dlam += 360
	}
	theta := n * dlam * degToRad

	x = rho*math.Sin(theta) + cs.FalseEasting
	y = rho0 - rho*math.Cos(theta) + cs.FalseNorthing
	return x, y
}

// LambertConformalInverse recovers geographic degrees from the Lambert
// conformal plane.
func LambertConformalInverse(cs metadata.LambertConformal, x, y float64) (lon, lat float64) {
	n, f, rho0, e := lccConstants(cs)
	a := cs.Ellipsoid.SemiMajor

	dx := x - cs.FalseEasting
	dy := rho0 - (y - cs.FalseNorthing)
	rho := math.Hypot(dx, dy)
	theta := math.Atan2(dx, dy)
	if n < 0 {
		rho = -rho
		theta = math.Atan2(-dx, -dy)
	}

	ts := math.Pow(rho/(a*f), 1/n)
	lat = phiFromTs(ts, e) / degToRad
	lon = cs.CentralLon + theta/n/degToRad
	return lon, lat
}

// qsfn is the equal-area auxiliary function of the LAEA projection.
func qsfn(phi, e float64) float64 {
	s := math.Sin(phi)
	if e < 1e-12 {
		return 2 * s
	}
	return (1 - e*e) * (s/(1-e*e*s*s) - (1/(2*e))*math.Log((1-e*s)/(1+e*s)))
}

// LambertAzimuthalForward projects geographic degrees through the oblique
// Lambert azimuthal equal-area aspect.
func LambertAzimuthalForward(cs metadata.LambertAzimuthal, lon, lat float64) (x, y float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())

	phi := lat * degToRad
	phi0 := cs.CentralLat * degToRad
	lam := (lon - cs.CentralLon) * degToRad

	qp := qsfn(math.Pi/2, e)
	beta := math.Asin(qsfn(phi, e) / qp)
	beta0 := math.Asin(qsfn(phi0, e) / qp)
	rq := a * math.Sqrt(qp/2)
	d := a * msfn(phi0, e) / (rq * math.Cos(beta0))

	b := rq * math.Sqrt(2/(1+math.Sin(beta0)*math.Sin(beta)+
		math.Cos(beta0)*math.Cos(beta)*math.Cos(lam)))

	x = b*d*math.Cos(beta)*math.Sin(lam) + cs.FalseEasting
	y = (b/d)*(math.Cos(beta0)*math.Sin(beta)-
		math.Sin(beta0)*math.Cos(beta)*math.Cos(lam)) + cs.FalseNorthing
	return x, y
}

// LambertAzimuthalInverse recovers geographic degrees from the Lambert
// azimuthal equal-area plane. The authalic latitude is converted back to
// geodetic with the usual three-term series.
func LambertAzimuthalInverse(cs metadata.LambertAzimuthal, x, y float64) (lon, lat float64) {
	a := cs.Ellipsoid.SemiMajor
	e := math.Sqrt(cs.Ellipsoid.EccentricitySquared())

	phi0 := cs.CentralLat * degToRad
	qp := qsfn(math.Pi/2, e)
	beta0 := math.Asin(qsfn(phi0, e) / qp)
	rq := a * math.Sqrt(qp/2)
	d := a * msfn(phi0, e) / (rq * math.Cos(beta0))

	dx := (x - cs.FalseEasting) / d
	dy := (y - cs.FalseNorthing) * d
	rho := math.Hypot(dx, dy)
	if rho < 1e-9 {
		return cs.CentralLon, cs.CentralLat
	}

	c := 2 * math.Asin(rho/(2*rq))
	beta := math.Asin(math.Cos(c)*math.Sin(beta0) +
		dy*math.Sin(c)*math.Cos(beta0)/rho)
	lam := math.Atan2(dx*math.Sin(c),
		rho*math.Cos(beta0)*math.Cos(c)-dy*math.Sin(beta0)*math.Sin(c))

	e2 := e * e
	phi := beta +
		(e2/3+31*e2*e2/180+517*e2*e2*e2/5040)*math.Sin(2*beta) +
		(23*e2*e2/360+251*e2*e2*e2/3780)*math.Sin(4*beta) +
		(761*e2*e2*e2/45360)*math.Sin(6*beta)

	return cs.CentralLon + lam/degToRad, phi / degToRad
}
