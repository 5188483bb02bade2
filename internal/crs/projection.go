package crs

import (
	"fmt"
	"math"
)

// Projection converts between a projected CRS and geographic WGS84.
type Projection interface {
	// ToWGS84 converts projected (x=easting, y=northing) coordinates to
	// WGS84 longitude/latitude in degrees. Axis order is (lon, lat).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude in degrees back to
	// projected coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code of the projected system.
	EPSG() int
}

// ForEPSG resolves an EPSG code to a Projection. Supported codes are 4326
// (identity) and the WGS84 UTM families 326xx/327xx.
func ForEPSG(code int) (Projection, error) {
	if code == WGS84 {
		return wgs84Identity{}, nil
	}
	if zone, northern, ok := utmZone(code); ok {
		return newUTM(zone, northern), nil
	}
	return nil, &TransformError{
		CRS:    fmt.Sprintf("EPSG:%d", code),
		Reason: "unsupported reference system (expected EPSG:4326 or a UTM code 326xx/327xx)",
	}
}

// wgs84Identity passes geographic coordinates through untouched.
type wgs84Identity struct{}

func (wgs84Identity) ToWGS84(x, y float64) (float64, float64)       { return x, y }
func (wgs84Identity) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }
func (wgs84Identity) EPSG() int                                     { return WGS84 }

// WGS84 ellipsoid and UTM parameters.
const (
	semiMajor     = 6378137.0
	flattening    = 1.0 / 298.257223563
	scaleFactor   = 0.9996
	falseEasting  = 500000.0
	falseNorthing = 10000000.0 // southern hemisphere only
)

// utm implements the transverse mercator projection for one UTM zone on the
// WGS84 ellipsoid, using the standard series expansions (Snyder, Map
// Projections: A Working Manual, eqs. 8-9..8-25). Series error is well below
// a millimeter inside a zone, far inside the 1e-6 degree round-trip budget.
type utm struct {
	zone     int
	northern bool
	lon0     float64 // central meridian, radians

	e2  float64 // first eccentricity squared
	ep2 float64 // second eccentricity squared
	e1  float64 // rectifying series coefficient

	// meridional arc coefficients
	m0, m2, m4, m6 float64
}

func newUTM(zone int, northern bool) *utm {
	e2 := flattening * (2 - flattening)
	sqrt1e2 := math.Sqrt(1 - e2)

	return &utm{
		zone:     zone,
		northern: northern,
		lon0:     float64(zone*6-183) * math.Pi / 180,
		e2:       e2,
		ep2:      e2 / (1 - e2),
		e1:       (1 - sqrt1e2) / (1 + sqrt1e2),
		m0:       1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256,
		m2:       3*e2/8 + 3*e2*e2/32 + 45*e2*e2*e2/1024,
		m4:       15*e2*e2/256 + 45*e2*e2*e2/1024,
		m6:       35 * e2 * e2 * e2 / 3072,
	}
}

func (u *utm) EPSG() int {
	if u.northern {
		return 32600 + u.zone
	}
	return 32700 + u.zone
}

// meridionalArc returns the distance along the meridian from the equator to
// latitude phi.
func (u *utm) meridionalArc(phi float64) float64 {
	return semiMajor * (u.m0*phi -
		u.m2*math.Sin(2*phi) +
		u.m4*math.Sin(4*phi) -
		u.m6*math.Sin(6*phi))
}

func (u *utm) FromWGS84(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	sinPhi, cosPhi := math.Sincos(phi)
	tanPhi := sinPhi / cosPhi

	n := semiMajor / math.Sqrt(1-u.e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := u.ep2 * cosPhi * cosPhi
	a := (lam - u.lon0) * cosPhi
	m := u.meridionalArc(phi)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x = falseEasting + scaleFactor*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*u.ep2)*a5/120)

	y = scaleFactor * (m + n*tanPhi*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*u.ep2)*a6/720))
	if !u.northern {
		y += falseNorthing
	}
	return x, y
}

func (u *utm) ToWGS84(x, y float64) (lon, lat float64) {
	northing := y
	if !u.northern {
		northing -= falseNorthing
	}

	// Footpoint latitude from the rectifying series.
	m := northing / scaleFactor
	mu := m / (semiMajor * u.m0)
	e1 := u.e1
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1

	c1 := u.ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := semiMajor / math.Sqrt(1-u.e2*sinPhi1*sinPhi1)
	r1 := semiMajor * (1 - u.e2) / math.Pow(1-u.e2*sinPhi1*sinPhi1, 1.5)
	d := (x - falseEasting) / (n1 * scaleFactor)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	phi := phi1 - (n1*tanPhi1/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*u.ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*u.ep2-3*c1*c1)*d6/720)

	lam := u.lon0 + (d-
		(1+2*t1+c1)*d3/6+
		(5-2*c1+28*t1-3*c1*c1+8*u.ep2+24*t1*t1)*d5/120)/cosPhi1

	return lam * 180 / math.Pi, phi * 180 / math.Pi
}
