package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/OCAP2/dogfight/pkg/core"
)

// GEO POINTS
// Positions are stored as EPSG:3857 points with altitude in Z. SQLite has
// no spatial awareness, so points travel as WKB and are read back through
// geom.Point's Scan.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const metersPerDegLat = 111_320.0

// GeoRef anchors the local simulation frame to WGS84. Local +X is north,
// local -Z is east and Y is altitude, matching the simulation heading
// convention where a heading of pi/2 points along -Z.
type GeoRef struct {
	Origin core.GeoOrigin
}

// NewGeoRef validates origin and returns a reference for it.
func NewGeoRef(origin core.GeoOrigin) (GeoRef, error) {
	if !validLatLon(origin.Latitude, origin.Longitude) {
		return GeoRef{}, ErrInvalidCoordinates
	}
	return GeoRef{Origin: origin}, nil
}

func validLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (g GeoRef) metersPerDegLon() float64 {
	return metersPerDegLat * math.Cos(g.Origin.Latitude*math.Pi/180.0)
}

// LocalToGeo converts a local position to latitude, longitude and altitude.
func (g GeoRef) LocalToGeo(p core.Position3D) (lat, lon, alt float64) {
	lat = g.Origin.Latitude + p.X/metersPerDegLat
	if m := g.metersPerDegLon(); m > 1e-9 {
		lon = g.Origin.Longitude + -p.Z/m
	} else {
		lon = g.Origin.Longitude
	}
	alt = g.Origin.Altitude + p.Y
	return
}

// GeoToLocal is the inverse of LocalToGeo.
func (g GeoRef) GeoToLocal(lat, lon, alt float64) core.Position3D {
	return core.Position3D{
		X: (lat - g.Origin.Latitude) * metersPerDegLat,
		Y: alt - g.Origin.Altitude,
		Z: -(lon - g.Origin.Longitude) * g.metersPerDegLon(),
	}
}

// Point converts a local position to an EPSG:3857 point carrying the
// altitude in Z.
func (g GeoRef) Point(p core.Position3D) geom.Point {
	lat, lon, alt := g.LocalToGeo(p)
	x, y := to3857(lon, lat)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Z:    alt,
		Type: geom.DimXYZ,
	})
}

// CompassHeading converts a simulation heading in radians to compass
// degrees in [0, 360).
func CompassHeading(heading float64) float64 {
	deg := math.Mod(heading*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ParseOrigin parses "lat,lon" or "lat,lon,alt".
func ParseOrigin(s string) (core.GeoOrigin, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.GeoOrigin{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	o := core.GeoOrigin{Latitude: vals[0], Longitude: vals[1]}
	if len(vals) == 3 {
		o.Altitude = vals[2]
	}
	if !validLatLon(o.Latitude, o.Longitude) {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	return o, nil
}

// Coords3857From4326 creates a web mercator point from a longitude and latitude
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	if !validLatLon(latitude, longitude) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	x, y := to3857(longitude, latitude)
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}}), nil
}

func to3857(lon, lat float64) (x, y float64) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y
}
