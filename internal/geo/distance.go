package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean radius of the Earth in kilometers.
const EarthRadiusKm = 6371.0

// ErrUnknownAngleUnit is returned for angle unit strings outside the
// recognized set.
var ErrUnknownAngleUnit = errors.New("unknown angle unit")

// angleScale returns the factor converting angles in the given unit to
// radians.
func angleScale(unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "rad", "radian":
		return 1, nil
	case "deg", "degree", "°":
		return math.Pi / 180, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAngleUnit, unit)
	}
}

// clamp confines x to [-1, 1] so that acos never sees an argument pushed
// out of its domain by floating-point rounding.
func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FlyingDistance computes the great-circle distance between A and B using
// the spherical law of cosines, in the same unit as the sphere radius r.
// Identical points return exactly 0: near the coincident point the general
// formula can come out slightly positive from rounding alone.
func FlyingDistance(latA, lonA, latB, lonB float64, unit string, r float64) (float64, error) {
	k, err := angleScale(unit)
	if err != nil {
		return 0, err
	}
	if latA == latB && lonA == lonB {
		return 0, nil
	}
	cosArc := math.Cos(latA*k)*math.Cos(latB*k)*math.Cos(math.Abs(lonA-lonB)*k) +
		math.Sin(latA*k)*math.Sin(latB*k)
	return r * math.Acos(clamp(cosArc)), nil
}

// L1Distance approximates Manhattan-grid travel distance between A and B.
//
// The east-west leg rides a small circle whose effective radius depends on
// latitude, so cos² and sin² of the latitude are averaged over [latA, latB]
// in closed form before the law-of-cosines step. The local-plane vector
// [east-west arc, north-south arc] is then rotated by the inverse of
// rotation (the given angle rotates the reference frame, so points move the
// other way) and the absolute components are summed. rotation is in
// radians and lines the axes up with a street grid that is not aligned to
// true north, as in Manhattan.
func L1Distance(latA, lonA, latB, lonB float64, unit string, r, rotation float64) (float64, error) {
	k, err := angleScale(unit)
	if err != nil {
		return 0, err
	}
	if latA == latB && lonA == lonB {
		return 0, nil
	}

	var cosLatSq, sinLatSq float64
	if latA == latB {
		// The closed-form average is 0/0 at equal latitudes; its limit is
		// the pointwise value, which leaves a 1D distance along longitude.
		c := math.Cos(latA * k)
		s := math.Sin(latA * k)
		cosLatSq = c * c
		sinLatSq = s * s
	} else {
		span := (latB - latA) * k
		cosLatSq = (math.Sin(2*latB*k)/4 + latB*k/2 - math.Sin(2*latA*k)/4 - latA*k/2) / span
		sinLatSq = (-math.Sin(2*latB*k)/4 + latB*k/2 + math.Sin(2*latA*k)/4 - latA*k/2) / span
	}

	ew := r * math.Acos(clamp(cosLatSq*math.Cos((lonA-lonB)*k)+sinLatSq))
	ns := r * math.Abs((latA-latB)*k)

	// Inverse of the rotation matrix [[cos, -sin], [sin, cos]].
	a := math.Cos(rotation)
	b := math.Sin(rotation)
	x := a*ew + b*ns
	y := -b*ew + a*ns

	return math.Abs(x) + math.Abs(y), nil
}
