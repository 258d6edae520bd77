// Package geometry implements the polar-to-Cartesian transform pipeline:
// converting slope-distance/vertical-angle/horizontal-angle readings into
// station coordinates, absolute points, edge verifications, throw
// distances, and sector checks.
//
// All transforms use the horizontal-distance formula
//
//	hd = sd * cos(90deg - va)
//
// where va is the vertical angle measured from the zenith, so a perfectly
// horizontal sight gives va = 90deg. This is algebraically identical to
// sd * sin(va); it is written in the 90deg-subtraction form so the zenith
// convention stays explicit and cannot silently drift if someone
// "simplifies" it later.
package geometry

import "math"

// Point is a 2-D Cartesian coordinate in metres.
type Point struct {
	X, Y float64
}

// Norm returns the Euclidean distance from the origin.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Reading is an averaged EDM reading ready for transformation.
type Reading struct {
	SlopeDistanceMm float64
	VerticalAngle   float64 // decimal degrees, from zenith
	HorizontalAngle float64 // decimal degrees, 0-360
}

// HorizontalDistance computes the horizontal distance in metres from an
// averaged reading, per the canonical formula above.
func HorizontalDistance(r Reading) float64 {
	sdMeters := r.SlopeDistanceMm / 1000.0
	vaRad := r.VerticalAngle * math.Pi / 180.0
	return sdMeters * math.Cos(math.Pi/2-vaRad)
}

// StationFromCentre computes the EDM's station coordinates relative to the
// circle centre (the origin) from a centre reading. The negation places
// the EDM at the correct offset: the reading describes the vector from the
// EDM to the centre, so the station is the centre minus that vector.
func StationFromCentre(r Reading) Point {
	hd := HorizontalDistance(r)
	harRad := r.HorizontalAngle * math.Pi / 180.0
	return Point{
		X: -hd * math.Cos(harRad),
		Y: -hd * math.Sin(harRad),
	}
}

// RelativePoint computes the point seen by the reading, relative to the
// EDM (not yet offset by the station position).
func RelativePoint(r Reading) Point {
	hd := HorizontalDistance(r)
	harRad := r.HorizontalAngle * math.Pi / 180.0
	return Point{
		X: hd * math.Cos(harRad),
		Y: hd * math.Sin(harRad),
	}
}

// AbsolutePoint computes the absolute point (relative to circle centre)
// seen by a reading, given the current station coordinates.
func AbsolutePoint(station Point, r Reading) Point {
	rel := RelativePoint(r)
	return Point{X: station.X + rel.X, Y: station.Y + rel.Y}
}

// EdgeResult is the outcome of an edge verification.
type EdgeResult struct {
	Point              Point
	MeasuredRadius     float64
	DifferenceMm       float64
	ToleranceAppliedMm float64
	InTolerance        bool
}

// VerifyEdge computes the measured radius and signed difference (mm) from
// an edge reading against the given target radius, and applies the given
// tolerance (mm) to the absolute difference.
func VerifyEdge(station Point, r Reading, targetRadius, toleranceMm float64) EdgeResult {
	p := AbsolutePoint(station, r)
	measured := p.Norm()
	diffMm := (measured - targetRadius) * 1000.0
	return EdgeResult{
		Point:              p,
		MeasuredRadius:     measured,
		DifferenceMm:       diffMm,
		ToleranceAppliedMm: toleranceMm,
		InTolerance:        math.Abs(diffMm) <= toleranceMm,
	}
}

// ThrowResult is the outcome of a throw measurement.
type ThrowResult struct {
	Point           Point
	DistanceFromEDM float64 // distance from circle centre, before radius subtraction
	Distance        float64 // legal throw distance (may be negative)
}

// MeasureThrow computes the absolute landing point and legal throw
// distance from a throw reading. The result may be negative (a foul
// landing inside the circle plane) and is reported verbatim; the caller
// decides validity.
func MeasureThrow(station Point, r Reading, targetRadius float64) ThrowResult {
	p := AbsolutePoint(station, r)
	d := p.Norm()
	return ThrowResult{
		Point:           p,
		DistanceFromEDM: d,
		Distance:        d - targetRadius,
	}
}

// SectorResult is the outcome of a sector-line check.
type SectorResult struct {
	Point              Point
	AngleDeg           float64
	DistanceFromCentre float64
	DistanceBeyondEdge float64
}

// SectorCheck computes the absolute point, its polar angle, and distances
// from the centre / beyond the circle edge for a sector-line reading.
func SectorCheck(station Point, r Reading, targetRadius float64) SectorResult {
	p := AbsolutePoint(station, r)
	d := p.Norm()
	angle := math.Atan2(p.Y, p.X) * 180.0 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return SectorResult{
		Point:              p,
		AngleDeg:           angle,
		DistanceFromCentre: d,
		DistanceBeyondEdge: d - targetRadius,
	}
}

// ThrowsSectorAngleDeg is the standard sector angle (between the two
// sector lines) for shot, discus, and hammer throws circles.
const ThrowsSectorAngleDeg = 34.92

// RotateSectorLine derives the left-hand sector line point from the
// right-hand sector line point by rotating it by -sectorAngleDeg around
// the circle centre. Not applicable for javelin, which has no fixed
// sector angle in this formulation.
func RotateSectorLine(rightHand Point, sectorAngleDeg float64) Point {
	theta := -sectorAngleDeg * math.Pi / 180.0
	sin, cos := math.Sin(theta), math.Cos(theta)
	return Point{
		X: rightHand.X*cos - rightHand.Y*sin,
		Y: rightHand.X*sin + rightHand.Y*cos,
	}
}
