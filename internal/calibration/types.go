// Package calibration implements the per-device calibration state machine:
// lifecycle invariants, canonical circle radii/tolerances, and persistence
// to a SQLite-backed key-per-device store.
package calibration

import (
	"fmt"
	"time"

	"polyfield-edm/internal/geometry"
)

// CircleType identifies the throwing-event circle or arc a device is
// currently calibrated against.
type CircleType string

const (
	Shot       CircleType = "SHOT"
	Discus     CircleType = "DISCUS"
	Hammer     CircleType = "HAMMER"
	JavelinArc CircleType = "JAVELIN_ARC"
)

// TargetRadius returns the canonical World Athletics / UK Athletics radius
// in metres for a circle type, and false if the type is unknown.
func TargetRadius(t CircleType) (float64, bool) {
	switch t {
	case Shot:
		return 1.0675, true
	case Discus:
		return 1.250, true
	case Hammer:
		return 1.0675, true
	case JavelinArc:
		return 8.000, true
	default:
		return 0, false
	}
}

// ToleranceMm returns the allowable edge-verification deviation in
// millimetres for a circle type.
func ToleranceMm(t CircleType) float64 {
	if t == JavelinArc {
		return 10.0
	}
	return 5.0
}

// EdgeVerification records the most recent edge check. It is only
// meaningful while the owning Calibration remains unreset (its measured
// radius is always computed from the station coordinates current at the
// time it was produced).
type EdgeVerification struct {
	MeasuredRadius float64
	DifferenceMm   float64
	ToleranceMm    float64
	InTolerance    bool
}

// Calibration is the authoritative per-device state: circle type, station
// position, centre/edge status, and optional sector line.
type Calibration struct {
	DeviceID     string
	CircleType   CircleType
	TargetRadius float64
	Station      geometry.Point
	CentreSet    bool
	Edge         *EdgeVerification
	LastCentreAt time.Time
	SectorPoint  *geometry.Point
}

// Fresh returns a newly initialised Calibration for deviceID with the
// given circle type: station zeroed, no centre, no edge.
func Fresh(deviceID string, t CircleType) (Calibration, error) {
	radius, ok := TargetRadius(t)
	if !ok {
		return Calibration{}, fmt.Errorf("calibration: unknown circle type %q", t)
	}
	return Calibration{
		DeviceID:     deviceID,
		CircleType:   t,
		TargetRadius: radius,
	}, nil
}

// Validate checks the calibration's invariants:
//   - if CentreSet is false, Edge must be nil
//   - TargetRadius must equal the canonical value for CircleType
func (c Calibration) Validate() error {
	if !c.CentreSet && c.Edge != nil {
		return fmt.Errorf("calibration: edge verification present without centre set")
	}
	canonical, ok := TargetRadius(c.CircleType)
	if !ok {
		return fmt.Errorf("calibration: unknown circle type %q", c.CircleType)
	}
	if canonical != c.TargetRadius {
		return fmt.Errorf("calibration: target radius %v does not match canonical %v for %q", c.TargetRadius, canonical, c.CircleType)
	}
	return nil
}

// ReadyForMeasurement reports whether the calibration is legal to measure
// against: centre set, edge present, and in tolerance.
func (c Calibration) ReadyForMeasurement() bool {
	return c.CentreSet && c.Edge != nil && c.Edge.InTolerance
}
