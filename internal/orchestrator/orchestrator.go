// Package orchestrator implements the four device-facing measurement
// operations (SetCentre, VerifyEdge, MeasureThrow, SectorCheck) plus
// SetCircleType, each serialised by a per-device mutex held for the
// operation's full duration.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/demo"
	"polyfield-edm/internal/geometry"
)

// Orchestrator wires the calibration store, the demo-mode reading
// generator, and the device transport/translator stack into the four
// measurement operations.
type Orchestrator struct {
	store     *calibration.Store
	demoMode  bool
	simulator *demo.Simulator
	devices   DeviceProvider
	history   *ThrowLog
	log       zerolog.Logger

	deviceMus sync.Map // deviceID -> *sync.Mutex
}

// New creates an Orchestrator. devices may be nil when demoMode is true,
// since real transport is never touched in that mode.
func New(store *calibration.Store, demoMode bool, simulator *demo.Simulator, devices DeviceProvider, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		demoMode:  demoMode,
		simulator: simulator,
		devices:   devices,
		history:   NewThrowLog(),
		log:       log,
	}
}

// History returns the append-only throw-history log.
func (o *Orchestrator) History() *ThrowLog { return o.history }

func (o *Orchestrator) muFor(deviceID string) *sync.Mutex {
	v, _ := o.deviceMus.LoadOrStore(deviceID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// SetCircleType selects a circle type for deviceID, discarding any prior
// calibration state. No device I/O is performed.
func (o *Orchestrator) SetCircleType(deviceID string, t calibration.CircleType) (calibration.Calibration, error) {
	mu := o.muFor(deviceID)
	mu.Lock()
	defer mu.Unlock()

	if o.demoMode {
		o.simulator.Reset(deviceID)
	}
	return o.store.SetCircleType(deviceID, t)
}

// SetCentre acquires a Reading at the circle centre and derives station
// coordinates from it.
func (o *Orchestrator) SetCentre(ctx context.Context, deviceID string, singleMode bool) (calibration.Calibration, error) {
	mu := o.muFor(deviceID)
	mu.Lock()
	defer mu.Unlock()

	if !o.store.Exists(deviceID) {
		return calibration.Calibration{}, ErrNotConfigured
	}
	cal, err := o.store.Get(deviceID)
	if err != nil {
		return calibration.Calibration{}, err
	}

	reading, err := o.acquireReading(ctx, deviceID, singleMode, kindCentre, cal)
	if err != nil {
		return calibration.Calibration{}, err
	}

	cal.Station = geometry.StationFromCentre(reading)
	cal.CentreSet = true
	cal.Edge = nil
	cal.LastCentreAt = time.Now().UTC()

	if err := o.store.Put(cal); err != nil {
		return calibration.Calibration{}, err
	}
	o.log.Info().Str("device_id", deviceID).Float64("station_x", cal.Station.X).Float64("station_y", cal.Station.Y).Msg("centre set")
	return cal, nil
}

// VerifyEdge acquires a Reading at the circle edge and computes the
// measured radius, signed difference, and in-tolerance flag. An
// out-of-tolerance result is a successful measurement, not an error.
func (o *Orchestrator) VerifyEdge(ctx context.Context, deviceID string, singleMode bool) (calibration.Calibration, error) {
	mu := o.muFor(deviceID)
	mu.Lock()
	defer mu.Unlock()

	cal, err := o.store.Get(deviceID)
	if err != nil {
		return calibration.Calibration{}, err
	}
	if !cal.CentreSet {
		return calibration.Calibration{}, ErrCentreNotSet
	}

	reading, err := o.acquireReading(ctx, deviceID, singleMode, kindEdge, cal)
	if err != nil {
		return calibration.Calibration{}, err
	}

	tolerance := calibration.ToleranceMm(cal.CircleType)
	result := geometry.VerifyEdge(cal.Station, reading, cal.TargetRadius, tolerance)

	cal.Edge = &calibration.EdgeVerification{
		MeasuredRadius: result.MeasuredRadius,
		DifferenceMm:   result.DifferenceMm,
		ToleranceMm:    result.ToleranceAppliedMm,
		InTolerance:    result.InTolerance,
	}
	if err := o.store.Put(cal); err != nil {
		return calibration.Calibration{}, err
	}

	if !result.InTolerance {
		o.log.Warn().Str("device_id", deviceID).Float64("diff_mm", result.DifferenceMm).Msg("edge verification out of tolerance")
	} else {
		o.log.Info().Str("device_id", deviceID).Float64("diff_mm", result.DifferenceMm).Msg("edge verification passed")
	}
	return cal, nil
}

// ThrowResult is the outcome of a MeasureThrow call.
type ThrowResult struct {
	Distance float64
	Point    geometry.Point
}

// MeasureThrow acquires a throw Reading, computes the landing point and
// legal distance, and appends it to the throw-history log. Outside demo
// mode, the device must have a passing edge verification.
func (o *Orchestrator) MeasureThrow(ctx context.Context, deviceID string, singleMode bool) (ThrowResult, error) {
	mu := o.muFor(deviceID)
	mu.Lock()
	defer mu.Unlock()

	cal, err := o.store.Get(deviceID)
	if err != nil {
		return ThrowResult{}, err
	}
	if !cal.CentreSet {
		return ThrowResult{}, ErrNotCalibrated
	}
	if !o.demoMode && (cal.Edge == nil || !cal.Edge.InTolerance) {
		return ThrowResult{}, ErrNotCalibrated
	}

	reading, err := o.acquireReading(ctx, deviceID, singleMode, kindThrow, cal)
	if err != nil {
		return ThrowResult{}, err
	}

	result := geometry.MeasureThrow(cal.Station, reading, cal.TargetRadius)
	o.history.Append(deviceID, cal.CircleType, result.Point, result.Distance)

	o.log.Info().Str("device_id", deviceID).Float64("distance", result.Distance).Msg("throw measured")
	return ThrowResult{Distance: result.Distance, Point: result.Point}, nil
}

// SectorResult is the outcome of a SectorCheck call.
type SectorResult struct {
	Point              geometry.Point
	AngleDeg           float64
	DistanceFromCentre float64
	DistanceBeyondEdge float64
}

// SectorCheck acquires a Reading at the right-hand sector line, records it
// on the Calibration, and returns its polar angle and distances.
func (o *Orchestrator) SectorCheck(ctx context.Context, deviceID string, singleMode bool) (SectorResult, error) {
	mu := o.muFor(deviceID)
	mu.Lock()
	defer mu.Unlock()

	cal, err := o.store.Get(deviceID)
	if err != nil {
		return SectorResult{}, err
	}
	if !cal.CentreSet {
		return SectorResult{}, ErrCentreNotSet
	}

	reading, err := o.acquireReading(ctx, deviceID, singleMode, kindSector, cal)
	if err != nil {
		return SectorResult{}, err
	}

	result := geometry.SectorCheck(cal.Station, reading, cal.TargetRadius)
	cal.SectorPoint = &result.Point
	if err := o.store.Put(cal); err != nil {
		return SectorResult{}, err
	}

	return SectorResult{
		Point:              result.Point,
		AngleDeg:           result.AngleDeg,
		DistanceFromCentre: result.DistanceFromCentre,
		DistanceBeyondEdge: result.DistanceBeyondEdge,
	}, nil
}

// Statistics summarises the throw-history log for one circle type.
func (o *Orchestrator) Statistics(circleType calibration.CircleType) (Statistics, bool) {
	return o.history.StatisticsFor(circleType)
}
