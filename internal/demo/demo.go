// Package demo implements a synthetic reading generator that stands in for
// a real EDM when the process-wide demo-mode toggle is set: it produces
// slope-distance/vertical-angle/horizontal-angle readings that, run
// through the real geometry engine, reproduce a chosen station position,
// the target circle radius, and a plausible throw distance, within a few
// millimetres of jitter.
package demo

import (
	"math"
	"math/rand"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/geometry"
)

// deviceStateTTL bounds how long an idle device's simulated station
// position is retained. Each access refreshes the expiry, so only devices
// that go quiet for this long lose their station and get a freshly chosen
// one on next use.
const deviceStateTTL = 30 * time.Minute

// Simulator holds the per-device simulated state: a chosen station
// position and the remembered centre reading used to keep subsequent
// edge/throw readings mutually consistent. State is kept in a TTL-aging
// cache so idle devices don't accumulate forever.
type Simulator struct {
	mu      sync.Mutex
	devices *gocache.Cache
}

type deviceState struct {
	station       geometry.Point
	centreReading *geometry.Reading
}

// NewSimulator creates an empty Simulator; per-device state is created
// lazily on first use.
func NewSimulator() *Simulator {
	return &Simulator{devices: gocache.New(deviceStateTTL, deviceStateTTL/2)}
}

// Reset clears state for deviceID so the next reading re-chooses a
// station position.
func (s *Simulator) Reset(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices.Delete(deviceID)
}

func (s *Simulator) stateFor(deviceID string) *deviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.devices.Get(deviceID); ok {
		st := v.(*deviceState)
		s.devices.Set(deviceID, st, gocache.DefaultExpiration)
		return st
	}

	// Station placed 8-15m from the circle centre at a random bearing, the
	// rough working distance an operator would actually set a total
	// station up at.
	distance := 8.0 + rand.Float64()*7.0
	angle := rand.Float64() * 2 * math.Pi
	st := &deviceState{station: geometry.Point{X: distance * math.Cos(angle), Y: distance * math.Sin(angle)}}
	s.devices.Set(deviceID, st, gocache.DefaultExpiration)
	return st
}

// CentreReading synthesises a reading that, run through geometry.StationFromCentre,
// reproduces the chosen station position within a few millimetres of jitter.
func (s *Simulator) CentreReading(deviceID string) geometry.Reading {
	st := s.stateFor(deviceID)

	distanceToCentre := st.station.Norm()
	harDeg := math.Atan2(-st.station.Y, -st.station.X) * 180.0 / math.Pi
	if harDeg < 0 {
		harDeg += 360.0
	}
	vazDeg := 88.0 + rand.Float64()*4.0

	sd := distanceToCentre / math.Sin(vazDeg*math.Pi/180.0)
	sd += (rand.Float64() - 0.5) * 0.01
	harDeg += (rand.Float64() - 0.5) * 0.1
	vazDeg += (rand.Float64() - 0.5) * 0.1

	r := geometry.Reading{SlopeDistanceMm: sd * 1000.0, VerticalAngle: vazDeg, HorizontalAngle: harDeg}

	s.mu.Lock()
	st.centreReading = &r
	s.devices.Set(deviceID, st, gocache.DefaultExpiration)
	s.mu.Unlock()
	return r
}

// NoiseFreeCentreReading is the same construction as CentreReading but
// without the Gaussian-flavoured jitter terms, so the reconstructed
// station position matches the input exactly (to floating-point
// precision). Useful for exercising the geometry engine's round-trip
// behaviour in isolation from simulator noise.
func NoiseFreeCentreReading(station geometry.Point) geometry.Reading {
	distanceToCentre := station.Norm()
	harDeg := math.Atan2(-station.Y, -station.X) * 180.0 / math.Pi
	if harDeg < 0 {
		harDeg += 360.0
	}
	vazDeg := 90.0
	sd := distanceToCentre / math.Sin(vazDeg*math.Pi/180.0)
	return geometry.Reading{SlopeDistanceMm: sd * 1000.0, VerticalAngle: vazDeg, HorizontalAngle: harDeg}
}

// EdgeReading synthesises an edge reading consistent with the device's
// remembered station and the given target radius, within maxVariationMm of
// the exact target radius. The default variation keeps most simulated
// edges comfortably within the tolerance gate.
func (s *Simulator) EdgeReading(deviceID string, targetRadius float64) geometry.Reading {
	st := s.stateFor(deviceID)
	if st.centreReading == nil {
		s.CentreReading(deviceID)
		st = s.stateFor(deviceID)
	}

	const maxVariationMm = 4.0
	variation := (rand.Float64() - 0.5) * (maxVariationMm / 1000.0)
	effectiveRadius := targetRadius + variation

	edgeAngle := rand.Float64() * 2 * math.Pi
	edge := geometry.Point{X: effectiveRadius * math.Cos(edgeAngle), Y: effectiveRadius * math.Sin(edgeAngle)}

	return readingForDelta(st, edge, st.centreReading.VerticalAngle, 1.0, 0.005, 0.05)
}

// ThrowReading synthesises a throw reading for circleType whose distance
// falls within a plausible range for that event.
func (s *Simulator) ThrowReading(deviceID string, targetRadius float64, circleType calibration.CircleType) geometry.Reading {
	st := s.stateFor(deviceID)
	if st.centreReading == nil {
		s.CentreReading(deviceID)
		st = s.stateFor(deviceID)
	}

	minThrow, maxThrow := throwRange(circleType)
	throwDistance := minThrow + rand.Float64()*(maxThrow-minThrow)
	totalDistance := throwDistance + targetRadius

	throwAngle := (rand.Float64() - 0.5) * math.Pi / 3
	landing := geometry.Point{X: totalDistance * math.Cos(throwAngle), Y: totalDistance * math.Sin(throwAngle)}

	return readingForDelta(st, landing, st.centreReading.VerticalAngle, 3.0, 0.02, 0.1)
}

// NoiseFreeEdgeReading synthesises an edge reading at exactly targetRadius
// from the centre, at the given bearing, with no jitter — useful for
// exercising the edge-tolerance gate against an exact radius.
func NoiseFreeEdgeReading(station geometry.Point, targetRadius, bearingDeg float64) geometry.Reading {
	bearing := bearingDeg * math.Pi / 180.0
	edge := geometry.Point{X: targetRadius * math.Cos(bearing), Y: targetRadius * math.Sin(bearing)}
	dx := edge.X - station.X
	dy := edge.Y - station.Y
	distance := math.Hypot(dx, dy)
	harDeg := math.Atan2(dy, dx) * 180.0 / math.Pi
	if harDeg < 0 {
		harDeg += 360.0
	}
	const vaz = 90.0
	sd := distance / math.Sin(vaz*math.Pi/180.0)
	return geometry.Reading{SlopeDistanceMm: sd * 1000.0, VerticalAngle: vaz, HorizontalAngle: harDeg}
}

func throwRange(circleType calibration.CircleType) (min, max float64) {
	switch circleType {
	case calibration.Shot:
		return 8.0, 18.0
	case calibration.Discus:
		return 25.0, 65.0
	case calibration.Hammer:
		return 20.0, 75.0
	case calibration.JavelinArc:
		return 35.0, 85.0
	default:
		return 15.0, 50.0
	}
}

// readingForDelta builds the reading an EDM at st.station would produce
// for a simulated absolute point p, with the given vertical-angle jitter
// budget (vaJitterDeg) around the remembered centre reading's vertical
// angle, plus sd/angle measurement noise.
func readingForDelta(st *deviceState, p geometry.Point, baseVA, vaJitterDeg, sdNoiseM, angleNoiseDeg float64) geometry.Reading {
	dx := p.X - st.station.X
	dy := p.Y - st.station.Y
	distance := math.Hypot(dx, dy)

	harDeg := math.Atan2(dy, dx) * 180.0 / math.Pi
	if harDeg < 0 {
		harDeg += 360.0
	}
	vazDeg := baseVA + (rand.Float64()-0.5)*vaJitterDeg

	sd := distance / math.Sin(vazDeg*math.Pi/180.0)
	sd += (rand.Float64() - 0.5) * sdNoiseM
	harDeg += (rand.Float64() - 0.5) * angleNoiseDeg
	vazDeg += (rand.Float64() - 0.5) * angleNoiseDeg

	return geometry.Reading{SlopeDistanceMm: sd * 1000.0, VerticalAngle: vazDeg, HorizontalAngle: harDeg}
}
