package orchestrator

import (
	"context"
	"math"
	"time"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/geometry"
	"polyfield-edm/internal/serialtransport"
)

// sdToleranceMm is the paired-read slope-distance agreement gate.
const sdToleranceMm = 3.0

// delayBetweenReadsInPair is the inter-command delay for paired reads.
const delayBetweenReadsInPair = 100 * time.Millisecond

type readingKind int

const (
	kindCentre readingKind = iota
	kindEdge
	kindThrow
	kindSector
)

// acquireReading is the single seam through which every Orchestrator
// operation obtains a Reading: demo mode substitutes the simulator;
// otherwise it drives the real transport/translator/codec stack in
// single or paired mode.
func (o *Orchestrator) acquireReading(ctx context.Context, deviceID string, singleMode bool, kind readingKind, cal calibration.Calibration) (geometry.Reading, error) {
	if o.demoMode {
		switch kind {
		case kindCentre:
			return o.simulator.CentreReading(deviceID), nil
		case kindEdge:
			return o.simulator.EdgeReading(deviceID, cal.TargetRadius), nil
		default: // kindThrow, kindSector
			return o.simulator.ThrowReading(deviceID, cal.TargetRadius, cal.CircleType), nil
		}
	}

	if singleMode {
		return o.acquireSingle(ctx, deviceID)
	}
	return o.acquirePaired(ctx, deviceID)
}

// acquireSingle issues the translator's measurement command once, reads
// one frame, and promotes it directly to an averaged Reading.
func (o *Orchestrator) acquireSingle(ctx context.Context, deviceID string) (geometry.Reading, error) {
	handle, translator, err := o.devices.Handle(deviceID)
	if err != nil {
		return geometry.Reading{}, err
	}

	if err := handle.Write(translator.MeasurementCommand()); err != nil {
		return geometry.Reading{}, err
	}

	buf, err := handle.ReadUntil(ctx, '\n', serialtransport.DefaultReadTimeout)
	if err != nil {
		return geometry.Reading{}, err
	}

	raw, status, err := translator.ParseFrame(buf)
	if err != nil {
		return geometry.Reading{}, err
	}
	if status != "83" {
		o.log.Warn().Str("device_id", deviceID).Str("status", status).
			Str("interpretation", translator.InterpretStatus(status)).
			Msg("non-normal status token (advisory)")
	}

	return geometry.Reading{
		SlopeDistanceMm: raw.SlopeDistanceMm,
		VerticalAngle:   raw.VerticalAngle,
		HorizontalAngle: raw.HorizontalAngle,
	}, nil
}

// acquirePaired performs two single-mode acquisitions 100ms apart and
// averages them, failing with InconsistentError if their slope distances
// disagree by more than sdToleranceMm.
func (o *Orchestrator) acquirePaired(ctx context.Context, deviceID string) (geometry.Reading, error) {
	r1, err := o.acquireSingle(ctx, deviceID)
	if err != nil {
		return geometry.Reading{}, err
	}

	timer := time.NewTimer(delayBetweenReadsInPair)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return geometry.Reading{}, ctx.Err()
	}

	r2, err := o.acquireSingle(ctx, deviceID)
	if err != nil {
		return geometry.Reading{}, err
	}

	diff := math.Abs(r1.SlopeDistanceMm - r2.SlopeDistanceMm)
	if diff > sdToleranceMm {
		return geometry.Reading{}, &InconsistentError{SD1: r1.SlopeDistanceMm, SD2: r2.SlopeDistanceMm, DiffMm: diff}
	}

	return geometry.Reading{
		SlopeDistanceMm: (r1.SlopeDistanceMm + r2.SlopeDistanceMm) / 2.0,
		VerticalAngle:   (r1.VerticalAngle + r2.VerticalAngle) / 2.0,
		HorizontalAngle: (r1.HorizontalAngle + r2.HorizontalAngle) / 2.0,
	}, nil
}
