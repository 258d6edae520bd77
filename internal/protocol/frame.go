// Package protocol implements the EDM wire codec's response-frame decoding
// and the per-device translators that turn those frames into raw readings.
package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"polyfield-edm/internal/angle"
)

// RawReading is the direct, unaveraged output of one device exchange.
type RawReading struct {
	SlopeDistanceMm float64
	VerticalAngle   float64 // decimal degrees, from zenith
	HorizontalAngle float64 // decimal degrees, 0-360
}

// MalformedFrameError reports a response frame that does not decode.
type MalformedFrameError struct {
	Raw    string
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame %q: %s", e.Raw, e.Reason)
}

const maxSlopeDistanceMm = 100_000

// ParseFrame splits a trimmed ASCII response on whitespace runs and expects
// exactly four fields: slope-distance-mm, vertical-angle token,
// horizontal-angle token, status token. It returns the raw reading plus
// the status token, unmodified.
func ParseFrame(raw string) (RawReading, string, error) {
	fields := strings.Fields(raw)
	if len(fields) != 4 {
		return RawReading{}, "", &MalformedFrameError{Raw: raw, Reason: fmt.Sprintf("expected 4 fields, got %d", len(fields))}
	}

	sd, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(sd) || math.IsInf(sd, 0) || sd < 0 || sd > maxSlopeDistanceMm {
		return RawReading{}, "", &MalformedFrameError{Raw: raw, Reason: "slope distance field out of range or non-numeric"}
	}

	va, err := angle.Parse(fields[1])
	if err != nil {
		return RawReading{}, "", &MalformedFrameError{Raw: raw, Reason: fmt.Sprintf("vertical angle: %v", err)}
	}
	har, err := angle.Parse(fields[2])
	if err != nil {
		return RawReading{}, "", &MalformedFrameError{Raw: raw, Reason: fmt.Sprintf("horizontal angle: %v", err)}
	}

	return RawReading{SlopeDistanceMm: sd, VerticalAngle: va, HorizontalAngle: har}, fields[3], nil
}
