package protocol

import (
	"fmt"
	"math"
)

// Translator is the capability set a device type must implement: the
// command bytes that trigger a measurement, the ability to recognise a
// complete frame and parse it, and status-code interpretation. New device
// types are added by implementing this set and registering a (vendor,
// product) match in Registry, not by subclassing.
type Translator interface {
	// MeasurementCommand returns the bytes to write to trigger one reading.
	MeasurementCommand() []byte
	// IsFrameComplete reports whether buf holds a full response frame.
	IsFrameComplete(buf []byte) bool
	// ParseFrame decodes a complete frame into a raw reading and status token.
	ParseFrame(buf []byte) (RawReading, string, error)
	// InterpretStatus returns a human-readable description of a status token.
	InterpretStatus(token string) string
	// ToWireSummary re-serialises a reading the way the device would have
	// sent it, for round-trip verification.
	ToWireSummary(r RawReading) string
	// DefaultBaud is the baud rate to use when none is configured.
	DefaultBaud() int
}

// MatoMTS602R is the translator for the Mato MTS-602R+ and compatible
// total stations: a three-byte trigger, ASCII space-separated fields
// terminated by '\n'.
type MatoMTS602R struct{}

var matoCommand = []byte{0x11, 0x0D, 0x0A}

func (MatoMTS602R) MeasurementCommand() []byte { return append([]byte(nil), matoCommand...) }

func (MatoMTS602R) IsFrameComplete(buf []byte) bool {
	for _, b := range buf {
		if b == '\n' {
			return true
		}
	}
	return false
}

func (MatoMTS602R) ParseFrame(buf []byte) (RawReading, string, error) {
	return ParseFrame(string(buf))
}

// statusNormal is the only status token the Mato firmware is documented to
// emit for a successful ranging shot; every other token is advisory only
// and does not by itself invalidate a reading.
const statusNormal = "83"

func (MatoMTS602R) InterpretStatus(token string) string {
	if token == statusNormal {
		return "normal"
	}
	return fmt.Sprintf("advisory status %q (non-normal, reading still usable)", token)
}

func (MatoMTS602R) ToWireSummary(r RawReading) string {
	return fmt.Sprintf("%.0f %s %s", r.SlopeDistanceMm, angleWireToken(r.VerticalAngle), angleWireToken(r.HorizontalAngle))
}

func (MatoMTS602R) DefaultBaud() int { return 9600 }

func angleWireToken(deg float64) string {
	// Re-render as a plain DDDMMSS token (no fractional seconds), rounded
	// to the nearest whole second. The round-trip contract only requires
	// the three numeric fields to compare equal after a parse/format/parse
	// cycle at reading precision, not byte-identical wire bytes.
	total := int(math.Round(deg * 3600))
	ddd := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	return fmt.Sprintf("%03d%02d%02d", ddd, mm, ss)
}

// GenericSerialAdapter is the fallback translator used for unrecognised
// USB vendor/product pairs: it assumes the default Mato command set and
// 9600 baud.
type GenericSerialAdapter struct {
	MatoMTS602R
}
