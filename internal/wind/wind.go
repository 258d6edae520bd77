// Package wind implements the wind-gauge ingestion buffer: a per-device,
// TTL-aging store of recent wind readings with an average over them.
// It is a declared external collaborator (the core never parses a
// wind-gauge wire protocol itself); this package only exposes the narrow
// surface an external ingester feeds and callers read.
package wind

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Gauge is the narrow interface the core depends on: current trailing
// wind average for a device, in metres per second. An external ingester
// is free to implement this differently; Buffer is the reference
// implementation.
type Gauge interface {
	Average(deviceID string) (mps float64, ok bool)
}

// defaultTTL is how long a device's readings are kept after its most
// recent Add before they age out.
const defaultTTL = 2 * time.Minute

// Buffer is a per-device TTL-aging collection of wind readings backed by
// go-cache, exposing their average. A device's readings expire together,
// ttl after its most recent Add; they are not aged out one by one, and the
// number kept per device is not bounded. The core never parses a
// wind-gauge wire protocol itself; this is the narrow surface an external
// ingester feeds and callers read.
type Buffer struct {
	mu  sync.Mutex
	ttl time.Duration
	// readings stores []float64 per device id under the TTL-aging cache;
	// each call to Add resets that device's expiry to ttl from now.
	readings *gocache.Cache
}

// NewBuffer creates a Buffer whose per-device readings expire ttl after
// that device's most recent Add. ttl <= 0 selects defaultTTL.
func NewBuffer(ttl time.Duration) *Buffer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Buffer{
		ttl:      ttl,
		readings: gocache.New(ttl, ttl/2),
	}
}

// Add records a wind-speed reading (metres per second) for deviceID and
// restarts that device's expiry.
func (b *Buffer) Add(deviceID string, mps float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var samples []float64
	if v, ok := b.readings.Get(deviceID); ok {
		samples = v.([]float64)
	}
	samples = append(samples, mps)
	b.readings.Set(deviceID, samples, b.ttl)
}

// Average returns the mean of all wind readings held for deviceID. ok is
// false if there is no unexpired reading.
func (b *Buffer) Average(deviceID string) (mps float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, found := b.readings.Get(deviceID)
	if !found {
		return 0, false
	}
	samples := v.([]float64)
	if len(samples) == 0 {
		return 0, false
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples)), true
}

// Reset discards all buffered readings for deviceID.
func (b *Buffer) Reset(deviceID string) {
	b.readings.Delete(deviceID)
}
