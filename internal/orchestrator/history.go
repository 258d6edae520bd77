package orchestrator

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/geometry"
)

// ThrowRecord is one entry in the append-only throw-history log. It is
// component data kept alongside the Calibration, not stored on it.
type ThrowRecord struct {
	ID         string
	DeviceID   string
	CircleType calibration.CircleType
	Point      geometry.Point
	Distance   float64
	Timestamp  time.Time
}

// ThrowLog is an append-only, mutex-protected history of throw
// measurements. Readers take a snapshot rather than holding the lock.
type ThrowLog struct {
	mu      sync.Mutex
	entries []ThrowRecord
}

// NewThrowLog creates an empty throw-history log.
func NewThrowLog() *ThrowLog {
	return &ThrowLog{}
}

// Append adds a new entry, stamping it with a fresh id and timestamp.
func (l *ThrowLog) Append(deviceID string, circleType calibration.CircleType, p geometry.Point, distance float64) ThrowRecord {
	rec := ThrowRecord{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		CircleType: circleType,
		Point:      p,
		Distance:   distance,
		Timestamp:  time.Now().UTC(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, rec)
	l.mu.Unlock()
	return rec
}

// Snapshot returns a copy of all entries.
func (l *ThrowLog) Snapshot() []ThrowRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ThrowRecord, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log.
func (l *ThrowLog) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Statistics summarises the throw history for one circle type.
type Statistics struct {
	TotalThrows     int
	AverageX        float64
	AverageY        float64
	MaxDistance     float64
	MinDistance     float64
	AverageDistance float64
	SpreadRadius    float64 // std. dev. of landing positions
}

// StatisticsFor computes Statistics over the entries matching circleType.
// ok is false if there are no matching entries.
func (l *ThrowLog) StatisticsFor(circleType calibration.CircleType) (stats Statistics, ok bool) {
	entries := l.Snapshot()

	var matched []ThrowRecord
	for _, e := range entries {
		if e.CircleType == circleType {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return Statistics{}, false
	}

	stats.TotalThrows = len(matched)
	stats.MaxDistance = matched[0].Distance
	stats.MinDistance = matched[0].Distance

	var sumX, sumY, sumDistance float64
	for _, e := range matched {
		sumX += e.Point.X
		sumY += e.Point.Y
		sumDistance += e.Distance
		if e.Distance > stats.MaxDistance {
			stats.MaxDistance = e.Distance
		}
		if e.Distance < stats.MinDistance {
			stats.MinDistance = e.Distance
		}
	}
	n := float64(len(matched))
	stats.AverageX = sumX / n
	stats.AverageY = sumY / n
	stats.AverageDistance = sumDistance / n

	var sumSquared float64
	for _, e := range matched {
		dx := e.Point.X - stats.AverageX
		dy := e.Point.Y - stats.AverageY
		sumSquared += dx*dx + dy*dy
	}
	stats.SpreadRadius = math.Sqrt(sumSquared / n)

	return stats, true
}
