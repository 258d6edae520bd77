package calibration_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/geometry"
)

func newTestStore(t *testing.T) *calibration.Store {
	t.Helper()
	persister, err := calibration.OpenSQLitePersister(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { persister.Close() })

	store, err := calibration.NewStore(persister, calibration.Shot, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestFresh_UnknownCircleType(t *testing.T) {
	_, err := calibration.Fresh("dev1", calibration.CircleType("BANANA"))
	require.Error(t, err)
}

func TestGet_DefaultsWithoutPersisting(t *testing.T) {
	store := newTestStore(t)
	c, err := store.Get("dev1")
	require.NoError(t, err)
	assert.Equal(t, calibration.Shot, c.CircleType)
	assert.False(t, c.CentreSet)
	assert.Nil(t, c.Edge)
}

func TestSetCircleType_ResetsExisting(t *testing.T) {
	store := newTestStore(t)
	c, err := store.SetCircleType("dev1", calibration.Discus)
	require.NoError(t, err)
	assert.Equal(t, calibration.Discus, c.CircleType)
	assert.InDelta(t, 1.250, c.TargetRadius, 1e-9)
	assert.False(t, c.CentreSet)
}

func TestInvariant_EdgeRequiresCentre(t *testing.T) {
	c := calibration.Calibration{
		DeviceID:     "dev1",
		CircleType:   calibration.Shot,
		TargetRadius: 1.0675,
		CentreSet:    false,
		Edge:         &calibration.EdgeVerification{InTolerance: true},
	}
	err := c.Validate()
	require.Error(t, err)
}

func TestInvariant_TargetRadiusMustMatchCanonical(t *testing.T) {
	c := calibration.Calibration{
		DeviceID:     "dev1",
		CircleType:   calibration.Shot,
		TargetRadius: 99.0,
	}
	err := c.Validate()
	require.Error(t, err)
}

func TestReadyForMeasurement(t *testing.T) {
	c := calibration.Calibration{CentreSet: true, Edge: &calibration.EdgeVerification{InTolerance: true}}
	assert.True(t, c.ReadyForMeasurement())

	c.Edge.InTolerance = false
	assert.False(t, c.ReadyForMeasurement())

	c.Edge = nil
	assert.False(t, c.ReadyForMeasurement())
}

func TestPutAndGet_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	fresh, err := store.SetCircleType("dev1", calibration.Shot)
	require.NoError(t, err)

	fresh.Station = geometry.Point{X: -5.1004, Y: 6.4948}
	fresh.CentreSet = true
	require.NoError(t, store.Put(fresh))

	got, err := store.Get("dev1")
	require.NoError(t, err)
	assert.True(t, got.CentreSet)
	assert.InDelta(t, -5.1004, got.Station.X, 1e-9)
}

func TestReset_RemovesRecord(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SetCircleType("dev1", calibration.Hammer)
	require.NoError(t, err)

	require.NoError(t, store.Reset("dev1"))

	got, err := store.Get("dev1")
	require.NoError(t, err)
	assert.Equal(t, calibration.Shot, got.CircleType) // back to default, not Hammer
}

func TestSQLitePersister_ReloadOnRestart(t *testing.T) {
	tmp := t.TempDir() + "/cal.db"

	persister, err := calibration.OpenSQLitePersister(tmp)
	require.NoError(t, err)
	store, err := calibration.NewStore(persister, calibration.Shot, zerolog.Nop())
	require.NoError(t, err)

	c, err := store.SetCircleType("dev1", calibration.JavelinArc)
	require.NoError(t, err)
	c.CentreSet = true
	c.Station = geometry.Point{X: 1, Y: 2}
	require.NoError(t, store.Put(c))

	// Force the async Save to have happened by calling it synchronously via
	// the persister directly as well (belt-and-braces for test determinism).
	require.NoError(t, persister.Save(c))
	require.NoError(t, persister.Close())

	persister2, err := calibration.OpenSQLitePersister(tmp)
	require.NoError(t, err)
	defer persister2.Close()

	reloaded, ok, err := persister2.Load("dev1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, calibration.JavelinArc, reloaded.CircleType)
	assert.True(t, reloaded.CentreSet)
}

func TestSQLitePersister_UnknownCircleTypeDiscarded(t *testing.T) {
	persister, err := calibration.OpenSQLitePersister(":memory:")
	require.NoError(t, err)
	defer persister.Close()

	bad := calibration.Calibration{DeviceID: "dev1", CircleType: "UNKNOWN", TargetRadius: 1}
	// Bypass Validate (which would reject this) to exercise the persister's
	// own defensive reload-time filtering directly.
	require.NoError(t, persister.Save(bad))

	_, ok, err := persister.Load("dev1")
	require.NoError(t, err)
	assert.False(t, ok)
}
