package angle_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfield-edm/internal/angle"
)

func TestParse_KnownValues(t *testing.T) {
	got, err := angle.Parse("1001021")
	require.NoError(t, err)
	assert.InDelta(t, 100.172500, got, 1e-6)

	got, err = angle.Parse("3080834")
	require.NoError(t, err)
	assert.InDelta(t, 308.142778, got, 1e-6)
}

func TestParse_SixDigitPadding(t *testing.T) {
	got, err := angle.Parse("831021")
	require.NoError(t, err)
	assert.InDelta(t, 83.172500, got, 1e-6)
}

func TestParse_FractionalSeconds(t *testing.T) {
	got, err := angle.Parse("1001021.5")
	require.NoError(t, err)
	assert.InDelta(t, 100.0+1.0/60.0+21.5/3600.0, got, 1e-9)
}

func TestParse_MalformedLength(t *testing.T) {
	_, err := angle.Parse("100102130")
	require.Error(t, err)
	var malErr *angle.MalformedAngleError
	require.ErrorAs(t, err, &malErr)
}

func TestParse_MalformedMinutes(t *testing.T) {
	_, err := angle.Parse("1006021")
	require.Error(t, err)
}

func TestParse_MalformedSeconds(t *testing.T) {
	_, err := angle.Parse("1001060")
	require.Error(t, err)
}

func TestParse_DegreesOverflow(t *testing.T) {
	_, err := angle.Parse("3611021")
	require.Error(t, err)
}

func TestParse_NonNumeric(t *testing.T) {
	_, err := angle.Parse("10A1021")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	tokens := []string{"1001021", "0000000", "3595959", "0831021"}
	for _, tok := range tokens {
		deg, err := angle.Parse(tok)
		require.NoError(t, err)

		formatted := angle.Format(deg)
		reparsed, err := angle.Parse(formatted)
		require.NoError(t, err)
		assert.InDelta(t, deg, reparsed, 1e-6)
	}
}

func TestRoundTrip_ArbitraryDegrees(t *testing.T) {
	for _, deg := range []float64{0, 12.5, 90, 180.333333, 308.142778, 359.999} {
		formatted := angle.Format(deg)
		reparsed, err := angle.Parse(formatted)
		require.NoError(t, err)
		assert.True(t, math.Abs(deg-reparsed) < 1e-6, "deg=%v reparsed=%v", deg, reparsed)
	}
}
