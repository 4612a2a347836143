package numparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	s, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Standard, s)

	s, err = ByName("fast")
	require.NoError(t, err)
	assert.Equal(t, Fast, s)

	_, err = ByName("turbo")
	assert.Error(t, err)
}

func TestStrategiesAgree(t *testing.T) {
	ints := []string{"0", "1", "-1", "+42", "109274570", "999999999999999999", "9223372036854775807", "-9223372036854775808"}
	for _, s := range ints {
		want, werr := Standard.ParseInt(s)
		got, gerr := Fast.ParseInt(s)
		require.NoError(t, werr, s)
		require.NoError(t, gerr, s)
		assert.Equal(t, want, got, s)
	}

	floats := []string{"0", "0.5", "-1.25", "1e-10", "3.2E+5", "100", "inf", "NaN"}
	for _, s := range floats {
		want, werr := Standard.ParseFloat(s)
		got, gerr := Fast.ParseFloat(s)
		require.NoError(t, werr, s)
		require.NoError(t, gerr, s)
		if math.IsNaN(want) {
			assert.True(t, math.IsNaN(got), s)
			continue
		}
		assert.Equal(t, want, got, s)
	}
}

func TestInvalidInput(t *testing.T) {
	for _, s := range []string{"", "-", "12a", "NA", "1.5", "99999999999999999999"} {
		_, err := Fast.ParseInt(s)
		assert.Error(t, err, s)
		_, err = Standard.ParseInt(s)
		assert.Error(t, err, s)
	}
	for _, s := range []string{"", "NA", "abc"} {
		_, err := Fast.ParseFloat(s)
		assert.Error(t, err, s)
	}
}
