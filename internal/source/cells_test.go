package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"$1,200", 1200, true},
		{"  350 ", 350, true},
		{"20%", 0.2, true},
		{"No charge", 0, true},
		{"Nothing", 0, true},
		{"Not covered", NotCoveredAmount, true},
		{"NOT COVERED after deductible", NotCoveredAmount, true},
		{"", 0, false},
		{"-", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	_, ok, err := ParseAmount("about twelve")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"20%", 0.2},
		{"20", 0.2},
		{"0.2", 0.2},
		{"1", 1},
		{"0%", 0},
		{"-0.1", -0.1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := ParseRate(tt.raw)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"yes", "Y", "TRUE", "1", "x"} {
		v, err := ParseBool(raw)
		require.NoError(t, err, raw)
		assert.True(t, v, raw)
	}
	for _, raw := range []string{"", "no", "N", "false", "0"} {
		v, err := ParseBool(raw)
		require.NoError(t, err, raw)
		assert.False(t, v, raw)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"MN", "ND", "581"}, ParseList("mn; nd ,581;;"))
	assert.Empty(t, ParseList(""))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Blue Ridge Health", CleanName("BLUE  RIDGE HEALTH"))
	assert.Equal(t, "GEHA", CleanName("GEHA"))
	assert.Equal(t, "Aetna Direct", CleanName("Aetna Direct"))
	assert.Equal(t, "Self-Only", CleanText("Self–Only"))
}
