package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKey_FixedWidth(t *testing.T) {
	tests := []struct {
		name string
		unix float64
		want string
	}{
		{"epoch", 0, "0000000000.000000"},
		{"sub-second", 0.5, "0000000000.500000"},
		{"modern timestamp", 1316594821.927108, "1316594821.927108"},
		{"microsecond precision", 1.000001, "0000000001.000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatKey(tt.unix)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, keyWidth)
		})
	}
}

func TestFormatKey_LexicographicOrderEqualsTimeOrder(t *testing.T) {
	stamps := []float64{0, 0.000001, 1, 9.999999, 10, 1316594821.927108, 1316594822}
	for i := 1; i < len(stamps); i++ {
		earlier := FormatKey(stamps[i-1])
		later := FormatKey(stamps[i])
		assert.Less(t, earlier, later,
			"key for %f must sort before key for %f", stamps[i-1], stamps[i])
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	for _, unix := range []float64{0, 0.25, 1316594821.927108} {
		got, err := ParseKey(FormatKey(unix))
		require.NoError(t, err)
		assert.InDelta(t, unix, got, 1e-6)
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "not-a-number", "12.34.56", "12h"} {
		_, err := ParseKey(key)
		assert.Error(t, err, "key %q should not parse", key)
	}
}
