package mws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"GetReport.ReportId=555":      "GetReport.ReportId=555",
		"GetReport.ReportId=a b":      "GetReport.ReportId=a_b",
		"GetReport.ReportId=x*y>z":    "GetReport.ReportId=x_y_z",
		"path/with-dash_and.dots=ok": "path/with-dash_and.dots=ok",
	}

	for in, want := range tests {
		assert.Equal(t, want, natsKey(in), in)
	}
}

func TestNewNATSKVCache_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewNATSKVCache(nil)
	require.ErrorIs(t, err, ErrNATSConfigRequired)
}
