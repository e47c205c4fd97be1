package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCapacity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"bare number", "100", "100 Mbps"},
		{"padded number", "  50 ", "50 Mbps"},
		{"lowercase suffix", "100 mbps", "100 mbps"},
		{"uppercase suffix", "100 MBPS", "100 MBPS"},
		{"mixed case suffix", "100 Mbps", "100 Mbps"},
		{"suffix with padding", " 20 Mbps  ", "20 Mbps"},
		{"free text", "2x10", "2x10 Mbps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCapacity(tt.in))
		})
	}
}

func TestSiteCapacityDisplay(t *testing.T) {
	s := Site{
		ElIspCapacity:      "100",
		IlevantIspCapacity: "50 mbps",
	}
	assert.Equal(t, "100 Mbps", s.ElCapacityMbps())
	assert.Equal(t, "50 mbps", s.IlevantCapacityMbps())
	assert.Equal(t, "", s.HorizonCapacityMbps())
}
