package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestContains(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		at         time.Time
		want       bool
	}{
		{"inside plain window", "07:00", "09:00", at(8, 30), true},
		{"before plain window", "07:00", "09:00", at(6, 59), false},
		{"boundaries inclusive", "07:00", "09:00", at(9, 0), true},
		{"wrap window late evening", "22:00", "02:00", at(23, 30), true},
		{"wrap window early morning", "22:00", "02:00", at(1, 15), true},
		{"wrap window midday", "22:00", "02:00", at(10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Contains(tt.start, tt.end, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinutesRejectsMalformedValues(t *testing.T) {
	for _, value := range []string{"", "7", "25:00", "12:61", "ab:cd", "12:00:00"} {
		_, err := Minutes(value)
		assert.Error(t, err, value)
	}
}
