package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:00", want: 540},
		{in: "09:30", want: 570},
		{in: "23:30", want: 1410},
		{in: "24:00", wantErr: true},
		{in: "9:00", want: 540}, // single-digit hour is accepted by the 15:04 layout
		{in: "09:00:00", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "09:30", TimeOfDay(570).String())
	assert.Equal(t, "23:30", TimeOfDay(1410).String())
}

func TestTimeOfDayAddMinutes(t *testing.T) {
	assert.Equal(t, TimeOfDay(570), TimeOfDay(540).AddMinutes(30))
	assert.Equal(t, TimeOfDay(510), TimeOfDay(540).AddMinutes(-30))
}

func TestISOWeekday(t *testing.T) {
	// 2026-08-31 is a Monday, 2026-09-06 a Sunday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, ISOWeekday(monday))
	assert.Equal(t, 7, ISOWeekday(monday.AddDate(0, 0, 6)))
}
