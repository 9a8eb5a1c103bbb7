package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func weeklyRange(t *testing.T, start, end string) WeeklyRange {
	t.Helper()
	return WeeklyRange{Start: mustTime(t, start), End: mustTime(t, end)}
}

func slotTimes(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.String())
	}
	return out
}

var testDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // a Monday

func TestBuildFreeSlots_MorningRange(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "09:00", "12:00")}

	slots := buildFreeSlots(ranges, nil, testDate)

	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		slotTimes(slots))
}

func TestBuildFreeSlots_ExcludesOccupied(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "09:00", "12:00")}
	occupied := map[TimeOfDay]bool{mustTime(t, "10:00"): true}

	slots := buildFreeSlots(ranges, occupied, testDate)

	assert.Equal(t,
		[]string{"09:00", "09:30", "10:30", "11:00", "11:30"},
		slotTimes(slots))
}

// The last generated slot starts one interval before the range end; the end
// itself is never a slot.
func TestFreeSlots_ExcludesRangeEnd(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "09:00", "10:00")}

	slots := buildFreeSlots(ranges, nil, testDate)

	assert.Equal(t, []string{"09:00", "09:30"}, slotTimes(slots))
}

func TestBuildFreeSlots_FullyBooked(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "09:00", "10:00")}
	occupied := map[TimeOfDay]bool{
		mustTime(t, "09:00"): true,
		mustTime(t, "09:30"): true,
	}

	slots := buildFreeSlots(ranges, occupied, testDate)

	assert.Empty(t, slots)
}

func TestBuildFreeSlots_NoRanges(t *testing.T) {
	slots := buildFreeSlots(nil, nil, testDate)
	assert.Empty(t, slots)
}

// Overlapping ranges are not merged: each range emits its own slots, so the
// overlap shows up twice, in range order.
func TestBuildFreeSlots_OverlappingRangesDuplicate(t *testing.T) {
	ranges := []WeeklyRange{
		weeklyRange(t, "09:00", "10:30"),
		weeklyRange(t, "10:00", "11:00"),
	}

	slots := buildFreeSlots(ranges, nil, testDate)

	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:00", "10:30"},
		slotTimes(slots))
}

func TestBuildFreeSlots_Deterministic(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "08:00", "12:00"), weeklyRange(t, "14:00", "17:00")}
	occupied := map[TimeOfDay]bool{mustTime(t, "08:30"): true, mustTime(t, "15:00"): true}

	first := buildFreeSlots(ranges, occupied, testDate)
	second := buildFreeSlots(ranges, occupied, testDate)

	assert.Equal(t, first, second)
}

// The bookability check accepts both boundary instants even though the range
// end is never generated as a slot.
func TestWithinWorkingHours_InclusiveBounds(t *testing.T) {
	ranges := []WeeklyRange{weeklyRange(t, "09:00", "12:00")}

	assert.True(t, withinAnyRange(ranges, mustTime(t, "09:00")))
	assert.True(t, withinAnyRange(ranges, mustTime(t, "12:00")))
	assert.True(t, withinAnyRange(ranges, mustTime(t, "10:15")))
	assert.False(t, withinAnyRange(ranges, mustTime(t, "08:30")))
	assert.False(t, withinAnyRange(ranges, mustTime(t, "12:30")))
}

func TestOccupiedTimes_SkipsCancelled(t *testing.T) {
	appts := []Appointment{
		{Start: mustTime(t, "09:00"), Status: StatusPending},
		{Start: mustTime(t, "09:30"), Status: StatusCancelled},
		{Start: mustTime(t, "10:00"), Status: StatusCompleted},
	}

	occupied := occupiedTimes(appts)

	assert.True(t, occupied[mustTime(t, "09:00")])
	assert.False(t, occupied[mustTime(t, "09:30")])
	assert.True(t, occupied[mustTime(t, "10:00")])
}
