package scheduling

import "time"

// SlotInterval is the fixed granularity at which bookable slots are generated.
const SlotInterval = 30 // minutes

// withinAnyRange reports whether t falls inside at least one working range,
// using inclusive bounds on both ends (start <= t <= end). This is looser
// than slot generation, which stops at end minus SlotInterval; the asymmetry
// matches the source system and is pinned by tests rather than unified.
func withinAnyRange(ranges []WeeklyRange, t TimeOfDay) bool {
	for _, r := range ranges {
		if t >= r.Start && t <= r.End {
			return true
		}
	}
	return false
}

// buildFreeSlots walks each range from start to end minus SlotInterval
// inclusive, in SlotInterval steps, and emits every step not in the occupied
// set. Ranges are processed in store order and are not merged or deduplicated,
// so overlapping ranges can yield duplicate slot values. Output ordering is
// range order then time order, not globally sorted.
func buildFreeSlots(ranges []WeeklyRange, occupied map[TimeOfDay]bool, date time.Time) []Slot {
	var slots []Slot
	for _, r := range ranges {
		for t := r.Start; t <= r.End.AddMinutes(-SlotInterval); t = t.AddMinutes(SlotInterval) {
			if occupied[t] {
				continue
			}
			slots = append(slots, Slot{Date: date, Start: t})
		}
	}
	return slots
}

// occupiedTimes collects the start times of non-cancelled appointments.
func occupiedTimes(appts []Appointment) map[TimeOfDay]bool {
	occupied := make(map[TimeOfDay]bool, len(appts))
	for _, a := range appts {
		if a.Status == StatusCancelled {
			continue
		}
		occupied[a.Start] = true
	}
	return occupied
}
