package schedule

import "time"

// IsOneTimeSlotPast reports whether the slot's end has already passed at the
// reference instant now. A slot missing its date or end time is never
// considered past, so malformed data stays editable rather than frozen.
func IsOneTimeSlotPast(slot OneTimeSlot, now time.Time) bool {
	if slot.Date.IsZero() || slot.EndTime.IsZero() {
		return false
	}
	return slot.Date.At(slot.EndTime, now.Location()).Before(now)
}

// IsRecurringPast reports whether the next occurrence of a weekly window has
// already ended at the reference instant now. The next occurrence is today if
// the weekday matches, otherwise the nearest following matching day; only a
// same-day occurrence whose end time has passed counts as past, so a weekly
// slot is editable again the moment the week rolls over.
//
// An invalid weekday or missing end time is never past.
func IsRecurringPast(day Weekday, end TimeOfDay, now time.Time) bool {
	idx := day.Index()
	if idx < 0 || end.IsZero() {
		return false
	}
	offset := (idx - int(now.Weekday()) + 7) % 7
	occurrence := end.On(now.AddDate(0, 0, offset))
	return occurrence.Before(now)
}

// IsRecurringSlotPast is IsRecurringPast applied to a recurring slot.
func IsRecurringSlotPast(slot RecurringSlot, now time.Time) bool {
	return IsRecurringPast(slot.DayOfWeek, slot.EndTime, now)
}

// IsBreakPast is IsRecurringPast applied to a weekly break.
func IsBreakPast(b Break, now time.Time) bool {
	return IsRecurringPast(b.DayOfWeek, b.EndTime, now)
}
