package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies a projected calendar event.
type EventCategory string

const (
	CategoryWorking          EventCategory = "WORKING"
	CategoryBreak            EventCategory = "BREAK"
	CategoryOneTimeAvailable EventCategory = "ONE_TIME_AVAILABLE"
	CategoryOneTimeBlocked   EventCategory = "ONE_TIME_UNAVAILABLE"
)

// CalendarEvent is one renderable block on the weekly calendar. ID is stable
// across re-projections of the same slot: it depends only on the source slot
// type and id, never on the projected date.
type CalendarEvent struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Category EventCategory `json:"category"`
	SlotType SlotType      `json:"slotType"`
	SlotID   uuid.UUID     `json:"slotId"`
}

// EventID builds the stable calendar event id for a slot.
func EventID(slotType SlotType, slotID uuid.UUID) string {
	var prefix string
	switch slotType {
	case SlotTypeRecurring:
		prefix = "recurring"
	case SlotTypeOneTime:
		prefix = "onetime"
	case SlotTypeBreak:
		prefix = "break"
	default:
		prefix = "slot"
	}
	return fmt.Sprintf("%s-%s", prefix, slotID)
}

// WeekDates returns the seven calendar days of the week containing ref,
// anchored on Sunday, as midnights in ref's location.
func WeekDates(ref time.Time) [7]time.Time {
	sunday := ref.AddDate(0, 0, -int(ref.Weekday()))
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, ref.Location())
	var days [7]time.Time
	for i := range days {
		days[i] = sunday.AddDate(0, 0, i)
	}
	return days
}

// ProjectEvents maps a schedule snapshot onto the week containing ref.
// Recurring slots and breaks land on their weekday's date within that week;
// one-time slots are anchored at their own date, whichever week it falls in,
// and the calendar surface clips what is out of view. Slots with an
// unrecognized weekday are skipped.
func ProjectEvents(full FullSchedule, ref time.Time) []CalendarEvent {
	days := WeekDates(ref)
	events := make([]CalendarEvent, 0, len(full.RecurringSlots)+len(full.RecurringBreaks)+len(full.OneTimeSlots))

	for _, s := range full.RecurringSlots {
		idx := s.DayOfWeek.Index()
		if idx < 0 {
			continue
		}
		events = append(events, CalendarEvent{
			ID:       EventID(SlotTypeRecurring, s.ID),
			Title:    "Working hours",
			Start:    s.StartTime.On(days[idx]),
			End:      s.EndTime.On(days[idx]),
			Category: CategoryWorking,
			SlotType: SlotTypeRecurring,
			SlotID:   s.ID,
		})
	}

	for _, b := range full.RecurringBreaks {
		idx := b.DayOfWeek.Index()
		if idx < 0 {
			continue
		}
		events = append(events, CalendarEvent{
			ID:       EventID(SlotTypeBreak, b.ID),
			Title:    "Break",
			Start:    b.StartTime.On(days[idx]),
			End:      b.EndTime.On(days[idx]),
			Category: CategoryBreak,
			SlotType: SlotTypeBreak,
			SlotID:   b.ID,
		})
	}

	for _, s := range full.OneTimeSlots {
		day := s.Date.At(TimeOfDay{}, ref.Location())
		category := CategoryOneTimeAvailable
		title := "One-time availability"
		if !s.Available {
			category = CategoryOneTimeBlocked
			title = "Unavailable"
		}
		events = append(events, CalendarEvent{
			ID:       EventID(SlotTypeOneTime, s.ID),
			Title:    title,
			Start:    s.StartTime.On(day),
			End:      s.EndTime.On(day),
			Category: category,
			SlotType: SlotTypeOneTime,
			SlotID:   s.ID,
		})
	}

	return events
}
