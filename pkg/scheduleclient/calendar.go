package scheduleclient

import (
	"context"
	"errors"
	"time"

	"github.com/careportal/careportal/pkg/schedule"
)

// MoveStatus is the outcome of a calendar drag or resize.
type MoveStatus string

const (
	// MoveCommitted means the server accepted the change and the snapshot
	// has been refreshed.
	MoveCommitted MoveStatus = "COMMITTED"
	// MoveRejectedLocally means the change was refused before any network
	// call; the event must be rendered at its previous geometry.
	MoveRejectedLocally MoveStatus = "REJECTED_LOCALLY"
	// MoveRejectedRemotely means the server refused the change (or the call
	// failed); the event must be rendered at its previous geometry.
	MoveRejectedRemotely MoveStatus = "REJECTED_REMOTELY"
)

// CalendarHandler turns calendar drag/resize gestures into slot updates. The
// calendar renders optimistically; every rejection triggers the revert
// callback so the event snaps back to where the snapshot says it belongs.
type CalendarHandler struct {
	store  *Store
	now    func() time.Time
	revert func(schedule.CalendarEvent)
	notify func(message string)
}

// CalendarOption configures a CalendarHandler.
type CalendarOption func(*CalendarHandler)

// WithRevert installs the callback that restores a rejected event's previous
// geometry.
func WithRevert(fn func(schedule.CalendarEvent)) CalendarOption {
	return func(h *CalendarHandler) { h.revert = fn }
}

// WithNotify installs the callback that surfaces rejection messages. Server
// messages are passed through verbatim.
func WithNotify(fn func(message string)) CalendarOption {
	return func(h *CalendarHandler) { h.notify = fn }
}

// NewCalendarHandler creates a handler over the store.
func NewCalendarHandler(store *Store, opts ...CalendarOption) *CalendarHandler {
	h := &CalendarHandler{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CalendarHandler) rejectLocally(event schedule.CalendarEvent, message string) (MoveStatus, error) {
	if h.revert != nil {
		h.revert(event)
	}
	if h.notify != nil {
		h.notify(message)
	}
	return MoveRejectedLocally, &ValidationError{Message: message}
}

// MoveEvent applies a drag or resize of a calendar event to its source slot.
// Past slots, malformed target ranges, and target times behind the clock are
// rejected before any network call. A server rejection reverts the event and surfaces the server's
// message unchanged; only a committed move leaves the event at its new
// geometry, backed by a refreshed snapshot.
func (h *CalendarHandler) MoveEvent(ctx context.Context, event schedule.CalendarEvent, newStart, newEnd time.Time) (MoveStatus, error) {
	if !newStart.Before(newEnd) {
		return h.rejectLocally(event, "start time must be before end time")
	}
	if schedule.DateOf(newStart) != schedule.DateOf(newEnd) {
		return h.rejectLocally(event, "a slot cannot span multiple days")
	}
	now := h.now()
	if newStart.Before(now) || newEnd.Before(now) {
		return h.rejectLocally(event, "cannot move a slot into the past")
	}

	start := schedule.TimeOfDay{Hour: newStart.Hour(), Minute: newStart.Minute()}
	end := schedule.TimeOfDay{Hour: newEnd.Hour(), Minute: newEnd.Minute()}

	var err error
	switch event.SlotType {
	case schedule.SlotTypeRecurring:
		slot, ok := h.store.FindRecurringSlot(event.SlotID)
		if !ok {
			return h.rejectLocally(event, "slot no longer exists")
		}
		if schedule.IsRecurringSlotPast(slot, now) {
			return h.rejectLocally(event, "past slots cannot be moved")
		}
		slot.DayOfWeek = schedule.WeekdayOf(newStart)
		slot.StartTime = start
		slot.EndTime = end
		err = h.store.UpdateRecurringSlot(ctx, slot)

	case schedule.SlotTypeBreak:
		b, ok := h.store.FindBreak(event.SlotID)
		if !ok {
			return h.rejectLocally(event, "slot no longer exists")
		}
		if schedule.IsBreakPast(b, now) {
			return h.rejectLocally(event, "past slots cannot be moved")
		}
		b.DayOfWeek = schedule.WeekdayOf(newStart)
		b.StartTime = start
		b.EndTime = end
		err = h.store.UpdateBreak(ctx, b)

	case schedule.SlotTypeOneTime:
		slot, ok := h.store.FindOneTimeSlot(event.SlotID)
		if !ok {
			return h.rejectLocally(event, "slot no longer exists")
		}
		if schedule.IsOneTimeSlotPast(slot, now) {
			return h.rejectLocally(event, "past slots cannot be moved")
		}
		slot.Date = schedule.DateOf(newStart)
		slot.StartTime = start
		slot.EndTime = end
		err = h.store.UpdateOneTimeSlot(ctx, slot)

	default:
		return h.rejectLocally(event, "unknown slot type")
	}

	if err == nil {
		return MoveCommitted, nil
	}
	if IsValidation(err) {
		// The store refused before calling out; same contract as a local
		// rejection here.
		if h.revert != nil {
			h.revert(event)
		}
		if h.notify != nil {
			h.notify(err.Error())
		}
		return MoveRejectedLocally, err
	}

	if h.revert != nil {
		h.revert(event)
	}
	if h.notify != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			h.notify(apiErr.Message)
		} else {
			h.notify("the change could not be saved")
		}
	}
	return MoveRejectedRemotely, err
}
