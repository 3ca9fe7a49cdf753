package schedule

import (
	"time"

	"github.com/google/uuid"
)

// SlotType identifies which collection a slot belongs to.
type SlotType string

const (
	SlotTypeRecurring SlotType = "RECURRING"
	SlotTypeOneTime   SlotType = "ONE_TIME"
	SlotTypeBreak     SlotType = "BREAK"
)

// Valid reports whether the slot type is one of the three collections.
func (t SlotType) Valid() bool {
	return t == SlotTypeRecurring || t == SlotTypeOneTime || t == SlotTypeBreak
}

// RequestStatus is the lifecycle state of a removal request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestDenied   RequestStatus = "DENIED"
)

// RecurringSlot is a weekly working window: every <dayOfWeek> from startTime
// to endTime, half-open.
type RecurringSlot struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek Weekday   `json:"dayOfWeek"`
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
}

// OneTimeSlot is a dated exception to the weekly pattern. Available false
// marks the window as blocked rather than bookable.
type OneTimeSlot struct {
	ID        uuid.UUID `json:"id"`
	Date      Date      `json:"date"`
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
	Available bool      `json:"available"`
}

// Break is a weekly non-bookable window inside working hours.
type Break struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek Weekday   `json:"dayOfWeek"`
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
}

// RemovalRequest asks an administrator to delete an existing slot. At most
// one PENDING request may exist per (SlotType, SlotID).
type RemovalRequest struct {
	ID          uuid.UUID     `json:"id"`
	SlotType    SlotType      `json:"slotType"`
	SlotID      uuid.UUID     `json:"slotId"`
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requestedAt"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`
	AdminNote   *string       `json:"adminNote,omitempty"`
}

// FullSchedule is the complete schedule snapshot returned by
// GET /doctor/schedule/full.
type FullSchedule struct {
	RecurringSlots  []RecurringSlot `json:"recurringSlots"`
	OneTimeSlots    []OneTimeSlot   `json:"oneTimeSlots"`
	RecurringBreaks []Break         `json:"recurringBreaks"`
}

// HasPendingRequest reports whether any request in the list is PENDING for
// the given slot.
func HasPendingRequest(requests []RemovalRequest, slotType SlotType, slotID uuid.UUID) bool {
	for _, r := range requests {
		if r.Status == RequestPending && r.SlotType == slotType && r.SlotID == slotID {
			return true
		}
	}
	return false
}

// Overlaps reports whether two half-open time ranges on the same day
// intersect. Back-to-back ranges (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
