// Package schedule implements the doctor-schedule domain: weekly recurring
// slots, dated one-time slots, weekly breaks, and the removal-request review
// workflow.
package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

// RecurringSlot maps to the recurring_slots table.
type RecurringSlot struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	DoctorID  uuid.UUID          `db:"doctor_id" json:"-"`
	DayOfWeek schedule.Weekday   `db:"day_of_week" json:"dayOfWeek"`
	StartTime schedule.TimeOfDay `db:"start_time" json:"startTime"`
	EndTime   schedule.TimeOfDay `db:"end_time" json:"endTime"`
	CreatedAt time.Time          `db:"created_at" json:"-"`
	UpdatedAt time.Time          `db:"updated_at" json:"-"`
}

// ToWire converts the row to its client representation.
func (s *RecurringSlot) ToWire() schedule.RecurringSlot {
	return schedule.RecurringSlot{
		ID:        s.ID,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

// OneTimeSlot maps to the one_time_slots table.
type OneTimeSlot struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	DoctorID  uuid.UUID          `db:"doctor_id" json:"-"`
	Date      schedule.Date      `db:"slot_date" json:"date"`
	StartTime schedule.TimeOfDay `db:"start_time" json:"startTime"`
	EndTime   schedule.TimeOfDay `db:"end_time" json:"endTime"`
	Available bool               `db:"available" json:"available"`
	CreatedAt time.Time          `db:"created_at" json:"-"`
	UpdatedAt time.Time          `db:"updated_at" json:"-"`
}

// ToWire converts the row to its client representation.
func (s *OneTimeSlot) ToWire() schedule.OneTimeSlot {
	return schedule.OneTimeSlot{
		ID:        s.ID,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Available: s.Available,
	}
}

// Break maps to the break_slots table.
type Break struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	DoctorID  uuid.UUID          `db:"doctor_id" json:"-"`
	DayOfWeek schedule.Weekday   `db:"day_of_week" json:"dayOfWeek"`
	StartTime schedule.TimeOfDay `db:"start_time" json:"startTime"`
	EndTime   schedule.TimeOfDay `db:"end_time" json:"endTime"`
	CreatedAt time.Time          `db:"created_at" json:"-"`
	UpdatedAt time.Time          `db:"updated_at" json:"-"`
}

// ToWire converts the row to its client representation.
func (b *Break) ToWire() schedule.Break {
	return schedule.Break{
		ID:        b.ID,
		DayOfWeek: b.DayOfWeek,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

// RemovalRequest maps to the slot_removal_requests table.
type RemovalRequest struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	DoctorID   uuid.UUID              `db:"doctor_id" json:"doctorId"`
	SlotType   schedule.SlotType      `db:"slot_type" json:"slotType"`
	SlotID     uuid.UUID              `db:"slot_id" json:"slotId"`
	Reason     string                 `db:"reason" json:"reason"`
	Status     schedule.RequestStatus `db:"status" json:"status"`
	ReviewedAt *time.Time             `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ReviewedBy *uuid.UUID             `db:"reviewed_by" json:"reviewedBy,omitempty"`
	AdminNote  *string                `db:"admin_note" json:"adminNote,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"requestedAt"`
	UpdatedAt  time.Time              `db:"updated_at" json:"-"`
}

// ToWire converts the row to its client representation.
func (r *RemovalRequest) ToWire() schedule.RemovalRequest {
	return schedule.RemovalRequest{
		ID:          r.ID,
		SlotType:    r.SlotType,
		SlotID:      r.SlotID,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.CreatedAt,
		ReviewedAt:  r.ReviewedAt,
		AdminNote:   r.AdminNote,
	}
}
