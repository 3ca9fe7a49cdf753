package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/careportal/careportal/pkg/schedule"
)

// maxReasonLength caps removal-request reasons.
const maxReasonLength = 1000

// ConflictError marks a rejection that maps to 409: overlapping windows,
// duplicate pending requests, double review.
type ConflictError struct{ msg string }

func (e *ConflictError) Error() string { return e.msg }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ErrNotFound marks a missing or foreign row; maps to 404.
var ErrNotFound = errors.New("not found")

func notFound(what string) error { return fmt.Errorf("%s %w", what, ErrNotFound) }

// Service validates and persists schedule mutations. It re-applies every
// client-side guard: the server is authoritative for past checks, overlap
// conflicts, and pending-request dedup.
type Service struct {
	recurring RecurringSlotRepository
	oneTime   OneTimeSlotRepository
	breaks    BreakRepository
	removals  RemovalRequestRepository
	now       func() time.Time
}

func NewService(recurring RecurringSlotRepository, oneTime OneTimeSlotRepository, breaks BreakRepository, removals RemovalRequestRepository) *Service {
	return &Service{
		recurring: recurring,
		oneTime:   oneTime,
		breaks:    breaks,
		removals:  removals,
		now:       time.Now,
	}
}

// FullSchedule returns the doctor's complete schedule snapshot.
func (s *Service) FullSchedule(ctx context.Context, doctorID uuid.UUID) (schedule.FullSchedule, error) {
	full := schedule.FullSchedule{
		RecurringSlots:  []schedule.RecurringSlot{},
		OneTimeSlots:    []schedule.OneTimeSlot{},
		RecurringBreaks: []schedule.Break{},
	}

	recurring, err := s.recurring.ListByDoctor(ctx, doctorID)
	if err != nil {
		return full, err
	}
	for _, slot := range recurring {
		full.RecurringSlots = append(full.RecurringSlots, slot.ToWire())
	}

	oneTime, err := s.oneTime.ListByDoctor(ctx, doctorID)
	if err != nil {
		return full, err
	}
	for _, slot := range oneTime {
		full.OneTimeSlots = append(full.OneTimeSlots, slot.ToWire())
	}

	breaks, err := s.breaks.ListByDoctor(ctx, doctorID)
	if err != nil {
		return full, err
	}
	for _, b := range breaks {
		full.RecurringBreaks = append(full.RecurringBreaks, b.ToWire())
	}
	return full, nil
}

func validateWeeklyWindow(day schedule.Weekday, start, end schedule.TimeOfDay) error {
	if !day.Valid() {
		return fmt.Errorf("invalid day of week: %q", day)
	}
	if !start.Before(end) {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}

// checkWeeklyOverlap rejects a window that intersects any sibling on the same
// weekday. Windows are half-open, so back-to-back windows are fine.
func checkWeeklyOverlap(day schedule.Weekday, start, end schedule.TimeOfDay, siblings []*RecurringSlot, breaks []*Break, exclude uuid.UUID) error {
	for _, sib := range siblings {
		if sib.ID == exclude || sib.DayOfWeek != day {
			continue
		}
		if schedule.Overlaps(start, end, sib.StartTime, sib.EndTime) {
			return &ConflictError{msg: "overlaps an existing slot/break"}
		}
	}
	for _, b := range breaks {
		if b.ID == exclude || b.DayOfWeek != day {
			continue
		}
		if schedule.Overlaps(start, end, b.StartTime, b.EndTime) {
			return &ConflictError{msg: "overlaps an existing slot/break"}
		}
	}
	return nil
}

// -- Recurring slots --

func (s *Service) CreateRecurringSlot(ctx context.Context, doctorID uuid.UUID, slot *RecurringSlot) error {
	if err := validateWeeklyWindow(slot.DayOfWeek, slot.StartTime, slot.EndTime); err != nil {
		return err
	}
	if schedule.IsRecurringPast(slot.DayOfWeek, slot.EndTime, s.now()) {
		return fmt.Errorf("slot is in the past")
	}
	siblings, err := s.recurring.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkWeeklyOverlap(slot.DayOfWeek, slot.StartTime, slot.EndTime, siblings, nil, uuid.Nil); err != nil {
		return err
	}
	slot.DoctorID = doctorID
	return s.recurring.Create(ctx, slot)
}

func (s *Service) UpdateRecurringSlot(ctx context.Context, doctorID uuid.UUID, slot *RecurringSlot) error {
	existing, err := s.recurring.GetByID(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("slot")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("slot")
	}
	if schedule.IsRecurringPast(existing.DayOfWeek, existing.EndTime, s.now()) {
		return fmt.Errorf("past slots cannot be modified")
	}
	if err := validateWeeklyWindow(slot.DayOfWeek, slot.StartTime, slot.EndTime); err != nil {
		return err
	}
	siblings, err := s.recurring.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkWeeklyOverlap(slot.DayOfWeek, slot.StartTime, slot.EndTime, siblings, nil, slot.ID); err != nil {
		return err
	}
	slot.DoctorID = doctorID
	return s.recurring.Update(ctx, slot)
}

func (s *Service) DeleteRecurringSlot(ctx context.Context, doctorID, id uuid.UUID) error {
	existing, err := s.recurring.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("slot")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("slot")
	}
	if schedule.IsRecurringPast(existing.DayOfWeek, existing.EndTime, s.now()) {
		return fmt.Errorf("past slots cannot be deleted")
	}
	return s.recurring.Delete(ctx, id)
}

// -- One-time slots --

func (s *Service) validateOneTime(slot *OneTimeSlot) error {
	if slot.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !slot.StartTime.Before(slot.EndTime) {
		return fmt.Errorf("start time must be before end time")
	}
	if schedule.IsOneTimeSlotPast(slot.ToWire(), s.now()) {
		return fmt.Errorf("slot is in the past")
	}
	return nil
}

func checkOneTimeOverlap(slot *OneTimeSlot, siblings []*OneTimeSlot) error {
	for _, sib := range siblings {
		if sib.ID == slot.ID || sib.Date != slot.Date {
			continue
		}
		if schedule.Overlaps(slot.StartTime, slot.EndTime, sib.StartTime, sib.EndTime) {
			return &ConflictError{msg: "overlaps an existing slot/break"}
		}
	}
	return nil
}

func (s *Service) CreateOneTimeSlot(ctx context.Context, doctorID uuid.UUID, slot *OneTimeSlot) error {
	if err := s.validateOneTime(slot); err != nil {
		return err
	}
	siblings, err := s.oneTime.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkOneTimeOverlap(slot, siblings); err != nil {
		return err
	}
	slot.DoctorID = doctorID
	return s.oneTime.Create(ctx, slot)
}

func (s *Service) UpdateOneTimeSlot(ctx context.Context, doctorID uuid.UUID, slot *OneTimeSlot) error {
	existing, err := s.oneTime.GetByID(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("slot")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("slot")
	}
	if schedule.IsOneTimeSlotPast(existing.ToWire(), s.now()) {
		return fmt.Errorf("past slots cannot be modified")
	}
	if err := s.validateOneTime(slot); err != nil {
		return err
	}
	siblings, err := s.oneTime.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkOneTimeOverlap(slot, siblings); err != nil {
		return err
	}
	slot.DoctorID = doctorID
	return s.oneTime.Update(ctx, slot)
}

func (s *Service) DeleteOneTimeSlot(ctx context.Context, doctorID, id uuid.UUID) error {
	existing, err := s.oneTime.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("slot")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("slot")
	}
	if schedule.IsOneTimeSlotPast(existing.ToWire(), s.now()) {
		return fmt.Errorf("past slots cannot be deleted")
	}
	return s.oneTime.Delete(ctx, id)
}

// -- Breaks --

func (s *Service) CreateBreak(ctx context.Context, doctorID uuid.UUID, b *Break) error {
	if err := validateWeeklyWindow(b.DayOfWeek, b.StartTime, b.EndTime); err != nil {
		return err
	}
	if schedule.IsRecurringPast(b.DayOfWeek, b.EndTime, s.now()) {
		return fmt.Errorf("break is in the past")
	}
	siblings, err := s.breaks.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkWeeklyOverlap(b.DayOfWeek, b.StartTime, b.EndTime, nil, siblings, uuid.Nil); err != nil {
		return err
	}
	b.DoctorID = doctorID
	return s.breaks.Create(ctx, b)
}

func (s *Service) UpdateBreak(ctx context.Context, doctorID uuid.UUID, b *Break) error {
	existing, err := s.breaks.GetByID(ctx, b.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("break")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("break")
	}
	if schedule.IsRecurringPast(existing.DayOfWeek, existing.EndTime, s.now()) {
		return fmt.Errorf("past breaks cannot be modified")
	}
	if err := validateWeeklyWindow(b.DayOfWeek, b.StartTime, b.EndTime); err != nil {
		return err
	}
	siblings, err := s.breaks.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := checkWeeklyOverlap(b.DayOfWeek, b.StartTime, b.EndTime, nil, siblings, b.ID); err != nil {
		return err
	}
	b.DoctorID = doctorID
	return s.breaks.Update(ctx, b)
}

func (s *Service) DeleteBreak(ctx context.Context, doctorID, id uuid.UUID) error {
	existing, err := s.breaks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("break")
		}
		return err
	}
	if existing.DoctorID != doctorID {
		return notFound("break")
	}
	if schedule.IsRecurringPast(existing.DayOfWeek, existing.EndTime, s.now()) {
		return fmt.Errorf("past breaks cannot be deleted")
	}
	return s.breaks.Delete(ctx, id)
}

// -- Removal requests --

// slotExists verifies the referenced slot exists and belongs to the doctor.
func (s *Service) slotExists(ctx context.Context, doctorID uuid.UUID, slotType schedule.SlotType, slotID uuid.UUID) error {
	var ownerID uuid.UUID
	var err error
	switch slotType {
	case schedule.SlotTypeRecurring:
		var slot *RecurringSlot
		if slot, err = s.recurring.GetByID(ctx, slotID); err == nil {
			ownerID = slot.DoctorID
		}
	case schedule.SlotTypeOneTime:
		var slot *OneTimeSlot
		if slot, err = s.oneTime.GetByID(ctx, slotID); err == nil {
			ownerID = slot.DoctorID
		}
	case schedule.SlotTypeBreak:
		var b *Break
		if b, err = s.breaks.GetByID(ctx, slotID); err == nil {
			ownerID = b.DoctorID
		}
	default:
		return fmt.Errorf("invalid slot type: %q", slotType)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound("slot")
	}
	if err != nil {
		return err
	}
	if ownerID != doctorID {
		return notFound("slot")
	}
	return nil
}

func (s *Service) CreateRemovalRequest(ctx context.Context, doctorID uuid.UUID, req *RemovalRequest) error {
	if req.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if len(req.Reason) > maxReasonLength {
		return fmt.Errorf("reason must be at most %d characters", maxReasonLength)
	}
	if err := s.slotExists(ctx, doctorID, req.SlotType, req.SlotID); err != nil {
		return err
	}
	pending, err := s.removals.HasPending(ctx, req.SlotType, req.SlotID)
	if err != nil {
		return err
	}
	if pending {
		return &ConflictError{msg: "a removal request for this slot is already pending"}
	}
	req.DoctorID = doctorID
	req.Status = schedule.RequestPending
	return s.removals.Create(ctx, req)
}

func (s *Service) ListRemovalRequestsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RemovalRequest, error) {
	return s.removals.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListRemovalRequests(ctx context.Context, status schedule.RequestStatus, limit, offset int) ([]*RemovalRequest, int, error) {
	if status != "" && status != schedule.RequestPending && status != schedule.RequestApproved && status != schedule.RequestDenied {
		return nil, 0, fmt.Errorf("invalid status: %q", status)
	}
	return s.removals.List(ctx, status, limit, offset)
}

// ReviewRemovalRequest resolves a PENDING request. Approval deletes the
// referenced slot; a slot that has already vanished does not block approval.
func (s *Service) ReviewRemovalRequest(ctx context.Context, adminID, requestID uuid.UUID, approve bool, adminNote *string) (*RemovalRequest, error) {
	req, err := s.removals.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("removal request")
		}
		return nil, err
	}
	if req.Status != schedule.RequestPending {
		return nil, &ConflictError{msg: "removal request has already been reviewed"}
	}

	if approve {
		if err := s.deleteSlotForRequest(ctx, req); err != nil {
			return nil, err
		}
		req.Status = schedule.RequestApproved
	} else {
		req.Status = schedule.RequestDenied
	}
	reviewedAt := s.now()
	req.ReviewedAt = &reviewedAt
	req.ReviewedBy = &adminID
	req.AdminNote = adminNote

	if err := s.removals.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) deleteSlotForRequest(ctx context.Context, req *RemovalRequest) error {
	var err error
	switch req.SlotType {
	case schedule.SlotTypeRecurring:
		err = s.recurring.Delete(ctx, req.SlotID)
	case schedule.SlotTypeOneTime:
		err = s.oneTime.Delete(ctx, req.SlotID)
	case schedule.SlotTypeBreak:
		err = s.breaks.Delete(ctx, req.SlotID)
	default:
		return fmt.Errorf("invalid slot type: %q", req.SlotType)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
