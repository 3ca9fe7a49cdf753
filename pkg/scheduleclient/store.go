package scheduleclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careportal/careportal/pkg/schedule"
)

// maxReasonLength caps removal-request reasons.
const maxReasonLength = 1000

// ValidationError is a client-side rejection: the request never reached the
// server.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a client-side validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Store holds the doctor's schedule snapshot. All mutations go through the
// server first; on success the whole snapshot is re-fetched and replaced
// atomically, so the store never patches collections optimistically.
type Store struct {
	client *Client
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	full     schedule.FullSchedule
	requests []schedule.RemovalRequest
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty store backed by client. Call Load before reading.
func NewStore(client *Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the initial snapshot.
func (s *Store) Load(ctx context.Context) error { return s.Refresh(ctx) }

// Refresh re-fetches the full schedule and the removal-request list, then
// replaces both under one lock. On any fetch error the previous snapshot is
// kept untouched.
func (s *Store) Refresh(ctx context.Context) error {
	full, err := s.client.FullSchedule(ctx)
	if err != nil {
		return fmt.Errorf("refresh schedule: %w", err)
	}
	requests, err := s.client.RemovalRequests(ctx)
	if err != nil {
		return fmt.Errorf("refresh removal requests: %w", err)
	}

	s.mu.Lock()
	s.full = full
	s.requests = requests
	s.mu.Unlock()

	s.log.Debug().
		Int("recurring", len(full.RecurringSlots)).
		Int("one_time", len(full.OneTimeSlots)).
		Int("breaks", len(full.RecurringBreaks)).
		Int("removal_requests", len(requests)).
		Msg("schedule snapshot refreshed")
	return nil
}

// Snapshot returns a copy of the current schedule.
func (s *Store) Snapshot() schedule.FullSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.FullSchedule{
		RecurringSlots:  append([]schedule.RecurringSlot(nil), s.full.RecurringSlots...),
		OneTimeSlots:    append([]schedule.OneTimeSlot(nil), s.full.OneTimeSlots...),
		RecurringBreaks: append([]schedule.Break(nil), s.full.RecurringBreaks...),
	}
}

// Requests returns a copy of the doctor's removal requests.
func (s *Store) Requests() []schedule.RemovalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.RemovalRequest(nil), s.requests...)
}

// Events projects the current snapshot onto the week containing ref.
func (s *Store) Events(ref time.Time) []schedule.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.ProjectEvents(s.full, ref)
}

// HasPendingRequest reports whether a PENDING removal request exists for the
// slot.
func (s *Store) HasPendingRequest(slotType schedule.SlotType, slotID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.HasPendingRequest(s.requests, slotType, slotID)
}

// FindRecurringSlot looks up a recurring slot by id in the snapshot.
func (s *Store) FindRecurringSlot(id uuid.UUID) (schedule.RecurringSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, slot := range s.full.RecurringSlots {
		if slot.ID == id {
			return slot, true
		}
	}
	return schedule.RecurringSlot{}, false
}

// FindOneTimeSlot looks up a one-time slot by id in the snapshot.
func (s *Store) FindOneTimeSlot(id uuid.UUID) (schedule.OneTimeSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, slot := range s.full.OneTimeSlots {
		if slot.ID == id {
			return slot, true
		}
	}
	return schedule.OneTimeSlot{}, false
}

// FindBreak looks up a weekly break by id in the snapshot.
func (s *Store) FindBreak(id uuid.UUID) (schedule.Break, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.full.RecurringBreaks {
		if b.ID == id {
			return b, true
		}
	}
	return schedule.Break{}, false
}

// ---------------------------------------------------------------------------
// Mutations: validate locally, call the server, refresh on success. A failed
// call leaves the snapshot untouched.
// ---------------------------------------------------------------------------

func validateWeeklyWindow(day schedule.Weekday, start, end schedule.TimeOfDay, now time.Time) error {
	if !day.Valid() {
		return validationf("invalid day of week: %q", day)
	}
	if !start.Before(end) {
		return validationf("start time must be before end time")
	}
	if schedule.IsRecurringPast(day, end, now) {
		return validationf("slot is in the past")
	}
	return nil
}

func validateOneTime(slot schedule.OneTimeSlot, now time.Time) error {
	if slot.Date.IsZero() {
		return validationf("date is required")
	}
	if !slot.StartTime.Before(slot.EndTime) {
		return validationf("start time must be before end time")
	}
	if schedule.IsOneTimeSlotPast(slot, now) {
		return validationf("slot is in the past")
	}
	return nil
}

// AddRecurringSlot creates a weekly working window.
func (s *Store) AddRecurringSlot(ctx context.Context, slot schedule.RecurringSlot) error {
	if err := validateWeeklyWindow(slot.DayOfWeek, slot.StartTime, slot.EndTime, s.now()); err != nil {
		return err
	}
	if _, err := s.client.CreateRecurringSlot(ctx, slot); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateRecurringSlot replaces an existing weekly working window.
func (s *Store) UpdateRecurringSlot(ctx context.Context, slot schedule.RecurringSlot) error {
	if existing, ok := s.FindRecurringSlot(slot.ID); ok && schedule.IsRecurringSlotPast(existing, s.now()) {
		return validationf("past slots cannot be modified")
	}
	if err := validateWeeklyWindow(slot.DayOfWeek, slot.StartTime, slot.EndTime, s.now()); err != nil {
		return err
	}
	if _, err := s.client.UpdateRecurringSlot(ctx, slot); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteRecurringSlot removes a weekly working window.
func (s *Store) DeleteRecurringSlot(ctx context.Context, id uuid.UUID) error {
	if existing, ok := s.FindRecurringSlot(id); ok && schedule.IsRecurringSlotPast(existing, s.now()) {
		return validationf("past slots cannot be deleted")
	}
	if err := s.client.DeleteRecurringSlot(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// AddOneTimeSlot creates a dated exception slot.
func (s *Store) AddOneTimeSlot(ctx context.Context, slot schedule.OneTimeSlot) error {
	if err := validateOneTime(slot, s.now()); err != nil {
		return err
	}
	if _, err := s.client.CreateOneTimeSlot(ctx, slot); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateOneTimeSlot replaces an existing dated exception slot.
func (s *Store) UpdateOneTimeSlot(ctx context.Context, slot schedule.OneTimeSlot) error {
	if existing, ok := s.FindOneTimeSlot(slot.ID); ok && schedule.IsOneTimeSlotPast(existing, s.now()) {
		return validationf("past slots cannot be modified")
	}
	if err := validateOneTime(slot, s.now()); err != nil {
		return err
	}
	if _, err := s.client.UpdateOneTimeSlot(ctx, slot); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteOneTimeSlot removes a dated exception slot.
func (s *Store) DeleteOneTimeSlot(ctx context.Context, id uuid.UUID) error {
	if existing, ok := s.FindOneTimeSlot(id); ok && schedule.IsOneTimeSlotPast(existing, s.now()) {
		return validationf("past slots cannot be deleted")
	}
	if err := s.client.DeleteOneTimeSlot(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// AddBreak creates a weekly break.
func (s *Store) AddBreak(ctx context.Context, b schedule.Break) error {
	if err := validateWeeklyWindow(b.DayOfWeek, b.StartTime, b.EndTime, s.now()); err != nil {
		return err
	}
	if _, err := s.client.CreateBreak(ctx, b); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateBreak replaces an existing weekly break.
func (s *Store) UpdateBreak(ctx context.Context, b schedule.Break) error {
	if existing, ok := s.FindBreak(b.ID); ok && schedule.IsBreakPast(existing, s.now()) {
		return validationf("past slots cannot be modified")
	}
	if err := validateWeeklyWindow(b.DayOfWeek, b.StartTime, b.EndTime, s.now()); err != nil {
		return err
	}
	if _, err := s.client.UpdateBreak(ctx, b); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteBreak removes a weekly break.
func (s *Store) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	if existing, ok := s.FindBreak(id); ok && schedule.IsBreakPast(existing, s.now()) {
		return validationf("past slots cannot be deleted")
	}
	if err := s.client.DeleteBreak(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SubmitRemovalRequest files a removal request for an existing slot. Rejected
// locally when the reason is empty or too long, or when a PENDING request for
// the same slot already exists.
func (s *Store) SubmitRemovalRequest(ctx context.Context, slotType schedule.SlotType, slotID uuid.UUID, reason string) error {
	if !slotType.Valid() {
		return validationf("invalid slot type: %q", slotType)
	}
	if reason == "" {
		return validationf("reason is required")
	}
	if len(reason) > maxReasonLength {
		return validationf("reason must be at most %d characters", maxReasonLength)
	}
	if s.HasPendingRequest(slotType, slotID) {
		return validationf("a removal request for this slot is already pending")
	}
	_, err := s.client.SubmitRemovalRequest(ctx, CreateRemovalRequest{
		SlotType: slotType,
		SlotID:   slotID,
		Reason:   reason,
	})
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}
