package scheduleclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

// ErrBusy is returned when an editor already has an operation in flight.
var ErrBusy = errors.New("another operation is in flight")

// ErrDeclined is returned when the confirm callback rejects a deletion.
var ErrDeclined = errors.New("deletion declined")

// SlotKind describes one schedule section to the generic editor: its label,
// its past check, and the store operations that back it.
type SlotKind[S any] struct {
	Label  string
	Type   schedule.SlotType
	ID     func(S) uuid.UUID
	IsPast func(S, time.Time) bool
	Add    func(context.Context, *Store, S) error
	Update func(context.Context, *Store, S) error
	Delete func(context.Context, *Store, uuid.UUID) error
}

// RecurringKind edits weekly working windows.
var RecurringKind = SlotKind[schedule.RecurringSlot]{
	Label:  "working hours",
	Type:   schedule.SlotTypeRecurring,
	ID:     func(s schedule.RecurringSlot) uuid.UUID { return s.ID },
	IsPast: schedule.IsRecurringSlotPast,
	Add:    func(ctx context.Context, st *Store, s schedule.RecurringSlot) error { return st.AddRecurringSlot(ctx, s) },
	Update: func(ctx context.Context, st *Store, s schedule.RecurringSlot) error { return st.UpdateRecurringSlot(ctx, s) },
	Delete: func(ctx context.Context, st *Store, id uuid.UUID) error { return st.DeleteRecurringSlot(ctx, id) },
}

// OneTimeKind edits dated exception slots.
var OneTimeKind = SlotKind[schedule.OneTimeSlot]{
	Label:  "one-time slot",
	Type:   schedule.SlotTypeOneTime,
	ID:     func(s schedule.OneTimeSlot) uuid.UUID { return s.ID },
	IsPast: schedule.IsOneTimeSlotPast,
	Add:    func(ctx context.Context, st *Store, s schedule.OneTimeSlot) error { return st.AddOneTimeSlot(ctx, s) },
	Update: func(ctx context.Context, st *Store, s schedule.OneTimeSlot) error { return st.UpdateOneTimeSlot(ctx, s) },
	Delete: func(ctx context.Context, st *Store, id uuid.UUID) error { return st.DeleteOneTimeSlot(ctx, id) },
}

// BreakKind edits weekly breaks.
var BreakKind = SlotKind[schedule.Break]{
	Label:  "break",
	Type:   schedule.SlotTypeBreak,
	ID:     func(b schedule.Break) uuid.UUID { return b.ID },
	IsPast: schedule.IsBreakPast,
	Add:    func(ctx context.Context, st *Store, b schedule.Break) error { return st.AddBreak(ctx, b) },
	Update: func(ctx context.Context, st *Store, b schedule.Break) error { return st.UpdateBreak(ctx, b) },
	Delete: func(ctx context.Context, st *Store, id uuid.UUID) error { return st.DeleteBreak(ctx, id) },
}

// SectionEditor drives one schedule section. At most one operation per editor
// runs at a time; concurrent attempts fail fast with ErrBusy instead of
// queueing. Editors on different sections operate independently.
type SectionEditor[S any] struct {
	store   *Store
	kind    SlotKind[S]
	confirm func(prompt string) bool
	now     func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// EditorOption configures a SectionEditor.
type EditorOption[S any] func(*SectionEditor[S])

// WithConfirm installs the deletion confirm callback. Without one, deletions
// proceed unprompted.
func WithConfirm[S any](fn func(prompt string) bool) EditorOption[S] {
	return func(e *SectionEditor[S]) { e.confirm = fn }
}

// NewSectionEditor creates an editor for one section of the schedule.
func NewSectionEditor[S any](store *Store, kind SlotKind[S], opts ...EditorOption[S]) *SectionEditor[S] {
	e := &SectionEditor[S]{
		store: store,
		kind:  kind,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRecurringEditor creates the weekly working-hours editor.
func NewRecurringEditor(store *Store, opts ...EditorOption[schedule.RecurringSlot]) *SectionEditor[schedule.RecurringSlot] {
	return NewSectionEditor(store, RecurringKind, opts...)
}

// NewOneTimeEditor creates the dated exception-slot editor.
func NewOneTimeEditor(store *Store, opts ...EditorOption[schedule.OneTimeSlot]) *SectionEditor[schedule.OneTimeSlot] {
	return NewSectionEditor(store, OneTimeKind, opts...)
}

// NewBreakEditor creates the weekly break editor.
func NewBreakEditor(store *Store, opts ...EditorOption[schedule.Break]) *SectionEditor[schedule.Break] {
	return NewSectionEditor(store, BreakKind, opts...)
}

func (e *SectionEditor[S]) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrBusy
	}
	e.inFlight = true
	return nil
}

func (e *SectionEditor[S]) finish() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// Busy reports whether an operation is currently in flight.
func (e *SectionEditor[S]) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// CanEdit reports whether the slot may still be modified or deleted.
func (e *SectionEditor[S]) CanEdit(slot S) bool {
	return !e.kind.IsPast(slot, e.now())
}

// CanRequestRemoval reports whether a removal request may be filed for the
// slot: it must not be past and must not already have a pending request.
func (e *SectionEditor[S]) CanRequestRemoval(slot S) bool {
	return e.CanEdit(slot) && !e.store.HasPendingRequest(e.kind.Type, e.kind.ID(slot))
}

// Submit creates a new slot in this section.
func (e *SectionEditor[S]) Submit(ctx context.Context, slot S) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.finish()
	return e.kind.Add(ctx, e.store, slot)
}

// Update replaces an existing slot in this section.
func (e *SectionEditor[S]) Update(ctx context.Context, slot S) error {
	if !e.CanEdit(slot) {
		return validationf("past slots cannot be modified")
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.finish()
	return e.kind.Update(ctx, e.store, slot)
}

// Delete removes a slot after running the confirm callback. A declined
// confirmation makes no network call.
func (e *SectionEditor[S]) Delete(ctx context.Context, slot S) error {
	if !e.CanEdit(slot) {
		return validationf("past slots cannot be deleted")
	}
	if e.confirm != nil && !e.confirm(fmt.Sprintf("Delete this %s?", e.kind.Label)) {
		return ErrDeclined
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.finish()
	return e.kind.Delete(ctx, e.store, e.kind.ID(slot))
}

// RequestRemoval files a removal request for the slot.
func (e *SectionEditor[S]) RequestRemoval(ctx context.Context, slot S, reason string) error {
	if !e.CanEdit(slot) {
		return validationf("past slots cannot be removed")
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.finish()
	return e.store.SubmitRemovalRequest(ctx, e.kind.Type, e.kind.ID(slot), reason)
}
