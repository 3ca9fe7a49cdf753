package scheduleclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

func TestStoreLoadReplacesSnapshot(t *testing.T) {
	api, store := newTestStore(t)
	api.full = schedule.FullSchedule{
		RecurringSlots: []schedule.RecurringSlot{
			{ID: uuid.New(), DayOfWeek: schedule.Monday, StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 17}},
		},
	}

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := store.Snapshot(); len(got.RecurringSlots) != 1 {
		t.Fatalf("got %d recurring slots, want 1", len(got.RecurringSlots))
	}
}

func TestStoreAddRefreshesAfterMutation(t *testing.T) {
	api, store := newTestStore(t)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := store.AddRecurringSlot(context.Background(), schedule.RecurringSlot{
		DayOfWeek: schedule.Friday,
		StartTime: schedule.TimeOfDay{Hour: 9},
		EndTime:   schedule.TimeOfDay{Hour: 12},
	})
	if err != nil {
		t.Fatalf("AddRecurringSlot: %v", err)
	}

	// The slot must come back with the server-assigned id: state is always
	// re-fetched, never patched locally.
	snap := store.Snapshot()
	if len(snap.RecurringSlots) != 1 {
		t.Fatalf("got %d recurring slots, want 1", len(snap.RecurringSlots))
	}
	if snap.RecurringSlots[0].ID == uuid.Nil {
		t.Error("snapshot slot should carry the server-assigned id")
	}
	if got := api.countCalls("GET /doctor/schedule/full"); got != 2 {
		t.Errorf("full-schedule fetches = %d, want 2 (load + post-mutation refresh)", got)
	}
}

func TestStoreValidationMakesNoCall(t *testing.T) {
	api, store := newTestStore(t)

	cases := []struct {
		name string
		run  func() error
	}{
		{"invalid weekday", func() error {
			return store.AddRecurringSlot(context.Background(), schedule.RecurringSlot{
				DayOfWeek: "SOMEDAY", StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 10},
			})
		}},
		{"start not before end", func() error {
			return store.AddBreak(context.Background(), schedule.Break{
				DayOfWeek: schedule.Monday, StartTime: schedule.TimeOfDay{Hour: 10}, EndTime: schedule.TimeOfDay{Hour: 10},
			})
		}},
		{"one-time missing date", func() error {
			return store.AddOneTimeSlot(context.Background(), schedule.OneTimeSlot{
				StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 10},
			})
		}},
		{"one-time in the past", func() error {
			return store.AddOneTimeSlot(context.Background(), schedule.OneTimeSlot{
				Date:      schedule.Date{Year: 2026, Month: time.August, Day: 20},
				StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 10},
			})
		}},
		{"empty reason", func() error {
			return store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeBreak, uuid.New(), "")
		}},
	}
	for _, tc := range cases {
		err := tc.run()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !IsValidation(err) {
			t.Errorf("%s: error type = %T, want validation", tc.name, err)
		}
	}
	if len(api.calls) != 0 {
		t.Errorf("server saw %d calls, want 0: %v", len(api.calls), api.calls)
	}
}

func TestStoreFailedMutationLeavesSnapshot(t *testing.T) {
	api, store := newTestStore(t)
	slot := schedule.RecurringSlot{
		ID: uuid.New(), DayOfWeek: schedule.Thursday,
		StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 17},
	}
	api.full.RecurringSlots = []schedule.RecurringSlot{slot}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	api.failMutations(http.StatusConflict, "overlaps an existing slot/break")
	moved := slot
	moved.StartTime = schedule.TimeOfDay{Hour: 8}
	err := store.UpdateRecurringSlot(context.Background(), moved)
	if !IsConflict(err) {
		t.Fatalf("err = %v, want 409 APIError", err)
	}

	snap := store.Snapshot()
	if snap.RecurringSlots[0].StartTime != (schedule.TimeOfDay{Hour: 9}) {
		t.Errorf("snapshot changed after failed mutation: %v", snap.RecurringSlots[0].StartTime)
	}
}

func TestStoreSubmitRemovalRequest(t *testing.T) {
	_, store := newTestStore(t)
	slotID := uuid.New()

	err := store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeRecurring, slotID, "retiring this shift")
	if err != nil {
		t.Fatalf("SubmitRemovalRequest: %v", err)
	}
	if !store.HasPendingRequest(schedule.SlotTypeRecurring, slotID) {
		t.Fatal("request should be visible after refresh")
	}

	// Second request for the same slot is rejected locally.
	err = store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeRecurring, slotID, "again")
	if !IsValidation(err) {
		t.Fatalf("duplicate request: err = %v, want validation", err)
	}

	// A different slot of the same type is unaffected.
	if err := store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeRecurring, uuid.New(), "other slot"); err != nil {
		t.Fatalf("independent slot: %v", err)
	}
}

func TestStoreReasonLengthCap(t *testing.T) {
	api, store := newTestStore(t)

	long := make([]byte, maxReasonLength+1)
	for i := range long {
		long[i] = 'x'
	}
	err := store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeBreak, uuid.New(), string(long))
	if !IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("server saw %d calls, want 0", len(api.calls))
	}

	// Exactly at the cap is accepted.
	if err := store.SubmitRemovalRequest(context.Background(), schedule.SlotTypeBreak, uuid.New(), string(long[:maxReasonLength])); err != nil {
		t.Fatalf("reason at cap: %v", err)
	}
}

func TestStorePastGuardsOnUpdateAndDelete(t *testing.T) {
	api, store := newTestStore(t)
	past := schedule.OneTimeSlot{
		ID:        uuid.New(),
		Date:      schedule.Date{Year: 2026, Month: time.August, Day: 20},
		StartTime: schedule.TimeOfDay{Hour: 9},
		EndTime:   schedule.TimeOfDay{Hour: 10},
	}
	api.full.OneTimeSlots = []schedule.OneTimeSlot{past}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := len(api.calls)

	if err := store.UpdateOneTimeSlot(context.Background(), past); !IsValidation(err) {
		t.Errorf("update past: err = %v, want validation", err)
	}
	if err := store.DeleteOneTimeSlot(context.Background(), past.ID); !IsValidation(err) {
		t.Errorf("delete past: err = %v, want validation", err)
	}
	if len(api.calls) != before {
		t.Errorf("past-slot guard should not reach the server")
	}
}

func TestStoreEventsProjectSnapshot(t *testing.T) {
	api, store := newTestStore(t)
	api.full.RecurringSlots = []schedule.RecurringSlot{
		{ID: uuid.New(), DayOfWeek: schedule.Wednesday, StartTime: schedule.TimeOfDay{Hour: 9}, EndTime: schedule.TimeOfDay{Hour: 17}},
	}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	events := store.Events(fixedNow)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != schedule.CategoryWorking {
		t.Errorf("category = %v, want WORKING", events[0].Category)
	}
}
