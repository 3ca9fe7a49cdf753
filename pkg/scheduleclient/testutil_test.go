package scheduleclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

// fakeAPI is an in-memory schedule service for client tests.
type fakeAPI struct {
	mu       sync.Mutex
	full     schedule.FullSchedule
	requests []schedule.RemovalRequest

	// failStatus/failMessage, when set, make every mutating call fail.
	failStatus  int
	failMessage string

	calls []string // "METHOD /path"
}

func (f *fakeAPI) countCalls(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAPI) failMutations(status int, message string) {
	f.mu.Lock()
	f.failStatus = status
	f.failMessage = message
	f.mu.Unlock()
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	failStatus, failMessage := f.failStatus, f.failMessage
	f.mu.Unlock()

	if r.Method != http.MethodGet && failStatus != 0 {
		writeError(w, failStatus, failMessage)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/doctor/schedule/full":
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.full)

	case r.Method == http.MethodGet && r.URL.Path == "/doctor/schedule/removal-requests":
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.requests == nil {
			f.requests = []schedule.RemovalRequest{}
		}
		json.NewEncoder(w).Encode(f.requests)

	case r.Method == http.MethodPost && r.URL.Path == "/doctor/schedule/removal-request":
		var body CreateRemovalRequest
		json.NewDecoder(r.Body).Decode(&body)
		req := schedule.RemovalRequest{
			ID:          uuid.New(),
			SlotType:    body.SlotType,
			SlotID:      body.SlotID,
			Reason:      body.Reason,
			Status:      schedule.RequestPending,
			RequestedAt: time.Now(),
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(req)

	case strings.HasPrefix(r.URL.Path, "/doctor/schedule/recurring"):
		f.handleRecurring(w, r)

	case strings.HasPrefix(r.URL.Path, "/doctor/schedule/onetime"):
		f.handleOneTime(w, r)

	case strings.HasPrefix(r.URL.Path, "/doctor/schedule/break"):
		f.handleBreak(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (f *fakeAPI) handleRecurring(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPost:
		var slot schedule.RecurringSlot
		json.NewDecoder(r.Body).Decode(&slot)
		slot.ID = uuid.New()
		f.full.RecurringSlots = append(f.full.RecurringSlots, slot)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(slot)
	case http.MethodPut:
		var slot schedule.RecurringSlot
		json.NewDecoder(r.Body).Decode(&slot)
		for i := range f.full.RecurringSlots {
			if f.full.RecurringSlots[i].ID == slot.ID {
				f.full.RecurringSlots[i] = slot
			}
		}
		json.NewEncoder(w).Encode(slot)
	case http.MethodDelete:
		id, _ := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/doctor/schedule/recurring/"))
		kept := f.full.RecurringSlots[:0]
		for _, s := range f.full.RecurringSlots {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		f.full.RecurringSlots = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeAPI) handleOneTime(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPost:
		var slot schedule.OneTimeSlot
		json.NewDecoder(r.Body).Decode(&slot)
		slot.ID = uuid.New()
		f.full.OneTimeSlots = append(f.full.OneTimeSlots, slot)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(slot)
	case http.MethodPut:
		var slot schedule.OneTimeSlot
		json.NewDecoder(r.Body).Decode(&slot)
		for i := range f.full.OneTimeSlots {
			if f.full.OneTimeSlots[i].ID == slot.ID {
				f.full.OneTimeSlots[i] = slot
			}
		}
		json.NewEncoder(w).Encode(slot)
	case http.MethodDelete:
		id, _ := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/doctor/schedule/onetime/"))
		kept := f.full.OneTimeSlots[:0]
		for _, s := range f.full.OneTimeSlots {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		f.full.OneTimeSlots = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeAPI) handleBreak(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPost:
		var b schedule.Break
		json.NewDecoder(r.Body).Decode(&b)
		b.ID = uuid.New()
		f.full.RecurringBreaks = append(f.full.RecurringBreaks, b)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(b)
	case http.MethodPut:
		var b schedule.Break
		json.NewDecoder(r.Body).Decode(&b)
		for i := range f.full.RecurringBreaks {
			if f.full.RecurringBreaks[i].ID == b.ID {
				f.full.RecurringBreaks[i] = b
			}
		}
		json.NewEncoder(w).Encode(b)
	case http.MethodDelete:
		id, _ := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/doctor/schedule/break/"))
		kept := f.full.RecurringBreaks[:0]
		for _, b := range f.full.RecurringBreaks {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		f.full.RecurringBreaks = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

// newTestStore wires a Store against a fakeAPI. The store's clock is pinned
// to fixedNow.
func newTestStore(t interface{ Cleanup(func()) }) (*fakeAPI, *Store) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := NewStore(NewClient(srv.URL))
	store.now = func() time.Time { return fixedNow }
	return api, store
}

// Wednesday 2026-08-26, 12:00 UTC.
var fixedNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
