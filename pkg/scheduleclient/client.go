// Package scheduleclient is the doctor-portal client for the schedule
// service: a thin REST client, an in-memory schedule store that refreshes
// after every successful mutation, per-section editors, and the calendar
// drag/resize workflow.
package scheduleclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

// APIError is a non-2xx response from the schedule service. Message carries
// the server's error text verbatim so callers can show it unchanged.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("schedule api: %d %s", e.Status, e.Message)
}

// IsConflict reports whether err is an APIError with status 409.
func IsConflict(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusConflict
}

// Client calls the schedule service REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client against baseURL (e.g. "https://api.clinic.example").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRemovalRequest is the body of POST /doctor/schedule/removal-request.
type CreateRemovalRequest struct {
	SlotType schedule.SlotType `json:"slotType"`
	SlotID   uuid.UUID         `json:"slotId"`
	Reason   string            `json:"reason"`
}

// FullSchedule fetches the complete schedule snapshot.
func (c *Client) FullSchedule(ctx context.Context) (schedule.FullSchedule, error) {
	var full schedule.FullSchedule
	err := c.do(ctx, http.MethodGet, "/doctor/schedule/full", nil, &full)
	return full, err
}

// RemovalRequests lists the doctor's own removal requests.
func (c *Client) RemovalRequests(ctx context.Context) ([]schedule.RemovalRequest, error) {
	var requests []schedule.RemovalRequest
	err := c.do(ctx, http.MethodGet, "/doctor/schedule/removal-requests", nil, &requests)
	return requests, err
}

// SubmitRemovalRequest files a removal request for an existing slot.
func (c *Client) SubmitRemovalRequest(ctx context.Context, req CreateRemovalRequest) (schedule.RemovalRequest, error) {
	var created schedule.RemovalRequest
	err := c.do(ctx, http.MethodPost, "/doctor/schedule/removal-request", req, &created)
	return created, err
}

// CreateRecurringSlot adds a weekly working window.
func (c *Client) CreateRecurringSlot(ctx context.Context, slot schedule.RecurringSlot) (schedule.RecurringSlot, error) {
	var created schedule.RecurringSlot
	err := c.do(ctx, http.MethodPost, "/doctor/schedule/recurring", slot, &created)
	return created, err
}

// UpdateRecurringSlot replaces an existing weekly working window.
func (c *Client) UpdateRecurringSlot(ctx context.Context, slot schedule.RecurringSlot) (schedule.RecurringSlot, error) {
	var updated schedule.RecurringSlot
	err := c.do(ctx, http.MethodPut, "/doctor/schedule/recurring/"+slot.ID.String(), slot, &updated)
	return updated, err
}

// DeleteRecurringSlot removes a weekly working window.
func (c *Client) DeleteRecurringSlot(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/doctor/schedule/recurring/"+id.String(), nil, nil)
}

// CreateOneTimeSlot adds a dated exception slot.
func (c *Client) CreateOneTimeSlot(ctx context.Context, slot schedule.OneTimeSlot) (schedule.OneTimeSlot, error) {
	var created schedule.OneTimeSlot
	err := c.do(ctx, http.MethodPost, "/doctor/schedule/onetime", slot, &created)
	return created, err
}

// UpdateOneTimeSlot replaces an existing dated exception slot.
func (c *Client) UpdateOneTimeSlot(ctx context.Context, slot schedule.OneTimeSlot) (schedule.OneTimeSlot, error) {
	var updated schedule.OneTimeSlot
	err := c.do(ctx, http.MethodPut, "/doctor/schedule/onetime/"+slot.ID.String(), slot, &updated)
	return updated, err
}

// DeleteOneTimeSlot removes a dated exception slot.
func (c *Client) DeleteOneTimeSlot(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/doctor/schedule/onetime/"+id.String(), nil, nil)
}

// CreateBreak adds a weekly break.
func (c *Client) CreateBreak(ctx context.Context, b schedule.Break) (schedule.Break, error) {
	var created schedule.Break
	err := c.do(ctx, http.MethodPost, "/doctor/schedule/break", b, &created)
	return created, err
}

// UpdateBreak replaces an existing weekly break.
func (c *Client) UpdateBreak(ctx context.Context, b schedule.Break) (schedule.Break, error) {
	var updated schedule.Break
	err := c.do(ctx, http.MethodPut, "/doctor/schedule/break/"+b.ID.String(), b, &updated)
	return updated, err
}

// DeleteBreak removes a weekly break.
func (c *Client) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/doctor/schedule/break/"+id.String(), nil, nil)
}

// errorBody matches echo's default error envelope.
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope errorBody
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
