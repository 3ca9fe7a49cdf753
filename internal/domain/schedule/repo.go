package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/careportal/careportal/pkg/schedule"
)

type RecurringSlotRepository interface {
	Create(ctx context.Context, s *RecurringSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecurringSlot, error)
	Update(ctx context.Context, s *RecurringSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RecurringSlot, error)
}

type OneTimeSlotRepository interface {
	Create(ctx context.Context, s *OneTimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*OneTimeSlot, error)
	Update(ctx context.Context, s *OneTimeSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*OneTimeSlot, error)
}

type BreakRepository interface {
	Create(ctx context.Context, b *Break) error
	GetByID(ctx context.Context, id uuid.UUID) (*Break, error)
	Update(ctx context.Context, b *Break) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Break, error)
}

type RemovalRequestRepository interface {
	Create(ctx context.Context, r *RemovalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*RemovalRequest, error)
	Update(ctx context.Context, r *RemovalRequest) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RemovalRequest, error)
	List(ctx context.Context, status schedule.RequestStatus, limit, offset int) ([]*RemovalRequest, int, error)
	HasPending(ctx context.Context, slotType schedule.SlotType, slotID uuid.UUID) (bool, error)
}
