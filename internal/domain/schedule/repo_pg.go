package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careportal/careportal/internal/platform/db"
	"github.com/careportal/careportal/pkg/schedule"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// =========== Recurring Slot Repository ===========

type recurringRepoPG struct{ pool *pgxpool.Pool }

func NewRecurringRepoPG(pool *pgxpool.Pool) RecurringSlotRepository { return &recurringRepoPG{pool: pool} }

const recurringCols = `id, doctor_id, day_of_week, start_time, end_time, created_at, updated_at`

func scanRecurring(row pgx.Row) (*RecurringSlot, error) {
	var s RecurringSlot
	err := row.Scan(&s.ID, &s.DoctorID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *recurringRepoPG) Create(ctx context.Context, s *RecurringSlot) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO recurring_slots (id, doctor_id, day_of_week, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.DoctorID, s.DayOfWeek, s.StartTime, s.EndTime)
	return err
}

func (r *recurringRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecurringSlot, error) {
	return scanRecurring(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+recurringCols+` FROM recurring_slots WHERE id = $1`, id))
}

func (r *recurringRepoPG) Update(ctx context.Context, s *RecurringSlot) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE recurring_slots SET day_of_week=$2, start_time=$3, end_time=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.DayOfWeek, s.StartTime, s.EndTime)
	return err
}

func (r *recurringRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM recurring_slots WHERE id = $1`, id)
	return err
}

func (r *recurringRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RecurringSlot, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+recurringCols+` FROM recurring_slots
		WHERE doctor_id = $1 ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RecurringSlot
	for rows.Next() {
		s, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== One-Time Slot Repository ===========

type oneTimeRepoPG struct{ pool *pgxpool.Pool }

func NewOneTimeRepoPG(pool *pgxpool.Pool) OneTimeSlotRepository { return &oneTimeRepoPG{pool: pool} }

const oneTimeCols = `id, doctor_id, slot_date, start_time, end_time, available, created_at, updated_at`

func scanOneTime(row pgx.Row) (*OneTimeSlot, error) {
	var s OneTimeSlot
	err := row.Scan(&s.ID, &s.DoctorID, &s.Date, &s.StartTime, &s.EndTime, &s.Available, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *oneTimeRepoPG) Create(ctx context.Context, s *OneTimeSlot) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO one_time_slots (id, doctor_id, slot_date, start_time, end_time, available)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.DoctorID, s.Date, s.StartTime, s.EndTime, s.Available)
	return err
}

func (r *oneTimeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OneTimeSlot, error) {
	return scanOneTime(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+oneTimeCols+` FROM one_time_slots WHERE id = $1`, id))
}

func (r *oneTimeRepoPG) Update(ctx context.Context, s *OneTimeSlot) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE one_time_slots SET slot_date=$2, start_time=$3, end_time=$4, available=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Date, s.StartTime, s.EndTime, s.Available)
	return err
}

func (r *oneTimeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM one_time_slots WHERE id = $1`, id)
	return err
}

func (r *oneTimeRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*OneTimeSlot, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+oneTimeCols+` FROM one_time_slots
		WHERE doctor_id = $1 ORDER BY slot_date, start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OneTimeSlot
	for rows.Next() {
		s, err := scanOneTime(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Break Repository ===========

type breakRepoPG struct{ pool *pgxpool.Pool }

func NewBreakRepoPG(pool *pgxpool.Pool) BreakRepository { return &breakRepoPG{pool: pool} }

const breakCols = `id, doctor_id, day_of_week, start_time, end_time, created_at, updated_at`

func scanBreak(row pgx.Row) (*Break, error) {
	var b Break
	err := row.Scan(&b.ID, &b.DoctorID, &b.DayOfWeek, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *breakRepoPG) Create(ctx context.Context, b *Break) error {
	b.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO break_slots (id, doctor_id, day_of_week, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5)`,
		b.ID, b.DoctorID, b.DayOfWeek, b.StartTime, b.EndTime)
	return err
}

func (r *breakRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Break, error) {
	return scanBreak(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+breakCols+` FROM break_slots WHERE id = $1`, id))
}

func (r *breakRepoPG) Update(ctx context.Context, b *Break) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE break_slots SET day_of_week=$2, start_time=$3, end_time=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.DayOfWeek, b.StartTime, b.EndTime)
	return err
}

func (r *breakRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM break_slots WHERE id = $1`, id)
	return err
}

func (r *breakRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Break, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+breakCols+` FROM break_slots
		WHERE doctor_id = $1 ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// =========== Removal Request Repository ===========

type removalRepoPG struct{ pool *pgxpool.Pool }

func NewRemovalRepoPG(pool *pgxpool.Pool) RemovalRequestRepository { return &removalRepoPG{pool: pool} }

const removalCols = `id, doctor_id, slot_type, slot_id, reason, status, reviewed_at, reviewed_by, admin_note, created_at, updated_at`

func scanRemoval(row pgx.Row) (*RemovalRequest, error) {
	var r RemovalRequest
	err := row.Scan(&r.ID, &r.DoctorID, &r.SlotType, &r.SlotID, &r.Reason, &r.Status,
		&r.ReviewedAt, &r.ReviewedBy, &r.AdminNote, &r.CreatedAt, &r.UpdatedAt)
	return &r, err
}

func (r *removalRepoPG) Create(ctx context.Context, req *RemovalRequest) error {
	req.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO slot_removal_requests (id, doctor_id, slot_type, slot_id, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		req.ID, req.DoctorID, req.SlotType, req.SlotID, req.Reason, req.Status)
	return err
}

func (r *removalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RemovalRequest, error) {
	return scanRemoval(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+removalCols+` FROM slot_removal_requests WHERE id = $1`, id))
}

func (r *removalRepoPG) Update(ctx context.Context, req *RemovalRequest) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE slot_removal_requests SET status=$2, reviewed_at=$3, reviewed_by=$4, admin_note=$5, updated_at=NOW()
		WHERE id = $1`,
		req.ID, req.Status, req.ReviewedAt, req.ReviewedBy, req.AdminNote)
	return err
}

func (r *removalRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RemovalRequest, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+removalCols+` FROM slot_removal_requests
		WHERE doctor_id = $1 ORDER BY created_at DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RemovalRequest
	for rows.Next() {
		req, err := scanRemoval(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}

func (r *removalRepoPG) List(ctx context.Context, status schedule.RequestStatus, limit, offset int) ([]*RemovalRequest, int, error) {
	query := `SELECT ` + removalCols + ` FROM slot_removal_requests WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM slot_removal_requests WHERE 1=1`
	var args []interface{}
	idx := 1

	if status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*RemovalRequest
	for rows.Next() {
		req, err := scanRemoval(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}

func (r *removalRepoPG) HasPending(ctx context.Context, slotType schedule.SlotType, slotID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM slot_removal_requests
			WHERE slot_type = $1 AND slot_id = $2 AND status = 'PENDING'
		)`, slotType, slotID).Scan(&exists)
	return exists, err
}
