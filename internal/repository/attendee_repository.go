package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
)

type AttendeeRepositoryInterface interface {
	GetByIDs(ids []int) ([]model.Attendee, error)
	ListByEvent(eventID int) ([]model.Attendee, error)
	GetByTicketCode(code string) (*model.Attendee, error)
	MarkCheckedIn(id int, at time.Time) (bool, error)
}

type AttendeeRepository struct {
	DB *sql.DB
}

const attendeeColumns = `id, event_id, name, phone, ticket_code, checked_in_at, created_at`

func scanAttendee(row interface{ Scan(...any) error }) (*model.Attendee, error) {
	var a model.Attendee
	err := row.Scan(&a.ID, &a.EventID, &a.Name, &a.Phone, &a.TicketCode, &a.CheckedInAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDs fetches attendees for an explicit id list, preserving input order.
// Unknown ids are silently skipped.
func (r *AttendeeRepository) GetByIDs(ids []int) ([]model.Attendee, error) {
	if len(ids) == 0 {
		return []model.Attendee{}, nil
	}

	rows, err := r.DB.Query(`
        SELECT `+attendeeColumns+` FROM attendees WHERE id = ANY($1)
    `, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int]model.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		byID[a.ID] = *a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attendees := make([]model.Attendee, 0, len(byID))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			attendees = append(attendees, a)
		}
	}
	return attendees, nil
}

func (r *AttendeeRepository) ListByEvent(eventID int) ([]model.Attendee, error) {
	rows, err := r.DB.Query(`
        SELECT `+attendeeColumns+` FROM attendees WHERE event_id=$1 ORDER BY id ASC
    `, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := []model.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, *a)
	}
	return attendees, rows.Err()
}

func (r *AttendeeRepository) GetByTicketCode(code string) (*model.Attendee, error) {
	row := r.DB.QueryRow(`SELECT `+attendeeColumns+` FROM attendees WHERE ticket_code=$1`, code)
	a, err := scanAttendee(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewTicketNotFound(code)
		}
		return nil, err
	}
	return a, nil
}

// MarkCheckedIn sets the check-in timestamp once. Returns false when the
// attendee was already checked in.
func (r *AttendeeRepository) MarkCheckedIn(id int, at time.Time) (bool, error) {
	res, err := r.DB.Exec(`
        UPDATE attendees SET checked_in_at=$1 WHERE id=$2 AND checked_in_at IS NULL
    `, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var _ AttendeeRepositoryInterface = (*AttendeeRepository)(nil)
