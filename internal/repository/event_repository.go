package repository

import (
	"database/sql"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
)

type EventRepositoryInterface interface {
	GetByID(id int) (*model.Event, error)
	ListAll() ([]model.Event, error)
}

type EventRepository struct {
	DB *sql.DB
}

func (r *EventRepository) GetByID(id int) (*model.Event, error) {
	row := r.DB.QueryRow(`
        SELECT id, name, location, starts_at, created_at FROM events WHERE id=$1
    `, id)

	var e model.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Location, &e.StartsAt, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewEventNotFound(id)
		}
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) ListAll() ([]model.Event, error) {
	rows, err := r.DB.Query(`
        SELECT id, name, location, starts_at, created_at FROM events ORDER BY starts_at ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.StartsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
