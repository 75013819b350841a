package store

import (
	"fmt"

	"bilal-chat-backend/internal/db"
)

// DatabaseStore persists appointments in Postgres. It is optional: when
// DB_URL is unset the appointment log runs in-memory only.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (ds *DatabaseStore) SaveAppointment(appt Appointment) error {
	if appt.Name == "" || appt.DateTime == "" || appt.Purpose == "" {
		return fmt.Errorf("name, datetime, and purpose are required")
	}
	_, err := ds.db.Exec(
		`INSERT INTO appointments (name, preferred_time, purpose, created_at) VALUES ($1, $2, $3, $4)`,
		appt.Name, appt.DateTime, appt.Purpose, appt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

func (ds *DatabaseStore) ListAppointments() ([]Appointment, error) {
	rows, err := ds.db.Query(
		`SELECT name, preferred_time, purpose, created_at FROM appointments ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(&appt.Name, &appt.DateTime, &appt.Purpose, &appt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}
