package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilal-chat-backend/internal/dialogue"
)

func TestAppointmentLogAppendAndList(t *testing.T) {
	l := NewAppointmentLog(nil)
	require.NoError(t, l.Append(dialogue.Booking{Name: "Jane Doe", DateTime: "2026-01-20 14:00", Purpose: "consultation"}))
	require.NoError(t, l.Append(dialogue.Booking{Name: "John Roe", DateTime: "tomorrow", Purpose: "follow-up"}))

	appts := l.List()
	require.Len(t, appts, 2)
	assert.Equal(t, "Jane Doe", appts[0].Name)
	assert.Equal(t, "2026-01-20 14:00", appts[0].DateTime)
	assert.Equal(t, "consultation", appts[0].Purpose)
	assert.False(t, appts[0].CreatedAt.IsZero())
	assert.Equal(t, "John Roe", appts[1].Name)
}

type stubAppointmentDB struct {
	records []Appointment
	saved   []Appointment
	listErr error
}

func (s *stubAppointmentDB) SaveAppointment(appt Appointment) error {
	s.saved = append(s.saved, appt)
	s.records = append(s.records, appt)
	return nil
}

func (s *stubAppointmentDB) ListAppointments() ([]Appointment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Appointment, len(s.records))
	copy(out, s.records)
	return out, nil
}

func TestAppointmentLogMirrorsAppendsToDatabase(t *testing.T) {
	db := &stubAppointmentDB{}
	l := NewAppointmentLog(db)
	require.NoError(t, l.Append(dialogue.Booking{Name: "Jane Doe", DateTime: "tomorrow", Purpose: "consultation"}))

	require.Len(t, db.saved, 1)
	assert.Equal(t, "Jane Doe", db.saved[0].Name)
}

func TestAppointmentListReadsFromDatabase(t *testing.T) {
	// A record from a prior run exists only in the database.
	db := &stubAppointmentDB{records: []Appointment{
		{Name: "Earlier Client", DateTime: "last week", Purpose: "intro", CreatedAt: time.Now().Add(-24 * time.Hour)},
	}}
	l := NewAppointmentLog(db)
	require.NoError(t, l.Append(dialogue.Booking{Name: "Jane Doe", DateTime: "tomorrow", Purpose: "consultation"}))

	appts := l.List()
	require.Len(t, appts, 2)
	assert.Equal(t, "Earlier Client", appts[0].Name)
	assert.Equal(t, "Jane Doe", appts[1].Name)
}

func TestAppointmentListFallsBackToMemoryOnDatabaseError(t *testing.T) {
	db := &stubAppointmentDB{listErr: errors.New("connection refused")}
	l := NewAppointmentLog(db)
	require.NoError(t, l.Append(dialogue.Booking{Name: "Jane Doe", DateTime: "tomorrow", Purpose: "consultation"}))

	appts := l.List()
	require.Len(t, appts, 1)
	assert.Equal(t, "Jane Doe", appts[0].Name)
}

func TestAppointmentListReturnsCopy(t *testing.T) {
	l := NewAppointmentLog(nil)
	require.NoError(t, l.Append(dialogue.Booking{Name: "Jane", DateTime: "t", Purpose: "p"}))
	appts := l.List()
	appts[0].Name = "mutated"
	assert.Equal(t, "Jane", l.List()[0].Name)
}
