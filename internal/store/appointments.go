package store

import (
	"log"
	"sync"
	"time"

	"bilal-chat-backend/internal/dialogue"
)

// Appointment is a completed booking plus its creation timestamp. The
// collection is append-only; records are never mutated after append.
type Appointment struct {
	Name      string    `json:"name"`
	DateTime  string    `json:"datetime"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentDatabase is the optional durable backing for the appointment
// log.
type AppointmentDatabase interface {
	SaveAppointment(appt Appointment) error
	ListAppointments() ([]Appointment, error)
}

// AppointmentLog is the appointments collection. When a database is attached
// it is the collection of record: appends are mirrored into it and reads come
// from it, so bookings from prior runs stay visible to the admin view. The
// in-memory slice covers the no-database mode and serves as a fallback when a
// database read fails; a mirror failure is logged and never surfaced to the
// conversation.
type AppointmentLog struct {
	mu           sync.RWMutex
	appointments []Appointment
	database     AppointmentDatabase
}

func NewAppointmentLog(database AppointmentDatabase) *AppointmentLog {
	return &AppointmentLog{database: database}
}

func (l *AppointmentLog) Append(b dialogue.Booking) error {
	appt := Appointment{
		Name:      b.Name,
		DateTime:  b.DateTime,
		Purpose:   b.Purpose,
		CreatedAt: time.Now(),
	}
	l.mu.Lock()
	l.appointments = append(l.appointments, appt)
	l.mu.Unlock()

	if l.database != nil {
		if err := l.database.SaveAppointment(appt); err != nil {
			log.Printf("[appointments] failed to persist appointment: %v", err)
		}
	}
	return nil
}

func (l *AppointmentLog) List() []Appointment {
	if l.database != nil {
		appts, err := l.database.ListAppointments()
		if err == nil {
			return appts
		}
		log.Printf("[appointments] failed to read appointments from database, using in-memory log: %v", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Appointment, len(l.appointments))
	copy(out, l.appointments)
	return out
}
