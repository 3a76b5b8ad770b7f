package testfixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

const (
	Specialty = "Cardiology"
	City      = "Campinas"
)

// Doctor builds a cardiologist in City with the given weekly windows.
func Doctor(id, name string, hours ...appointment.WorkingHours) appointment.Doctor {
	return appointment.Doctor{
		ID:           id,
		Name:         name,
		Specialty:    Specialty,
		City:         City,
		WorkingHours: hours,
	}
}

// Window builds a working-hour window from whole hours and minutes.
func Window(day time.Weekday, startHour, startMinute, endHour, endMinute int) appointment.WorkingHours {
	return appointment.WorkingHours{
		Day:   day,
		Start: appointment.NewClockTime(startHour, startMinute),
		End:   appointment.NewClockTime(endHour, endMinute),
	}
}

// Patient builds a patient living in City.
func Patient(identifier string) appointment.Patient {
	return appointment.Patient{
		Identifier: identifier,
		Name:       "Patient " + identifier,
		Email:      identifier + "@example.com",
		Phone:      "+55 19 99999-0000",
		City:       City,
	}
}

// Pending builds a pending request created at createdAt.
func Pending(patientID string, priority appointment.Priority, createdAt time.Time) appointment.Appointment {
	return appointment.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		Specialty: Specialty,
		City:      City,
		Priority:  priority,
		Status:    appointment.StatusPendingScheduling,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Booked builds an appointment already placed with doctor at at.
func Booked(patientID string, doctor appointment.Doctor, at time.Time, status appointment.Status) appointment.Appointment {
	a := Pending(patientID, appointment.PriorityMedium, at.Add(-72*time.Hour))
	doctorID := doctor.ID
	location := doctor.Location()
	a.DoctorID = &doctorID
	a.ScheduledAt = &at
	a.Location = &location
	a.Status = status
	return a
}
