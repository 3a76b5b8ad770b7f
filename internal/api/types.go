package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	Specialty string `json:"specialty"`
	City      string `json:"city"`
	Priority  string `json:"priority"`
}

type CreateAppointmentResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
}

type ConfirmAppointmentRequest struct {
	Confirmed *bool `json:"confirmed"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   string     `json:"patient_id"`
	DoctorID    *string    `json:"doctor_id,omitempty"`
	Specialty   string     `json:"specialty"`
	City        string     `json:"city"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		Specialty:   a.Specialty,
		City:        a.City,
		ScheduledAt: a.ScheduledAt,
		Location:    a.Location,
		Priority:    a.Priority.String(),
		Status:      a.Status.String(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type RunResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
