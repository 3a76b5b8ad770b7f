package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
	"github.com/hackgods/consultation-scheduling/internal/scheduling"
)

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		priority, err := appointment.ParsePriority(req.Priority)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_priority", "priority must be one of LOW, MEDIUM, HIGH, URGENT")
			return
		}

		appt, err := svc.RequestAppointment(r.Context(), appointment.RequestInput{
			PatientID: req.PatientID,
			Specialty: req.Specialty,
			City:      req.City,
			Priority:  priority,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateAppointmentResponse{
			AppointmentID: appt.ID,
			Status:        appt.Status.String(),
			Message:       "appointment request received and queued for scheduling",
		})
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func confirmAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req ConfirmAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirmed == nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "body must be {\"confirmed\": true|false}")
			return
		}

		appt, err := svc.ApplyConfirmation(r.Context(), id, *req.Confirmed)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func runSchedulingHandler(runner SchedulingRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := runner.RunOnce(r.Context()); err != nil {
			if errors.Is(err, scheduling.ErrRunInProgress) {
				writeError(w, http.StatusConflict, "run_in_progress", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, RunResponse{Status: "completed"})
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
