// Package fakedata generates plausible appointment requests for the seed and
// simulate tools.
package fakedata

import (
	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

var Specialties = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var Cities = []string{
	"Sao Paulo",
	"Rio de Janeiro",
	"Belo Horizonte",
	"Curitiba",
	"Porto Alegre",
}

// PatientID returns an eleven digit identifier in the patient service format.
func PatientID() string {
	return gofakeit.Numerify("###########")
}

// Priority draws a priority with urgent requests kept rare.
func Priority() appointment.Priority {
	switch n := gofakeit.Number(1, 100); {
	case n <= 10:
		return appointment.PriorityUrgent
	case n <= 30:
		return appointment.PriorityHigh
	case n <= 65:
		return appointment.PriorityMedium
	default:
		return appointment.PriorityLow
	}
}

func Request() appointment.RequestInput {
	return appointment.RequestInput{
		PatientID: PatientID(),
		Specialty: gofakeit.RandomString(Specialties),
		City:      gofakeit.RandomString(Cities),
		Priority:  Priority(),
	}
}
