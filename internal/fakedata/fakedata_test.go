package fakedata

import (
	"slices"
	"testing"
)

func TestRequest(t *testing.T) {
	for i := 0; i < 200; i++ {
		in := Request()
		if len(in.PatientID) != 11 {
			t.Fatalf("patient id %q is not eleven digits", in.PatientID)
		}
		if !slices.Contains(Specialties, in.Specialty) {
			t.Fatalf("unexpected specialty %q", in.Specialty)
		}
		if !slices.Contains(Cities, in.City) {
			t.Fatalf("unexpected city %q", in.City)
		}
		if in.Priority.String() == "" {
			t.Fatalf("empty priority")
		}
	}
}
