package patient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

func TestClient_FindByIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/patients/12345678900":
			_, _ = w.Write([]byte(`{"name": "Maria Souza", "email": "maria@example.com", "phone": "+55 19 90000-0000", "city": "Campinas"}`))
		case "/api/v1/patients/missing":
			http.NotFound(w, r)
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	got, err := client.FindByIdentifier(ctx, "12345678900")
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if got.Identifier != "12345678900" || got.City != "Campinas" || got.Email != "maria@example.com" {
		t.Fatalf("patient = %+v", got)
	}

	if _, err := client.FindByIdentifier(ctx, "missing"); !errors.Is(err, appointment.ErrPatientNotFound) {
		t.Fatalf("error = %v, want ErrPatientNotFound", err)
	}

	_, err = client.FindByIdentifier(ctx, "other")
	if err == nil || errors.Is(err, appointment.ErrPatientNotFound) {
		t.Fatalf("error = %v, want a service error", err)
	}
}
