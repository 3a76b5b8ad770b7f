package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Client reads patient contact details from the patient service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type patientDTO struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
}

// FindByIdentifier fetches a patient. A 404 from the service is reported as
// appointment.ErrPatientNotFound.
func (c *Client) FindByIdentifier(ctx context.Context, identifier string) (*appointment.Patient, error) {
	endpoint := c.baseURL + "/api/v1/patients/" + url.PathEscape(identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build patient request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("patient request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", appointment.ErrPatientNotFound, identifier)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("patient service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var dto patientDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode patient response: %w", err)
	}
	if dto.Identifier == "" {
		dto.Identifier = identifier
	}

	return &appointment.Patient{
		Identifier: dto.Identifier,
		Name:       dto.Name,
		Email:      dto.Email,
		Phone:      dto.Phone,
		City:       dto.City,
	}, nil
}
