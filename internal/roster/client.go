package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Client reads doctors from the roster service.
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

type doctorDTO struct {
	ID           flexibleID       `json:"id"`
	Name         string           `json:"name"`
	Specialty    string           `json:"specialty"`
	City         string           `json:"city"`
	WorkingHours []workingHourDTO `json:"working_hours"`
}

type workingHourDTO struct {
	DayOfWeek string `json:"day_of_week"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("doctor id: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

// FindDoctors returns the doctors of specialty working in city, in the order
// the roster service lists them.
func (c *Client) FindDoctors(ctx context.Context, specialty, city string) ([]appointment.Doctor, error) {
	q := url.Values{}
	q.Set("specialty", specialty)
	q.Set("city", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/doctors?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("roster service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var dtos []doctorDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode roster response: %w", err)
	}

	doctors := make([]appointment.Doctor, 0, len(dtos))
	for _, d := range dtos {
		doctor, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("doctor %s: %w", d.ID, err)
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

func (d doctorDTO) toDomain() (appointment.Doctor, error) {
	if d.ID == "" {
		return appointment.Doctor{}, errors.New("missing id")
	}

	hours := make([]appointment.WorkingHours, 0, len(d.WorkingHours))
	for _, wh := range d.WorkingHours {
		day, err := ParseWeekday(wh.DayOfWeek)
		if err != nil {
			return appointment.Doctor{}, err
		}
		start, err := appointment.ParseClockTime(wh.Start)
		if err != nil {
			return appointment.Doctor{}, err
		}
		end, err := appointment.ParseClockTime(wh.End)
		if err != nil {
			return appointment.Doctor{}, err
		}
		hours = append(hours, appointment.WorkingHours{Day: day, Start: start, End: end})
	}

	return appointment.Doctor{
		ID:           string(d.ID),
		Name:         d.Name,
		Specialty:    d.Specialty,
		City:         d.City,
		WorkingHours: hours,
	}, nil
}

var weekdays = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,

	// Names used by the legacy roster service.
	"DOMINGO": time.Sunday,
	"SEGUNDA": time.Monday,
	"TERCA":   time.Tuesday,
	"QUARTA":  time.Wednesday,
	"QUINTA":  time.Thursday,
	"SEXTA":   time.Friday,
	"SABADO":  time.Saturday,
}

// ParseWeekday accepts full English weekday names in any case, and the
// legacy roster names.
func ParseWeekday(raw string) (time.Weekday, error) {
	if day, ok := weekdays[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown day of week %q", raw)
}
