package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"onlyifyouknow-server/models"

	"github.com/google/uuid"
)

// Beds24 configuration via environment variables:
// BEDS24_API_URL, BEDS24_TOKEN, BEDS24_DEMO (set to "1" for demo mode)

const beds24RequestTimeout = 10 * time.Second

// ProviderListing is what the booking provider returns when a property is
// enlisted.
type ProviderListing struct {
	PropID string `json:"propId"`
	RoomID string `json:"roomId"`
	Demo   bool   `json:"demo"`
}

// Beds24Client talks to the external booking provider. In demo mode it
// synthesizes placeholder listing ids instead of calling out; demo listings
// are always marked as such and never pass for live ones.
type Beds24Client struct {
	baseURL string
	token   string
	demo    bool
	client  *http.Client
}

func NewBeds24Client() *Beds24Client {
	baseURL := os.Getenv("BEDS24_API_URL")
	if baseURL == "" {
		baseURL = "https://beds24.com/api/v2"
	}
	return &Beds24Client{
		baseURL: baseURL,
		token:   os.Getenv("BEDS24_TOKEN"),
		demo:    os.Getenv("BEDS24_DEMO") == "1",
		client:  &http.Client{Timeout: beds24RequestTimeout},
	}
}

type beds24Room struct {
	Name     string  `json:"name"`
	Quantity int     `json:"qty"`
	Max      int     `json:"maxPeople"`
	Price    float32 `json:"rackRate"`
}

type beds24CreateRequest struct {
	Name     string       `json:"name"`
	City     string       `json:"city"`
	Country  string       `json:"country"`
	Address  string       `json:"address"`
	Currency string       `json:"currency"`
	Rooms    []beds24Room `json:"roomTypes"`
}

type beds24CreateResponse struct {
	PropID  string `json:"propId"`
	RoomID  string `json:"roomId"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CreateListing registers a property with Beds24 and returns the external
// listing identifiers.
func (c *Beds24Client) CreateListing(ctx context.Context, p *models.Property) (*ProviderListing, error) {
	if c.demo {
		id := "demo-" + uuid.NewString()
		log.Printf("⚠️  Beds24 demo mode: synthesized listing %s for property %d", id, p.ID)
		return &ProviderListing{PropID: id, RoomID: "demo-room-1", Demo: true}, nil
	}
	if c.token == "" {
		return nil, NewProviderError("BEDS24_TOKEN is not configured", nil)
	}

	payload := beds24CreateRequest{
		Name:     p.Title,
		City:     p.City,
		Country:  p.Country,
		Address:  p.AddressLine1,
		Currency: p.Currency,
		Rooms: []beds24Room{{
			Name:     p.Title,
			Quantity: 1,
			Max:      p.Capacity,
			Price:    p.NightlyPrice,
		}},
	}

	var out beds24CreateResponse
	if err := c.post(ctx, "/properties", payload, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.PropID == "" {
		return nil, NewProviderError(fmt.Sprintf("provider rejected listing: %s", out.Error), nil)
	}
	return &ProviderListing{PropID: out.PropID, RoomID: out.RoomID}, nil
}

type beds24CalendarRequest struct {
	PropID    string  `json:"propId"`
	From      string  `json:"firstNight"`
	To        string  `json:"lastNight"`
	Price     float32 `json:"price"`
	Available int     `json:"numAvail"`
}

// SetCalendar updates pricing and availability for a date range on an
// existing listing. Best-effort from the callers' perspective.
func (c *Beds24Client) SetCalendar(ctx context.Context, propID string, from, to time.Time, price float32, available bool) error {
	if c.demo {
		log.Printf("⚠️  Beds24 demo mode: skipping calendar update for listing %s", propID)
		return nil
	}
	if c.token == "" {
		return NewProviderError("BEDS24_TOKEN is not configured", nil)
	}
	avail := 0
	if available {
		avail = 1
	}
	payload := beds24CalendarRequest{
		PropID:    propID,
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		Price:     price,
		Available: avail,
	}
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.post(ctx, "/inventory/calendar", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return NewProviderError(fmt.Sprintf("provider rejected calendar update: %s", out.Error), nil)
	}
	return nil
}

func (c *Beds24Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewProviderError("could not encode provider request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, beds24RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return NewProviderError("could not build provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewTransientError("provider request timed out", err)
		}
		return NewTransientError("provider request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewTransientError("could not read provider response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewProviderError(fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(data)), nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewProviderError("could not decode provider response", err)
	}
	return nil
}
