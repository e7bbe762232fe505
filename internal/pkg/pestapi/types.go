package pestapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a record identifier the API may send as a string or an integer.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Price is a service price. Decimal columns often arrive as strings, so
// both "149.00" and 149 decode to the same value. It encodes as a number.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(v)
	return nil
}

// Service is a company-offered pest-control offering.
type Service struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *Price   `json:"price,omitempty"`
	ServiceType string   `json:"service_type"`
	PestTypes   []string `json:"pest_types"`
	Image       string   `json:"image,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingCancelled BookingStatus = "cancelled"
)

// Requestable reports whether a company may ask for a transition into s.
func (s BookingStatus) Requestable() bool {
	return s == BookingApproved || s == BookingCancelled
}

// Booking is a customer's request to use a service.
type Booking struct {
	ID           ID            `json:"id"`
	Status       BookingStatus `json:"status"`
	BookingNotes string        `json:"booking_notes,omitempty"`
	CreatedAt    string        `json:"created_at"`
	Service      BookingParty  `json:"service"`
	User         BookingParty  `json:"user"`
}

// BookingParty holds the display fields of the nested service/user objects.
type BookingParty struct {
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
}

// FileUpload is an in-memory file forwarded as a multipart part.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ServiceForm is the create/update payload for a service.
type ServiceForm struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"required"`
	Price       string      `json:"price" validate:"omitempty,numeric"`
	ServiceType string      `json:"service_type" validate:"required"`
	PestTypes   []string    `json:"pest_types" validate:"dive,required"`
	Image       *FileUpload `json:"-"`
}

func (f ServiceForm) price() string {
	if p := strings.TrimSpace(f.Price); p != "" {
		return p
	}
	return "0"
}

// Analysis is the image classifier's answer for an uploaded photo.
type Analysis struct {
	Prediction string           `json:"prediction"`
	Details    []AnalysisDetail `json:"details"`
}

// AnalysisDetail is one scored label.
type AnalysisDetail struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}
