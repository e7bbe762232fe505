package pestapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListBookings returns the bookings made against the company's services.
func (c *Client) ListBookings(ctx context.Context, creds Credentials) ([]Booking, error) {
	body, err := c.do(ctx, creds, call{
		op:           "list bookings",
		method:       http.MethodGet,
		path:         "/api/bookings/company",
		fallback:     "Failed to fetch bookings",
		authRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := decodeValidated("list bookings", body, bookingListSchema, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Bookings, nil
}

// UpdateBookingStatus requests a pending -> approved/cancelled transition.
func (c *Client) UpdateBookingStatus(ctx context.Context, creds Credentials, id ID, status BookingStatus) error {
	if !status.Requestable() {
		return fmt.Errorf("pestapi update booking status: status %q is not requestable", status)
	}

	payload, err := json.Marshal(struct {
		Status BookingStatus `json:"status"`
	}{Status: status})
	if err != nil {
		return fmt.Errorf("pestapi update booking status request error: %w", err)
	}

	_, err = c.doJSON(ctx, creds, call{
		op:           "update booking status",
		method:       http.MethodPatch,
		path:         "/api/bookings/" + url.PathEscape(id.String()) + "/status",
		fallback:     "Failed to update booking status",
		authRequired: true,
	}, payload)
	return err
}
