// Package notify delivers operational email: manager alerts for new
// bookings, long-distance handoffs and call-back requests, plus the
// optional customer confirmation.
package notify

import (
	"context"

	"movebot/models"
)

// Notifier is the outbound alert surface. Implementations must be safe
// for concurrent use; delivery failures are reported, never fatal to the
// calling flow.
type Notifier interface {
	BookingAlert(ctx context.Context, rec models.BookingRecord, bookingID string) error
	LongDistanceAlert(ctx context.Context, rec models.BookingRecord) error
	CallRequestAlert(ctx context.Context, req models.CallRequest) error
	CustomerConfirmation(ctx context.Context, rec models.BookingRecord, bookingID string) error
}

// Noop discards every notification. Used when SMTP is not configured.
type Noop struct{}

func (Noop) BookingAlert(context.Context, models.BookingRecord, string) error  { return nil }
func (Noop) LongDistanceAlert(context.Context, models.BookingRecord) error     { return nil }
func (Noop) CallRequestAlert(context.Context, models.CallRequest) error        { return nil }
func (Noop) CustomerConfirmation(context.Context, models.BookingRecord, string) error {
	return nil
}
